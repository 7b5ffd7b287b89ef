package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/arthur-debert/importkit/pkg/importkit/cli"
	"github.com/arthur-debert/importkit/pkg/importkit/core"
	"github.com/arthur-debert/importkit/pkg/importkit/destination"
	"github.com/arthur-debert/importkit/pkg/importkit/importer"
	"github.com/arthur-debert/importkit/pkg/importkit/logging"
	"github.com/arthur-debert/importkit/pkg/importkit/process"
	"github.com/arthur-debert/importkit/pkg/importkit/source"
)

// slugImporter turns titles into slugs. Any type with ImportSingle is an importer.
type slugImporter struct{}

func (slugImporter) ImportSingle(ctx context.Context, title string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("empty title")
	}
	return strings.ToLower(strings.ReplaceAll(title, " ", "-")), nil
}

// countObserver is told about every imported item.
type countObserver struct{ n int }

func (c *countObserver) AfterModelImported(core.Importer[string, string]) { c.n++ }

// Example building a pipeline in code instead of from a pipeline file
func main() {
	console := logging.NewConsole(cli.Stdio())

	// Stage 1: records through the record importer into memory
	users := destination.NewMemory()
	userProcess := process.New[core.Record, core.Record]("users", "Users",
		source.Slice[core.Record]{{"login": "ada"}, {"login": "grace"}},
		importer.New(users, importer.WithRequired("login")),
		process.WithLogger(console),
		process.WithProcessObserver(process.NewLogObserver(console)),
	)

	// Stage 2: a custom importer over plain strings
	counter := &countObserver{}
	slugProcess := process.New[string, string]("slugs", "Slugs",
		source.Slice[string]{"Hello World", "", "Second Post"},
		slugImporter{},
		process.WithLogger(console),
		process.WithProgress(console, 0),
		process.WithProcessObserver(process.NewLogObserver(console)),
	)
	slugProcess.Observers().SubscribeImporter(counter)

	pipeline := process.NewPipeline(nil)
	err := pipeline.Add(
		process.Stage{ID: "slugs", DependsOn: []string{"users"}, Process: slugProcess},
		process.Stage{ID: "users", Process: userProcess},
	)
	if err != nil {
		log.Fatalf("Add failed: %v", err)
	}

	if err := pipeline.Run(context.Background()); err != nil {
		console.Error(err.Error(), nil)
		return
	}

	console.Success(fmt.Sprintf("%d users, %d slugs", len(users.Records()), counter.n))
}

package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Destination types.
const (
	DestinationJSONLines = "jsonl"
	DestinationPostgres  = "postgres"
	DestinationMemory    = "memory"
)

// Pipeline is a pipeline definition file.
type Pipeline struct {
	Name   string  `yaml:"name"   json:"name"   toml:"name"`
	Stages []Stage `yaml:"stages" json:"stages" toml:"stages"`
}

// Stage describes one import process of a pipeline.
type Stage struct {
	ID          string            `yaml:"id"           json:"id"           toml:"id"`
	Label       string            `yaml:"label"        json:"label"        toml:"label"`
	DependsOn   []string          `yaml:"depends_on"   json:"depends_on"   toml:"depends_on"`
	Source      SourceConfig      `yaml:"source"       json:"source"       toml:"source"`
	Destination DestinationConfig `yaml:"destination"  json:"destination"  toml:"destination"`
	Mapping     map[string]string `yaml:"mapping"      json:"mapping"      toml:"mapping"`
	Required    []string          `yaml:"required"     json:"required"     toml:"required"`
	RateLimit   float64           `yaml:"rate_limit"   json:"rate_limit"   toml:"rate_limit"`
	Burst       int               `yaml:"burst"        json:"burst"        toml:"burst"`
	MaxFailures int               `yaml:"max_failures" json:"max_failures" toml:"max_failures"`
	DryRun      bool              `yaml:"dry_run"      json:"dry_run"      toml:"dry_run"`
}

// SourceConfig locates the input of a stage. An empty format is inferred from
// the path.
type SourceConfig struct {
	Path   string `yaml:"path"   json:"path"   toml:"path"`
	Format string `yaml:"format" json:"format" toml:"format"`
}

// DestinationConfig selects where a stage writes its records.
type DestinationConfig struct {
	Type  string `yaml:"type"  json:"type"  toml:"type"`
	Path  string `yaml:"path"  json:"path"  toml:"path"`
	Table string `yaml:"table" json:"table" toml:"table"`
	DSN   string `yaml:"dsn"   json:"dsn"   toml:"dsn"`
}

// ValidationError lists every problem found in a pipeline definition.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid pipeline: %s", strings.Join(e.Problems, "; "))
}

// LoadPipeline reads and validates a pipeline file. The format follows the
// file extension. Relative source and destination paths are resolved against
// the directory of the file.
func LoadPipeline(path string) (*Pipeline, error) {
	var p Pipeline
	if err := cleanenv.ReadConfig(path, &p); err != nil {
		return nil, fmt.Errorf("failed to read pipeline %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range p.Stages {
		s := &p.Stages[i]
		s.Source.Path = resolvePath(dir, s.Source.Path)
		if s.Destination.Type == DestinationJSONLines {
			s.Destination.Path = resolvePath(dir, s.Destination.Path)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Validate checks stage ids, dependencies, sources and destinations.
func (p *Pipeline) Validate() error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(p.Stages) == 0 {
		addf("no stages defined")
	}

	ids := make(map[string]bool, len(p.Stages))
	for i, s := range p.Stages {
		if s.ID == "" {
			addf("stage %d has no id", i+1)
			continue
		}
		if ids[s.ID] {
			addf("duplicate stage id %q", s.ID)
		}
		ids[s.ID] = true
	}

	for _, s := range p.Stages {
		name := s.ID
		if name == "" {
			continue
		}
		for _, dep := range s.DependsOn {
			switch {
			case dep == s.ID:
				addf("stage %q depends on itself", name)
			case !ids[dep]:
				addf("stage %q depends on unknown stage %q", name, dep)
			}
		}

		if s.Source.Path == "" {
			addf("stage %q has no source path", name)
		}
		switch s.Source.Format {
		case "", "jsonl", "csv":
		default:
			addf("stage %q has unsupported source format %q", name, s.Source.Format)
		}

		switch s.Destination.Type {
		case DestinationJSONLines:
			if s.Destination.Path == "" {
				addf("stage %q: jsonl destination needs a path", name)
			}
		case DestinationPostgres:
			if s.Destination.Table == "" {
				addf("stage %q: postgres destination needs a table", name)
			}
		case DestinationMemory:
		case "":
			addf("stage %q has no destination type", name)
		default:
			addf("stage %q has unsupported destination type %q", name, s.Destination.Type)
		}

		targets := make(map[string][]string)
		for from, to := range s.Mapping {
			targets[to] = append(targets[to], from)
		}
		for _, to := range sortedKeys(targets) {
			if from := targets[to]; len(from) > 1 {
				sort.Strings(from)
				addf("stage %q maps %s to the same field %q", name, strings.Join(quoteAll(from), ", "), to)
			}
		}

		if s.RateLimit < 0 {
			addf("stage %q has a negative rate limit", name)
		}
		if s.Burst < 0 {
			addf("stage %q has a negative burst", name)
		}
		if s.MaxFailures < 0 {
			addf("stage %q has a negative max_failures", name)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strconv.Quote(s)
	}
	return out
}

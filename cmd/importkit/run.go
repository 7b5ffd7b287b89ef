package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/importkit/pkg/importkit/config"
	"github.com/arthur-debert/importkit/pkg/importkit/core"
	"github.com/arthur-debert/importkit/pkg/importkit/destination"
	"github.com/arthur-debert/importkit/pkg/importkit/importer"
	"github.com/arthur-debert/importkit/pkg/importkit/metrics"
	"github.com/arthur-debert/importkit/pkg/importkit/process"
	"github.com/arthur-debert/importkit/pkg/importkit/source"
)

type recordProcess = process.Process[core.Record, core.Record]

func newRunCmd(a *app) *cobra.Command {
	var (
		dryRun      bool
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "run [pipeline-file]",
		Short: "Run an import pipeline",
		Long: `Run every stage of a pipeline file in dependency order. Items that fail to
import are reported as warnings; a stage fails once it exceeds its max_failures.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("metrics-file") {
				metricsFile = a.settings.MetricsFile
			}
			summary, err := a.run(cmd.Context(), args[0], dryRun, metricsFile)
			if err != nil {
				return a.fail(err)
			}

			prefix := ""
			if dryRun {
				prefix = "Dry run: "
			}
			a.console.Success(fmt.Sprintf("%s%d records imported, %d failed, in %d stages",
				prefix, summary.imported, summary.failed, summary.stages))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Map and validate records without writing them")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile (overrides IMPORTKIT_METRICS_FILE)")

	return cmd
}

type runSummary struct {
	imported int
	failed   int
	stages   int
}

// run imports every stage of the pipeline file. Destinations are flushed and
// closed before it returns, whether the run failed or not.
func (a *app) run(ctx context.Context, pipelineFile string, dryRun bool, metricsFile string) (summary runSummary, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	def, err := config.LoadPipeline(pipelineFile)
	if err != nil {
		return summary, err
	}
	a.logger.Debug().Str("pipeline", def.Name).Int("stages", len(def.Stages)).Msg("pipeline loaded")

	obs := metrics.NewObserver()
	pipeline := process.NewPipeline(a.diagnostics())
	var (
		processes    []*recordProcess
		destinations []destination.Destination
	)
	defer func() {
		cerr := closeAll(destinations)
		if cerr == nil {
			return
		}
		if err == nil {
			err = cerr
			return
		}
		a.console.Warning(cerr.Error(), nil)
	}()

	for _, st := range def.Stages {
		p, dest, err := a.buildStage(ctx, st, obs, dryRun)
		if err != nil {
			return summary, fmt.Errorf("stage %s: %w", st.ID, err)
		}
		destinations = append(destinations, dest)
		processes = append(processes, p)
		if err := pipeline.Add(process.Stage{ID: st.ID, DependsOn: st.DependsOn, Process: p}); err != nil {
			return summary, err
		}
	}

	runErr := pipeline.Run(ctx)

	if metricsFile != "" {
		if err := obs.WriteTextfile(metricsFile); err != nil {
			a.console.Warning(err.Error(), nil)
		}
	}

	if runErr != nil {
		return summary, runErr
	}

	for _, p := range processes {
		res := p.Result()
		summary.imported += res.Imported
		summary.failed += res.Failed
	}
	summary.stages = len(processes)
	return summary, nil
}

func closeAll(destinations []destination.Destination) error {
	var errs []error
	for _, d := range destinations {
		if err := d.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close destination: %w", err))
		}
	}
	return errors.Join(errs...)
}

// buildStage wires the source, destination and importer of a stage into a
// process. In a dry run nothing is opened for writing.
func (a *app) buildStage(ctx context.Context, st config.Stage, obs *metrics.Observer, dryRun bool) (*recordProcess, destination.Destination, error) {
	src, err := source.Open(st.Source.Path, source.Format(st.Source.Format))
	if err != nil {
		return nil, nil, err
	}

	dryRun = dryRun || st.DryRun
	dest, err := a.openDestination(ctx, st.Destination, dryRun)
	if err != nil {
		return nil, nil, err
	}

	impOpts := []importer.Option{importer.WithRequired(st.Required...)}
	if len(st.Mapping) > 0 {
		impOpts = append(impOpts, importer.WithMapping(st.Mapping))
	}
	if dryRun {
		impOpts = append(impOpts, importer.WithDryRun())
	}
	imp := importer.New(dest, impOpts...)

	p := process.New[core.Record, core.Record](st.ID, st.Label, src, imp,
		process.WithLogger(a.console),
		process.WithProgress(a.console, 0),
		process.WithProcessObserver(process.NewLogObserver(a.console)),
		process.WithProcessObserver(obs),
		process.WithRateLimit(st.RateLimit, st.Burst),
		process.WithMaxFailures(st.MaxFailures),
	)
	p.Observers().SubscribeImporter(obs)
	return p, dest, nil
}

func (a *app) openDestination(ctx context.Context, cfg config.DestinationConfig, dryRun bool) (destination.Destination, error) {
	if dryRun {
		return destination.NewMemory(), nil
	}

	switch cfg.Type {
	case config.DestinationJSONLines:
		return destination.Create(cfg.Path)
	case config.DestinationPostgres:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = a.settings.DatabaseDSN
		}
		if dsn == "" {
			return nil, errors.New("postgres destination needs a dsn or IMPORTKIT_DATABASE_DSN")
		}
		return destination.OpenPostgres(ctx, dsn, cfg.Table)
	case config.DestinationMemory:
		return destination.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported destination type %q", cfg.Type)
	}
}

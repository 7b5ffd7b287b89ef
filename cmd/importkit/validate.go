package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/importkit/pkg/importkit/config"
	"github.com/arthur-debert/importkit/pkg/importkit/process"
)

// plannedStage stands in for a stage process when only the order is needed.
type plannedStage struct{}

func (plannedStage) Import(context.Context) error { return nil }

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [pipeline-file]",
		Short: "Validate a pipeline file",
		Long:  "Parse and validate a pipeline file and print the order its stages run in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := config.LoadPipeline(args[0])
			if err != nil {
				return a.fail(err)
			}

			pipeline := process.NewPipeline(a.diagnostics())
			for _, st := range def.Stages {
				if err := pipeline.Add(process.Stage{ID: st.ID, DependsOn: st.DependsOn, Process: plannedStage{}}); err != nil {
					return a.fail(err)
				}
			}
			if err := pipeline.Resolve(); err != nil {
				return a.fail(err)
			}

			for i, st := range pipeline.Stages() {
				a.console.Line(fmt.Sprintf("%d. %s", i+1, st.ID))
			}
			a.console.Success(fmt.Sprintf("pipeline %s is valid (%d stages)", def.Name, len(def.Stages)))
			return nil
		},
	}
}

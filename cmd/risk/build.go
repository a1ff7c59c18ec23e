package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/config"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/dataset"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/pipeline"
)

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the feature dataset and publish it to storage",
		Long: `Sample observation dates for every loan, compute the point-in-time
aggregates and publish the resulting feature table under a fresh build id.`,
		RunE: runBuild,
	}

	cmd.Flags().Bool("predict", false, "Build the prediction snapshot instead of the training panel")
	cmd.Flags().Bool("progress", false, "Show a progress bar while aggregating")

	return cmd
}

func runBuild(cmd *cobra.Command, _ []string) error {
	predict, _ := cmd.Flags().GetBool("predict")
	progress, _ := cmd.Flags().GetBool("progress")

	cfg, err := config.LoadPipeline()
	if err != nil {
		return err
	}
	cfg.Dataset.Verbose = progress
	if predict {
		cfg.Dataset.Mode = dataset.Prediction
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	task := &pipeline.BuildTask{Storage: store, Config: cfg}
	return task.Run(ctx)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/config"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/pipeline"
)

func trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train the survival model on a fresh training panel",
		Long: `Build the training panel, fit the multi-event survival model and write
the artifacts to a timestamped run directory under the artifact root.`,
		RunE: runTrain,
	}
}

func runTrain(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadPipeline()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	task := &pipeline.TrainTask{Storage: store, Config: cfg}
	return task.Run(ctx)
}

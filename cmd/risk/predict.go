package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/config"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/pipeline"
)

func predictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict",
		Short: "Score every ongoing loan with the latest trained model",
		Long: `Load the most recent training run, build the prediction snapshot and
persist one default probability per ongoing loan as a new batch.`,
		RunE: runPredict,
	}
}

func runPredict(cmd *cobra.Command, _ []string) error {
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

	task := &pipeline.PredictTask{Storage: store, Config: cfg}
	return task.Run(ctx)
}

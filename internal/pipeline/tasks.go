// Package pipeline orchestrates the batch runs: building the feature
// dataset, training the survival model and scoring ongoing loans.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/dataset"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/ledger"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/lifecycle"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/service"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/survival"
)

// Config holds the settings shared by the batch tasks.
type Config struct {
	ModelName    string
	ModelVersion string
	ArtifactDir  string
	// TerminationLimitDays is the horizon bound used when scoring
	// ongoing loans.
	TerminationLimitDays int
	Dataset              dataset.Config
}

// Snapshot reads the raw tables once and resolves them into the immutable
// input of one dataset build.
func Snapshot(ctx context.Context, src service.TableSource, termLimitDays int) (dataset.Snapshot, error) {
	var snap dataset.Snapshot

	status, err := src.LoanStatus(ctx)
	if err != nil {
		return snap, fmt.Errorf("failed to read loan status: %w", err)
	}
	carLoans, err := src.CarLoans(ctx)
	if err != nil {
		return snap, fmt.Errorf("failed to read car loans: %w", err)
	}
	patches, err := src.ReimbursementPatches(ctx)
	if err != nil {
		return snap, fmt.Errorf("failed to read reimbursement patches: %w", err)
	}
	auditRows, err := src.Audits(ctx)
	if err != nil {
		return snap, fmt.Errorf("failed to read audits: %w", err)
	}
	dds, err := src.DueDiligences(ctx)
	if err != nil {
		return snap, fmt.Errorf("failed to read due diligences: %w", err)
	}
	cars, err := src.Cars(ctx)
	if err != nil {
		return snap, fmt.Errorf("failed to read car attributes: %w", err)
	}
	companies, err := src.Companies(ctx)
	if err != nil {
		return snap, fmt.Errorf("failed to read companies: %w", err)
	}

	resolver := lifecycle.NewResolver(termLimitDays)
	loans, err := resolver.Resolve(status, carLoans, patches)
	if err != nil {
		return snap, fmt.Errorf("failed to resolve loans: %w", err)
	}

	audits, err := ledger.Normalize(auditRows)
	if err != nil {
		return snap, fmt.Errorf("failed to normalize audits: %w", err)
	}

	// Due diligences reach the feature rows through the car attributes
	// join; here they are only checked for integrity.
	if err := ledger.ValidateDueDiligences(dds); err != nil {
		return snap, fmt.Errorf("failed to validate due diligences: %w", err)
	}

	snap.Loans = loans
	snap.Audits = audits
	snap.Cars = cars
	snap.Companies = companies
	return snap, nil
}

// BuildTask assembles the feature dataset and publishes it to storage.
type BuildTask struct {
	Storage service.Storage
	Config  Config
}

// Run executes one dataset build.
func (t *BuildTask) Run(ctx context.Context) error {
	snap, err := Snapshot(ctx, t.Storage, t.Config.Dataset.Sampling.TermLimitDays)
	if err != nil {
		return err
	}

	rows, err := dataset.New(t.Config.Dataset).Assemble(snap)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		slog.Warn("Feature dataset is empty, nothing to publish")
		return nil
	}

	buildID := uuid.NewString()
	if err := t.Storage.SaveFeatures(ctx, buildID, rows); err != nil {
		return fmt.Errorf("failed to publish features: %w", err)
	}

	slog.Info("Published feature dataset", "build_id", buildID, "rows", len(rows))
	return nil
}

// TrainTask builds the training panel, fits the survival model and stores
// the artifacts on disk.
type TrainTask struct {
	Storage service.Storage
	Config  Config
}

// Run executes one training run.
func (t *TrainTask) Run(ctx context.Context) error {
	cfg := t.Config.Dataset
	cfg.Mode = dataset.Training

	snap, err := Snapshot(ctx, t.Storage, cfg.Sampling.TermLimitDays)
	if err != nil {
		return err
	}

	rows, err := dataset.New(cfg).Assemble(snap)
	if err != nil {
		return err
	}

	y := survival.MakeLabels(rows)
	logEventDistribution(y)

	estimator := survival.NewEmpiricalIncidence(t.Config.ModelName)
	if err := estimator.Fit(rows, y); err != nil {
		return fmt.Errorf("failed to fit model: %w", err)
	}

	runDir, err := survival.SaveModel(t.Config.ArtifactDir, estimator, t.Config.ModelVersion, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}

	slog.Info("Trained model", "model", t.Config.ModelName, "samples", len(rows), "run_dir", runDir)
	return nil
}

// PredictTask scores every ongoing loan with the latest trained model and
// persists the batch.
type PredictTask struct {
	Storage service.Storage
	Config  Config
}

// Run executes one batch prediction.
func (t *PredictTask) Run(ctx context.Context) error {
	estimator, artifact, err := survival.LoadLatest(t.Config.ArtifactDir)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}

	cfg := t.Config.Dataset
	cfg.Mode = dataset.Prediction

	snap, err := Snapshot(ctx, t.Storage, cfg.Sampling.TermLimitDays)
	if err != nil {
		return err
	}

	rows, err := dataset.New(cfg).Assemble(snap)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		slog.Warn("No ongoing loans to score")
		return nil
	}
	slog.Info("Scoring ongoing loans", "count", len(rows))

	incidence, err := estimator.PredictCumulativeIncidence(rows)
	if err != nil {
		return fmt.Errorf("failed to predict: %w", err)
	}
	grid := estimator.TimeGrid()

	now := time.Now().UTC()
	batchID := uuid.NewString()
	predictions := make([]model.Prediction, 0, len(rows))

	bar := progressbar.Default(int64(len(rows)), "scoring")
	for i, row := range rows {
		_ = bar.Add(1)

		// The curve is evaluated at the remaining contractual horizon.
		// TODO: take the termination limit from the loan terms instead
		// of configuration.
		horizon := t.Config.TerminationLimitDays - row.LoanAgeDays
		step := survival.HorizonIndex(grid, horizon)

		// Not reimbursed by the horizon: still unresolved or defaulted.
		defaultProbability := incidence[i][0][step] + incidence[i][2][step]

		predictions = append(predictions, model.Prediction{
			PredictionID:       uuid.NewString(),
			BatchID:            batchID,
			ModelName:          artifact.ModelName,
			ModelVersion:       artifact.ModelVersion,
			LoanID:             row.CarloanID,
			DefaultProbability: defaultProbability,
			Date:               now,
		})
	}

	if err := t.Storage.SavePredictions(ctx, predictions); err != nil {
		return fmt.Errorf("failed to persist predictions: %w", err)
	}

	slog.Info("Persisted prediction batch", "batch_id", batchID, "count", len(predictions))
	return nil
}

func logEventDistribution(y survival.Labels) {
	counts := make(map[model.EventClass]int)
	for _, e := range y.Event {
		counts[e]++
	}
	slog.Info("Event distribution",
		"censored", counts[model.EventCensored],
		"reimbursed", counts[model.EventReimbursed],
		"default", counts[model.EventDefault])
}

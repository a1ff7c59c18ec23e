// Package service defines the interfaces between the pipeline and its
// collaborators: the warehouse snapshot tables and the feature/prediction
// stores.
package service

import (
	"context"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
)

// TableSource returns the typed raw tables of one warehouse snapshot. Each
// table is queried once per build and treated as read-only; implementations
// fail fast when expected columns are missing.
type TableSource interface {
	LoanStatus(ctx context.Context) ([]model.LoanStatusRow, error)
	CarLoans(ctx context.Context) ([]model.CarLoanRow, error)
	ReimbursementPatches(ctx context.Context) ([]model.ReimbursementPatch, error)
	Audits(ctx context.Context) ([]model.AuditRow, error)
	DueDiligences(ctx context.Context) ([]model.DueDiligence, error)
	Cars(ctx context.Context) ([]model.Car, error)
	Companies(ctx context.Context) ([]model.Company, error)
}

// FeatureStore persists assembled datasets and batch predictions as flat
// tables with a declared column-to-type mapping.
type FeatureStore interface {
	SaveFeatures(ctx context.Context, buildID string, rows []model.FeatureRow) error
	SavePredictions(ctx context.Context, predictions []model.Prediction) error
}

// Storage combines both sides of the table boundary.
type Storage interface {
	TableSource
	FeatureStore

	// Migrate brings the database schema up to date.
	Migrate(ctx context.Context) error
	// Close releases the underlying connection.
	Close() error
}

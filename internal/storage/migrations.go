package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Warehouse snapshot tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS car_loan_status (
					carloan_id TEXT PRIMARY KEY,
					car_collateral_id TEXT,
					loan_state INTEGER NOT NULL,
					loan_created_date DATETIME NOT NULL,
					loan_maturity_date DATETIME NOT NULL,
					loan_reimbursed_date DATETIME,
					car_make TEXT,
					car_model TEXT,
					car_transmission_type TEXT,
					car_first_registration_date TEXT
				)`,
				`CREATE TABLE IF NOT EXISTS cars_carloans (
					id TEXT PRIMARY KEY,
					borrowerid TEXT NOT NULL,
					collateralid TEXT,
					createdat DATETIME,
					principal_amount REAL,
					principal_currency TEXT,
					terminationreason TEXT,
					terminatedat DATETIME
				)`,
				`CREATE TABLE IF NOT EXISTS missing_reimbursement (
					carloan_id TEXT NOT NULL,
					car_reimbursed_date TEXT
				)`,
				`CREATE TABLE IF NOT EXISTS cars_carcollateralaudits (
					id TEXT PRIMARY KEY,
					loanid TEXT NOT NULL,
					collateralid TEXT,
					scheduledfor_from DATETIME NOT NULL,
					scheduledfor_to DATETIME NOT NULL,
					cancellation_takenat DATETIME,
					submission_takenat DATETIME,
					approval_result BOOLEAN,
					approval_takenat DATETIME,
					state INTEGER NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_audits_loanid ON cars_carcollateralaudits(loanid)`,
				`CREATE TABLE IF NOT EXISTS cars_carcollateralduediligences (
					id TEXT PRIMARY KEY,
					collateralid TEXT NOT NULL,
					createdat DATETIME,
					duedate DATETIME,
					submission_takenat DATETIME,
					carsource_companyinfo_companytype INTEGER,
					state INTEGER,
					approved BOOLEAN
				)`,
				`CREATE TABLE IF NOT EXISTS cars_companies (
					id TEXT PRIMARY KEY,
					companyname TEXT,
					companyregistrationnumber TEXT,
					countrycode TEXT,
					foundingdate TEXT
				)`,
				`CREATE TABLE IF NOT EXISTS plafond_companies (
					id TEXT PRIMARY KEY,
					ownerpersonaldata_birthdate TEXT
				)`,
				`CREATE TABLE IF NOT EXISTS plafond_companyplafondledger (
					companyid TEXT NOT NULL,
					grantedamount_amount INTEGER
				)`,
				`CREATE TABLE IF NOT EXISTS plafond_plafonds (
					companyid TEXT NOT NULL,
					commercialpartner TEXT
				)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute %q: %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Feature and prediction output tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS p0_features (
					feature_build_id TEXT NOT NULL,
					observation_date DATETIME NOT NULL,
					carloan_id TEXT NOT NULL,
					borrower_id TEXT NOT NULL,
					event INTEGER NOT NULL,
					duration INTEGER NOT NULL,
					loan_age_days INTEGER NOT NULL,
					loan_amount REAL,
					car_make TEXT,
					car_model TEXT,
					car_transmission_type TEXT,
					car_source INTEGER,
					country_code TEXT,
					n_days_since_founded INTEGER,
					owner_age_year INTEGER,
					loan_n_past_audits INTEGER,
					loan_n_audit_overdue INTEGER,
					loan_n_audit_approved INTEGER,
					loan_n_audit_rejected INTEGER,
					loan_ratio_audit_overdue REAL,
					loan_ratio_audit_approved REAL,
					loan_ratio_audit_rejected REAL,
					dealer_n_past_audits INTEGER,
					dealer_n_audit_overdue INTEGER,
					dealer_n_audit_approved INTEGER,
					dealer_n_audit_rejected INTEGER,
					dealer_ratio_audit_overdue REAL,
					dealer_ratio_audit_approved REAL,
					dealer_ratio_audit_rejected REAL,
					dealer_n_cars_financed INTEGER,
					dealer_avg_reimbursement_days REAL,
					dealer_n_cars_reimbursed INTEGER,
					dealer_n_maturity_reached INTEGER,
					dealer_n_cars_sold_np INTEGER,
					dealer_n_loan_ongoing INTEGER,
					dealer_ratio_reimbursed REAL,
					dealer_ratio_maturity_reached REAL,
					dealer_ratio_cars_sold_np REAL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_features_build ON p0_features(feature_build_id)`,
				`CREATE TABLE IF NOT EXISTS predictions (
					prediction_id TEXT PRIMARY KEY,
					batch_id TEXT NOT NULL,
					model_name TEXT NOT NULL,
					model_version TEXT NOT NULL,
					loan_id TEXT NOT NULL,
					default_probability REAL NOT NULL,
					date DATETIME NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_predictions_batch ON predictions(batch_id)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute %q: %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		slog.Info("Applied migration", "version", m.Version, "description", m.Description)
	}

	return nil
}

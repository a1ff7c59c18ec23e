package storage

import (
	"context"
	"fmt"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
)

// SaveFeatures persists one assembled feature dataset under a build id.
func (s *SQLiteStorage) SaveFeatures(ctx context.Context, buildID string, rows []model.FeatureRow) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(buildID, "buildID"); err != nil {
		return err
	}
	if err := validateFeatureRows(rows); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO p0_features (
			feature_build_id, observation_date, carloan_id, borrower_id,
			event, duration, loan_age_days, loan_amount,
			car_make, car_model, car_transmission_type, car_source,
			country_code, n_days_since_founded, owner_age_year,
			loan_n_past_audits, loan_n_audit_overdue,
			loan_n_audit_approved, loan_n_audit_rejected,
			loan_ratio_audit_overdue, loan_ratio_audit_approved,
			loan_ratio_audit_rejected,
			dealer_n_past_audits, dealer_n_audit_overdue,
			dealer_n_audit_approved, dealer_n_audit_rejected,
			dealer_ratio_audit_overdue, dealer_ratio_audit_approved,
			dealer_ratio_audit_rejected,
			dealer_n_cars_financed, dealer_avg_reimbursement_days,
			dealer_n_cars_reimbursed, dealer_n_maturity_reached,
			dealer_n_cars_sold_np, dealer_n_loan_ongoing,
			dealer_ratio_reimbursed, dealer_ratio_maturity_reached,
			dealer_ratio_cars_sold_np
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare feature insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			buildID,
			row.ObservationDate,
			row.CarloanID,
			row.BorrowerID,
			int(row.Event),
			row.Duration,
			row.LoanAgeDays,
			row.LoanAmount,
			row.CarMake,
			row.CarModel,
			row.CarTransmission,
			row.CarSource,
			row.CountryCode,
			row.DaysSinceFounded,
			row.OwnerAgeYears,
			row.LoanNPastAudits,
			row.LoanNAuditOverdue,
			row.LoanNAuditApproved,
			row.LoanNAuditRejected,
			row.LoanRatioAuditOverdue,
			row.LoanRatioAuditApproved,
			row.LoanRatioAuditRejected,
			row.DealerNPastAudits,
			row.DealerNAuditOverdue,
			row.DealerNAuditApproved,
			row.DealerNAuditRejected,
			row.DealerRatioAuditOverdue,
			row.DealerRatioAuditApproved,
			row.DealerRatioAuditRejected,
			row.DealerNCarsFinanced,
			row.DealerAvgReimbursementDays,
			row.DealerNCarsReimbursed,
			row.DealerNMaturityReached,
			row.DealerNCarsSoldNP,
			row.DealerNLoanOngoing,
			row.DealerRatioReimbursed,
			row.DealerRatioMaturityReached,
			row.DealerRatioCarsSoldNP,
		); err != nil {
			return fmt.Errorf("failed to insert feature row for loan %s: %w", row.CarloanID, err)
		}
	}

	return tx.Commit()
}

// SavePredictions persists one batch of scored loans.
func (s *SQLiteStorage) SavePredictions(ctx context.Context, predictions []model.Prediction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePredictions(predictions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO predictions (
			prediction_id, batch_id, model_name, model_version,
			loan_id, default_probability, date
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare prediction insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range predictions {
		if _, err := stmt.ExecContext(ctx,
			p.PredictionID,
			p.BatchID,
			p.ModelName,
			p.ModelVersion,
			p.LoanID,
			p.DefaultProbability,
			p.Date,
		); err != nil {
			return fmt.Errorf("failed to insert prediction for loan %s: %w", p.LoanID, err)
		}
	}

	return tx.Commit()
}

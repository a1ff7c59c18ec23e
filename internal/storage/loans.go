package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
)

// patchDateFormat is the day-first export format of the reimbursement patch
// source.
const patchDateFormat = "02/01/2006 15:04"

// LoanStatus reads the car_loan_status snapshot table.
func (s *SQLiteStorage) LoanStatus(ctx context.Context) ([]model.LoanStatusRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	expected := []string{
		"carloan_id", "car_collateral_id", "loan_state",
		"loan_created_date", "loan_maturity_date", "loan_reimbursed_date",
	}
	if err := s.checkColumns(ctx, "car_loan_status", expected); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT carloan_id, car_collateral_id, loan_state,
		       loan_created_date, loan_maturity_date, loan_reimbursed_date
		FROM car_loan_status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query car_loan_status: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []model.LoanStatusRow
	for rows.Next() {
		var (
			row          model.LoanStatusRow
			collateralID sql.NullString
			reimbursed   sql.NullTime
		)
		if err := rows.Scan(&row.CarloanID, &collateralID, &row.State,
			&row.CreatedAt, &row.MaturityDate, &reimbursed); err != nil {
			return nil, fmt.Errorf("failed to scan car_loan_status row: %w", err)
		}
		row.CollateralID = collateralID.String
		row.ReimbursedDate = nullTimePtr(reimbursed)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read car_loan_status rows: %w", err)
	}
	return result, nil
}

// CarLoans reads the cars_carloans snapshot table.
func (s *SQLiteStorage) CarLoans(ctx context.Context) ([]model.CarLoanRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	expected := []string{"id", "borrowerid", "collateralid", "terminationreason", "terminatedat"}
	if err := s.checkColumns(ctx, "cars_carloans", expected); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, borrowerid, collateralid, terminationreason, terminatedat
		FROM cars_carloans
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cars_carloans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []model.CarLoanRow
	for rows.Next() {
		var (
			row          model.CarLoanRow
			collateralID sql.NullString
			reason       sql.NullString
			terminatedAt sql.NullTime
		)
		if err := rows.Scan(&row.CarloanID, &row.BorrowerID, &collateralID,
			&reason, &terminatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cars_carloans row: %w", err)
		}
		row.CollateralID = collateralID.String
		row.TerminationReason = reason.String
		row.TerminatedAt = nullTimePtr(terminatedAt)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cars_carloans rows: %w", err)
	}
	return result, nil
}

// ReimbursementPatches reads the secondary reimbursement-date source. Rows
// with unparseable dates are skipped with a logged count.
func (s *SQLiteStorage) ReimbursementPatches(ctx context.Context) ([]model.ReimbursementPatch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	expected := []string{"carloan_id", "car_reimbursed_date"}
	if err := s.checkColumns(ctx, "missing_reimbursement", expected); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT carloan_id, car_reimbursed_date
		FROM missing_reimbursement
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query missing_reimbursement: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []model.ReimbursementPatch
	skipped := 0
	for rows.Next() {
		var (
			carloanID string
			raw       sql.NullString
		)
		if err := rows.Scan(&carloanID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan missing_reimbursement row: %w", err)
		}
		if !raw.Valid || raw.String == "" {
			skipped++
			continue
		}
		date, err := time.ParseInLocation(patchDateFormat, raw.String, time.UTC)
		if err != nil {
			skipped++
			continue
		}
		result = append(result, model.ReimbursementPatch{
			CarloanID:      carloanID,
			ReimbursedDate: date,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read missing_reimbursement rows: %w", err)
	}
	if skipped > 0 {
		slog.Warn("Skipped reimbursement patches with missing or unparseable dates",
			"count", skipped)
	}
	return result, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}

func nullBoolPtr(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	value := b.Bool
	return &value
}

package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
)

// Audits reads the cars_carcollateralaudits snapshot table.
func (s *SQLiteStorage) Audits(ctx context.Context) ([]model.AuditRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	expected := []string{
		"id", "loanid", "collateralid", "scheduledfor_from", "scheduledfor_to",
		"cancellation_takenat", "submission_takenat", "approval_result",
		"approval_takenat", "state",
	}
	if err := s.checkColumns(ctx, "cars_carcollateralaudits", expected); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, loanid, collateralid, scheduledfor_from, scheduledfor_to,
		       cancellation_takenat, submission_takenat, approval_result,
		       approval_takenat, state
		FROM cars_carcollateralaudits
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cars_carcollateralaudits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []model.AuditRow
	for rows.Next() {
		var (
			row          model.AuditRow
			collateralID sql.NullString
			cancellation sql.NullTime
			submission   sql.NullTime
			approval     sql.NullBool
			approvalAt   sql.NullTime
		)
		if err := rows.Scan(&row.AuditID, &row.CarloanID, &collateralID,
			&row.ScheduledFrom, &row.DueDate, &cancellation, &submission,
			&approval, &approvalAt, &row.State); err != nil {
			return nil, fmt.Errorf("failed to scan cars_carcollateralaudits row: %w", err)
		}
		row.CollateralID = collateralID.String
		row.CancellationDate = nullTimePtr(cancellation)
		row.SubmissionDate = nullTimePtr(submission)
		row.ApprovalResult = nullBoolPtr(approval)
		row.ApprovalDate = nullTimePtr(approvalAt)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cars_carcollateralaudits rows: %w", err)
	}
	return result, nil
}

// DueDiligences reads the cars_carcollateralduediligences snapshot table.
// Each collateral has at most one due diligence.
func (s *SQLiteStorage) DueDiligences(ctx context.Context) ([]model.DueDiligence, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	expected := []string{
		"id", "collateralid", "createdat", "duedate", "submission_takenat",
		"carsource_companyinfo_companytype", "state", "approved",
	}
	if err := s.checkColumns(ctx, "cars_carcollateralduediligences", expected); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collateralid, createdat, duedate, submission_takenat,
		       carsource_companyinfo_companytype, state, approved
		FROM cars_carcollateralduediligences
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cars_carcollateralduediligences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []model.DueDiligence
	for rows.Next() {
		var (
			dd         model.DueDiligence
			createdAt  sql.NullTime
			dueDate    sql.NullTime
			submission sql.NullTime
			carSource  sql.NullInt64
			state      sql.NullInt64
			approved   sql.NullBool
		)
		if err := rows.Scan(&dd.DDID, &dd.CollateralID, &createdAt, &dueDate,
			&submission, &carSource, &state, &approved); err != nil {
			return nil, fmt.Errorf("failed to scan cars_carcollateralduediligences row: %w", err)
		}
		if createdAt.Valid {
			dd.CreatedAt = createdAt.Time
		}
		dd.DueDate = nullTimePtr(dueDate)
		dd.SubmissionTakenAt = nullTimePtr(submission)
		dd.CarSource = int(carSource.Int64)
		dd.State = int(state.Int64)
		dd.Approved = approved.Bool
		result = append(result, dd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cars_carcollateralduediligences rows: %w", err)
	}
	return result, nil
}

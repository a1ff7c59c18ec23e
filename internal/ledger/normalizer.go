// Package ledger normalizes raw collateral audit rows into their derived
// lifecycle state and evaluates the as-of overdue predicate.
package ledger

import (
	"time"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/common"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
)

// DPD14Days is the grace period added to the due date to form the days-past-due marker.
const DPD14Days = 14

// Normalize produces one audit per audit_id, deriving the dpd14 date, the end
// date and the approved/rejected/cancelled flags. Every derived field is a
// pure function of the row's own columns; the overdue predicate is evaluated
// separately against a caller-supplied as-of date. Duplicate audit ids abort
// the build.
func Normalize(rows []model.AuditRow) ([]model.Audit, error) {
	seen := make(map[string]bool, len(rows))
	duplicates := 0

	audits := make([]model.Audit, 0, len(rows))
	for _, row := range rows {
		if seen[row.AuditID] {
			duplicates++
			continue
		}
		seen[row.AuditID] = true

		audit := model.Audit{
			AuditID:          row.AuditID,
			CarloanID:        row.CarloanID,
			CollateralID:     row.CollateralID,
			ScheduledFrom:    row.ScheduledFrom,
			DueDate:          row.DueDate,
			DPD14Date:        row.DueDate.AddDate(0, 0, DPD14Days),
			CancellationDate: row.CancellationDate,
			SubmissionDate:   row.SubmissionDate,
			ApprovalDate:     row.ApprovalDate,
			State:            row.State,
		}

		audit.EndDate = row.SubmissionDate
		if audit.EndDate == nil {
			audit.EndDate = row.CancellationDate
		}

		if row.ApprovalResult != nil {
			audit.Approved = *row.ApprovalResult
			audit.Rejected = !*row.ApprovalResult
		}

		// Some cancelled audits carry no cancellation date; the state
		// code is the reliable signal.
		audit.Cancelled = row.State == model.AuditStateCancelled

		audits = append(audits, audit)
	}

	if duplicates > 0 {
		return nil, common.NewDuplicateIdentityError("audits", "audit_id", duplicates)
	}

	return audits, nil
}

// ValidateDueDiligences checks that every due diligence record carries a
// unique id. The records themselves join into the car attributes at read
// time; this guards the snapshot against double-loaded rows.
func ValidateDueDiligences(dds []model.DueDiligence) error {
	seen := make(map[string]bool, len(dds))
	duplicates := 0
	for _, dd := range dds {
		if seen[dd.DDID] {
			duplicates++
			continue
		}
		seen[dd.DDID] = true
	}

	if duplicates > 0 {
		return common.NewDuplicateIdentityError("due_diligences", "dd_id", duplicates)
	}

	return nil
}

// Unresolved reports whether the audit counts as overdue once its due date
// has passed: it was not submitted before its own due date and it was not
// cancelled. The flag is a pure function of the audit's own fields, which
// lets callers prefix-sum it per group.
func Unresolved(a model.Audit) bool {
	if a.Cancelled {
		return false
	}
	submittedInTime := a.SubmissionDate != nil && a.SubmissionDate.Before(a.DueDate)
	return !submittedInTime
}

// Overdue reports whether the audit is overdue as of the given date: its due
// date has passed and it is unresolved. The predicate is relative to asOf,
// never to the current time, so that sampled observations stay leak-free.
func Overdue(a model.Audit, asOf time.Time) bool {
	return a.DueDate.Before(asOf) && Unresolved(a)
}

package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/common"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time {
	return &t
}

func boolPtr(b bool) *bool {
	return &b
}

func TestNormalize(t *testing.T) {
	scheduled := day(2024, time.May, 1)
	due := day(2024, time.May, 8)

	t.Run("derives dpd14 date from the due date", func(t *testing.T) {
		audits, err := Normalize([]model.AuditRow{{
			AuditID: "A1", CarloanID: "L1",
			ScheduledFrom: scheduled, DueDate: due,
		}})
		require.NoError(t, err)
		require.Len(t, audits, 1)
		assert.Equal(t, due.AddDate(0, 0, 14), audits[0].DPD14Date)
	})

	t.Run("end date prefers submission over cancellation", func(t *testing.T) {
		submission := day(2024, time.May, 6)
		cancellation := day(2024, time.May, 3)
		audits, err := Normalize([]model.AuditRow{{
			AuditID: "A1", CarloanID: "L1",
			ScheduledFrom: scheduled, DueDate: due,
			SubmissionDate:   datePtr(submission),
			CancellationDate: datePtr(cancellation),
		}})
		require.NoError(t, err)
		require.NotNil(t, audits[0].EndDate)
		assert.Equal(t, submission, *audits[0].EndDate)
	})

	t.Run("end date falls back to cancellation", func(t *testing.T) {
		cancellation := day(2024, time.May, 3)
		audits, err := Normalize([]model.AuditRow{{
			AuditID: "A1", CarloanID: "L1",
			ScheduledFrom: scheduled, DueDate: due,
			CancellationDate: datePtr(cancellation),
		}})
		require.NoError(t, err)
		require.NotNil(t, audits[0].EndDate)
		assert.Equal(t, cancellation, *audits[0].EndDate)
	})

	t.Run("approval result splits into approved and rejected", func(t *testing.T) {
		audits, err := Normalize([]model.AuditRow{
			{AuditID: "A1", CarloanID: "L1", ScheduledFrom: scheduled, DueDate: due, ApprovalResult: boolPtr(true)},
			{AuditID: "A2", CarloanID: "L1", ScheduledFrom: scheduled, DueDate: due, ApprovalResult: boolPtr(false)},
			{AuditID: "A3", CarloanID: "L1", ScheduledFrom: scheduled, DueDate: due},
		})
		require.NoError(t, err)
		require.Len(t, audits, 3)
		assert.True(t, audits[0].Approved)
		assert.False(t, audits[0].Rejected)
		assert.False(t, audits[1].Approved)
		assert.True(t, audits[1].Rejected)
		assert.False(t, audits[2].Approved)
		assert.False(t, audits[2].Rejected)
	})

	t.Run("cancelled flag follows the state code", func(t *testing.T) {
		audits, err := Normalize([]model.AuditRow{
			{AuditID: "A1", CarloanID: "L1", ScheduledFrom: scheduled, DueDate: due, State: model.AuditStateCancelled},
			{AuditID: "A2", CarloanID: "L1", ScheduledFrom: scheduled, DueDate: due, State: model.AuditStateApproved},
		})
		require.NoError(t, err)
		assert.True(t, audits[0].Cancelled)
		assert.False(t, audits[1].Cancelled)
	})

	t.Run("duplicate audit ids abort the build", func(t *testing.T) {
		_, err := Normalize([]model.AuditRow{
			{AuditID: "A1", CarloanID: "L1", ScheduledFrom: scheduled, DueDate: due},
			{AuditID: "A1", CarloanID: "L2", ScheduledFrom: scheduled, DueDate: due},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrDuplicateIdentity)
	})
}

func TestValidateDueDiligences(t *testing.T) {
	t.Run("unique ids pass", func(t *testing.T) {
		err := ValidateDueDiligences([]model.DueDiligence{
			{DDID: "DD1", CollateralID: "C1"},
			{DDID: "DD2", CollateralID: "C2"},
		})
		require.NoError(t, err)
	})

	t.Run("empty input passes", func(t *testing.T) {
		require.NoError(t, ValidateDueDiligences(nil))
	})

	t.Run("duplicate ids abort the build", func(t *testing.T) {
		err := ValidateDueDiligences([]model.DueDiligence{
			{DDID: "DD1", CollateralID: "C1"},
			{DDID: "DD1", CollateralID: "C2"},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrDuplicateIdentity)
	})
}

func TestUnresolved(t *testing.T) {
	due := day(2024, time.May, 8)

	tests := []struct {
		name  string
		audit model.Audit
		want  bool
	}{
		{
			name:  "no submission",
			audit: model.Audit{DueDate: due},
			want:  true,
		},
		{
			name: "submitted before the due date",
			audit: model.Audit{
				DueDate:        due,
				SubmissionDate: datePtr(day(2024, time.May, 6)),
			},
			want: false,
		},
		{
			name: "submitted after the due date",
			audit: model.Audit{
				DueDate:        due,
				SubmissionDate: datePtr(day(2024, time.May, 12)),
			},
			want: true,
		},
		{
			name:  "cancelled",
			audit: model.Audit{DueDate: due, Cancelled: true},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unresolved(tt.audit))
			// Once the due date has passed, overdue reduces to the
			// unresolved flag.
			assert.Equal(t, tt.want, Overdue(tt.audit, due.AddDate(0, 0, 1)))
		})
	}
}

func TestOverdue(t *testing.T) {
	due := day(2024, time.May, 8)

	tests := []struct {
		name  string
		audit model.Audit
		asOf  time.Time
		want  bool
	}{
		{
			name:  "due date passed with no submission",
			audit: model.Audit{DueDate: due},
			asOf:  day(2024, time.May, 10),
			want:  true,
		},
		{
			name:  "due date not reached yet",
			audit: model.Audit{DueDate: due},
			asOf:  day(2024, time.May, 5),
			want:  false,
		},
		{
			name:  "as-of exactly on the due date",
			audit: model.Audit{DueDate: due},
			asOf:  due,
			want:  false,
		},
		{
			name: "submitted before the due date",
			audit: model.Audit{
				DueDate:        due,
				SubmissionDate: datePtr(day(2024, time.May, 6)),
			},
			asOf: day(2024, time.May, 10),
			want: false,
		},
		{
			name: "submitted after the due date",
			audit: model.Audit{
				DueDate:        due,
				SubmissionDate: datePtr(day(2024, time.May, 12)),
			},
			asOf: day(2024, time.May, 20),
			want: true,
		},
		{
			name:  "cancelled audits are never overdue",
			audit: model.Audit{DueDate: due, Cancelled: true},
			asOf:  day(2024, time.May, 20),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overdue(tt.audit, tt.asOf))
		})
	}
}

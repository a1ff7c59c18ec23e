package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOutcome_EventClass(t *testing.T) {
	tests := []struct {
		name      string
		outcome   Outcome
		wantClass EventClass
		wantOK    bool
	}{
		{name: "ongoing is censored", outcome: OutcomeOngoing, wantClass: EventCensored, wantOK: true},
		{name: "maturity reached is censored", outcome: OutcomeMaturityReached, wantClass: EventCensored, wantOK: true},
		{name: "reimbursed", outcome: OutcomeReimbursed, wantClass: EventReimbursed, wantOK: true},
		{name: "collateral sold is a default", outcome: OutcomeCollateralSold, wantClass: EventDefault, wantOK: true},
		{name: "audit overdue is a default", outcome: OutcomeAuditOverdue, wantClass: EventDefault, wantOK: true},
		{name: "due diligence overdue is a default", outcome: OutcomeDDOverdue, wantClass: EventDefault, wantOK: true},
		{name: "residual category is excluded", outcome: OutcomeOtherDefault, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, ok := tt.outcome.EventClass()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantClass, class)
			}
		})
	}
}

func TestOutcome_IsDefault(t *testing.T) {
	assert.False(t, OutcomeOngoing.IsDefault())
	assert.False(t, OutcomeReimbursed.IsDefault())
	assert.True(t, OutcomeMaturityReached.IsDefault())
	assert.True(t, OutcomeCollateralSold.IsDefault())
	assert.True(t, OutcomeOtherDefault.IsDefault())
}

func TestLoan_DurationAsOf(t *testing.T) {
	created := day(2024, time.April, 1)

	closed := Loan{CreatedAt: created, Duration: 40}
	assert.Equal(t, 40, closed.DurationAsOf(day(2025, time.January, 1)))

	ongoing := Loan{CreatedAt: created, IsOngoing: true}
	assert.Equal(t, 30, ongoing.DurationAsOf(day(2024, time.May, 1)))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(day(2024, time.April, 1), day(2024, time.April, 1)))
	assert.Equal(t, 30, DaysBetween(day(2024, time.April, 1), day(2024, time.May, 1)))
	assert.Equal(t, -1, DaysBetween(day(2024, time.April, 2), day(2024, time.April, 1)))
}

func TestNewObservation(t *testing.T) {
	loan := Loan{CarloanID: "L1", CreatedAt: day(2024, time.April, 1)}
	obs := NewObservation(loan, day(2024, time.April, 16), 40)

	assert.Equal(t, 15, obs.LoanAgeDays)
	assert.Equal(t, 25, obs.TargetDuration)
	assert.Equal(t, "L1", obs.Loan.CarloanID)
}

func TestFeatureRow_Record(t *testing.T) {
	row := FeatureRow{
		ObservationDate: day(2024, time.June, 1),
		CarloanID:       "L1",
		BorrowerID:      "D1",
		Event:           EventDefault,
		Duration:        42,
	}

	record := row.Record()
	require.Len(t, record, len(DatasetColumns))
	for _, col := range DatasetColumns {
		assert.Contains(t, record, col)
	}
	assert.Equal(t, "L1", record["carloan_id"])
	assert.Equal(t, int(EventDefault), record["event"])
	assert.Equal(t, 42, record["duration"])
}

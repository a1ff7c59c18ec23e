package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/sampling"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testConfig samples the creation date only, so row contents are fully
// deterministic.
func testConfig(mode Mode) Config {
	return Config{
		Now:        day(2025, time.January, 1),
		CutoffDate: DefaultCutoffDate,
		FraudList:  DefaultFraudDenylist,
		Sampling: sampling.Config{
			PeriodDays:    30,
			MaxDraws:      0,
			TermLimitDays: 149,
			Seed:          42,
		},
		Mode: mode,
	}
}

func reimbursedLoan(id, borrower string, created time.Time, durationDays int) model.Loan {
	end := created.AddDate(0, 0, durationDays)
	return model.Loan{
		CarloanID: id, BorrowerID: borrower,
		CreatedAt:      created,
		ReimbursedDate: &end,
		EndDate:        &end,
		Duration:       durationDays,
		Outcome:        model.OutcomeReimbursed,
	}
}

func ongoingLoan(id, borrower string, created time.Time) model.Loan {
	return model.Loan{
		CarloanID: id, BorrowerID: borrower,
		CreatedAt: created,
		Outcome:   model.OutcomeOngoing,
		IsOngoing: true,
	}
}

func TestAssembler_Training(t *testing.T) {
	created := day(2024, time.April, 1)

	t.Run("joins statics and labels rows", func(t *testing.T) {
		snap := Snapshot{
			Loans: []model.Loan{reimbursedLoan("L1", "D1", created, 40)},
			Cars: []model.Car{{
				CarloanID: "L1", BorrowerID: "D1",
				LoanAmount: 12000, CarMake: "Toyota", CarModel: "Yaris",
				CarTransmissionType: "manual", CarSource: 2,
			}},
			Companies: []model.Company{{
				BorrowerID: "D1", RegistrationNumber: "B11111111",
				CountryCode: "ES", DaysSinceFounded: 800, OwnerAgeYears: 41,
			}},
		}

		rows, err := New(testConfig(Training)).Assemble(snap)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		row := rows[0]
		assert.Equal(t, "L1", row.CarloanID)
		assert.Equal(t, "D1", row.BorrowerID)
		assert.Equal(t, model.EventReimbursed, row.Event)
		assert.Equal(t, 40, row.Duration)
		assert.Equal(t, 0, row.LoanAgeDays)
		assert.Equal(t, created, row.ObservationDate)
		assert.Equal(t, 12000.0, row.LoanAmount)
		assert.Equal(t, "Toyota", row.CarMake)
		assert.Equal(t, "ES", row.CountryCode)
		assert.Equal(t, 800, row.DaysSinceFounded)
		assert.Equal(t, 41, row.OwnerAgeYears)
	})

	t.Run("missing statics zero-fill instead of dropping the row", func(t *testing.T) {
		snap := Snapshot{Loans: []model.Loan{reimbursedLoan("L1", "D1", created, 40)}}

		rows, err := New(testConfig(Training)).Assemble(snap)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Zero(t, rows[0].LoanAmount)
		assert.Empty(t, rows[0].CarMake)
		assert.Empty(t, rows[0].CountryCode)
	})

	t.Run("event classes follow the outcome mapping", func(t *testing.T) {
		end := created.AddDate(0, 0, 50)
		snap := Snapshot{Loans: []model.Loan{
			ongoingLoan("L1", "D1", created),
			reimbursedLoan("L2", "D1", created, 40),
			{
				CarloanID: "L3", BorrowerID: "D1", CreatedAt: created,
				TerminatedAt: &end, EndDate: &end, Duration: 50,
				Outcome: model.OutcomeMaturityReached, IsDefault: true,
			},
			{
				CarloanID: "L4", BorrowerID: "D1", CreatedAt: created,
				TerminatedAt: &end, EndDate: &end, Duration: 50,
				Outcome: model.OutcomeCollateralSold, IsDefault: true,
			},
		}}

		rows, err := New(testConfig(Training)).Assemble(snap)
		require.NoError(t, err)

		events := make(map[string]model.EventClass)
		for _, r := range rows {
			if r.LoanAgeDays == 0 {
				events[r.CarloanID] = r.Event
			}
		}
		assert.Equal(t, model.EventCensored, events["L1"])
		assert.Equal(t, model.EventReimbursed, events["L2"])
		assert.Equal(t, model.EventCensored, events["L3"])
		assert.Equal(t, model.EventDefault, events["L4"])
	})

	t.Run("residual default category is excluded", func(t *testing.T) {
		end := created.AddDate(0, 0, 50)
		snap := Snapshot{Loans: []model.Loan{
			{
				CarloanID: "L1", BorrowerID: "D1", CreatedAt: created,
				TerminatedAt: &end, EndDate: &end, Duration: 50,
				Outcome: model.OutcomeOtherDefault, IsDefault: true,
			},
			reimbursedLoan("L2", "D1", created, 40),
		}}

		rows, err := New(testConfig(Training)).Assemble(snap)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "L2", rows[0].CarloanID)
	})

	t.Run("loans created before the cutoff are excluded", func(t *testing.T) {
		snap := Snapshot{Loans: []model.Loan{
			reimbursedLoan("old", "D1", day(2024, time.February, 1), 40),
			reimbursedLoan("new", "D1", created, 40),
		}}

		rows, err := New(testConfig(Training)).Assemble(snap)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "new", rows[0].CarloanID)
	})

	t.Run("denylisted registrations are excluded", func(t *testing.T) {
		snap := Snapshot{
			Loans: []model.Loan{
				reimbursedLoan("L1", "D1", created, 40),
				reimbursedLoan("L2", "D2", created, 40),
			},
			Companies: []model.Company{
				{BorrowerID: "D1", RegistrationNumber: DefaultFraudDenylist[0]},
				{BorrowerID: "D2", RegistrationNumber: "B11111111"},
			},
		}

		rows, err := New(testConfig(Training)).Assemble(snap)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "L2", rows[0].CarloanID)
	})

	t.Run("dealer aggregates are attached to each row", func(t *testing.T) {
		snap := Snapshot{Loans: []model.Loan{
			reimbursedLoan("L1", "D1", day(2024, time.April, 1), 20),
			ongoingLoan("L2", "D1", day(2024, time.June, 1)),
		}}

		rows, err := New(testConfig(Training)).Assemble(snap)
		require.NoError(t, err)

		var l2 *model.FeatureRow
		for i := range rows {
			if rows[i].CarloanID == "L2" {
				l2 = &rows[i]
			}
		}
		require.NotNil(t, l2)
		// Only L1 was financed strictly before L2's creation date; L2
		// does not count itself.
		assert.Equal(t, 1, l2.DealerNCarsFinanced)
		assert.Equal(t, 1, l2.DealerNCarsReimbursed)
		assert.InDelta(t, 20.0, l2.DealerAvgReimbursementDays, 1e-9)
	})

	t.Run("same configuration reproduces the same rows", func(t *testing.T) {
		cfg := testConfig(Training)
		cfg.Sampling.MaxDraws = 3
		snap := Snapshot{Loans: []model.Loan{
			reimbursedLoan("L1", "D1", created, 120),
			ongoingLoan("L2", "D1", day(2024, time.June, 1)),
		}}

		first, err := New(cfg).Assemble(snap)
		require.NoError(t, err)
		second, err := New(cfg).Assemble(snap)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("emitted rows satisfy the column contract", func(t *testing.T) {
		snap := Snapshot{Loans: []model.Loan{reimbursedLoan("L1", "D1", created, 40)}}
		rows, err := New(testConfig(Training)).Assemble(snap)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		record := rows[0].Record()
		for _, col := range model.DatasetColumns {
			assert.Contains(t, record, col)
		}
	})
}

func TestAssembler_Prediction(t *testing.T) {
	snap := Snapshot{Loans: []model.Loan{
		reimbursedLoan("L1", "D1", day(2024, time.April, 1), 20),
		ongoingLoan("L2", "D1", day(2024, time.June, 1)),
	}}

	rows, err := New(testConfig(Prediction)).Assemble(snap)
	require.NoError(t, err)

	// Only the ongoing loan is scored, but the closed sibling still feeds
	// its dealer history.
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "L2", row.CarloanID)
	assert.Equal(t, day(2025, time.January, 1), row.ObservationDate)
	assert.Equal(t, model.EventCensored, row.Event)
	assert.Equal(t, 2, row.DealerNCarsFinanced)
	assert.Equal(t, 1, row.DealerNCarsReimbursed)
	assert.Equal(t, 1, row.DealerNLoanOngoing)
}

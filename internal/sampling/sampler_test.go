package sampling

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

func closedLoan(id string, created time.Time, durationDays int) model.Loan {
	end := created.AddDate(0, 0, durationDays)
	return model.Loan{
		CarloanID: id,
		CreatedAt: created,
		EndDate:   &end,
		Duration:  durationDays,
		Outcome:   model.OutcomeReimbursed,
	}
}

func ongoingLoan(id string, created time.Time) model.Loan {
	return model.Loan{
		CarloanID: id,
		CreatedAt: created,
		Outcome:   model.OutcomeOngoing,
		IsOngoing: true,
	}
}

func TestTraining(t *testing.T) {
	now := day(2025, time.January, 1)
	cfg := DefaultConfig()

	t.Run("every loan is observed at its creation date", func(t *testing.T) {
		loans := []model.Loan{
			closedLoan("L1", day(2024, time.April, 1), 10),
			closedLoan("L2", day(2024, time.May, 1), 100),
			ongoingLoan("L3", day(2024, time.June, 1)),
		}
		obs, err := Training(loans, now, cfg)
		require.NoError(t, err)

		atCreation := make(map[string]bool)
		for _, o := range obs {
			if o.ObservationDate.Equal(o.Loan.CreatedAt) {
				atCreation[o.Loan.CarloanID] = true
				assert.Equal(t, 0, o.LoanAgeDays)
			}
		}
		for _, l := range loans {
			assert.True(t, atCreation[l.CarloanID], "loan %s has no creation-date observation", l.CarloanID)
		}
	})

	t.Run("draw count is proportional to clipped duration", func(t *testing.T) {
		loans := []model.Loan{
			closedLoan("short", day(2024, time.April, 1), 10),
			closedLoan("medium", day(2024, time.April, 1), 65),
			closedLoan("long", day(2024, time.April, 1), 400),
		}
		obs, err := Training(loans, now, cfg)
		require.NoError(t, err)

		perLoan := make(map[string]int)
		for _, o := range obs {
			perLoan[o.Loan.CarloanID]++
		}
		// 10 days: creation draw only. 65 days: two extra draws. 400 days:
		// clipped to the term limit, extra draws capped by MaxDraws.
		assert.Equal(t, 1, perLoan["short"])
		assert.Equal(t, 3, perLoan["medium"])
		assert.Equal(t, 1+cfg.MaxDraws, perLoan["long"])
	})

	t.Run("random draws stay within the clipped duration", func(t *testing.T) {
		loans := []model.Loan{closedLoan("L1", day(2024, time.April, 1), 65)}
		obs, err := Training(loans, now, cfg)
		require.NoError(t, err)

		for _, o := range obs {
			assert.False(t, o.ObservationDate.Before(o.Loan.CreatedAt))
			assert.True(t, o.ObservationDate.Before(o.Loan.CreatedAt.AddDate(0, 0, 65)))
		}
	})

	t.Run("ongoing loans use elapsed time as duration", func(t *testing.T) {
		created := day(2024, time.December, 1)
		obs, err := Training([]model.Loan{ongoingLoan("L1", created)}, now, cfg)
		require.NoError(t, err)
		require.NotEmpty(t, obs)
		// 31 days elapsed: one creation draw plus one random draw.
		assert.Len(t, obs, 2)
		assert.Equal(t, 31, obs[0].TargetDuration+obs[0].LoanAgeDays)
	})

	t.Run("same seed reproduces the same observations", func(t *testing.T) {
		loans := []model.Loan{
			closedLoan("L1", day(2024, time.April, 1), 120),
			closedLoan("L2", day(2024, time.May, 1), 90),
		}
		first, err := Training(loans, now, cfg)
		require.NoError(t, err)
		second, err := Training(loans, now, cfg)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("max draws is clamped to the population maximum", func(t *testing.T) {
		loans := []model.Loan{closedLoan("L1", day(2024, time.April, 1), 10)}
		cfg := cfg
		cfg.MaxDraws = 10
		obs, err := Training(loans, now, cfg)
		require.NoError(t, err)
		assert.Len(t, obs, 1)
	})

	t.Run("output is sorted by loan and observation date", func(t *testing.T) {
		loans := []model.Loan{
			closedLoan("L2", day(2024, time.April, 1), 120),
			closedLoan("L1", day(2024, time.May, 1), 120),
		}
		obs, err := Training(loans, now, cfg)
		require.NoError(t, err)
		for i := 1; i < len(obs); i++ {
			prev, cur := obs[i-1], obs[i]
			if prev.Loan.CarloanID == cur.Loan.CarloanID {
				assert.False(t, cur.ObservationDate.Before(prev.ObservationDate))
			} else {
				assert.Less(t, prev.Loan.CarloanID, cur.Loan.CarloanID)
			}
		}
	})

	t.Run("invalid period is rejected", func(t *testing.T) {
		cfg := cfg
		cfg.PeriodDays = 0
		_, err := Training([]model.Loan{ongoingLoan("L1", now)}, now, cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})

	t.Run("negative max draws is rejected", func(t *testing.T) {
		cfg := cfg
		cfg.MaxDraws = -1
		_, err := Training([]model.Loan{ongoingLoan("L1", now)}, now, cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})
}

func TestPrediction(t *testing.T) {
	now := day(2025, time.January, 1)
	loans := []model.Loan{
		ongoingLoan("L2", day(2024, time.December, 2)),
		ongoingLoan("L1", day(2024, time.November, 2)),
		closedLoan("L3", day(2024, time.June, 1), 50),
	}

	obs := Prediction(loans, now)
	require.Len(t, obs, 3)

	// Every loan, closed ones included, is observed at the current time.
	assert.Equal(t, "L1", obs[0].Loan.CarloanID)
	assert.Equal(t, "L2", obs[1].Loan.CarloanID)
	assert.Equal(t, "L3", obs[2].Loan.CarloanID)
	for _, o := range obs {
		assert.Equal(t, now, o.ObservationDate)
		assert.Equal(t, model.DaysBetween(o.Loan.CreatedAt, now), o.LoanAgeDays)
	}
}

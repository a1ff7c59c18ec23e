// Package sampling draws observation dates for loans. Training mode samples
// several as-of dates per loan, proportional to loan length; prediction mode
// observes every loan at the current time.
package sampling

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/common"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
)

// Config holds the sampling tunables.
type Config struct {
	// PeriodDays is the sampling granularity: one draw per full period of
	// clipped loan duration.
	PeriodDays int
	// MaxDraws caps the number of random draws per loan, on top of the
	// mandatory creation-date observation.
	MaxDraws int
	// TermLimitDays is the contractual term limit used to clip durations
	// before sizing the draw count.
	TermLimitDays int
	// Seed makes the random offsets reproducible.
	Seed int64
}

// DefaultConfig returns the default sampling configuration.
func DefaultConfig() Config {
	return Config{
		PeriodDays:    30,
		MaxDraws:      3,
		TermLimitDays: 149,
		Seed:          42,
	}
}

// Training draws observation dates for every loan. Draw 0 is mandatory and
// observes the loan at its creation date, guaranteeing one leak-free zero-age
// sample per loan. Draw k>=1 exists for loans with at least k full sampling
// periods of clipped duration and picks a uniform random day offset within
// the clipped duration. Ongoing loans substitute the elapsed time since
// creation for their unknown duration. The result is sorted by
// (carloan_id, observation_date).
func Training(loans []model.Loan, now time.Time, cfg Config) ([]model.Observation, error) {
	if cfg.PeriodDays <= 0 {
		return nil, fmt.Errorf("%w: sampling period must be positive, got %d",
			common.ErrInvalidConfig, cfg.PeriodDays)
	}
	if cfg.MaxDraws < 0 {
		return nil, fmt.Errorf("%w: max draws must not be negative, got %d",
			common.ErrInvalidConfig, cfg.MaxDraws)
	}

	durations := make([]int, len(loans))
	clipped := make([]int, len(loans))
	draws := make([]int, len(loans))
	popMax := 0
	for i, l := range loans {
		durations[i] = l.DurationAsOf(now)
		clipped[i] = durations[i]
		if clipped[i] > cfg.TermLimitDays {
			clipped[i] = cfg.TermLimitDays
		}
		if clipped[i] < 0 {
			clipped[i] = 0
		}
		draws[i] = clipped[i] / cfg.PeriodDays
		if draws[i] > popMax {
			popMax = draws[i]
		}
	}

	// A max-draw setting beyond what the population supports is clamped,
	// not an error.
	maxDraw := cfg.MaxDraws
	if popMax < maxDraw {
		slog.Debug("Clamping max draws to population maximum",
			"configured", cfg.MaxDraws, "population_max", popMax)
		maxDraw = popMax
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	var obs []model.Observation
	for draw := 0; draw <= maxDraw; draw++ {
		for i, l := range loans {
			if draw == 0 {
				obs = append(obs, model.NewObservation(l, l.CreatedAt, durations[i]))
				continue
			}
			if draws[i] < draw {
				continue
			}
			offset := rng.Intn(clipped[i])
			date := l.CreatedAt.AddDate(0, 0, offset)
			obs = append(obs, model.NewObservation(l, date, durations[i]))
		}
	}

	sortObservations(obs)
	return obs, nil
}

// Prediction observes every loan at the current time. Closed loans are kept:
// they are needed to compute dealer-level aggregates for their ongoing
// siblings, and are filtered out downstream after feature computation.
func Prediction(loans []model.Loan, now time.Time) []model.Observation {
	obs := make([]model.Observation, 0, len(loans))
	for _, l := range loans {
		obs = append(obs, model.NewObservation(l, now, model.DaysBetween(l.CreatedAt, now)))
	}
	sortObservations(obs)
	return obs
}

func sortObservations(obs []model.Observation) {
	sort.SliceStable(obs, func(i, j int) bool {
		if obs[i].Loan.CarloanID != obs[j].Loan.CarloanID {
			return obs[i].Loan.CarloanID < obs[j].Loan.CarloanID
		}
		return obs[i].ObservationDate.Before(obs[j].ObservationDate)
	})
}

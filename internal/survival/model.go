// Package survival defines the model boundary for the multi-event survival
// estimator and provides a baseline implementation plus artifact handling.
// The estimator itself is opaque to the pipeline: it is anything honoring
// the fit / predict-cumulative-incidence contract.
package survival

import (
	"fmt"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/common"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
)

// Labels holds the target columns split out of the feature table: the
// 3-class event code and the duration in days.
type Labels struct {
	Event    []model.EventClass
	Duration []int
}

// Incidence is the cumulative incidence output, indexed as
// [sample][event class][time step].
type Incidence [][][]float64

// Model is the survival estimator contract.
type Model interface {
	// Fit trains the estimator on the feature table and its labels.
	Fit(X []model.FeatureRow, y Labels) error
	// PredictCumulativeIncidence returns one incidence curve per sample,
	// event class and time-grid step.
	PredictCumulativeIncidence(X []model.FeatureRow) (Incidence, error)
	// TimeGrid returns the time steps, in days, of the incidence curves.
	TimeGrid() []int
}

// MakeLabels extracts the event and duration columns from assembled rows.
func MakeLabels(rows []model.FeatureRow) Labels {
	y := Labels{
		Event:    make([]model.EventClass, len(rows)),
		Duration: make([]int, len(rows)),
	}
	for i, r := range rows {
		y.Event[i] = r.Event
		y.Duration[i] = r.Duration
	}
	return y
}

// NEvents is the size of the event class space (censored, reimbursed,
// default).
const NEvents = 3

func checkFitInputs(X []model.FeatureRow, y Labels) error {
	if len(X) == 0 {
		return fmt.Errorf("%w: empty feature table", common.ErrModelBoundary)
	}
	if len(y.Event) != len(X) || len(y.Duration) != len(X) {
		return fmt.Errorf("%w: got %d rows, %d events and %d durations",
			common.ErrModelBoundary, len(X), len(y.Event), len(y.Duration))
	}
	for i, e := range y.Event {
		if e < 0 || int(e) >= NEvents {
			return fmt.Errorf("%w: event class %d at row %d is out of range",
				common.ErrModelBoundary, e, i)
		}
	}
	return nil
}

package survival

import (
	"fmt"
	"sort"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/common"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
)

// EmpiricalIncidence is a covariate-free baseline estimator: the cumulative
// incidence of each event class is the empirical fraction of training
// samples resolved with that class by each time step. Every sample receives
// the same population curve. It stands in for the gradient-boosting
// estimator wherever a model honoring the boundary contract is needed.
type EmpiricalIncidence struct {
	ModelName string
	Grid      []int
	Curves    [][]float64 // [event class][time step]
	NSamples  int
	fitted    bool
}

// NewEmpiricalIncidence creates an unfitted baseline estimator.
func NewEmpiricalIncidence(name string) *EmpiricalIncidence {
	return &EmpiricalIncidence{ModelName: name}
}

// Fit computes the per-class empirical incidence over the observed duration
// grid.
func (m *EmpiricalIncidence) Fit(X []model.FeatureRow, y Labels) error {
	if err := checkFitInputs(X, y); err != nil {
		return err
	}

	gridSet := make(map[int]bool, len(y.Duration))
	for _, d := range y.Duration {
		if d < 0 {
			d = 0
		}
		gridSet[d] = true
	}
	grid := make([]int, 0, len(gridSet))
	for d := range gridSet {
		grid = append(grid, d)
	}
	sort.Ints(grid)

	curves := make([][]float64, NEvents)
	n := float64(len(y.Event))
	for e := range curves {
		curves[e] = make([]float64, len(grid))
		for ti, t := range grid {
			resolved := 0
			for i, event := range y.Event {
				d := y.Duration[i]
				if d < 0 {
					d = 0
				}
				if int(event) == e && d <= t {
					resolved++
				}
			}
			curves[e][ti] = float64(resolved) / n
		}
	}

	m.Grid = grid
	m.Curves = curves
	m.NSamples = len(X)
	m.fitted = true
	return nil
}

// PredictCumulativeIncidence returns the fitted population curve for every
// sample.
func (m *EmpiricalIncidence) PredictCumulativeIncidence(X []model.FeatureRow) (Incidence, error) {
	if !m.fitted {
		return nil, common.ErrNotFitted
	}
	if len(X) == 0 {
		return nil, fmt.Errorf("%w: empty feature table", common.ErrModelBoundary)
	}

	out := make(Incidence, len(X))
	for i := range X {
		sample := make([][]float64, NEvents)
		for e := range sample {
			sample[e] = append([]float64(nil), m.Curves[e]...)
		}
		out[i] = sample
	}
	return out, nil
}

// TimeGrid returns the fitted time steps in days.
func (m *EmpiricalIncidence) TimeGrid() []int {
	return m.Grid
}

// HorizonIndex locates the time-grid step for a horizon in days: the first
// step at or past the horizon, clamped to the last step.
func HorizonIndex(grid []int, horizon int) int {
	i := sort.SearchInts(grid, horizon)
	if i >= len(grid) {
		i = len(grid) - 1
	}
	return i
}

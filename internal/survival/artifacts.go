package survival

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/common"
)

// RunFolderFormat names training run directories so they sort
// chronologically.
const RunFolderFormat = "2006-01-02_15_04_05"

// Artifact is the serialized form of a trained baseline model.
type Artifact struct {
	TrainedAt    time.Time   `json:"trained_at"`
	ModelName    string      `json:"model_name"`
	ModelVersion string      `json:"model_version"`
	TimeGrid     []int       `json:"time_grid"`
	Curves       [][]float64 `json:"curves"`
	NSamples     int         `json:"n_samples"`
}

// SaveModel writes a fitted model under root/training_run_<timestamp>/ and
// returns the run directory.
func SaveModel(root string, m *EmpiricalIncidence, version string, now time.Time) (string, error) {
	if !m.fitted {
		return "", common.ErrNotFitted
	}

	runDir := filepath.Join(root, "training_run_"+now.Format(RunFolderFormat))
	if err := os.MkdirAll(runDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	artifact := Artifact{
		TrainedAt:    now,
		ModelName:    m.ModelName,
		ModelVersion: version,
		TimeGrid:     m.Grid,
		Curves:       m.Curves,
		NSamples:     m.NSamples,
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode model: %w", err)
	}

	path := filepath.Join(runDir, "model.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write model artifact: %w", err)
	}

	return runDir, nil
}

// LoadLatest loads the model from the most recent training run under root.
func LoadLatest(root string) (*EmpiricalIncidence, *Artifact, error) {
	runs, err := filepath.Glob(filepath.Join(root, "training_run_*"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list training runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, nil, fmt.Errorf("%w: no training run under %s", common.ErrNotFound, root)
	}
	sort.Strings(runs)
	latest := runs[len(runs)-1]

	data, err := os.ReadFile(filepath.Join(latest, "model.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}

	m := &EmpiricalIncidence{
		ModelName: artifact.ModelName,
		Grid:      artifact.TimeGrid,
		Curves:    artifact.Curves,
		NSamples:  artifact.NSamples,
		fitted:    true,
	}
	return m, &artifact, nil
}

package model

import (
	"time"
)

// Prediction is one scored ongoing loan from a batch prediction run.
type Prediction struct {
	Date               time.Time
	PredictionID       string
	BatchID            string
	ModelName          string
	ModelVersion       string
	LoanID             string
	DefaultProbability float64
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrEmptySlice     = errors.New("slice cannot be empty")
	ErrInvalidRow     = errors.New("invalid feature row")
	ErrInvalidPredict = errors.New("invalid prediction")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateFeatureRows validates a slice of feature rows.
func validateFeatureRows(rows []model.FeatureRow) error {
	if rows == nil {
		return fmt.Errorf("%w: rows", ErrNilParameter)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: rows", ErrEmptySlice)
	}
	for i, row := range rows {
		if row.CarloanID == "" {
			return fmt.Errorf("%w: missing carloan_id at index %d", ErrInvalidRow, i)
		}
		if row.ObservationDate.IsZero() {
			return fmt.Errorf("%w: missing observation date at index %d", ErrInvalidRow, i)
		}
	}
	return nil
}

// validatePredictions validates a slice of predictions.
func validatePredictions(predictions []model.Prediction) error {
	if predictions == nil {
		return fmt.Errorf("%w: predictions", ErrNilParameter)
	}
	if len(predictions) == 0 {
		return fmt.Errorf("%w: predictions", ErrEmptySlice)
	}
	for i, p := range predictions {
		if p.PredictionID == "" {
			return fmt.Errorf("%w: missing prediction_id at index %d", ErrInvalidPredict, i)
		}
		if p.LoanID == "" {
			return fmt.Errorf("%w: missing loan_id at index %d", ErrInvalidPredict, i)
		}
	}
	return nil
}

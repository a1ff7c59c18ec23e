// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input table errors.
	ErrSchemaViolation   = errors.New("schema violation")
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// Model boundary errors.
	ErrModelBoundary = errors.New("model boundary violation")
	ErrNotFitted     = errors.New("model is not fitted")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")

	// Artifact errors.
	ErrNotFound = errors.New("not found")
)

// DuplicateIdentityError reports a supposedly-unique id appearing more than once.
type DuplicateIdentityError struct {
	Table      string
	Column     string
	Duplicates int
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("%s in %s must be unique: got %d duplicates", e.Column, e.Table, e.Duplicates)
}

func (e *DuplicateIdentityError) Unwrap() error {
	return ErrDuplicateIdentity
}

// NewDuplicateIdentityError creates a duplicate identity error for a table.
func NewDuplicateIdentityError(table, column string, duplicates int) error {
	return &DuplicateIdentityError{Table: table, Column: column, Duplicates: duplicates}
}

// SchemaViolationError reports expected columns absent from an input table.
type SchemaViolationError struct {
	Table   string
	Missing []string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("table %s is missing expected columns %v", e.Table, e.Missing)
}

func (e *SchemaViolationError) Unwrap() error {
	return ErrSchemaViolation
}

// NewSchemaViolationError creates a schema violation error for a table.
func NewSchemaViolationError(table string, missing []string) error {
	return &SchemaViolationError{Table: table, Missing: missing}
}

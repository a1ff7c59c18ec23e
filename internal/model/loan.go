// Package model defines the core data structures for the risk pipeline.
package model

import (
	"time"
)

// Outcome is the resolved terminal classification of a loan.
type Outcome string

// The seven-way outcome enumeration. Every resolved loan belongs to exactly
// one category.
const (
	OutcomeOngoing         Outcome = "0 - Ongoing"
	OutcomeReimbursed      Outcome = "1 - Reimbursed in time"
	OutcomeMaturityReached Outcome = "2 - Maturity reached"
	OutcomeCollateralSold  Outcome = "3 - Collateral sold"
	OutcomeDDOverdue       Outcome = "4 - Due Diligence overdue"
	OutcomeAuditOverdue    Outcome = "5 - Audit overdue"
	OutcomeOtherDefault    Outcome = "6 - Other default"
)

// AllOutcomes lists every outcome category.
var AllOutcomes = []Outcome{
	OutcomeOngoing,
	OutcomeReimbursed,
	OutcomeMaturityReached,
	OutcomeCollateralSold,
	OutcomeDDOverdue,
	OutcomeAuditOverdue,
	OutcomeOtherDefault,
}

// EventClass is the 3-class event code consumed by the survival model.
type EventClass int

// Event classes. Censored covers both ongoing loans and maturity-reached
// loans, which carry no usable default signal.
const (
	EventCensored   EventClass = 0
	EventReimbursed EventClass = 1
	EventDefault    EventClass = 2
)

// EventClass collapses the seven-way outcome into the 3-class event code.
// The second return value is false for OutcomeOtherDefault, which is excluded
// from the label space entirely, and for unknown categories.
func (o Outcome) EventClass() (EventClass, bool) {
	switch o {
	case OutcomeOngoing, OutcomeMaturityReached:
		return EventCensored, true
	case OutcomeReimbursed:
		return EventReimbursed, true
	case OutcomeCollateralSold, OutcomeAuditOverdue, OutcomeDDOverdue:
		return EventDefault, true
	}
	return 0, false
}

// IsDefault reports whether the outcome is one of the default categories.
func (o Outcome) IsDefault() bool {
	switch o {
	case OutcomeMaturityReached, OutcomeCollateralSold, OutcomeDDOverdue,
		OutcomeAuditOverdue, OutcomeOtherDefault:
		return true
	}
	return false
}

// Loan state codes in the warehouse.
const (
	LoanStateOngoing    = 0
	LoanStateFailure    = 80
	LoanStateReimbursed = 100
)

// Loan is one resolved loan, immutable within a feature-build run.
type Loan struct {
	CreatedAt      time.Time
	MaturityDate   time.Time
	TerminatedAt   *time.Time
	ReimbursedDate *time.Time
	EndDate        *time.Time
	CarloanID      string
	BorrowerID     string
	CollateralID   string
	RawReason      string
	Outcome        Outcome
	State          int
	Duration       int
	IsDefault      bool
	IsOngoing      bool
}

// DurationAsOf returns the loan's effective duration in days. Closed loans
// report their resolved duration; ongoing loans report the elapsed time since
// creation, which is the only duration knowable at asOf.
func (l *Loan) DurationAsOf(asOf time.Time) int {
	if l.IsOngoing {
		return DaysBetween(l.CreatedAt, asOf)
	}
	return l.Duration
}

// DaysBetween returns the number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

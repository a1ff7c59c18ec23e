package model

import (
	"time"
)

// Observation ties one loan to one as-of date. Observations are created fresh
// per feature-build run and never persisted upstream; they are the unit of
// the final dataset's rows. Multiple observations of the same loan are
// independent samples sharing the loan's static attributes.
type Observation struct {
	ObservationDate time.Time
	Loan            Loan
	LoanAgeDays     int
	TargetDuration  int
}

// NewObservation derives the age and remaining-duration target for a loan
// observed at obsDate. duration is the loan's effective duration in days
// (elapsed-so-far for ongoing loans).
func NewObservation(loan Loan, obsDate time.Time, duration int) Observation {
	age := DaysBetween(loan.CreatedAt, obsDate)
	return Observation{
		Loan:            loan,
		ObservationDate: obsDate,
		LoanAgeDays:     age,
		TargetDuration:  duration - age,
	}
}

package model

import (
	"time"
)

// Raw warehouse rows, as returned by the table adapters before resolution.
// Column names are documented on each field; adapters fail fast when a column
// is absent.

// LoanStatusRow is one row of the car_loan_status table.
type LoanStatusRow struct {
	CreatedAt      time.Time
	MaturityDate   time.Time
	ReimbursedDate *time.Time
	CarloanID      string
	CollateralID   string
	State          int
}

// CarLoanRow is one row of the cars_carloans table.
type CarLoanRow struct {
	TerminatedAt      *time.Time
	CarloanID         string
	BorrowerID        string
	CollateralID      string
	TerminationReason string
}

// ReimbursementPatch is one row of the secondary patch source used to fill
// reimbursement dates missing from the warehouse.
type ReimbursementPatch struct {
	ReimbursedDate time.Time
	CarloanID      string
}

// AuditRow is one row of the cars_carcollateralaudits table.
type AuditRow struct {
	ScheduledFrom    time.Time
	DueDate          time.Time
	CancellationDate *time.Time
	SubmissionDate   *time.Time
	ApprovalDate     *time.Time
	ApprovalResult   *bool
	AuditID          string
	CarloanID        string
	CollateralID     string
	State            int
}

package model

import (
	"time"
)

// Audit state codes in the warehouse. The state only reflects the last
// transition and can change over time.
const (
	AuditStateCreated   = 0
	AuditStateScheduled = 1
	AuditStateSubmitted = 20
	AuditStateApproved  = 100
	AuditStateRejected  = 200
	AuditStateCancelled = 300
)

// Audit is one normalized collateral audit. The boolean flags are derived
// from the row's own fields and never depend on a query date; the
// time-relative overdue predicate lives in the ledger package.
type Audit struct {
	ScheduledFrom    time.Time
	DueDate          time.Time
	DPD14Date        time.Time
	CancellationDate *time.Time
	SubmissionDate   *time.Time
	ApprovalDate     *time.Time
	EndDate          *time.Time
	AuditID          string
	CarloanID        string
	CollateralID     string
	State            int
	Approved         bool
	Rejected         bool
	Cancelled        bool
}

// DueDiligence is one normalized due diligence record. Each collateral has at
// most one. It supplies the car source attribute and the default-reason
// classification; it is not aggregated into the core feature set.
type DueDiligence struct {
	CreatedAt         time.Time
	DueDate           *time.Time
	SubmissionTakenAt *time.Time
	DDID              string
	CollateralID      string
	CarSource         int
	State             int
	Approved          bool
}

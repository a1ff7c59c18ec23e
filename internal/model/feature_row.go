package model

import (
	"time"
)

// DatasetColumns is the declared column contract of the assembled feature
// table. Any row missing one of these is a contract violation.
var DatasetColumns = []string{
	"carloan_id",
	"borrower_id",
	"event",
	"duration",
	"loan_age_days",
	"loan_amount",
	"car_make",
	"car_model",
	"car_transmission_type",
	"car_source",
	"country_code",
	"n_days_since_founded",
	"owner_age_year",
	"loan_n_past_audits",
	"loan_n_audit_overdue",
	"loan_n_audit_approved",
	"loan_n_audit_rejected",
	"loan_ratio_audit_overdue",
	"loan_ratio_audit_approved",
	"loan_ratio_audit_rejected",
	"dealer_n_past_audits",
	"dealer_n_audit_overdue",
	"dealer_n_audit_approved",
	"dealer_n_audit_rejected",
	"dealer_ratio_audit_overdue",
	"dealer_ratio_audit_approved",
	"dealer_ratio_audit_rejected",
	"dealer_n_cars_financed",
	"dealer_avg_reimbursement_days",
	"dealer_n_cars_reimbursed",
	"dealer_n_maturity_reached",
	"dealer_n_cars_sold_np",
	"dealer_n_loan_ongoing",
	"dealer_ratio_reimbursed",
	"dealer_ratio_maturity_reached",
	"dealer_ratio_cars_sold_np",
}

// LabelColumns are the target columns split out for model fitting.
var LabelColumns = []string{"event", "duration"}

// FeatureRow is one row of the assembled dataset: identifiers, labels, static
// covariates and all loan- and dealer-level aggregates for a single
// (loan, observation date) pair.
type FeatureRow struct {
	ObservationDate time.Time
	CarloanID       string
	BorrowerID      string
	CarMake         string
	CarModel        string
	CarTransmission string
	CountryCode     string

	Event       EventClass
	Duration    int
	LoanAgeDays int

	LoanAmount       float64
	CarSource        int
	DaysSinceFounded int
	OwnerAgeYears    int

	LoanNPastAudits        int
	LoanNAuditOverdue      int
	LoanNAuditApproved     int
	LoanNAuditRejected     int
	LoanRatioAuditOverdue  float64
	LoanRatioAuditApproved float64
	LoanRatioAuditRejected float64

	DealerNPastAudits        int
	DealerNAuditOverdue      int
	DealerNAuditApproved     int
	DealerNAuditRejected     int
	DealerRatioAuditOverdue  float64
	DealerRatioAuditApproved float64
	DealerRatioAuditRejected float64

	DealerNCarsFinanced        int
	DealerAvgReimbursementDays float64
	DealerNCarsReimbursed      int
	DealerNMaturityReached     int
	DealerNCarsSoldNP          int
	DealerNLoanOngoing         int
	DealerRatioReimbursed      float64
	DealerRatioMaturityReached float64
	DealerRatioCarsSoldNP      float64
}

// Record returns the row keyed by dataset column name. Used to enforce the
// column contract and to persist rows with a declared column-to-type mapping.
func (r *FeatureRow) Record() map[string]any {
	return map[string]any{
		"carloan_id":                    r.CarloanID,
		"borrower_id":                   r.BorrowerID,
		"event":                         int(r.Event),
		"duration":                      r.Duration,
		"loan_age_days":                 r.LoanAgeDays,
		"loan_amount":                   r.LoanAmount,
		"car_make":                      r.CarMake,
		"car_model":                     r.CarModel,
		"car_transmission_type":         r.CarTransmission,
		"car_source":                    r.CarSource,
		"country_code":                  r.CountryCode,
		"n_days_since_founded":          r.DaysSinceFounded,
		"owner_age_year":                r.OwnerAgeYears,
		"loan_n_past_audits":            r.LoanNPastAudits,
		"loan_n_audit_overdue":          r.LoanNAuditOverdue,
		"loan_n_audit_approved":         r.LoanNAuditApproved,
		"loan_n_audit_rejected":         r.LoanNAuditRejected,
		"loan_ratio_audit_overdue":      r.LoanRatioAuditOverdue,
		"loan_ratio_audit_approved":     r.LoanRatioAuditApproved,
		"loan_ratio_audit_rejected":     r.LoanRatioAuditRejected,
		"dealer_n_past_audits":          r.DealerNPastAudits,
		"dealer_n_audit_overdue":        r.DealerNAuditOverdue,
		"dealer_n_audit_approved":       r.DealerNAuditApproved,
		"dealer_n_audit_rejected":       r.DealerNAuditRejected,
		"dealer_ratio_audit_overdue":    r.DealerRatioAuditOverdue,
		"dealer_ratio_audit_approved":   r.DealerRatioAuditApproved,
		"dealer_ratio_audit_rejected":   r.DealerRatioAuditRejected,
		"dealer_n_cars_financed":        r.DealerNCarsFinanced,
		"dealer_avg_reimbursement_days": r.DealerAvgReimbursementDays,
		"dealer_n_cars_reimbursed":      r.DealerNCarsReimbursed,
		"dealer_n_maturity_reached":     r.DealerNMaturityReached,
		"dealer_n_cars_sold_np":         r.DealerNCarsSoldNP,
		"dealer_n_loan_ongoing":         r.DealerNLoanOngoing,
		"dealer_ratio_reimbursed":       r.DealerRatioReimbursed,
		"dealer_ratio_maturity_reached": r.DealerRatioMaturityReached,
		"dealer_ratio_cars_sold_np":     r.DealerRatioCarsSoldNP,
	}
}

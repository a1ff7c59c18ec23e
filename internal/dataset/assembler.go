// Package dataset assembles the flat feature table consumed by the survival
// model: sampled observations joined with static attributes and time-aware
// aggregates, with the business filters applied.
package dataset

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/aggregate"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/common"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/sampling"
)

// Mode selects between the training panel and the prediction snapshot.
type Mode int

// Assembly modes.
const (
	Training Mode = iota
	Prediction
)

// DefaultFraudDenylist lists company registration numbers excluded from
// every build. KYC has been tightened since these customers were onboarded;
// they do not represent the population the model predicts for.
var DefaultFraudDenylist = []string{
	"A41282393",
	"B01747534",
	"B90059809",
	"B85866655",
	"B90343799",
	"B39833975",
	"B85573715",
	"B42845503",
	"B90031667",
	"B61482477",
	"B91135376",
	"B28462778",
	"B42984351",
	"B93128452",
	"B98651433",
	"B39875968",
	"B16706012",
	"B74401696",
	"B42984369",
}

// DefaultCutoffDate excludes loans created before the current underwriting
// regime.
var DefaultCutoffDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// Config holds the assembler settings.
type Config struct {
	Now        time.Time
	CutoffDate time.Time
	FraudList  []string
	Sampling   sampling.Config
	Mode       Mode
	Verbose    bool
}

// Snapshot is the read-only input of one build: resolved loans, normalized
// audits and the static attribute tables.
type Snapshot struct {
	Loans     []model.Loan
	Audits    []model.Audit
	Cars      []model.Car
	Companies []model.Company
}

// Assembler turns a snapshot into feature rows through an eager sequence of
// pure stages: sample observations, compute aggregates, join statics, filter
// and label.
type Assembler struct {
	cfg Config
}

// New creates an assembler for the given configuration.
func New(cfg Config) *Assembler {
	return &Assembler{cfg: cfg}
}

// Assemble builds the feature table. Rows are never lost for missing static
// data (left joins with zero values); rows are dropped for the declared
// business filters only, with counts logged.
func (a *Assembler) Assemble(snap Snapshot) ([]model.FeatureRow, error) {
	obs, err := a.observations(snap.Loans)
	if err != nil {
		return nil, fmt.Errorf("failed to sample observations: %w", err)
	}

	agg := aggregate.New(snap.Loans, snap.Audits)

	carByLoan := make(map[string]model.Car, len(snap.Cars))
	for _, c := range snap.Cars {
		carByLoan[c.CarloanID] = c
	}
	companyByBorrower := make(map[string]model.Company, len(snap.Companies))
	for _, c := range snap.Companies {
		companyByBorrower[c.BorrowerID] = c
	}

	fraud := make(map[string]bool, len(a.cfg.FraudList))
	for _, id := range a.cfg.FraudList {
		fraud[id] = true
	}

	var bar *progressbar.ProgressBar
	if a.cfg.Verbose {
		bar = progressbar.Default(int64(len(obs)), "aggregating")
	}

	var (
		rows           []model.FeatureRow
		droppedClosed  int
		droppedOutcome int
		droppedCutoff  int
		droppedFraud   int
	)

	for _, o := range obs {
		if bar != nil {
			_ = bar.Add(1)
		}

		// Closed loans ride through sampling so that dealer-level
		// aggregates see them; only ongoing loans are predicted.
		if a.cfg.Mode == Prediction && !o.Loan.IsOngoing {
			droppedClosed++
			continue
		}

		// The definition of default is unclear for the residual
		// category; it is excluded from the label space entirely.
		if o.Loan.Outcome == model.OutcomeOtherDefault {
			droppedOutcome++
			continue
		}
		if !o.Loan.CreatedAt.After(a.cfg.CutoffDate) {
			droppedCutoff++
			continue
		}

		company, hasCompany := companyByBorrower[o.Loan.BorrowerID]
		if hasCompany && fraud[company.RegistrationNumber] {
			droppedFraud++
			continue
		}

		event, ok := o.Loan.Outcome.EventClass()
		if !ok {
			droppedOutcome++
			continue
		}

		row := model.FeatureRow{
			ObservationDate: o.ObservationDate,
			CarloanID:       o.Loan.CarloanID,
			BorrowerID:      o.Loan.BorrowerID,
			Event:           event,
			Duration:        o.TargetDuration,
			LoanAgeDays:     o.LoanAgeDays,
		}

		if car, ok := carByLoan[o.Loan.CarloanID]; ok {
			row.LoanAmount = car.LoanAmount
			row.CarMake = car.CarMake
			row.CarModel = car.CarModel
			row.CarTransmission = car.CarTransmissionType
			row.CarSource = car.CarSource
		}
		if hasCompany {
			row.CountryCode = company.CountryCode
			row.DaysSinceFounded = company.DaysSinceFounded
			row.OwnerAgeYears = company.OwnerAgeYears
		}

		applyAggregates(&row, agg.Features(o))
		rows = append(rows, row)
	}

	slog.Info("Assembled feature dataset",
		"rows", len(rows),
		"observations", len(obs),
		"dropped_closed", droppedClosed,
		"dropped_other_default", droppedOutcome,
		"dropped_before_cutoff", droppedCutoff,
		"dropped_fraud", droppedFraud)

	if err := checkContract(rows); err != nil {
		return nil, err
	}

	return rows, nil
}

func (a *Assembler) observations(loans []model.Loan) ([]model.Observation, error) {
	if a.cfg.Mode == Prediction {
		return sampling.Prediction(loans, a.cfg.Now), nil
	}
	return sampling.Training(loans, a.cfg.Now, a.cfg.Sampling)
}

func applyAggregates(row *model.FeatureRow, feats aggregate.FeatureAggregates) {
	row.LoanNPastAudits = feats.LoanAudit.NPastAudits
	row.LoanNAuditOverdue = feats.LoanAudit.NOverdue
	row.LoanNAuditApproved = feats.LoanAudit.NApproved
	row.LoanNAuditRejected = feats.LoanAudit.NRejected
	row.LoanRatioAuditOverdue = feats.LoanAudit.RatioOverdue
	row.LoanRatioAuditApproved = feats.LoanAudit.RatioApproved
	row.LoanRatioAuditRejected = feats.LoanAudit.RatioRejected

	row.DealerNPastAudits = feats.DealerAudit.NPastAudits
	row.DealerNAuditOverdue = feats.DealerAudit.NOverdue
	row.DealerNAuditApproved = feats.DealerAudit.NApproved
	row.DealerNAuditRejected = feats.DealerAudit.NRejected
	row.DealerRatioAuditOverdue = feats.DealerAudit.RatioOverdue
	row.DealerRatioAuditApproved = feats.DealerAudit.RatioApproved
	row.DealerRatioAuditRejected = feats.DealerAudit.RatioRejected

	row.DealerNCarsFinanced = feats.DealerOutcome.NCarsFinanced
	row.DealerAvgReimbursementDays = feats.DealerOutcome.AvgReimbursementDays
	row.DealerNCarsReimbursed = feats.DealerOutcome.NCarsReimbursed
	row.DealerNMaturityReached = feats.DealerOutcome.NMaturityReached
	row.DealerNCarsSoldNP = feats.DealerOutcome.NCarsSoldNP
	row.DealerNLoanOngoing = feats.DealerOutcome.NLoanOngoing
	row.DealerRatioReimbursed = feats.DealerOutcome.RatioReimbursed
	row.DealerRatioMaturityReached = feats.DealerOutcome.RatioMaturityReached
	row.DealerRatioCarsSoldNP = feats.DealerOutcome.RatioCarsSoldNP
}

// checkContract verifies that every declared dataset column is present on
// the emitted rows.
func checkContract(rows []model.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}
	record := rows[0].Record()
	var missing []string
	for _, col := range model.DatasetColumns {
		if _, ok := record[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return common.NewSchemaViolationError("features", missing)
	}
	return nil
}

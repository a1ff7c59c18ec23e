package lifecycle

import (
	"log/slog"
	"sort"
	"time"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/common"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
)

// Resolver derives resolved loans from the raw status, loan and
// reimbursement-patch tables.
type Resolver struct {
	termLimitDays int
}

// NewResolver creates a resolver with the given term limit in days.
func NewResolver(termLimitDays int) *Resolver {
	return &Resolver{termLimitDays: termLimitDays}
}

// Resolve produces one loan per carloan_id. It reconciles reimbursement
// dates against the patch source, backfills missing termination dates,
// normalizes termination reasons and derives end date, duration and the
// outcome category. Duplicate carloan ids in the loan table abort the build.
func (r *Resolver) Resolve(
	status []model.LoanStatusRow,
	carLoans []model.CarLoanRow,
	patches []model.ReimbursementPatch,
) ([]model.Loan, error) {
	// First non-null reimbursement wins per carloan.
	patchDates := make(map[string]time.Time, len(patches))
	for _, p := range patches {
		if _, ok := patchDates[p.CarloanID]; !ok {
			patchDates[p.CarloanID] = p.ReimbursedDate
		}
	}

	byLoan := make(map[string]model.CarLoanRow, len(carLoans))
	duplicates := 0
	for _, cl := range carLoans {
		if _, ok := byLoan[cl.CarloanID]; ok {
			duplicates++
			continue
		}
		byLoan[cl.CarloanID] = cl
	}
	if duplicates > 0 {
		return nil, common.NewDuplicateIdentityError("cars_carloans", "carloan_id", duplicates)
	}

	seen := make(map[string]bool, len(status))
	droppedQuality := 0
	loans := make([]model.Loan, 0, len(status))

	for _, st := range status {
		// The status extract can repeat rows after the patch join; keep
		// the first occurrence, matching the warehouse extraction.
		if seen[st.CarloanID] {
			continue
		}
		seen[st.CarloanID] = true

		cl, ok := byLoan[st.CarloanID]
		if !ok {
			continue
		}

		reimbursed := st.ReimbursedDate
		if reimbursed == nil {
			if d, ok := patchDates[st.CarloanID]; ok {
				reimbursed = &d
			}
		}

		// Self-contradictory state: reimbursed status with no
		// reimbursement date. Dropped, not fatal.
		if st.State == model.LoanStateReimbursed && reimbursed == nil {
			droppedQuality++
			continue
		}

		terminatedAt := cl.TerminatedAt
		outcome, isDefault := ClassifyReason(cl.TerminationReason)
		if isDefault && terminatedAt == nil {
			// Terminated loans without a termination date fall back to
			// the warehouse maturity date.
			m := st.MaturityDate
			terminatedAt = &m
		}

		endDate := minDate(terminatedAt, reimbursed)

		loan := model.Loan{
			CarloanID:      st.CarloanID,
			BorrowerID:     cl.BorrowerID,
			CollateralID:   st.CollateralID,
			CreatedAt:      st.CreatedAt,
			MaturityDate:   st.CreatedAt.AddDate(0, 0, r.termLimitDays),
			TerminatedAt:   terminatedAt,
			ReimbursedDate: reimbursed,
			EndDate:        endDate,
			RawReason:      cl.TerminationReason,
			State:          st.State,
			IsDefault:      isDefault,
			IsOngoing:      terminatedAt == nil && reimbursed == nil,
		}

		if endDate != nil {
			loan.Duration = model.DaysBetween(loan.CreatedAt, *endDate)
		}

		switch {
		case loan.IsOngoing:
			loan.Outcome = model.OutcomeOngoing
		case !loan.IsDefault:
			loan.Outcome = model.OutcomeReimbursed
		default:
			loan.Outcome = outcome
		}

		loans = append(loans, loan)
	}

	if droppedQuality > 0 {
		slog.Warn("Dropped reimbursed-status loans without a reimbursement date",
			"count", droppedQuality)
	}

	sort.Slice(loans, func(i, j int) bool {
		return loans[i].CarloanID < loans[j].CarloanID
	})

	if dups := countDuplicateLoans(loans); dups > 0 {
		return nil, common.NewDuplicateIdentityError("loans", "carloan_id", dups)
	}

	return loans, nil
}

func countDuplicateLoans(loans []model.Loan) int {
	seen := make(map[string]bool, len(loans))
	dups := 0
	for _, l := range loans {
		if seen[l.CarloanID] {
			dups++
		}
		seen[l.CarloanID] = true
	}
	return dups
}

// minDate returns the earlier of two nullable dates, ignoring nils.
func minDate(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Before(*b):
		return a
	default:
		return b
	}
}

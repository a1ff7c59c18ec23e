// Package aggregate computes the time-aware loan- and dealer-level feature
// aggregates. Every aggregate is a pure function of (entity identity, as-of
// date, audit/loan history): facts dated after the as-of date never influence
// a feature value.
package aggregate

import (
	"sort"
	"time"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/ledger"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
)

// LoanAuditAggregates are the audit aggregates scoped to a single loan.
type LoanAuditAggregates struct {
	NPastAudits   int
	NOverdue      int
	NApproved     int
	NRejected     int
	RatioOverdue  float64
	RatioApproved float64
	RatioRejected float64
}

// DealerAuditAggregates are the audit aggregates pooled across every loan of
// the same borrower.
type DealerAuditAggregates struct {
	NPastAudits   int
	NOverdue      int
	NApproved     int
	NRejected     int
	RatioOverdue  float64
	RatioApproved float64
	RatioRejected float64
}

// DealerOutcomeAggregates are the historical-outcome aggregates pooled across
// every loan of the same borrower.
type DealerOutcomeAggregates struct {
	NCarsFinanced        int
	AvgReimbursementDays float64
	NCarsReimbursed      int
	NMaturityReached     int
	NCarsSoldNP          int
	NLoanOngoing         int
	RatioReimbursed      float64
	RatioMaturityReached float64
	RatioCarsSoldNP      float64
}

// FeatureAggregates bundles the three aggregate groups of one observation.
type FeatureAggregates struct {
	LoanAudit     LoanAuditAggregates
	DealerAudit   DealerAuditAggregates
	DealerOutcome DealerOutcomeAggregates
}

// Aggregator answers as-of aggregate queries against a read-only snapshot of
// loans and audits. The snapshot is partitioned once per loan and per
// borrower into date-sorted indexes, so each query is a binary search plus a
// bounded scan over one group instead of a pass over the full tables.
type Aggregator struct {
	auditsByLoan   map[string]*auditIndex
	auditsByDealer map[string]*auditIndex
	loansByDealer  map[string]*loanIndex
}

// New builds the group indexes from a snapshot. Audits whose loan is absent
// from the snapshot are ignored, matching the join semantics of the source
// tables.
func New(loans []model.Loan, audits []model.Audit) *Aggregator {
	dealerOf := make(map[string]string, len(loans))
	for _, l := range loans {
		dealerOf[l.CarloanID] = l.BorrowerID
	}

	byLoan := make(map[string][]model.Audit)
	byDealer := make(map[string][]model.Audit)
	for _, a := range audits {
		borrower, ok := dealerOf[a.CarloanID]
		if !ok {
			continue
		}
		byLoan[a.CarloanID] = append(byLoan[a.CarloanID], a)
		byDealer[borrower] = append(byDealer[borrower], a)
	}

	agg := &Aggregator{
		auditsByLoan:   make(map[string]*auditIndex, len(byLoan)),
		auditsByDealer: make(map[string]*auditIndex, len(byDealer)),
		loansByDealer:  make(map[string]*loanIndex),
	}
	for id, group := range byLoan {
		agg.auditsByLoan[id] = newAuditIndex(group)
	}
	for id, group := range byDealer {
		agg.auditsByDealer[id] = newAuditIndex(group)
	}

	dealerLoans := make(map[string][]model.Loan)
	for _, l := range loans {
		dealerLoans[l.BorrowerID] = append(dealerLoans[l.BorrowerID], l)
	}
	for id, group := range dealerLoans {
		agg.loansByDealer[id] = newLoanIndex(group)
	}

	return agg
}

// Features computes all three aggregate groups for one observation.
func (a *Aggregator) Features(obs model.Observation) FeatureAggregates {
	return FeatureAggregates{
		LoanAudit:     a.LoanAudit(obs.Loan.CarloanID, obs.ObservationDate),
		DealerAudit:   a.DealerAudit(obs.Loan.BorrowerID, obs.ObservationDate),
		DealerOutcome: a.DealerOutcome(obs.Loan.BorrowerID, obs.ObservationDate),
	}
}

// LoanAudit computes the loan-level audit aggregates as of the given date. A
// loan with no audits yields zero-filled aggregates.
func (a *Aggregator) LoanAudit(carloanID string, asOf time.Time) LoanAuditAggregates {
	idx, ok := a.auditsByLoan[carloanID]
	if !ok {
		return LoanAuditAggregates{}
	}

	// Loan-level past audits admit schedules on the observation date
	// itself; the dealer-level predicate is strict.
	nPast := idx.pastAudits(asOf, true)
	nOverdue := idx.overdue(asOf)
	nApproved, nRejected := idx.submittedBefore(asOf, false)

	return LoanAuditAggregates{
		NPastAudits:   nPast,
		NOverdue:      nOverdue,
		NApproved:     nApproved,
		NRejected:     nRejected,
		RatioOverdue:  ratio(nOverdue, nPast),
		RatioApproved: ratio(nApproved, nPast),
		RatioRejected: ratio(nRejected, nPast),
	}
}

// DealerAudit computes the audit aggregates pooled across all audits of any
// loan of the borrower, as of the given date.
func (a *Aggregator) DealerAudit(borrowerID string, asOf time.Time) DealerAuditAggregates {
	idx, ok := a.auditsByDealer[borrowerID]
	if !ok {
		return DealerAuditAggregates{}
	}

	nPast := idx.pastAudits(asOf, false)
	nOverdue := idx.overdue(asOf)
	nApproved, nRejected := idx.submittedBefore(asOf, true)

	return DealerAuditAggregates{
		NPastAudits:   nPast,
		NOverdue:      nOverdue,
		NApproved:     nApproved,
		NRejected:     nRejected,
		RatioOverdue:  ratio(nOverdue, nPast),
		RatioApproved: ratio(nApproved, nPast),
		RatioRejected: ratio(nRejected, nPast),
	}
}

// DealerOutcome computes the historical-outcome aggregates over all loans of
// the borrower, as of the given date.
func (a *Aggregator) DealerOutcome(borrowerID string, asOf time.Time) DealerOutcomeAggregates {
	idx, ok := a.loansByDealer[borrowerID]
	if !ok {
		return DealerOutcomeAggregates{}
	}
	return idx.outcomes(asOf)
}

// ratio divides two counts, resolving 0/0 to 0 rather than NaN.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// auditIndex holds one group of audits sorted three ways, with prefix sums
// over the date-independent parts of each predicate.
type auditIndex struct {
	schedDates     []time.Time
	schedCancelled []int // cancelled among the first i schedule-sorted audits
	dueDates       []time.Time
	dueUnresolved  []int // not submitted in time and not cancelled, due-sorted
	subSorted      []model.Audit
	subDates       []time.Time
	subApproved    []int
	subRejected    []int
}

func newAuditIndex(group []model.Audit) *auditIndex {
	idx := &auditIndex{}

	bySched := append([]model.Audit(nil), group...)
	sort.Slice(bySched, func(i, j int) bool {
		return bySched[i].ScheduledFrom.Before(bySched[j].ScheduledFrom)
	})
	idx.schedDates = make([]time.Time, len(bySched))
	idx.schedCancelled = make([]int, len(bySched)+1)
	for i, a := range bySched {
		idx.schedDates[i] = a.ScheduledFrom
		idx.schedCancelled[i+1] = idx.schedCancelled[i]
		if a.Cancelled {
			idx.schedCancelled[i+1]++
		}
	}

	byDue := append([]model.Audit(nil), group...)
	sort.Slice(byDue, func(i, j int) bool {
		return byDue[i].DueDate.Before(byDue[j].DueDate)
	})
	idx.dueDates = make([]time.Time, len(byDue))
	idx.dueUnresolved = make([]int, len(byDue)+1)
	for i, a := range byDue {
		idx.dueDates[i] = a.DueDate
		idx.dueUnresolved[i+1] = idx.dueUnresolved[i]
		if ledger.Unresolved(a) {
			idx.dueUnresolved[i+1]++
		}
	}

	for _, a := range group {
		if a.SubmissionDate != nil {
			idx.subSorted = append(idx.subSorted, a)
		}
	}
	sort.Slice(idx.subSorted, func(i, j int) bool {
		return idx.subSorted[i].SubmissionDate.Before(*idx.subSorted[j].SubmissionDate)
	})
	idx.subDates = make([]time.Time, len(idx.subSorted))
	idx.subApproved = make([]int, len(idx.subSorted)+1)
	idx.subRejected = make([]int, len(idx.subSorted)+1)
	for i, a := range idx.subSorted {
		idx.subDates[i] = *a.SubmissionDate
		idx.subApproved[i+1] = idx.subApproved[i]
		idx.subRejected[i+1] = idx.subRejected[i]
		if a.Approved {
			idx.subApproved[i+1]++
		}
		if a.Rejected {
			idx.subRejected[i+1]++
		}
	}

	return idx
}

// pastAudits counts audits whose schedule start is observable at asOf and
// that are not cancelled.
func (idx *auditIndex) pastAudits(asOf time.Time, inclusive bool) int {
	var n int
	if inclusive {
		n = countOnOrBefore(idx.schedDates, asOf)
	} else {
		n = countBefore(idx.schedDates, asOf)
	}
	return n - idx.schedCancelled[n]
}

// overdue counts audits overdue as of the given date. Only the due-date
// comparison depends on asOf; the timely-submission and cancellation parts
// are fixed per audit and prefix-summed.
func (idx *auditIndex) overdue(asOf time.Time) int {
	n := countBefore(idx.dueDates, asOf)
	return idx.dueUnresolved[n]
}

// submittedBefore counts approved and rejected audits submitted strictly
// before asOf. When pastOnly is set, each audit must also be a past audit
// (schedule start strictly before asOf and not cancelled), the dealer-level
// restriction.
func (idx *auditIndex) submittedBefore(asOf time.Time, pastOnly bool) (approved, rejected int) {
	n := countBefore(idx.subDates, asOf)
	if !pastOnly {
		return idx.subApproved[n], idx.subRejected[n]
	}

	for _, a := range idx.subSorted[:n] {
		if a.Cancelled || !a.ScheduledFrom.Before(asOf) {
			continue
		}
		if a.Approved {
			approved++
		}
		if a.Rejected {
			rejected++
		}
	}
	return approved, rejected
}

// loanIndex holds one borrower's loans sorted by creation, reimbursement and
// end dates, with prefix sums per closing outcome.
type loanIndex struct {
	createdDates []time.Time
	reimbDates   []time.Time
	reimbDaysSum []float64 // cumulative days-to-reimbursement, reimb-sorted
	endDates     []time.Time
	endReimb     []int
	endMaturity  []int
	endSold      []int
}

func newLoanIndex(group []model.Loan) *loanIndex {
	idx := &loanIndex{}

	idx.createdDates = make([]time.Time, len(group))
	for i, l := range group {
		idx.createdDates[i] = l.CreatedAt
	}
	sortDates(idx.createdDates)

	var reimbursed []model.Loan
	for _, l := range group {
		if l.ReimbursedDate != nil {
			reimbursed = append(reimbursed, l)
		}
	}
	sort.Slice(reimbursed, func(i, j int) bool {
		return reimbursed[i].ReimbursedDate.Before(*reimbursed[j].ReimbursedDate)
	})
	idx.reimbDates = make([]time.Time, len(reimbursed))
	idx.reimbDaysSum = make([]float64, len(reimbursed)+1)
	for i, l := range reimbursed {
		idx.reimbDates[i] = *l.ReimbursedDate
		days := model.DaysBetween(l.CreatedAt, *l.ReimbursedDate)
		idx.reimbDaysSum[i+1] = idx.reimbDaysSum[i] + float64(days)
	}

	var closed []model.Loan
	for _, l := range group {
		if l.EndDate != nil {
			closed = append(closed, l)
		}
	}
	sort.Slice(closed, func(i, j int) bool {
		return closed[i].EndDate.Before(*closed[j].EndDate)
	})
	idx.endDates = make([]time.Time, len(closed))
	idx.endReimb = make([]int, len(closed)+1)
	idx.endMaturity = make([]int, len(closed)+1)
	idx.endSold = make([]int, len(closed)+1)
	for i, l := range closed {
		idx.endDates[i] = *l.EndDate
		idx.endReimb[i+1] = idx.endReimb[i]
		idx.endMaturity[i+1] = idx.endMaturity[i]
		idx.endSold[i+1] = idx.endSold[i]
		switch l.Outcome {
		case model.OutcomeReimbursed:
			idx.endReimb[i+1]++
		case model.OutcomeMaturityReached:
			idx.endMaturity[i+1]++
		case model.OutcomeCollateralSold:
			idx.endSold[i+1]++
		}
	}

	return idx
}

func (idx *loanIndex) outcomes(asOf time.Time) DealerOutcomeAggregates {
	nFinanced := countBefore(idx.createdDates, asOf)

	nReimbBefore := countBefore(idx.reimbDates, asOf)
	avgReimbDays := 0.0
	if nReimbBefore > 0 {
		avgReimbDays = idx.reimbDaysSum[nReimbBefore] / float64(nReimbBefore)
	}

	nClosed := countBefore(idx.endDates, asOf)

	return DealerOutcomeAggregates{
		NCarsFinanced:        nFinanced,
		AvgReimbursementDays: avgReimbDays,
		NCarsReimbursed:      idx.endReimb[nClosed],
		NMaturityReached:     idx.endMaturity[nClosed],
		NCarsSoldNP:          idx.endSold[nClosed],
		NLoanOngoing:         nFinanced - nClosed,
		RatioReimbursed:      ratio(idx.endReimb[nClosed], nFinanced),
		RatioMaturityReached: ratio(idx.endMaturity[nClosed], nFinanced),
		RatioCarsSoldNP:      ratio(idx.endSold[nClosed], nFinanced),
	}
}

// countBefore returns how many sorted dates are strictly before asOf.
func countBefore(dates []time.Time, asOf time.Time) int {
	return sort.Search(len(dates), func(i int) bool {
		return !dates[i].Before(asOf)
	})
}

// countOnOrBefore returns how many sorted dates are on or before asOf.
func countOnOrBefore(dates []time.Time, asOf time.Time) int {
	return sort.Search(len(dates), func(i int) bool {
		return dates[i].After(asOf)
	})
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}

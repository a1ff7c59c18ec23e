// Package lifecycle resolves each loan's canonical end date, duration and
// terminal-event classification from the raw warehouse tables.
package lifecycle

import (
	"regexp"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/model"
)

// reasonRule maps a free-text termination reason pattern to an outcome
// category. Rules are evaluated top-down; the first match wins.
type reasonRule struct {
	pattern *regexp.Regexp
	exact   string
	outcome model.Outcome
}

// Termination reasons are typed by hand upstream and carry typos and casing
// variants; the patterns below aggregate them into the closed enumeration.
var reasonRules = []reasonRule{
	{pattern: regexp.MustCompile(`maturity|Maturity`), outcome: model.OutcomeMaturityReached},
	{pattern: regexp.MustCompile(`imit.*reached`), outcome: model.OutcomeMaturityReached},
	{pattern: regexp.MustCompile(`due date|DUE DATE`), outcome: model.OutcomeMaturityReached},
	{pattern: regexp.MustCompile(`(loan|LOAN).*(due|DUE)`), outcome: model.OutcomeMaturityReached},
	{pattern: regexp.MustCompile(`overdue`), outcome: model.OutcomeMaturityReached},
	{pattern: regexp.MustCompile(`Dealer has defaulted on loan`), outcome: model.OutcomeMaturityReached},
	{pattern: regexp.MustCompile(`audit|Audit`), outcome: model.OutcomeAuditOverdue},
	{pattern: regexp.MustCompile(`diligence`), outcome: model.OutcomeDDOverdue},
	{exact: "collateral sold", outcome: model.OutcomeCollateralSold},
	{pattern: regexp.MustCompile(`(reimbursment|REIMBURSMENT).*(requested|REQUESTED)`), outcome: model.OutcomeOtherDefault},
	{pattern: regexp.MustCompile(`stock financing`), outcome: model.OutcomeOtherDefault},
}

// ClassifyReason normalizes a free-text termination reason into an outcome
// category. An empty reason returns false; any non-empty reason that matches
// no specific rule falls into OtherDefault.
func ClassifyReason(reason string) (model.Outcome, bool) {
	if reason == "" {
		return "", false
	}

	for _, rule := range reasonRules {
		if rule.exact != "" {
			if reason == rule.exact {
				return rule.outcome, true
			}
			continue
		}
		if rule.pattern.MatchString(reason) {
			return rule.outcome, true
		}
	}

	return model.OutcomeOtherDefault, true
}

package evaluator

import (
	"fmt"
	"strings"
)

// Validation limits for submitted campaign fields.
const (
	companyNameMaxLen     = 100
	monthlyBudgetMax      = 10_000_000
	campaignDurationMin   = 1
	campaignDurationMax   = 60
	textFieldMaxLen       = 3000
	minRequiredTextFields = 2
)

// Validate checks an analysis request against the submission rules and
// returns a message per violation. An empty slice means the request is
// acceptable; validation failures are data, not errors.
func Validate(req AnalysisRequest) []string {
	var errs []string

	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		errs = append(errs, "Company name is required")
	} else if len(req.CompanyName) > companyNameMaxLen {
		errs = append(errs, fmt.Sprintf("Company name must be less than %d characters", companyNameMaxLen))
	}

	if req.MonthlyBudget < 0 || req.MonthlyBudget > monthlyBudgetMax {
		errs = append(errs, fmt.Sprintf("Monthly budget must be between $0 and $%d", monthlyBudgetMax))
	}

	if req.CampaignDurationMonths < campaignDurationMin || req.CampaignDurationMonths > campaignDurationMax {
		errs = append(errs, fmt.Sprintf("Campaign duration must be between %d and %d months", campaignDurationMin, campaignDurationMax))
	}

	textFields := map[string]string{
		"Campaign objectives":         req.CampaignObjectives,
		"Current performance metrics": req.CurrentPerformanceMetrics,
		"Budget utilization":          req.BudgetUtilization,
		"Client reported notes":       req.ClientReportedNotes,
		"Recent changes or concerns":  req.RecentChangesOrConcerns,
	}

	nonEmpty := 0
	for _, v := range textFields {
		if strings.TrimSpace(v) != "" {
			nonEmpty++
		}
	}
	if nonEmpty < minRequiredTextFields {
		errs = append(errs, "Please provide at least campaign objectives and performance metrics or client notes")
	}

	// Deterministic message order regardless of map iteration.
	for _, label := range []string{
		"Campaign objectives",
		"Current performance metrics",
		"Budget utilization",
		"Client reported notes",
		"Recent changes or concerns",
	} {
		if len(textFields[label]) > textFieldMaxLen {
			errs = append(errs, fmt.Sprintf("%s must be less than %d characters", label, textFieldMaxLen))
		}
	}

	return errs
}

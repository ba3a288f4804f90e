package evaluator

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the model as a campaign analyst across all requests.
const SystemPrompt = "You are an expert AdTech campaign analyst. Provide structured, professional " +
	"campaign health evaluations based on advertising performance data, budget utilization, and client feedback."

// BuildPrompt renders the user prompt for one analysis request. The reply is
// requested as a single JSON object so extractJSON can pull it back out.
func BuildPrompt(req AnalysisRequest) string {
	var b strings.Builder

	b.WriteString("You are an AdTech campaign analysis AI assistant. Analyze the following advertising ")
	b.WriteString("client's campaign information and provide a campaign health evaluation.\n\n")

	b.WriteString("Campaign Information:\n")
	fmt.Fprintf(&b, "- Company Name: %s\n", req.CompanyName)
	fmt.Fprintf(&b, "- Account Manager: %s\n", req.AccountManager)
	fmt.Fprintf(&b, "- Monthly Budget: $%.2f\n", req.MonthlyBudget)
	fmt.Fprintf(&b, "- Campaign Duration: %d months\n", req.CampaignDurationMonths)
	fmt.Fprintf(&b, "- Campaign Objectives: %s\n", req.CampaignObjectives)
	fmt.Fprintf(&b, "- Current Performance Metrics: %s\n", req.CurrentPerformanceMetrics)
	fmt.Fprintf(&b, "- Budget Utilization: %s\n", req.BudgetUtilization)
	fmt.Fprintf(&b, "- Client Reported Notes: %s\n", req.ClientReportedNotes)
	fmt.Fprintf(&b, "- Recent Changes/Concerns: %s\n\n", req.RecentChangesOrConcerns)

	b.WriteString("Categorize this campaign into one of these four categories:\n\n")
	for i, cat := range Categories() {
		fmt.Fprintf(&b, "%d. %q - %s\n", i+1, cat.Key, cat.Description)
	}

	b.WriteString("\nConsider budget efficiency and utilization, performance metrics (CTR, CPA, ROAS, etc.), ")
	b.WriteString("client satisfaction and feedback, campaign objectives alignment, market conditions, ")
	b.WriteString("and the account management relationship.\n\n")

	b.WriteString("Provide your response in the following JSON format:\n")
	b.WriteString(`{
    "category": "one of the four categories above",
    "confidence": "percentage (0-100)",
    "reasoning": "detailed explanation of your campaign assessment",
    "recommendations": ["specific", "actionable", "campaign", "recommendations"],
    "risk_factors": ["identified", "campaign", "risk", "factors"],
    "positive_indicators": ["campaign", "strengths", "and", "opportunities"],
    "budget_assessment": "analysis of budget efficiency and utilization",
    "performance_assessment": "evaluation of key performance metrics",
    "client_satisfaction": "assessment of client relationship and satisfaction"
}`)
	b.WriteString("\n\nIMPORTANT: Base your assessment on advertising campaign best practices and the provided information.\n")

	return b.String()
}

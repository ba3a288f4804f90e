package evaluator

// AnalysisRequest carries one submitted campaign description.
type AnalysisRequest struct {
	CompanyName               string  `json:"company_name"`
	AccountManager            string  `json:"account_manager"`
	MonthlyBudget             float64 `json:"monthly_budget"`
	CampaignDurationMonths    int     `json:"campaign_duration_months"`
	CampaignObjectives        string  `json:"campaign_objectives"`
	CurrentPerformanceMetrics string  `json:"current_performance_metrics"`
	BudgetUtilization         string  `json:"budget_utilization"`
	ClientReportedNotes       string  `json:"client_reported_notes"`
	RecentChangesOrConcerns   string  `json:"recent_changes_or_concerns"`
}

// Fields returns the request as a flat map, the shape traced into
// user_request content and fed to redaction.
func (r AnalysisRequest) Fields() map[string]any {
	return map[string]any{
		"company_name":                r.CompanyName,
		"account_manager":             r.AccountManager,
		"monthly_budget":              r.MonthlyBudget,
		"campaign_duration_months":    r.CampaignDurationMonths,
		"campaign_objectives":         r.CampaignObjectives,
		"current_performance_metrics": r.CurrentPerformanceMetrics,
		"budget_utilization":          r.BudgetUtilization,
		"client_reported_notes":       r.ClientReportedNotes,
		"recent_changes_or_concerns":  r.RecentChangesOrConcerns,
	}
}

// Evaluation is the structured campaign health verdict.
type Evaluation struct {
	Category              string   `json:"category"`
	Confidence            int      `json:"confidence"`
	Reasoning             string   `json:"reasoning"`
	Recommendations       []string `json:"recommendations"`
	RiskFactors           []string `json:"risk_factors"`
	PositiveIndicators    []string `json:"positive_indicators"`
	BudgetAssessment      string   `json:"budget_assessment"`
	PerformanceAssessment string   `json:"performance_assessment"`
	ClientSatisfaction    string   `json:"client_satisfaction"`
}

// AsContent converts the evaluation into the loosely-typed payload stored in
// bot_response trace content.
func (e Evaluation) AsContent() map[string]any {
	return map[string]any{
		"category":               e.Category,
		"confidence":             e.Confidence,
		"reasoning":              e.Reasoning,
		"recommendations":        toAnySlice(e.Recommendations),
		"risk_factors":           toAnySlice(e.RiskFactors),
		"positive_indicators":    toAnySlice(e.PositiveIndicators),
		"budget_assessment":      e.BudgetAssessment,
		"performance_assessment": e.PerformanceAssessment,
		"client_satisfaction":    e.ClientSatisfaction,
	}
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// Category is one of the four campaign health classifications.
type Category struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

const (
	CategoryHealthy               = "healthy"
	CategoryMightNeedAttention    = "might_need_attention"
	CategoryNeedAttentionPositive = "need_attention_positive"
	CategoryNeedAttentionNegative = "need_attention_negative"
)

// DefaultCategory is assigned whenever the model reply cannot be trusted.
const DefaultCategory = CategoryMightNeedAttention

// Categories lists the closed set of health classifications, in severity order.
func Categories() []Category {
	return []Category{
		{
			Key:         CategoryHealthy,
			Name:        "Campaign Healthy",
			Icon:        "🟢",
			Description: "Campaign is performing well, budget on track, client satisfied",
		},
		{
			Key:         CategoryMightNeedAttention,
			Name:        "Monitoring Needed",
			Icon:        "🟡",
			Description: "Campaign shows some indicators that warrant closer monitoring or optimization",
		},
		{
			Key:         CategoryNeedAttentionPositive,
			Name:        "Action Needed - Growth Opportunity",
			Icon:        "🟠",
			Description: "Campaign needs attention but shows positive indicators for scaling or expansion",
		},
		{
			Key:         CategoryNeedAttentionNegative,
			Name:        "Action Needed - Risk Management",
			Icon:        "🔴",
			Description: "Campaign requires immediate attention due to budget, performance, or client satisfaction concerns",
		},
	}
}

// ValidCategory reports whether key names a known health classification.
func ValidCategory(key string) bool {
	switch key {
	case CategoryHealthy, CategoryMightNeedAttention, CategoryNeedAttentionPositive, CategoryNeedAttentionNegative:
		return true
	}
	return false
}

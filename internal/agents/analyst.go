package agents

import (
	"context"
	"fmt"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/domain"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/llm"
)

const analystSystemPrompt = `You are a senior data analyst at a telecom company, specialized in customer churn risk.
Explain findings concisely and professionally so that sales and marketing staff can act on them.
Avoid heavy statistical jargon.`

// AnalyzeCustomer is stage 1: it scores the customer with the churn model,
// looks up the profile, and produces the risk analysis narrative.
func AnalyzeCustomer(ctx context.Context, data CustomerData, gen llm.Generator, customerID string) (domain.AnalystResult, error) {
	prob, err := data.PredictChurnProbability(customerID)
	if err != nil {
		return domain.AnalystResult{}, err
	}
	profile, err := data.GetCustomerProfile(customerID)
	if err != nil {
		return domain.AnalystResult{}, err
	}

	userPrompt := fmt.Sprintf(`Here is a customer and their churn prediction:

- customer id: %s
- predicted churn probability (0-1): %.3f
- customer profile (field = value):
%s
Write a churn risk analysis containing:

1. A one-sentence assessment of this customer's churn risk (high / medium / low) with a short justification.
2. A bullet list of 3-5 key indicators (for example tenure, monthly charge level, contract type, total charges) and how each affects the risk.
3. A 2-3 sentence recommendation for sales or support on what to watch with this customer.`,
		customerID, prob, renderProfile(profile))

	analysis, err := gen.Generate(ctx, analystSystemPrompt, userPrompt)
	if err != nil {
		return domain.AnalystResult{}, err
	}

	return domain.AnalystResult{
		CustomerID:       customerID,
		ChurnProbability: prob,
		Analysis:         analysis,
	}, nil
}

package agents

import (
	"context"
	"fmt"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/domain"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/llm"
)

const reasoningSystemPrompt = `You are a CRM consultant who knows the telecom industry well and explains in plain language why a customer is likely to leave.
Given an analyst's assessment and the customer profile, lay out:
- why this customer may leave
- which background and behavior patterns matter
- what the loss would mean for the company
Be professional but easy to follow, and use clear bullet points.`

// ExplainChurnReason is stage 2: it turns the analyst output into a causal
// churn-reason narrative. It requires the stage 1 result as input.
func ExplainChurnReason(ctx context.Context, data CustomerData, gen llm.Generator, customerID string, analyst domain.AnalystResult) (domain.ReasoningResult, error) {
	profile, err := data.GetCustomerProfile(customerID)
	if err != nil {
		return domain.ReasoningResult{}, err
	}

	userPrompt := fmt.Sprintf(`You receive a customer profile and a data analyst's assessment. Distill the churn reasons.

[customer id]
%s

[predicted churn probability (0-1)]
%.3f

[customer profile (field = value)]
%s
[analyst assessment]
%s

Produce a churn-reason explanation containing:

1. A 2-3 sentence summary of the main reasons this customer may churn.
2. A bullet list of 3-5 key factors and how each raises the risk (for example contract about to expire, high bill, short tenure, payment method uncertainty).
3. A short note on what losing this customer would cost the company.`,
		customerID, analyst.ChurnProbability, renderProfile(profile), analyst.Analysis)

	reasoning, err := gen.Generate(ctx, reasoningSystemPrompt, userPrompt)
	if err != nil {
		return domain.ReasoningResult{}, err
	}

	return domain.ReasoningResult{
		CustomerID: customerID,
		Reasoning:  reasoning,
	}, nil
}

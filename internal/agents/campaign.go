package agents

import (
	"context"
	"fmt"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/domain"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/llm"
)

const campaignSystemPrompt = `You are a telecom marketing planner who designs retention offers for customers at risk of leaving.
You know that discounting too deeply hurts margin, that giving nothing loses high-value customers, and that the budget should scale with the customer's value tier.
Answer in a professional, practical, well-structured way.`

// DesignCampaign is stage 3: it buckets the customer into a value segment and
// designs the retention offer from the stage 2 reasoning.
func DesignCampaign(ctx context.Context, data CustomerData, gen llm.Generator, customerID string, reasoning domain.ReasoningResult) (domain.CampaignResult, error) {
	profile, err := data.GetCustomerProfile(customerID)
	if err != nil {
		return domain.CampaignResult{}, err
	}
	segment, err := domain.SegmentForMonthlyCharge(profile.MonthlyCharges)
	if err != nil {
		return domain.CampaignResult{}, fmt.Errorf("value segment for %s: %w", customerID, err)
	}

	userPrompt := fmt.Sprintf(`You receive a telecom customer's profile and an explanation of why they may churn. Design a suitable retention campaign.

[customer id]
%s

[customer value segment]
%s value (bucketed by monthly charge)

[customer profile (field = value)]
%s
[churn reason explanation]
%s

Design 1-2 retention offers:

1. Start with 1-2 sentences on your reasoning (for example: a high-value customer justifies a stronger offer, but cost must stay controlled).
2. List each offer with: a name, the contents (discount, duration, upgrades or bundled services), why it fits this customer's churn reasons, and a short cost/risk note.
3. Close with 2-3 sentences of execution advice for the sales or marketing staff (for example: do not overpromise, watch usage behavior afterwards).`,
		customerID, segment, renderProfile(profile), reasoning.Reasoning)

	plan, err := gen.Generate(ctx, campaignSystemPrompt, userPrompt)
	if err != nil {
		return domain.CampaignResult{}, err
	}

	return domain.CampaignResult{
		CustomerID:   customerID,
		ValueSegment: segment,
		CampaignPlan: plan,
	}, nil
}

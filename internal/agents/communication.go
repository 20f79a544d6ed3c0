package agents

import (
	"context"
	"fmt"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/domain"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/llm"
)

const communicationSystemPrompt = `You are a customer communication expert. From a customer profile and a retention campaign plan you produce:
- a full email ready to send
- a short SMS version (under 70 words)
- a call script a support agent can read out
Use a natural, polite, non-pushy tone and never overpromise.`

// GenerateCommunications is stage 4: it writes the customer-facing email, SMS
// and call script from the stage 3 campaign plan.
func GenerateCommunications(ctx context.Context, data CustomerData, gen llm.Generator, customerID string, campaign domain.CampaignResult) (domain.CommunicationResult, error) {
	profile, err := data.GetCustomerProfile(customerID)
	if err != nil {
		return domain.CommunicationResult{}, err
	}

	userPrompt := fmt.Sprintf(`You receive a telecom customer's profile and the retention campaign designed for them. Write the outbound communication material.

[customer id]
%s

[customer value segment]
%s

[customer profile (field = value)]
%s
[retention campaign plan]
%s

Produce three clearly separated parts:

1. Email: a complete message with a greeting, a positive framing of why we are reaching out (never mention churn risk), the offer, and a clear next step (log in, click a link, or contact support).
2. SMS: a polite version under 70 words focused on the offer.
3. Call script: 5-8 sentences a support agent can use to open the call, explain the offer, and ask about the customer's interest, without making the customer feel pressured.`,
		customerID, campaign.ValueSegment, renderProfile(profile), campaign.CampaignPlan)

	text, err := gen.Generate(ctx, communicationSystemPrompt, userPrompt)
	if err != nil {
		return domain.CommunicationResult{}, err
	}

	return domain.CommunicationResult{
		CustomerID:     customerID,
		Communications: text,
	}, nil
}

// Package pipeline runs the four narrative stages for one customer in their
// fixed dependency order.
package pipeline

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/agents"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/domain"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/llm"
)

// Runner drives the stage chain. The topology is fixed: analyst, reasoning,
// campaign, communication, each consuming the previous stage's output. The
// chain is strictly sequential because every stage's request embeds the
// previous stage's full text; independent enrichment calls could run in
// parallel in a later version, but today ordering is correctness.
type Runner struct {
	data agents.CustomerData
	gen  llm.Generator
}

// NewRunner wires the runner to its data source and text generator.
func NewRunner(data agents.CustomerData, gen llm.Generator) *Runner {
	return &Runner{data: data, gen: gen}
}

// Run executes the full chain for one customer. Any stage failure aborts the
// run; there is no partial result, no retry and no stage skipping.
func (r *Runner) Run(ctx context.Context, customerID string) (domain.PipelineResult, error) {
	runID := uuid.NewString()
	log.Printf("pipeline run=%s customer=%s stage=analyst", runID, customerID)
	analyst, err := agents.AnalyzeCustomer(ctx, r.data, r.gen, customerID)
	if err != nil {
		return domain.PipelineResult{}, err
	}

	log.Printf("pipeline run=%s customer=%s stage=reasoning prob=%.3f", runID, customerID, analyst.ChurnProbability)
	reasoning, err := agents.ExplainChurnReason(ctx, r.data, r.gen, customerID, analyst)
	if err != nil {
		return domain.PipelineResult{}, err
	}

	log.Printf("pipeline run=%s customer=%s stage=campaign", runID, customerID)
	campaign, err := agents.DesignCampaign(ctx, r.data, r.gen, customerID, reasoning)
	if err != nil {
		return domain.PipelineResult{}, err
	}

	log.Printf("pipeline run=%s customer=%s stage=communication segment=%s", runID, customerID, campaign.ValueSegment)
	communications, err := agents.GenerateCommunications(ctx, r.data, r.gen, customerID, campaign)
	if err != nil {
		return domain.PipelineResult{}, err
	}

	return domain.PipelineResult{
		RunID:          runID,
		CustomerID:     customerID,
		Analyst:        analyst,
		Reasoning:      reasoning,
		Campaign:       campaign,
		Communications: communications,
	}, nil
}

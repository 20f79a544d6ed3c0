// churnd serves the retention pipeline: it loads the offline-produced
// artifacts, exposes the REST API and runs the scheduled churn-risk digest.
package main

import (
	"log"

	"github.com/slack-go/slack"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/config"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/digest"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/llm"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/pipeline"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/server"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/store"
)

func main() {
	cfg := config.LoadConfig()
	if cfg.AnthropicAPIKey == "" {
		log.Fatalf("anthropic_api_key is required (via config.yaml or ANTHROPIC_API_KEY)")
	}

	st := store.New(store.Paths{
		ArtifactDB:     cfg.ArtifactDBPath,
		Model:          cfg.ModelPath,
		FeatureColumns: cfg.FeatureColumnsPath,
	})

	gen := llm.NewAnthropic(cfg.AnthropicAPIKey, cfg.LLMModel, cfg.LLMMaxTokens, cfg.LLMRetryAttempts)
	runner := pipeline.NewRunner(st, gen)

	delivery := digest.DeliveryConfig{
		OutputDir: cfg.DigestOutputDir,
		TopN:      cfg.DigestTopN,
	}
	if cfg.SlackBotToken != "" && cfg.SlackChannelID != "" {
		delivery.SlackAPI = slack.New(cfg.SlackBotToken)
		delivery.SlackChannelID = cfg.SlackChannelID
	}
	digest.StartScheduler(cfg.DigestSchedule, st, delivery)

	srv := server.New(st, runner)
	log.Printf("Starting churn retention service addr=%s", cfg.HTTPAddr)
	if err := srv.Router().Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
}

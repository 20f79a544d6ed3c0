package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	retry "github.com/sethvargo/go-retry"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicGenerator implements Generator against the Anthropic Messages API.
type AnthropicGenerator struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	maxAttempts uint64
}

// NewAnthropic builds a generator. model may be empty to use the default;
// retries is the number of transient-failure retries on top of the first
// attempt.
func NewAnthropic(apiKey, model string, maxTokens int, retries int) *AnthropicGenerator {
	if model == "" {
		model = defaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	if retries < 0 {
		retries = 0
	}
	return &AnthropicGenerator{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		maxTokens:   int64(maxTokens),
		maxAttempts: uint64(retries),
	}
}

// Generate calls the Messages API and returns the first text block.
func (g *AnthropicGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var text string

	backoff := retry.WithMaxRetries(g.maxAttempts, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(g.model),
			MaxTokens: g.maxTokens,
			System: []anthropic.TextBlockParam{
				{Text: systemPrompt},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
			},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			log.Printf("llm anthropic error model=%s: %v", g.model, err)
			return retry.RetryableError(err)
		}

		for _, block := range message.Content {
			if block.Type == "text" {
				log.Printf("llm anthropic response model=%s size=%d tokens_in=%d tokens_out=%d",
					g.model, len(block.Text), message.Usage.InputTokens, message.Usage.OutputTokens)
				text = block.Text
				return nil
			}
		}
		return fmt.Errorf("no text content in Anthropic response")
	})
	if err != nil {
		return "", &CollaboratorError{Op: "anthropic " + g.model, Err: err}
	}
	if text == "" {
		return "", &CollaboratorError{Op: "anthropic " + g.model, Err: fmt.Errorf("empty response")}
	}
	return text, nil
}

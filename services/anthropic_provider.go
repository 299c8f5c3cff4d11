// services/anthropic_provider.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/brandlens/brandlens-workflows/internal/config"
)

type anthropicProvider struct {
	client      *anthropic.Client
	model       string
	costService CostService
}

func NewAnthropicProvider(cfg *config.Config, costService CostService) AIProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.AnthropicAPIKey),
	)

	return &anthropicProvider{
		client:      &client,
		model:       cfg.Models.Anthropic,
		costService: costService,
	}
}

func (p *anthropicProvider) GetProviderName() string {
	return "Anthropic"
}

func (p *anthropicProvider) RunQuery(ctx context.Context, query string) (*AIResponse, error) {
	// Anthropic has no native structured output, so prompt for JSON directly
	structuredPrompt := fmt.Sprintf(`You are a knowledgeable assistant providing accurate information about products and services.

Please provide a comprehensive answer to the following question, returning ONLY a valid JSON object with this structure:

{
  "answer": "Your detailed answer here",
  "key_points": ["Key point 1", "Key point 2", "Key point 3"],
  "confidence": "high|medium|low"
}

Question: %s

Remember: Return ONLY the JSON object, no other text.`, query)

	messages := []anthropic.MessageParam{{
		Content: []anthropic.ContentBlockParamUnion{{
			OfText: &anthropic.TextBlockParam{Text: structuredPrompt},
		}},
		Role: anthropic.MessageParamRoleUser,
	}}

	response, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   2000,
		Messages:    messages,
		Temperature: anthropic.Float(0.7),
	})
	if err != nil {
		return nil, fmt.Errorf("message creation failed: %w", err)
	}

	fullResponse := p.extractResponseText(*response)
	parsed := p.parseJSONResponse(fullResponse)

	return &AIResponse{
		Response:     parsed,
		InputTokens:  int(response.Usage.InputTokens),
		OutputTokens: int(response.Usage.OutputTokens),
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, int(response.Usage.InputTokens), int(response.Usage.OutputTokens)),
	}, nil
}

func (p *anthropicProvider) parseJSONResponse(response string) string {
	var structured struct {
		Answer     string   `json:"answer"`
		KeyPoints  []string `json:"key_points"`
		Confidence string   `json:"confidence"`
	}

	if err := json.Unmarshal([]byte(response), &structured); err != nil {
		return response
	}

	answer := structured.Answer
	if len(structured.KeyPoints) > 0 {
		answer += "\n\nKey Points:\n"
		for _, point := range structured.KeyPoints {
			answer += fmt.Sprintf("• %s\n", point)
		}
	}
	return answer
}

func (p *anthropicProvider) extractResponseText(response anthropic.Message) string {
	var textParts []string
	for _, block := range response.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			textParts = append(textParts, variant.Text)
		}
	}
	return strings.Join(textParts, "")
}

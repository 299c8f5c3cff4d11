// services/cost_service.go
package services

import "strings"

type costService struct{}

func NewCostService() CostService {
	return &costService{}
}

// Cost per 1M tokens
var costPerToken = map[string]struct{ input, output float64 }{
	"gpt-4o":                   {input: 2.50, output: 10.00},
	"gpt-4o-mini":              {input: 0.15, output: 0.60},
	"claude-sonnet-4-20250514": {input: 3.00, output: 15.00},
	"gemini-2.0-flash-exp":     {input: 0.10, output: 0.40},
	"sonar":                    {input: 1.00, output: 1.00}, // Perplexity Sonar pricing (estimated)
}

func (s *costService) CalculateCost(provider string, model string, inputTokens int, outputTokens int) float64 {
	modelCosts, exists := costPerToken[model]
	if !exists {
		modelCosts = costPerToken[s.defaultModel(provider)]
	}

	inputCost := (float64(inputTokens) / 1_000_000.0) * modelCosts.input
	outputCost := (float64(outputTokens) / 1_000_000.0) * modelCosts.output
	return inputCost + outputCost
}

func (s *costService) defaultModel(provider string) string {
	provider = strings.ToLower(provider)
	if strings.Contains(provider, "anthropic") || strings.Contains(provider, "claude") {
		return "claude-sonnet-4-20250514"
	}
	if strings.Contains(provider, "gemini") || strings.Contains(provider, "google") {
		return "gemini-2.0-flash-exp"
	}
	if strings.Contains(provider, "perplexity") || strings.Contains(provider, "sonar") {
		return "sonar"
	}
	return "gpt-4o"
}

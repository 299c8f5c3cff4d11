// services/perplexity_provider.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brandlens/brandlens-workflows/internal/config"
)

type perplexityProvider struct {
	apiKey      string
	model       string
	baseURL     string
	costService CostService
	httpClient  *http.Client
}

func NewPerplexityProvider(cfg *config.Config, costService CostService) AIProvider {
	fmt.Printf("[NewPerplexityProvider] Creating Perplexity provider\n")
	fmt.Printf("[NewPerplexityProvider]   - API Key: %s\n", maskAPIKey(cfg.PerplexityAPIKey))
	fmt.Printf("[NewPerplexityProvider]   - Model: %s\n", cfg.Models.Perplexity)

	return &perplexityProvider{
		apiKey:      cfg.PerplexityAPIKey,
		model:       cfg.Models.Perplexity,
		baseURL:     "https://api.perplexity.ai",
		costService: costService,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (p *perplexityProvider) GetProviderName() string {
	return "Perplexity"
}

// Perplexity API request structures (OpenAI-compatible chat format)
type PerplexityRequest struct {
	Model    string              `json:"model"`
	Messages []PerplexityMessage `json:"messages"`
}

type PerplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Perplexity API response structures
type PerplexityResponse struct {
	Choices   []PerplexityChoice `json:"choices"`
	Citations []string           `json:"citations,omitempty"`
	Usage     PerplexityUsage    `json:"usage"`
}

type PerplexityChoice struct {
	Message PerplexityMessage `json:"message"`
}

type PerplexityUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

func (p *perplexityProvider) RunQuery(ctx context.Context, query string) (*AIResponse, error) {
	reqBody := PerplexityRequest{
		Model: p.model,
		Messages: []PerplexityMessage{
			{Role: "system", Content: "You are a helpful assistant that provides accurate, comprehensive answers to questions about products and services. Cite sources where available."},
			{Role: "user", Content: query},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var perplexityResp PerplexityResponse
	if err := json.Unmarshal(body, &perplexityResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(perplexityResp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	// Append citation URLs so source extraction can pick them up
	responseText := perplexityResp.Choices[0].Message.Content
	if len(perplexityResp.Citations) > 0 {
		responseText += "\n\nSources:\n"
		for _, citation := range perplexityResp.Citations {
			responseText += citation + "\n"
		}
	}

	return &AIResponse{
		Response:     responseText,
		InputTokens:  perplexityResp.Usage.PromptTokens,
		OutputTokens: perplexityResp.Usage.CompletionTokens,
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, perplexityResp.Usage.PromptTokens, perplexityResp.Usage.CompletionTokens),
	}, nil
}

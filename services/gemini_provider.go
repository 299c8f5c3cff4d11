// services/gemini_provider.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brandlens/brandlens-workflows/internal/config"
)

type geminiProvider struct {
	apiKey      string
	model       string
	baseURL     string
	costService CostService
	httpClient  *http.Client
}

func NewGeminiProvider(cfg *config.Config, costService CostService) AIProvider {
	fmt.Printf("[NewGeminiProvider] Creating Gemini provider\n")
	fmt.Printf("[NewGeminiProvider]   - API Key: %s\n", maskAPIKey(cfg.GeminiAPIKey))
	fmt.Printf("[NewGeminiProvider]   - Model: %s\n", cfg.Models.Gemini)

	return &geminiProvider{
		apiKey:      cfg.GeminiAPIKey,
		model:       cfg.Models.Gemini,
		baseURL:     "https://generativelanguage.googleapis.com/v1beta",
		costService: costService,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// Helper function to mask API key for logging
func maskAPIKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func (p *geminiProvider) GetProviderName() string {
	return "Gemini"
}

// Gemini API request structures
type GeminiRequest struct {
	Contents []GeminiContent `json:"contents"`
}

type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text"`
}

// Gemini API response structures
type GeminiResponse struct {
	Candidates    []GeminiCandidate    `json:"candidates"`
	UsageMetadata *GeminiUsageMetadata `json:"usageMetadata,omitempty"`
	Error         *GeminiError         `json:"error,omitempty"`
}

type GeminiCandidate struct {
	Content GeminiContent `json:"content"`
}

type GeminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
}

type GeminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (p *geminiProvider) RunQuery(ctx context.Context, query string) (*AIResponse, error) {
	// Free tier rate limits hit often, so retry quota errors with escalating delay
	const maxAttempts = 3

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, retryable, err := p.doRequest(ctx, query)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable || attempt == maxAttempts {
			break
		}
		delay := time.Duration(attempt*5) * time.Second
		fmt.Printf("[GeminiProvider] ⚠️ Quota error, retrying in %s (attempt %d/%d)\n", delay, attempt, maxAttempts)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

func (p *geminiProvider) doRequest(ctx context.Context, query string) (*AIResponse, bool, error) {
	reqBody := GeminiRequest{
		Contents: []GeminiContent{{
			Parts: []GeminiPart{{Text: query}},
		}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("quota exceeded: %s", string(body))
	}
	if resp.StatusCode != http.StatusOK {
		retryable := strings.Contains(strings.ToLower(string(body)), "quota")
		return nil, retryable, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var geminiResp GeminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, false, fmt.Errorf("failed to parse response: %w", err)
	}
	if geminiResp.Error != nil {
		return nil, false, fmt.Errorf("gemini error %d: %s", geminiResp.Error.Code, geminiResp.Error.Message)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, false, fmt.Errorf("no candidates returned")
	}

	var textParts []string
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		textParts = append(textParts, part.Text)
	}

	inputTokens, outputTokens := 0, 0
	if geminiResp.UsageMetadata != nil {
		inputTokens = geminiResp.UsageMetadata.PromptTokenCount
		outputTokens = geminiResp.UsageMetadata.CandidatesTokenCount
	}

	return &AIResponse{
		Response:     strings.Join(textParts, ""),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, inputTokens, outputTokens),
	}, false, nil
}

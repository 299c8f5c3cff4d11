// services/openai_provider.go
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/brandlens/brandlens-workflows/internal/config"
)

type openAIProvider struct {
	client      *openai.Client
	model       string
	costService CostService
}

func NewOpenAIProvider(cfg *config.Config, costService CostService) AIProvider {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)

	fmt.Printf("[NewOpenAIProvider] ✅ Using OpenAI\n")
	fmt.Printf("[NewOpenAIProvider]   - Model: %s\n", cfg.Models.OpenAI)

	return &openAIProvider{
		client:      &client,
		model:       cfg.Models.OpenAI,
		costService: costService,
	}
}

func (p *openAIProvider) GetProviderName() string {
	return "OpenAI"
}

// QueryAnswer represents the structured output for query responses
type QueryAnswer struct {
	Answer     string   `json:"answer" jsonschema_description:"The comprehensive answer to the query"`
	KeyPoints  []string `json:"key_points" jsonschema_description:"3-5 key points from the answer"`
	Confidence string   `json:"confidence" jsonschema:"enum=high,enum=medium,enum=low" jsonschema_description:"Confidence level in the answer accuracy"`
}

var queryAnswerSchema = GenerateSchema[QueryAnswer]()

func (p *openAIProvider) RunQuery(ctx context.Context, query string) (*AIResponse, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "query_answer",
		Description: openai.String("Structured response to the query"),
		Schema:      queryAnswerSchema,
		Strict:      openai.Bool(true),
	}

	response, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a helpful assistant that provides accurate, comprehensive answers to questions about products and services."),
			openai.UserMessage(query),
		},
		Model: openai.ChatModel(p.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(2000),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	responseContent := response.Choices[0].Message.Content
	var structured QueryAnswer
	if err := json.Unmarshal([]byte(responseContent), &structured); err == nil && structured.Answer != "" {
		responseContent = structured.Answer
		if len(structured.KeyPoints) > 0 {
			responseContent += "\n\nKey Points:\n"
			for _, point := range structured.KeyPoints {
				responseContent += fmt.Sprintf("• %s\n", point)
			}
		}
	}

	return &AIResponse{
		Response:     responseContent,
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, int(response.Usage.PromptTokens), int(response.Usage.CompletionTokens)),
	}, nil
}

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &ConfigError{Message: "Gemini API key is required"}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("failed to create Gemini client: %v", err)}
	}
	return &GeminiClient{client: client, config: config}, nil
}

func (c *GeminiClient) GenerateJSON(ctx context.Context, systemPrompt, prompt string, tier ModelTier) (string, error) {
	name, err := modelFor(c.config, tier)
	if err != nil {
		return "", err
	}

	model := c.client.GenerativeModel(name)
	model.SetTemperature(c.config.Temperature)
	model.ResponseMIMEType = "application/json"
	if systemPrompt != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", ClassifyProviderError("gemini generate content", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

func (c *GeminiClient) Provider() Provider {
	return ProviderGemini
}

func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// responseText joins the text parts of the first candidate. Blocked prompts
// and empty candidates are FatalErrors: retrying the same prompt will not help.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", &FatalError{Message: "gemini returned no response"}
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		return "", &FatalError{Message: fmt.Sprintf("gemini blocked the prompt: %s", fb.BlockReason)}
	}
	if len(resp.Candidates) == 0 {
		return "", &FatalError{Message: "gemini returned no candidates"}
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", &FatalError{Message: "gemini stopped the response for safety"}
	}
	if candidate.Content == nil {
		return "", &FatalError{Message: "gemini returned an empty candidate"}
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", &FatalError{Message: "gemini returned no text"}
	}
	return sb.String(), nil
}

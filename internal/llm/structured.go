package llm

import (
	"context"
	"encoding/json"

	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"go.uber.org/zap"
)

const logPreviewLimit = 300

// CompletionRequest is one structured completion: prompts, the JSON schema
// the response must satisfy, and the model tier.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	// Schema is JSON Schema content; empty skips validation.
	Schema string
	Tier   ModelTier
}

// Completer returns a decoded JSON object for a completion request.
// Errors are TransientError, FatalError, ConfigError or a context error.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (map[string]any, error)
}

// StructuredClient adapts a provider Client into a Completer
type StructuredClient struct {
	client Client
	logger *zap.Logger
}

// NewStructuredClient wraps client. A nil logger disables logging.
func NewStructuredClient(client Client, logger *zap.Logger) *StructuredClient {
	return &StructuredClient{client: client, logger: logging.OrNop(logger)}
}

// Complete calls the provider, decodes the JSON object and validates it
func (s *StructuredClient) Complete(ctx context.Context, req CompletionRequest) (map[string]any, error) {
	if s.client == nil {
		return nil, &ConfigError{Message: "no LLM client configured"}
	}

	log := logging.WithFields(s.logger, logging.ProviderFields(string(s.client.Provider()), s.client.GetModel(req.Tier))...)
	log.Debug("llm request", zap.String("prompt", logging.TruncateForLog(req.UserPrompt, logPreviewLimit)))

	raw, err := s.client.GenerateJSON(ctx, req.SystemPrompt, req.UserPrompt, req.Tier)
	if err != nil {
		return nil, ClassifyProviderError("generate", err)
	}

	cleaned := CleanJSONBlock(raw)
	log.Debug("llm response", zap.String("response", logging.TruncateForLog(cleaned, logPreviewLimit)))

	var out map[string]any
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, &FatalError{Message: "response is not a JSON object", Cause: err}
	}
	if out == nil {
		return nil, &FatalError{Message: "response is null"}
	}

	if req.Schema != "" {
		if err := schemas.ValidateJSONString(req.Schema, cleaned); err != nil {
			return nil, &FatalError{Message: "response violates schema", Cause: err}
		}
	}

	return out, nil
}

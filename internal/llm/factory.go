package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// OfflineReply is what the mock provider says when no script is loaded.
var OfflineReply = json.RawMessage(`{"answer":"The AI tutor is offline. Configure an LLM provider to get real answers.","followUps":[]}`)

// NewProvider builds the configured backend wrapped in retry and logging.
func NewProvider(ctx context.Context, cfg Config, log *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		p, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		p, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		p, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		p, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		return WithLogging(NewOfflineProvider(OfflineReply), log), nil
	}
	if err != nil {
		return nil, fmt.Errorf("llm: %s: %w", cfg.Provider, err)
	}
	return WithLogging(WithRetry(p, cfg.Retry, log), log), nil
}

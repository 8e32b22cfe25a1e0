package services

import (
	"context"
	"fmt"
	"strings"

	"kapwa-backend/internal/config"
)

// NewCompleter builds the backend named by cfg.LLMProvider. The second
// return value releases backend resources and is never nil.
func NewCompleter(ctx context.Context, cfg *config.Config) (Completer, func(), error) {
	opts := CompletionOptions{
		Model:       cfg.LLMModel,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}
	noop := func() {}

	switch strings.ToLower(cfg.LLMProvider) {
	case "openai", "":
		svc, err := NewOpenAIService(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, opts, nil)
		if err != nil {
			return nil, noop, err
		}
		return svc, noop, nil
	case "azure":
		svc, err := NewAzureOpenAIService(cfg.AzureOpenAIEndpoint, cfg.AzureOpenAIAPIKey, opts, nil)
		if err != nil {
			return nil, noop, err
		}
		return svc, noop, nil
	case "gemini":
		svc, err := NewGeminiService(ctx, cfg.GeminiAPIKey, opts)
		if err != nil {
			return nil, noop, err
		}
		return svc, svc.Close, nil
	case "bedrock":
		svc, err := NewBedrockService(ctx, cfg.AWSRegion, opts)
		if err != nil {
			return nil, noop, err
		}
		return svc, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

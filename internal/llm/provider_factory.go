package llm

import (
	"context"
	"fmt"
	"strings"
)

// ProviderFactory creates planners and renderers based on model name or an
// explicit provider choice. Frame rendering always uses Gemini, the only
// configured provider with an image-output model.
type ProviderFactory struct {
	openaiAPIKey  string
	geminiAPIKey  string
	plannerPrompt string
	rendererModel string
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(openaiAPIKey, geminiAPIKey, plannerPrompt, rendererModel string) *ProviderFactory {
	return &ProviderFactory{
		openaiAPIKey:  openaiAPIKey,
		geminiAPIKey:  geminiAPIKey,
		plannerPrompt: plannerPrompt,
		rendererModel: rendererModel,
	}
}

// GetPlanner returns the appropriate pose planner for the given
// model/provider name
func (f *ProviderFactory) GetPlanner(ctx context.Context, model, providerName string) (PosePlanner, error) {
	if providerName != "" {
		return f.getPlannerByName(ctx, providerName, model)
	}
	return f.getPlannerByModel(ctx, model)
}

// GetRenderer returns the frame renderer
func (f *ProviderFactory) GetRenderer(ctx context.Context) (FrameRenderer, error) {
	if f.geminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured (required for frame rendering)")
	}
	return NewGeminiProvider(ctx, f.geminiAPIKey, "", f.rendererModel, "")
}

func (f *ProviderFactory) getPlannerByName(ctx context.Context, providerName, model string) (PosePlanner, error) {
	switch strings.ToLower(providerName) {
	case providerNameOpenAI:
		if f.openaiAPIKey == "" {
			return nil, fmt.Errorf("openai API key not configured")
		}
		return NewOpenAIProvider(f.openaiAPIKey, model, f.plannerPrompt), nil

	case providerNameGemini:
		if f.geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini API key not configured")
		}
		return NewGeminiProvider(ctx, f.geminiAPIKey, model, f.rendererModel, f.plannerPrompt)

	default:
		return nil, fmt.Errorf("unknown provider: %s (allowed: openai, gemini)", providerName)
	}
}

func (f *ProviderFactory) getPlannerByModel(ctx context.Context, model string) (PosePlanner, error) {
	modelLower := strings.ToLower(model)

	if strings.HasPrefix(modelLower, "gpt-") {
		if f.openaiAPIKey == "" {
			return nil, fmt.Errorf("openai API key not configured")
		}
		return NewOpenAIProvider(f.openaiAPIKey, model, f.plannerPrompt), nil
	}

	// Gemini is the default planner
	if f.geminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured (default provider)")
	}
	return NewGeminiProvider(ctx, f.geminiAPIKey, model, f.rendererModel, f.plannerPrompt)
}

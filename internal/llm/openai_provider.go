package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	providerNameOpenAI = "openai"

	// DefaultOpenAIPlannerModel is used when no model override is given
	DefaultOpenAIPlannerModel = "gpt-4o-mini"
)

// OpenAIProvider implements PosePlanner using OpenAI vision chat
// completions. Frame rendering stays on Gemini; OpenAI is an alternate
// planner only.
type OpenAIProvider struct {
	client       openai.Client
	model        string
	systemPrompt string
}

// NewOpenAIProvider creates a new OpenAI pose planner
func NewOpenAIProvider(apiKey, model, systemPrompt string) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIPlannerModel
	}
	return &OpenAIProvider{
		client:       openai.NewClient(option.WithAPIKey(apiKey)),
		model:        model,
		systemPrompt: systemPrompt,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// PlanPoses asks the vision model for count pose descriptions and returns
// the raw payload
func (p *OpenAIProvider) PlanPoses(ctx context.Context, image SourceImage, count int) (string, error) {
	startTime := time.Now()
	log.Printf("🎬 OPENAI POSE PLANNING STARTED (model: %s, poses: %d)", p.model, count)

	transaction := sentry.StartTransaction(ctx, "openai.plan_poses")
	defer transaction.Finish()
	transaction.SetTag("model", p.model)
	transaction.SetTag("provider", providerNameOpenAI)

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		image.MediaType, base64.StdEncoding.EncodeToString(image.Data))

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(fmt.Sprintf(
				"Generate exactly %d sequential pose descriptions for the subject in this image. "+
					"Respond with a JSON array of objects shaped like {\"pose\": \"...\"} and nothing else.", count)),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
		}),
	}
	if p.systemPrompt != "" {
		messages = append([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.systemPrompt),
		}, messages...)
	}

	span := transaction.StartChild("openai.api_call")
	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: messages,
	})
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI POSE PLANNING FAILED after %v: %v", time.Since(startTime), err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return "", fmt.Errorf("openai pose planning failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		transaction.SetTag("success", "false")
		return "", fmt.Errorf("no choices in OpenAI response")
	}

	text := completion.Choices[0].Message.Content
	if text == "" {
		transaction.SetTag("success", "false")
		return "", fmt.Errorf("openai response did not include any output text")
	}

	log.Printf("📊 OPENAI USAGE: input=%d, output=%d, total=%d",
		completion.Usage.PromptTokens, completion.Usage.CompletionTokens, completion.Usage.TotalTokens)

	transaction.SetTag("success", "true")
	log.Printf("✅ OPENAI POSE PLANNING COMPLETED in %v (%d chars)", time.Since(startTime), len(text))
	return text, nil
}

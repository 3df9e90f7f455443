package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	mimeTypeJSON       = "application/json"
	geminiUserRole     = "user"

	// DefaultPlannerModel plans poses from the uploaded image
	DefaultPlannerModel = "gemini-2.5-flash"

	// DefaultRendererModel is the image-output Gemini model ("nano banana")
	DefaultRendererModel = "gemini-2.5-flash-image-preview"
)

// GeminiProvider implements PosePlanner and FrameRenderer using Google's
// Gemini API
type GeminiProvider struct {
	client        *genai.Client
	plannerModel  string
	rendererModel string
	systemPrompt  string
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey, plannerModel, rendererModel, systemPrompt string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if plannerModel == "" {
		plannerModel = DefaultPlannerModel
	}
	if rendererModel == "" {
		rendererModel = DefaultRendererModel
	}

	return &GeminiProvider{
		client:        client,
		plannerModel:  plannerModel,
		rendererModel: rendererModel,
		systemPrompt:  systemPrompt,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// PlanPoses asks the planner model for count pose descriptions and returns
// the raw JSON payload
func (p *GeminiProvider) PlanPoses(ctx context.Context, image SourceImage, count int) (string, error) {
	startTime := time.Now()
	log.Printf("🎬 GEMINI POSE PLANNING STARTED (model: %s, poses: %d)", p.plannerModel, count)

	transaction := sentry.StartTransaction(ctx, "gemini.plan_poses")
	defer transaction.Finish()
	transaction.SetTag("model", p.plannerModel)
	transaction.SetTag("provider", providerNameGemini)

	contents := []*genai.Content{{
		Role: geminiUserRole,
		Parts: []*genai.Part{
			{Text: fmt.Sprintf("Generate exactly %d sequential pose descriptions for the subject in this image.", count)},
			{InlineData: &genai.Blob{MIMEType: image.MediaType, Data: image.Data}},
		},
	}}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: mimeTypeJSON,
		ResponseSchema:   poseListSchema(),
	}
	if p.systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: p.systemPrompt}},
		}
	}

	span := transaction.StartChild("gemini.api_call")
	result, err := p.client.Models.GenerateContent(ctx, p.plannerModel, contents, config)
	span.Finish()

	if err != nil {
		log.Printf("❌ GEMINI POSE PLANNING FAILED after %v: %v", time.Since(startTime), err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return "", fmt.Errorf("gemini pose planning failed: %w", err)
	}

	text, err := firstCandidateText(result)
	if err != nil {
		transaction.SetTag("success", "false")
		return "", err
	}

	if result.UsageMetadata != nil {
		log.Printf("📊 GEMINI USAGE: input=%d, output=%d, total=%d",
			result.UsageMetadata.PromptTokenCount,
			result.UsageMetadata.CandidatesTokenCount,
			result.UsageMetadata.TotalTokenCount)
	}

	transaction.SetTag("success", "true")
	log.Printf("✅ GEMINI POSE PLANNING COMPLETED in %v (%d chars)", time.Since(startTime), len(text))
	return text, nil
}

// RenderFrame renders one pose variation of the original image. The model
// may answer with inline image data, or with text when it declines to
// produce an image; both are surfaced as a tagged RenderResult.
func (p *GeminiProvider) RenderFrame(ctx context.Context, prompt string, image SourceImage) (*RenderResult, error) {
	startTime := time.Now()
	log.Printf("🖼️  GEMINI FRAME RENDER STARTED (model: %s)", p.rendererModel)

	transaction := sentry.StartTransaction(ctx, "gemini.render_frame")
	defer transaction.Finish()
	transaction.SetTag("model", p.rendererModel)
	transaction.SetTag("provider", providerNameGemini)

	contents := []*genai.Content{{
		Role: geminiUserRole,
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: image.MediaType, Data: image.Data}},
		},
	}}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}

	span := transaction.StartChild("gemini.api_call")
	result, err := p.client.Models.GenerateContent(ctx, p.rendererModel, contents, config)
	span.Finish()

	if err != nil {
		log.Printf("❌ GEMINI FRAME RENDER FAILED after %v: %v", time.Since(startTime), err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("gemini frame render failed: %w", err)
	}

	render, err := extractRenderResult(result)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	transaction.SetTag("success", "true")
	if render.IsImage() {
		log.Printf("✅ GEMINI FRAME RENDER COMPLETED in %v (%d bytes, %s)",
			time.Since(startTime), len(render.ImageData), render.MediaType)
	} else {
		log.Printf("⚠️  GEMINI FRAME RENDER returned text instead of an image in %v", time.Since(startTime))
	}
	return render, nil
}

// poseListSchema constrains planner output to a JSON array of pose objects
func poseListSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"pose": {Type: genai.TypeString},
			},
			Required: []string{"pose"},
		},
	}
}

// firstCandidateText extracts the text of the first candidate
func firstCandidateText(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in Gemini response")
	}
	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no parts in Gemini response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini response did not include any output text")
	}
	return sb.String(), nil
}

// extractRenderResult picks the first inline image part, falling back to
// accumulated text when the model produced none
func extractRenderResult(result *genai.GenerateContentResponse) (*RenderResult, error) {
	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in Gemini response")
	}
	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no parts in Gemini response")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &RenderResult{
				ImageData: part.InlineData.Data,
				MediaType: part.InlineData.MIMEType,
			}, nil
		}
		text.WriteString(part.Text)
	}

	return &RenderResult{Text: text.String()}, nil
}

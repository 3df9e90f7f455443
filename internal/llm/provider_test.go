package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockPlanner is a test implementation of the PosePlanner interface
type MockPlanner struct {
	name      string
	planFunc  func(ctx context.Context, image SourceImage, count int) (string, error)
	callCount int
}

func (m *MockPlanner) Name() string {
	return m.name
}

func (m *MockPlanner) PlanPoses(ctx context.Context, image SourceImage, count int) (string, error) {
	m.callCount++
	if m.planFunc != nil {
		return m.planFunc(ctx, image, count)
	}
	return "[]", nil
}

// MockRenderer is a test implementation of the FrameRenderer interface
type MockRenderer struct {
	name       string
	renderFunc func(ctx context.Context, prompt string, image SourceImage) (*RenderResult, error)
}

func (m *MockRenderer) Name() string {
	return m.name
}

func (m *MockRenderer) RenderFrame(ctx context.Context, prompt string, image SourceImage) (*RenderResult, error) {
	if m.renderFunc != nil {
		return m.renderFunc(ctx, prompt, image)
	}
	return &RenderResult{Text: "no image"}, nil
}

func TestPlannerInterface(t *testing.T) {
	mock := &MockPlanner{name: "mock"}
	assert.Equal(t, "mock", mock.Name())

	raw, err := mock.PlanPoses(context.Background(), SourceImage{}, 3)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
	assert.Equal(t, 1, mock.callCount)
}

func TestRenderResultTagging(t *testing.T) {
	image := &RenderResult{ImageData: []byte{0x01}, MediaType: "image/png"}
	assert.True(t, image.IsImage())

	text := &RenderResult{Text: "the model declined"}
	assert.False(t, text.IsImage())
}

func TestRendererFailurePropagates(t *testing.T) {
	mock := &MockRenderer{
		name: "mock",
		renderFunc: func(_ context.Context, _ string, _ SourceImage) (*RenderResult, error) {
			return nil, errors.New("render quota exceeded")
		},
	}

	_, err := mock.RenderFrame(context.Background(), "pose", SourceImage{})
	assert.ErrorContains(t, err, "render quota exceeded")
}

func TestProviderFactorySelection(t *testing.T) {
	factory := NewProviderFactory("sk-test", "gm-test", "system prompt", "")
	ctx := context.Background()

	planner, err := factory.GetPlanner(ctx, "gpt-4o-mini", "")
	require.NoError(t, err)
	assert.Equal(t, "openai", planner.Name())

	planner, err = factory.GetPlanner(ctx, "", "openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", planner.Name())

	_, err = factory.GetPlanner(ctx, "", "anthropic")
	assert.Error(t, err)
}

func TestProviderFactoryRequiresKeys(t *testing.T) {
	factory := NewProviderFactory("", "", "", "")
	ctx := context.Background()

	_, err := factory.GetPlanner(ctx, "gpt-4o-mini", "")
	assert.ErrorContains(t, err, "openai API key not configured")

	_, err = factory.GetRenderer(ctx)
	assert.ErrorContains(t, err, "gemini API key not configured")
}

package prompt

import (
	"fmt"
	"strings"
)

// Builder synthesizes the per-frame render prompt from a pose description
// and the fixed style/identity-preservation instructions
type Builder struct {
	loader *Loader
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder() *Builder {
	return &Builder{loader: NewPromptLoader()}
}

// BuildRenderPrompt combines one pose description with the frame style
// instructions. Every render call receives the original image, so the
// prompt carries all pose context itself.
func (b *Builder) BuildRenderPrompt(pose string) (string, error) {
	pose = strings.TrimSpace(pose)
	if pose == "" {
		return "", fmt.Errorf("pose description is empty")
	}

	style, err := b.loader.GetFrameStyleInstructions()
	if err != nil {
		return "", fmt.Errorf("failed to load style instructions: %w", err)
	}

	return fmt.Sprintf("%s\n\nRequested pose: %s", style, pose), nil
}

// PlannerSystemPrompt returns the system prompt for the pose planner
func (b *Builder) PlannerSystemPrompt() (string, error) {
	return b.loader.GetPosePlannerPrompt()
}

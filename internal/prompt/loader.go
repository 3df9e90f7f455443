package prompt

import (
	"strings"

	"github.com/flipbook-labs/flipbook-api/pkg/embedded"
)

type Loader struct{}

func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetPosePlannerPrompt loads the pose planner system prompt
func (l *Loader) GetPosePlannerPrompt() (string, error) {
	return strings.TrimSpace(string(embedded.PosePlannerPromptTxt)), nil
}

// GetFrameStyleInstructions loads the style/identity-preservation
// instructions prepended to every render prompt
func (l *Loader) GetFrameStyleInstructions() (string, error) {
	return strings.TrimSpace(string(embedded.FrameStyleInstructionsTxt)), nil
}

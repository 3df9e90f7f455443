package prompt

import (
	"strings"
	"testing"
)

func TestBuildRenderPrompt(t *testing.T) {
	builder := NewPromptBuilder()

	result, err := builder.BuildRenderPrompt("arms raised above the head")
	if err != nil {
		t.Fatalf("BuildRenderPrompt() returned error: %v", err)
	}

	if !strings.Contains(result, "arms raised above the head") {
		t.Error("BuildRenderPrompt() does not contain the pose description")
	}
	if !strings.Contains(result, "identity") {
		t.Error("BuildRenderPrompt() does not contain the style instructions")
	}

	// Style instructions come first, pose last
	if strings.Index(result, "identity") > strings.Index(result, "arms raised") {
		t.Error("BuildRenderPrompt() puts the pose before the style instructions")
	}
}

func TestBuildRenderPromptTrimsPose(t *testing.T) {
	builder := NewPromptBuilder()

	result, err := builder.BuildRenderPrompt("  leaning left  ")
	if err != nil {
		t.Fatalf("BuildRenderPrompt() returned error: %v", err)
	}
	if !strings.HasSuffix(result, "Requested pose: leaning left") {
		t.Errorf("BuildRenderPrompt() did not trim the pose: %q", result)
	}
}

func TestBuildRenderPromptRejectsEmptyPose(t *testing.T) {
	builder := NewPromptBuilder()

	if _, err := builder.BuildRenderPrompt("   "); err == nil {
		t.Error("BuildRenderPrompt() accepted an empty pose")
	}
}

func TestPlannerSystemPrompt(t *testing.T) {
	builder := NewPromptBuilder()

	content, err := builder.PlannerSystemPrompt()
	if err != nil {
		t.Fatalf("PlannerSystemPrompt() returned error: %v", err)
	}
	if content == "" {
		t.Error("PlannerSystemPrompt() returned empty string")
	}
}

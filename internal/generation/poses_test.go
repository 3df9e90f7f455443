package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePoses_ObjectList(t *testing.T) {
	poses := ParsePoses(`[{"pose":"arms raised"},{"pose":"arms lowered"}]`)
	assert.Equal(t, []string{"arms raised", "arms lowered"}, poses)
}

func TestParsePoses_StringList(t *testing.T) {
	poses := ParsePoses(`["arms raised", "arms lowered"]`)
	assert.Equal(t, []string{"arms raised", "arms lowered"}, poses)
}

func TestParsePoses_MarkdownFences(t *testing.T) {
	raw := "```json\n[{\"pose\":\"crouching\"}]\n```"
	poses := ParsePoses(raw)
	assert.Equal(t, []string{"crouching"}, poses)
}

func TestParsePoses_SkipsEmptyEntries(t *testing.T) {
	poses := ParsePoses(`[{"pose":"  jumping  "},{"pose":""},{"other":"x"},42]`)
	assert.Equal(t, []string{"jumping"}, poses)
}

func TestParsePoses_UnparseableIsZeroPoses(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"not json at all",
		`{"pose":"a single object, not a list"}`,
		"I cannot help with that.",
	}
	for _, raw := range cases {
		assert.Empty(t, ParsePoses(raw), "raw: %q", raw)
	}
}

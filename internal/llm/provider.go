package llm

import (
	"context"
)

// SourceImage is the user-uploaded image one generation request works from.
// It is immutable for the lifetime of the request; every renderer call
// receives the original, never a previously generated frame.
type SourceImage struct {
	Data      []byte
	MediaType string
}

// PosePlanner converts one image into an ordered list of textual pose
// descriptions via a single remote call. The raw payload is returned as
// delivered by the model; callers parse it tolerantly.
type PosePlanner interface {
	// PlanPoses requests exactly count pose descriptions for the image
	PlanPoses(ctx context.Context, image SourceImage, count int) (string, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// RenderResult is the tagged output of one frame render: either image
// bytes with a media type, or free-form text when the model declines to
// return an image.
type RenderResult struct {
	ImageData []byte
	MediaType string
	Text      string
}

// IsImage reports whether the renderer produced an image
func (r *RenderResult) IsImage() bool {
	return len(r.ImageData) > 0
}

// FrameRenderer converts (prompt, original image) into a rendered image or
// a text fallback. Calls are independent request/response pairs with no
// persisted side effects.
type FrameRenderer interface {
	// RenderFrame renders one pose variation of the original image
	RenderFrame(ctx context.Context, prompt string, image SourceImage) (*RenderResult, error)

	// Name returns the provider name
	Name() string
}

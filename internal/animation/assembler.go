package animation

import (
	"encoding/base64"
	"fmt"
	"log"

	"github.com/flipbook-labs/flipbook-api/internal/stream"
)

// Assembler consumes decoded progress events and grows an Animation one
// frame at a time. It tracks the latest human-readable status so a UI can
// surface progress while the stream is still open.
type Assembler struct {
	animation *Assembled
}

// Assembled is the result of consuming one generation stream
type Assembled struct {
	Animation *Animation
	RawPlan   string // planner output, recorded for display
	Status    string
	Failed    bool
	done      bool
}

// NewAssembler creates an assembler over a fresh animation
func NewAssembler(frameRate int) *Assembler {
	return &Assembler{
		animation: &Assembled{
			Animation: New(frameRate),
			Status:    "Waiting for poses...",
		},
	}
}

// Handle dispatches one decoded event. It is intended as the handler for
// stream.Decode and never returns an error for content problems; a bad
// frame payload is logged and dropped.
func (a *Assembler) Handle(event stream.Event) error {
	switch event.Type {
	case stream.EventPoses:
		a.animation.RawPlan = event.Text()
		a.animation.Status = "Poses planned, rendering frames..."

	case stream.EventFrame:
		payload, err := event.Frame()
		if err != nil {
			log.Printf("⚠️  Dropping undecodable frame event: %v", err)
			return nil
		}
		if payload.Type != stream.FrameTypeImage {
			// Text fallback: no frame for this slot
			return nil
		}
		data, err := base64.StdEncoding.DecodeString(payload.Base64ImageData)
		if err != nil {
			log.Printf("⚠️  Dropping frame with corrupt base64 payload: %v", err)
			return nil
		}
		a.animation.Animation.Append(Frame{Data: data, MediaType: payload.ContentType})
		a.animation.Status = fmt.Sprintf("Rendered %d frames...", a.animation.Animation.Len())

	case stream.EventComplete:
		a.animation.Status = event.Text()
		a.animation.done = true

	case stream.EventError:
		a.animation.Status = event.Text()
		a.animation.Failed = true
		a.animation.done = true

	default:
		log.Printf("⚠️  Ignoring unknown event type %q", event.Type)
	}
	return nil
}

// Result returns the assembled animation state
func (a *Assembler) Result() *Assembled {
	return a.animation
}

// Done reports whether a terminal event has been observed
func (a *Assembler) Done() bool {
	return a.animation.done
}

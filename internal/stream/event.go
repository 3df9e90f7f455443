package stream

import (
	"encoding/json"
	"fmt"
)

// EventType tags a progress event on the wire
type EventType string

const (
	// EventPoses carries the raw pose-planner output. Exactly one per
	// stream, always first.
	EventPoses EventType = "poses"

	// EventFrame carries one rendered frame. Zero or more per stream,
	// emitted in pose-plan order.
	EventFrame EventType = "frame"

	// EventComplete terminates a successful stream.
	EventComplete EventType = "complete"

	// EventError terminates a failed stream.
	EventError EventType = "error"

	// eventFrameAlias is the legacy wire tag for frame events, named after
	// the image model that produces them. Accepted on decode only.
	eventFrameAlias EventType = "nanobanana"
)

// Event is the unit of wire transmission for generation progress
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// FramePayload is the data carried by a frame event. It is a tagged
// variant: the renderer returns either an image or free-form text.
type FramePayload struct {
	Type            string `json:"type"` // "image" or "text"
	Base64ImageData string `json:"base64ImageData,omitempty"`
	ContentType     string `json:"contentType,omitempty"`
	Content         string `json:"content,omitempty"`
}

const (
	// FrameTypeImage marks a frame payload carrying base64 image bytes
	FrameTypeImage = "image"
	// FrameTypeText marks a text fallback from the renderer
	FrameTypeText = "text"
)

// PosesEvent wraps the raw planner output in a poses event
func PosesEvent(rawPlannerOutput string) Event {
	data, _ := json.Marshal(rawPlannerOutput)
	return Event{Type: EventPoses, Data: data}
}

// FrameEvent wraps a frame payload in a frame event
func FrameEvent(payload FramePayload) Event {
	data, _ := json.Marshal(payload)
	return Event{Type: EventFrame, Data: data}
}

// CompleteEvent builds the terminal success event
func CompleteEvent(status string) Event {
	data, _ := json.Marshal(status)
	return Event{Type: EventComplete, Data: data}
}

// ErrorEvent builds the terminal failure event
func ErrorEvent(message string) Event {
	data, _ := json.Marshal(message)
	return Event{Type: EventError, Data: data}
}

// IsTerminal reports whether no further events may follow this one
func (e Event) IsTerminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// Frame decodes the payload of a frame event
func (e Event) Frame() (*FramePayload, error) {
	if e.Type != EventFrame {
		return nil, fmt.Errorf("not a frame event: %s", e.Type)
	}
	var payload FramePayload
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode frame payload: %w", err)
	}
	return &payload, nil
}

// Text decodes the payload of poses, complete and error events, all of
// which carry a plain string
func (e Event) Text() string {
	var s string
	if err := json.Unmarshal(e.Data, &s); err != nil {
		// Planner output may be a structured list rather than a string;
		// return it verbatim so the client can still display it.
		return string(e.Data)
	}
	return s
}

package animation

import (
	"encoding/base64"
	"fmt"
)

// DefaultFrameRate is the playback rate for assembled animations
const DefaultFrameRate = 6

// Frame is one successfully rendered pose variation
type Frame struct {
	Data      []byte
	MediaType string
}

// DataURL returns the frame as a data-addressable image resource
func (f Frame) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", f.MediaType, base64.StdEncoding.EncodeToString(f.Data))
}

// Animation is the client-side ordered frame collection plus playback
// state. Frames grow monotonically as the stream arrives; reordering and
// deletion are post-hoc user edits, not part of the protocol.
type Animation struct {
	Frames    []Frame
	Cursor    int
	FrameRate int
}

// New creates an empty animation at the given frame rate
func New(frameRate int) *Animation {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	return &Animation{FrameRate: frameRate}
}

// Append adds a frame in arrival order
func (a *Animation) Append(frame Frame) {
	a.Frames = append(a.Frames, frame)
}

// Len returns the current frame count
func (a *Animation) Len() int {
	return len(a.Frames)
}

// Advance moves the playback cursor one frame, wrapping at the end, and
// returns the frame under the new cursor
func (a *Animation) Advance() (Frame, bool) {
	if len(a.Frames) == 0 {
		return Frame{}, false
	}
	a.Cursor = (a.Cursor + 1) % len(a.Frames)
	return a.Frames[a.Cursor], true
}

// Move reorders a frame from one index to another
func (a *Animation) Move(from, to int) error {
	if from < 0 || from >= len(a.Frames) || to < 0 || to >= len(a.Frames) {
		return fmt.Errorf("move out of range: %d -> %d (len %d)", from, to, len(a.Frames))
	}
	frame := a.Frames[from]
	a.Frames = append(a.Frames[:from], a.Frames[from+1:]...)

	rest := append([]Frame{}, a.Frames[to:]...)
	a.Frames = append(a.Frames[:to], frame)
	a.Frames = append(a.Frames, rest...)
	return nil
}

// Delete removes the frame at the given index
func (a *Animation) Delete(index int) error {
	if index < 0 || index >= len(a.Frames) {
		return fmt.Errorf("delete out of range: %d (len %d)", index, len(a.Frames))
	}
	a.Frames = append(a.Frames[:index], a.Frames[index+1:]...)
	if a.Cursor >= len(a.Frames) {
		a.Cursor = 0
	}
	return nil
}

package generation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/flipbook-labs/flipbook-api/internal/llm"
	"github.com/flipbook-labs/flipbook-api/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlanner struct {
	output string
	err    error
	calls  int
}

func (p *fakePlanner) Name() string { return "fake-planner" }

func (p *fakePlanner) PlanPoses(_ context.Context, _ llm.SourceImage, _ int) (string, error) {
	p.calls++
	return p.output, p.err
}

type fakeRenderer struct {
	// results maps call index (0-based) to outcome; missing entries succeed
	failAt   map[int]error
	textAt   map[int]bool
	calls    int
	prompts  []string
	received []llm.SourceImage
}

func (r *fakeRenderer) Name() string { return "fake-renderer" }

func (r *fakeRenderer) RenderFrame(_ context.Context, prompt string, image llm.SourceImage) (*llm.RenderResult, error) {
	idx := r.calls
	r.calls++
	r.prompts = append(r.prompts, prompt)
	r.received = append(r.received, image)

	if err, ok := r.failAt[idx]; ok {
		return nil, err
	}
	if r.textAt[idx] {
		return &llm.RenderResult{Text: "cannot render this one"}, nil
	}
	return &llm.RenderResult{
		ImageData: []byte(fmt.Sprintf("frame-%d", idx)),
		MediaType: "image/png",
	}, nil
}

func collectEvents(events *[]stream.Event) EmitFunc {
	return func(event stream.Event) error {
		*events = append(*events, event)
		return nil
	}
}

func testImage() llm.SourceImage {
	return llm.SourceImage{Data: []byte("original-image"), MediaType: "image/png"}
}

func TestRun_AllRendersSucceed(t *testing.T) {
	// Scenario A: two poses, both renders succeed
	planner := &fakePlanner{output: `[{"pose":"arms raised"},{"pose":"arms lowered"}]`}
	renderer := &fakeRenderer{}
	orch := NewOrchestrator(planner, renderer, 2)

	var events []stream.Event
	result, err := orch.Run(context.Background(), testImage(), collectEvents(&events))

	require.NoError(t, err)
	assert.Equal(t, 2, result.PosesPlanned)
	assert.Equal(t, 2, result.FramesEmitted)
	assert.Equal(t, 0, result.FramesSkipped)
	assert.Equal(t, 1, planner.calls)

	require.Len(t, events, 4)
	assert.Equal(t, stream.EventPoses, events[0].Type)
	assert.Equal(t, stream.EventFrame, events[1].Type)
	assert.Equal(t, stream.EventFrame, events[2].Type)
	assert.Equal(t, stream.EventComplete, events[3].Type)

	// Frames arrive in pose-plan order
	for i, event := range events[1:3] {
		frame, frameErr := event.Frame()
		require.NoError(t, frameErr)
		decoded, decodeErr := base64.StdEncoding.DecodeString(frame.Base64ImageData)
		require.NoError(t, decodeErr)
		assert.Equal(t, fmt.Sprintf("frame-%d", i), string(decoded))
	}

	// Every render call received the ORIGINAL image, not a generated frame
	for _, img := range renderer.received {
		assert.Equal(t, []byte("original-image"), img.Data)
	}

	// The synthesized prompts carry pose and style instructions
	assert.Contains(t, renderer.prompts[0], "arms raised")
	assert.Contains(t, renderer.prompts[0], "identity")
}

func TestRun_PlannerFailure(t *testing.T) {
	// Scenario B: planner call throws -> one error event, zero frames
	planner := &fakePlanner{err: errors.New("model overloaded")}
	renderer := &fakeRenderer{}
	orch := NewOrchestrator(planner, renderer, 12)

	var events []stream.Event
	_, err := orch.Run(context.Background(), testImage(), collectEvents(&events))

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, stream.EventError, events[0].Type)
	assert.Contains(t, events[0].Text(), "model overloaded")
	assert.Equal(t, 0, renderer.calls, "no renders may be attempted after planning fails")
}

func TestRun_PerPoseFailureIsSkipped(t *testing.T) {
	// Scenario C: renderer fails on pose 2 of 3 -> frames 1 and 3 plus complete
	planner := &fakePlanner{output: `[{"pose":"a"},{"pose":"b"},{"pose":"c"}]`}
	renderer := &fakeRenderer{failAt: map[int]error{1: errors.New("render quota exceeded")}}
	orch := NewOrchestrator(planner, renderer, 3)

	var events []stream.Event
	result, err := orch.Run(context.Background(), testImage(), collectEvents(&events))

	require.NoError(t, err)
	assert.Equal(t, 2, result.FramesEmitted)
	assert.Equal(t, 1, result.FramesSkipped)
	assert.Equal(t, 3, renderer.calls, "remaining poses must still be rendered")

	require.Len(t, events, 4)
	assert.Equal(t, stream.EventPoses, events[0].Type)
	assert.Equal(t, stream.EventFrame, events[1].Type)
	assert.Equal(t, stream.EventFrame, events[2].Type)
	assert.Equal(t, stream.EventComplete, events[3].Type)
	assert.Contains(t, events[3].Text(), "2 of 3")
}

func TestRun_TextFallbackYieldsNoFrame(t *testing.T) {
	planner := &fakePlanner{output: `[{"pose":"a"},{"pose":"b"}]`}
	renderer := &fakeRenderer{textAt: map[int]bool{0: true}}
	orch := NewOrchestrator(planner, renderer, 2)

	var events []stream.Event
	result, err := orch.Run(context.Background(), testImage(), collectEvents(&events))

	require.NoError(t, err)
	assert.Equal(t, 1, result.FramesEmitted)
	assert.Equal(t, 1, result.FramesSkipped)
	require.Len(t, events, 3) // poses, one frame, complete
}

func TestRun_UnparseablePlanGoesStraightToComplete(t *testing.T) {
	planner := &fakePlanner{output: "I'm sorry, I can't describe poses for this image."}
	renderer := &fakeRenderer{}
	orch := NewOrchestrator(planner, renderer, 12)

	var events []stream.Event
	result, err := orch.Run(context.Background(), testImage(), collectEvents(&events))

	require.NoError(t, err)
	assert.Equal(t, 0, result.PosesPlanned)
	assert.Equal(t, 0, renderer.calls)

	require.Len(t, events, 2)
	assert.Equal(t, stream.EventPoses, events[0].Type)
	assert.Equal(t, stream.EventComplete, events[1].Type)
}

func TestRun_MissingImageFailsBeforeStreaming(t *testing.T) {
	// Scenario D (orchestrator side): precondition failure, no events
	planner := &fakePlanner{output: "[]"}
	orch := NewOrchestrator(planner, &fakeRenderer{}, 12)

	var events []stream.Event
	_, err := orch.Run(context.Background(), llm.SourceImage{}, collectEvents(&events))

	require.Error(t, err)
	assert.Empty(t, events)
	assert.Equal(t, 0, planner.calls)
}

func TestRun_TransportFailureStopsRemoteCalls(t *testing.T) {
	planner := &fakePlanner{output: `[{"pose":"a"},{"pose":"b"},{"pose":"c"}]`}
	renderer := &fakeRenderer{}
	orch := NewOrchestrator(planner, renderer, 3)

	// Fail the write of the first frame event
	var emitted int
	emit := func(event stream.Event) error {
		emitted++
		if event.Type == stream.EventFrame {
			return errors.New("broken pipe")
		}
		return nil
	}

	_, err := orch.Run(context.Background(), testImage(), emit)

	require.Error(t, err)
	assert.Equal(t, 1, renderer.calls, "no further renders after the client is gone")
}

func TestRun_CancellationStopsBetweenRenders(t *testing.T) {
	planner := &fakePlanner{output: `[{"pose":"a"},{"pose":"b"},{"pose":"c"}]`}
	renderer := &fakeRenderer{}
	orch := NewOrchestrator(planner, renderer, 3)

	ctx, cancel := context.WithCancel(context.Background())
	var events []stream.Event
	emit := func(event stream.Event) error {
		events = append(events, event)
		if event.Type == stream.EventFrame {
			cancel()
		}
		return nil
	}

	_, err := orch.Run(ctx, testImage(), emit)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, renderer.calls)
}

func TestRun_ExactlyOneTerminalEvent(t *testing.T) {
	cases := []struct {
		name    string
		planner *fakePlanner
	}{
		{"success", &fakePlanner{output: `[{"pose":"a"}]`}},
		{"planner failure", &fakePlanner{err: errors.New("boom")}},
		{"empty plan", &fakePlanner{output: "[]"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orch := NewOrchestrator(tc.planner, &fakeRenderer{}, 1)
			var events []stream.Event
			_, err := orch.Run(context.Background(), testImage(), collectEvents(&events))
			require.NoError(t, err)

			terminals := 0
			for i, event := range events {
				if event.IsTerminal() {
					terminals++
					assert.Equal(t, len(events)-1, i, "no events may follow the terminal event")
				}
			}
			assert.Equal(t, 1, terminals)
		})
	}
}

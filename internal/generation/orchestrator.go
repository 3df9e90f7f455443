package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/flipbook-labs/flipbook-api/internal/llm"
	"github.com/flipbook-labs/flipbook-api/internal/prompt"
	"github.com/flipbook-labs/flipbook-api/internal/stream"
	"github.com/getsentry/sentry-go"
)

// DefaultPoseCount is the server-fixed number of poses per animation
const DefaultPoseCount = 12

// EmitFunc writes one progress event onto the client transport. A returned
// error means the client is unreachable; the orchestrator stops issuing
// remote calls.
type EmitFunc func(stream.Event) error

// Result summarizes one finished generation for logging and history
type Result struct {
	PosesPlanned  int
	FramesEmitted int
	FramesSkipped int
	Duration      time.Duration
}

// Orchestrator sequences one generation request: plan poses once, render
// each pose strictly in order, and convert failures into protocol-visible
// events instead of crashing the transport.
type Orchestrator struct {
	planner   llm.PosePlanner
	renderer  llm.FrameRenderer
	builder   *prompt.Builder
	poseCount int
}

// NewOrchestrator creates an orchestrator over the given collaborators
func NewOrchestrator(planner llm.PosePlanner, renderer llm.FrameRenderer, poseCount int) *Orchestrator {
	if poseCount <= 0 {
		poseCount = DefaultPoseCount
	}
	return &Orchestrator{
		planner:   planner,
		renderer:  renderer,
		builder:   prompt.NewPromptBuilder(),
		poseCount: poseCount,
	}
}

// Run drives one generation to its terminal event.
//
// The event sequence is: one poses event, zero or more frame events in
// pose-plan order, then exactly one complete or error event. Renders are
// awaited sequentially; there is no parallel fan-out, both for rate-limit
// hygiene and so frame order is deterministic on the client.
//
// A non-nil returned error means the transport failed or the context was
// canceled mid-stream; everything else ends the stream with a terminal
// event and returns nil.
func (o *Orchestrator) Run(ctx context.Context, image llm.SourceImage, emit EmitFunc) (*Result, error) {
	startTime := time.Now()
	result := &Result{}

	if len(image.Data) == 0 {
		// Protocol precondition; the handler rejects this before streaming
		return result, fmt.Errorf("no image provided")
	}

	transaction := sentry.StartTransaction(ctx, "generation.run")
	defer transaction.Finish()
	transaction.SetTag("planner", o.planner.Name())
	transaction.SetTag("renderer", o.renderer.Name())

	raw, err := o.planner.PlanPoses(ctx, image, o.poseCount)
	if err != nil {
		log.Printf("❌ GENERATION: pose planning failed: %v", err)
		transaction.SetTag("success", "false")
		result.Duration = time.Since(startTime)
		return result, emit(stream.ErrorEvent(fmt.Sprintf("pose planning failed: %v", err)))
	}

	if err := emit(stream.PosesEvent(raw)); err != nil {
		return result, fmt.Errorf("client gone before poses event: %w", err)
	}

	poses := ParsePoses(raw)
	result.PosesPlanned = len(poses)
	log.Printf("🎬 GENERATION: planned %d poses", len(poses))

	for i, pose := range poses {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("generation canceled after %d frames: %w", result.FramesEmitted, err)
		}

		frame, ok := o.renderPose(ctx, i, pose, image)
		if !ok {
			result.FramesSkipped++
			continue
		}

		if err := emit(stream.FrameEvent(*frame)); err != nil {
			return result, fmt.Errorf("client gone after %d frames: %w", result.FramesEmitted, err)
		}
		result.FramesEmitted++
	}

	result.Duration = time.Since(startTime)
	transaction.SetTag("success", "true")
	transaction.SetData("frames_emitted", result.FramesEmitted)
	transaction.SetData("frames_skipped", result.FramesSkipped)
	log.Printf("✅ GENERATION COMPLETED in %v (poses: %d, frames: %d, skipped: %d)",
		result.Duration, result.PosesPlanned, result.FramesEmitted, result.FramesSkipped)

	status := fmt.Sprintf("Generated %d of %d frames", result.FramesEmitted, result.PosesPlanned)
	return result, emit(stream.CompleteEvent(status))
}

// renderPose runs one renderer call and converts its outcome into an
// optional frame payload. A failed call or a text-only answer skips the
// slot: one bad frame must not sink the rest of the sequence.
func (o *Orchestrator) renderPose(ctx context.Context, index int, pose string, image llm.SourceImage) (*stream.FramePayload, bool) {
	renderPrompt, err := o.builder.BuildRenderPrompt(pose)
	if err != nil {
		log.Printf("⚠️  GENERATION: skipping pose %d (unusable description): %v", index, err)
		return nil, false
	}

	render, err := o.renderer.RenderFrame(ctx, renderPrompt, image)
	if err != nil {
		log.Printf("⚠️  GENERATION: render failed for pose %d, continuing: %v", index, err)
		sentry.CaptureException(err)
		return nil, false
	}

	if !render.IsImage() {
		log.Printf("⚠️  GENERATION: pose %d returned text instead of an image, continuing", index)
		return nil, false
	}

	return &stream.FramePayload{
		Type:            stream.FrameTypeImage,
		Base64ImageData: base64.StdEncoding.EncodeToString(render.ImageData),
		ContentType:     render.MediaType,
	}, true
}

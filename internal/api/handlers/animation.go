package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/flipbook-labs/flipbook-api/internal/config"
	"github.com/flipbook-labs/flipbook-api/internal/generation"
	"github.com/flipbook-labs/flipbook-api/internal/llm"
	"github.com/flipbook-labs/flipbook-api/internal/logger"
	"github.com/flipbook-labs/flipbook-api/internal/metrics"
	"github.com/flipbook-labs/flipbook-api/internal/models"
	"github.com/flipbook-labs/flipbook-api/internal/observability"
	"github.com/flipbook-labs/flipbook-api/internal/services"
	"github.com/flipbook-labs/flipbook-api/internal/storage"
	"github.com/flipbook-labs/flipbook-api/internal/stream"
	"github.com/gin-gonic/gin"
)

// ProviderSource yields the LLM collaborators for one request. Satisfied by
// llm.ProviderFactory; tests inject fakes.
type ProviderSource interface {
	GetPlanner(ctx context.Context, model, providerName string) (llm.PosePlanner, error)
	GetRenderer(ctx context.Context) (llm.FrameRenderer, error)
}

// AnimationHandler drives the streaming generation endpoint
type AnimationHandler struct {
	cfg        *config.Config
	providers  ProviderSource
	history    *services.HistoryService
	blobs      storage.BlobStore
	cloudwatch *metrics.Client
}

// NewAnimationHandler creates the handler over its collaborators. history,
// blobs and cloudwatch may be disabled instances but must not be nil
// (pass services.NewHistoryService(nil) etc. when unconfigured).
func NewAnimationHandler(cfg *config.Config, providers ProviderSource,
	history *services.HistoryService, blobs storage.BlobStore, cw *metrics.Client) *AnimationHandler {
	return &AnimationHandler{
		cfg:        cfg,
		providers:  providers,
		history:    history,
		blobs:      blobs,
		cloudwatch: cw,
	}
}

// Generate handles POST /api/v1/animations/generate.
//
// It accepts one multipart image upload and answers with a chunked stream
// of progress events. All validation happens before the first byte of the
// stream is written; after that point failures surface as protocol error
// events, never as HTTP status codes.
func (h *AnimationHandler) Generate(c *gin.Context) {
	startTime := time.Now()
	requestID := c.GetString("request_id")

	imageData, mediaType, ok := h.readUpload(c)
	if !ok {
		return
	}

	log.Printf("🎬 ANIMATION REQUEST: %d bytes (%s) [request: %s]", len(imageData), mediaType, requestID)

	planner, err := h.providers.GetPlanner(c.Request.Context(), h.cfg.PlannerModel, "")
	if err != nil {
		logger.Error("Failed to create pose planner", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pose planner unavailable"})
		return
	}

	renderer, err := h.providers.GetRenderer(c.Request.Context())
	if err != nil {
		logger.Error("Failed to create frame renderer", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "frame renderer unavailable"})
		return
	}

	lfTrace := observability.GetClient().StartTrace(c.Request.Context(), "animation.generate", map[string]interface{}{
		"request_id": requestID,
		"planner":    planner.Name(),
		"renderer":   renderer.Name(),
	})
	defer lfTrace.Finish()
	lfGen := lfTrace.Generation("generation.pipeline", map[string]interface{}{
		"image_bytes": len(imageData),
		"media_type":  mediaType,
		"pose_count":  h.cfg.PoseCount,
	})

	// From here on the response is a stream; status is already committed.
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	encoder := stream.NewEncoder(c.Writer)
	var terminal stream.EventType
	emit := func(event stream.Event) error {
		if event.IsTerminal() {
			terminal = event.Type
		}
		if event.Type == stream.EventFrame {
			h.mirrorFrame(event)
		}
		return encoder.Encode(event)
	}

	orchestrator := generation.NewOrchestrator(planner, renderer, h.cfg.PoseCount)
	image := llm.SourceImage{Data: imageData, MediaType: mediaType}

	result, runErr := orchestrator.Run(c.Request.Context(), image, emit)

	status := terminalStatus(terminal)
	h.record(c, planner.Name(), renderer.Name(), requestID, status, result, runErr)

	lfGen.Output(map[string]interface{}{
		"status":         status,
		"poses_planned":  result.PosesPlanned,
		"frames_emitted": result.FramesEmitted,
		"frames_skipped": result.FramesSkipped,
	})
	lfGen.Metadata(map[string]interface{}{
		"cost_usd": observability.CalculateRenderCost(result.FramesEmitted),
	})
	if status != models.GenerationStatusComplete {
		lfGen.SetLevel("ERROR")
	}
	lfGen.Finish()

	h.cloudwatch.RecordGeneration(planner.Name(), result.FramesEmitted, result.FramesSkipped, time.Since(startTime))
}

// readUpload validates the multipart upload and loads the image bytes.
// On failure it writes a JSON 400 and returns ok=false.
func (h *AnimationHandler) readUpload(c *gin.Context) (data []byte, mediaType string, ok bool) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no image provided"})
		return nil, "", false
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("image too large (max %d bytes)", maxUploadBytes),
		})
		return nil, "", false
	}

	data, err = io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return nil, "", false
	}
	if len(data) > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("image too large (max %d bytes)", maxUploadBytes),
		})
		return nil, "", false
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no image provided"})
		return nil, "", false
	}

	mediaType = header.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = http.DetectContentType(data)
	}
	if !allowedImageTypes[mediaType] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("unsupported image type: %s", mediaType),
		})
		return nil, "", false
	}

	return data, mediaType, true
}

// mirrorFrame uploads a frame's image bytes to the blob store. Uploads run
// in the background on a detached context; the stream never waits on S3.
func (h *AnimationHandler) mirrorFrame(event stream.Event) {
	if !h.blobs.IsEnabled() {
		return
	}

	payload, err := event.Frame()
	if err != nil || payload.Type != stream.FrameTypeImage {
		return
	}
	frameBytes, err := base64.StdEncoding.DecodeString(payload.Base64ImageData)
	if err != nil {
		return
	}

	go func() {
		if _, err := h.blobs.Store(context.Background(), frameBytes, payload.ContentType); err != nil {
			log.Printf("⚠️  Failed to mirror frame to blob store: %v", err)
		}
	}()
}

// record logs the finished run to history, structured logs and Sentry
func (h *AnimationHandler) record(c *gin.Context, planner, renderer, requestID, status string,
	result *generation.Result, runErr error) {
	fields := logger.WithContext(c)
	fields["poses_planned"] = result.PosesPlanned
	fields["frames_emitted"] = result.FramesEmitted
	fields["frames_skipped"] = result.FramesSkipped
	fields["status"] = status
	logger.LogGeneration(c.Request.Context(), planner, renderer, result.Duration, fields)

	record := &models.GenerationLog{
		RequestID:     requestID,
		Planner:       planner,
		Renderer:      renderer,
		PosesPlanned:  result.PosesPlanned,
		FramesEmitted: result.FramesEmitted,
		FramesSkipped: result.FramesSkipped,
		Status:        status,
		DurationMS:    int(result.Duration.Milliseconds()),
	}
	if runErr != nil {
		record.ErrorMessage = runErr.Error()
	}
	h.history.LogGeneration(record)
}

// terminalStatus maps the observed terminal event onto a history status.
// No terminal event means the transport failed or the client canceled.
func terminalStatus(terminal stream.EventType) string {
	switch terminal {
	case stream.EventComplete:
		return models.GenerationStatusComplete
	case stream.EventError:
		return models.GenerationStatusError
	default:
		return models.GenerationStatusAborted
	}
}

// ListGenerations handles GET /api/v1/generations (history)
func (h *AnimationHandler) ListGenerations(c *gin.Context) {
	if !h.history.IsEnabled() {
		c.JSON(http.StatusOK, gin.H{"generations": []models.GenerationLog{}, "enabled": false})
		return
	}

	records, err := h.history.RecentGenerations(historyPageSize)
	if err != nil {
		logger.Error("Failed to load generation history", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"generations": records, "enabled": true})
}

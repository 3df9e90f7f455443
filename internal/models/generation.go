package models

import (
	"time"
)

// Generation statuses
const (
	GenerationStatusComplete = "complete"
	GenerationStatusError    = "error"
	GenerationStatusAborted  = "aborted"
)

// GenerationLog records one finished generation request for history and
// analytics. Frames themselves are never persisted; only counts and
// timings are kept.
type GenerationLog struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	RequestID     string    `gorm:"index" json:"request_id"`
	Planner       string    `gorm:"not null" json:"planner"`
	Renderer      string    `gorm:"not null" json:"renderer"`
	PosesPlanned  int       `gorm:"not null" json:"poses_planned"`
	FramesEmitted int       `gorm:"not null" json:"frames_emitted"`
	FramesSkipped int       `gorm:"not null" json:"frames_skipped"`
	Status        string    `gorm:"not null;index" json:"status"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	DurationMS    int       `gorm:"not null" json:"duration_ms"`
}

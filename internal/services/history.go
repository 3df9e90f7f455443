package services

import (
	"log"

	"github.com/flipbook-labs/flipbook-api/internal/models"
	"gorm.io/gorm"
)

// HistoryService records finished generations. A nil db disables it; the
// streaming protocol never depends on a record landing.
type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// IsEnabled reports whether records are persisted
func (s *HistoryService) IsEnabled() bool {
	return s.db != nil
}

// LogGeneration persists one generation record. Failures are logged and
// swallowed so history can never break a live stream.
func (s *HistoryService) LogGeneration(record *models.GenerationLog) {
	if s.db == nil {
		return
	}
	if err := s.db.Create(record).Error; err != nil {
		log.Printf("⚠️  Failed to log generation to history: %v", err)
	}
}

// RecentGenerations returns the latest records, newest first
func (s *HistoryService) RecentGenerations(limit int) ([]models.GenerationLog, error) {
	if s.db == nil {
		return nil, nil
	}
	var records []models.GenerationLog
	err := s.db.Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

package service

import (
	"errors"
	"sync"
	"time"

	"github.com/lucidpath/wellness-api/internal/database"
	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/lucidpath/wellness-api/internal/model"
	"github.com/lucidpath/wellness-api/pkg/markdown"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	journalService     *JournalService
	journalServiceOnce sync.Once
)

// ErrJournalNotFound is returned when an entry does not exist or belongs to
// someone else.
var ErrJournalNotFound = errors.New("journal entry not found")

// JournalService handles private journal entries. Content is markdown and
// the stored HTML rendering is sanitized.
type JournalService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewJournalService returns the journal service singleton.
func NewJournalService() *JournalService {
	journalServiceOnce.Do(func() {
		journalService = &JournalService{
			db:     database.GetDB(),
			logger: logger.GetSugaredLogger(),
		}
	})
	return journalService
}

// Create stores a new journal entry.
func (s *JournalService) Create(userID uint, req *dto.JournalCreateRequest) (*model.JournalEntry, error) {
	html, err := markdown.Render(req.Content)
	if err != nil {
		return nil, err
	}

	entry := &model.JournalEntry{
		UserID:      userID,
		Title:       markdown.SanitizePlain(req.Title),
		Content:     req.Content,
		ContentHTML: html,
	}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Get loads one of the caller's entries.
func (s *JournalService) Get(userID, id uint) (*model.JournalEntry, error) {
	var entry model.JournalEntry
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJournalNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// List pages through the caller's entries, newest first.
func (s *JournalService) List(userID uint, page, limit int) ([]dto.JournalResponse, int64, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.Model(&model.JournalEntry{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.JournalEntry
	if err := query.Order("created_at DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	result := make([]dto.JournalResponse, 0, len(entries))
	for i := range entries {
		result = append(result, toJournalResponse(&entries[i]))
	}
	return result, total, nil
}

// Update rewrites one of the caller's entries.
func (s *JournalService) Update(userID, id uint, req *dto.JournalUpdateRequest) (*model.JournalEntry, error) {
	entry, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	html, err := markdown.Render(req.Content)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":        markdown.SanitizePlain(req.Title),
		"content":      req.Content,
		"content_html": html,
	}
	if err := s.db.Model(entry).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(userID, id)
}

// Delete removes one of the caller's entries. Foreign ids are not found.
func (s *JournalService) Delete(userID, id uint) error {
	result := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.JournalEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJournalNotFound
	}
	return nil
}

func toJournalResponse(e *model.JournalEntry) dto.JournalResponse {
	return dto.JournalResponse{
		ID:          e.ID,
		Title:       e.Title,
		Content:     e.Content,
		ContentHTML: e.ContentHTML,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}

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
	moodService     *MoodService
	moodServiceOnce sync.Once
)

// ErrMoodNotFound is returned when an entry does not exist or belongs to
// someone else.
var ErrMoodNotFound = errors.New("mood entry not found")

// MoodService handles mood check-ins. Entries are strictly private to their
// owner.
type MoodService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewMoodService returns the mood service singleton.
func NewMoodService() *MoodService {
	moodServiceOnce.Do(func() {
		moodService = &MoodService{
			db:     database.GetDB(),
			logger: logger.GetSugaredLogger(),
		}
	})
	return moodService
}

// Create records a mood check-in. Date defaults to today.
func (s *MoodService) Create(userID uint, req *dto.MoodCreateRequest) (*model.MoodEntry, error) {
	date := time.Now().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, err
		}
		date = parsed
	}

	entry := &model.MoodEntry{
		UserID: userID,
		Score:  req.Score,
		Note:   markdown.SanitizePlain(req.Note),
		Date:   date,
	}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// List pages through the caller's mood history, newest first.
func (s *MoodService) List(userID uint, req *dto.MoodListRequest) ([]dto.MoodResponse, int64, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	query := s.db.Model(&model.MoodEntry{}).Where("user_id = ?", userID)
	if req.From != "" {
		query = query.Where("date >= ?", req.From)
	}
	if req.To != "" {
		query = query.Where("date <= ?", req.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.MoodEntry
	if err := query.Order("date DESC, id DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	result := make([]dto.MoodResponse, 0, len(entries))
	for i := range entries {
		result = append(result, toMoodResponse(&entries[i]))
	}
	return result, total, nil
}

// Delete removes one of the caller's entries. Foreign ids are not found.
func (s *MoodService) Delete(userID, id uint) error {
	result := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.MoodEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMoodNotFound
	}
	return nil
}

func toMoodResponse(e *model.MoodEntry) dto.MoodResponse {
	return dto.MoodResponse{
		ID:        e.ID,
		Score:     e.Score,
		Note:      e.Note,
		Date:      e.Date.Format("2006-01-02"),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

package service

import (
	"sync"
	"time"

	"github.com/lucidpath/wellness-api/internal/database"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/lucidpath/wellness-api/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	statsService     *StatsService
	statsServiceOnce sync.Once
)

// StatsService aggregates counts for the admin dashboard.
type StatsService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewStatsService returns the stats service singleton.
func NewStatsService() *StatsService {
	statsServiceOnce.Do(func() {
		statsService = &StatsService{
			db:     database.GetDB(),
			logger: logger.GetSugaredLogger(),
		}
	})
	return statsService
}

// DashboardStats is the admin overview payload.
type DashboardStats struct {
	Users             int64 `json:"users"`
	Providers         int64 `json:"providers"`
	PendingProviders  int64 `json:"pending_providers"`
	Threads           int64 `json:"threads"`
	FlaggedThreads    int64 `json:"flagged_threads"`
	FlaggedPosts      int64 `json:"flagged_posts"`
	Appointments      int64 `json:"appointments"`
	MoodEntriesToday  int64 `json:"mood_entries_today"`
	LoginsLast24Hours int64 `json:"logins_last_24_hours"`
}

// Dashboard computes the overview counts.
func (s *StatsService) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}
	today := time.Now().Truncate(24 * time.Hour)
	dayAgo := time.Now().Add(-24 * time.Hour)

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Users, s.db.Model(&model.User{})},
		{&stats.Providers, s.db.Model(&model.Provider{}).Where("status = ?", model.ProviderApproved)},
		{&stats.PendingProviders, s.db.Model(&model.Provider{}).Where("status = ?", model.ProviderPending)},
		{&stats.Threads, s.db.Model(&model.ForumThread{}).Where("status <> ?", model.ThreadDeleted)},
		{&stats.FlaggedThreads, s.db.Model(&model.ForumThread{}).Where("status = ?", model.ThreadFlagged)},
		{&stats.FlaggedPosts, s.db.Model(&model.ForumPost{}).Where("status = ?", model.PostFlagged)},
		{&stats.Appointments, s.db.Model(&model.Appointment{})},
		{&stats.MoodEntriesToday, s.db.Model(&model.MoodEntry{}).Where("created_at >= ?", today)},
		{&stats.LoginsLast24Hours, s.db.Model(&model.LoginLog{}).Where("success = ? AND created_at >= ?", true, dayAgo)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}

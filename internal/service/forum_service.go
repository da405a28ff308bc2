package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lucidpath/wellness-api/internal/config"
	"github.com/lucidpath/wellness-api/internal/database"
	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/lucidpath/wellness-api/internal/model"
	"github.com/lucidpath/wellness-api/pkg/cache"
	"github.com/lucidpath/wellness-api/pkg/markdown"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	forumService     *ForumService
	forumServiceOnce sync.Once
)

var (
	// ErrThreadNotFound is returned for unknown or hidden threads.
	ErrThreadNotFound = errors.New("thread not found")
	// ErrPostNotFound is returned for unknown posts.
	ErrPostNotFound = errors.New("post not found")
	// ErrUnknownAction is returned for moderation actions outside the
	// transition table.
	ErrUnknownAction = errors.New("unknown moderation action")
)

// ForumService implements the community forum: threads, replies, member
// flagging and the moderation state machine.
type ForumService struct {
	db            *gorm.DB
	logger        *zap.SugaredLogger
	views         *cache.ViewCounter
	threadFilter  *cache.ExistenceFilter
	search        *ThreadSearchService
	notifications *NotificationService
}

// NewForumService returns the forum service singleton.
func NewForumService() *ForumService {
	forumServiceOnce.Do(func() {
		dedup := 10 * time.Minute
		if config.GlobalConfig != nil {
			dedup = time.Duration(config.GlobalConfig.Forum.ViewDedupMinutes) * time.Minute
		}
		forumService = &ForumService{
			db:            database.GetDB(),
			logger:        logger.GetSugaredLogger(),
			views:         cache.NewViewCounter(database.GetRedis(), dedup),
			threadFilter:  cache.NewExistenceFilter(100000, 0.01),
			search:        NewThreadSearchService(),
			notifications: NewNotificationService(),
		}
		forumService.warmThreadFilter()
	})
	return forumService
}

func (s *ForumService) warmThreadFilter() {
	var ids []uint
	if err := s.db.Model(&model.ForumThread{}).Pluck("id", &ids).Error; err != nil {
		s.logger.Warnf("warm thread filter failed: %v", err)
		return
	}
	s.threadFilter.Reset(ids)
}

// CreateThread opens a thread with its first post. Title and content pass
// through the blocked-word filter before they are stored.
func (s *ForumService) CreateThread(actor Actor, req *dto.ThreadCreateRequest) (*model.ForumThread, error) {
	filter := NewSensitiveService()
	title := filter.Filter(markdown.SanitizePlain(req.Title))
	content := filter.Filter(markdown.SanitizePlain(req.Content))

	now := time.Now()
	thread := &model.ForumThread{
		Title:          title,
		AuthorID:       actor.ID,
		Tags:           req.Tags,
		Status:         model.ThreadActive,
		PostsCount:     1,
		LastActivityAt: now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(thread).Error; err != nil {
			return err
		}
		post := &model.ForumPost{
			ThreadID: thread.ID,
			AuthorID: actor.ID,
			Content:  content,
			Status:   model.PostActive,
		}
		return tx.Create(post).Error
	})
	if err != nil {
		return nil, err
	}

	if s.threadFilter != nil {
		s.threadFilter.Add(thread.ID)
	}
	if s.search != nil {
		go s.search.IndexThread(thread.ID)
	}
	return thread, nil
}

// ListThreads pages through threads: pinned first, then most recent
// activity. Members see active threads only; moderators may pass all=true
// to include every status.
func (s *ForumService) ListThreads(actor Actor, req *dto.ThreadListRequest) ([]dto.ThreadResponse, int64, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	query := s.db.Model(&model.ForumThread{})
	if !(req.All && actor.IsAdmin()) {
		query = query.Where("status = ?", model.ThreadActive)
	}
	if req.Tag != "" {
		query = query.Where("tags LIKE ?", "%"+fmt.Sprintf("%q", req.Tag)+"%")
	}
	if req.Search != "" {
		query = query.Where("title LIKE ?", "%"+req.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var threads []model.ForumThread
	if err := query.Preload("Author").
		Order("pinned DESC, last_activity_at DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&threads).Error; err != nil {
		return nil, 0, err
	}

	result := make([]dto.ThreadResponse, 0, len(threads))
	for i := range threads {
		result = append(result, toThreadResponse(&threads[i], 0))
	}
	return result, total, nil
}

// GetThread returns a thread with its posts and counts a view. Deleted
// threads are hidden from everyone but moderators; moderators also see
// deleted posts.
func (s *ForumService) GetThread(ctx context.Context, actor Actor, id uint, ip string) (*dto.ThreadDetailResponse, error) {
	if s.threadFilter != nil && !s.threadFilter.MayExist(id) {
		return nil, ErrThreadNotFound
	}

	var thread model.ForumThread
	err := s.db.Preload("Author").First(&thread, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}

	if thread.Status == model.ThreadDeleted && !actor.IsAdmin() {
		return nil, ErrThreadNotFound
	}

	postQuery := s.db.Model(&model.ForumPost{}).Where("thread_id = ?", id)
	if !actor.IsAdmin() {
		postQuery = postQuery.Where("status <> ?", model.PostDeleted)
	}

	var posts []model.ForumPost
	if err := postQuery.Preload("Author").Order("created_at ASC").Find(&posts).Error; err != nil {
		return nil, err
	}

	if s.views != nil && ip != "" {
		s.views.RecordView(ctx, id, ip)
	}

	detail := &dto.ThreadDetailResponse{
		Thread: toThreadResponse(&thread, 0),
		Posts:  make([]dto.PostResponse, 0, len(posts)),
	}
	for i := range posts {
		detail.Posts = append(detail.Posts, toPostResponse(&posts[i], 0))
	}
	return detail, nil
}

// AddPost replies to a thread. A deleted thread looks like a missing one to
// repliers; flagged and archived threads still accept replies, pending
// moderation does not halt discussion. The thread author is notified unless
// they replied to themselves.
func (s *ForumService) AddPost(actor Actor, threadID uint, req *dto.PostCreateRequest) (*model.ForumPost, error) {
	var thread model.ForumThread
	err := s.db.First(&thread, threadID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	if thread.Status == model.ThreadDeleted {
		return nil, ErrThreadNotFound
	}

	content := NewSensitiveService().Filter(markdown.SanitizePlain(req.Content))
	post := &model.ForumPost{
		ThreadID: threadID,
		AuthorID: actor.ID,
		Content:  content,
		Status:   model.PostActive,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return tx.Model(&thread).Updates(map[string]interface{}{
			"posts_count":      gorm.Expr("posts_count + ?", 1),
			"last_activity_at": time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyThreadReply(actor, &thread, post)

	if s.search != nil {
		go s.search.IndexThread(threadID)
	}
	return post, nil
}

func (s *ForumService) notifyThreadReply(actor Actor, thread *model.ForumThread, post *model.ForumPost) {
	if s.notifications == nil {
		return
	}
	var replier model.User
	if err := s.db.First(&replier, actor.ID).Error; err != nil {
		s.logger.Warnf("load replier for notification failed: %v", err)
		return
	}

	actorID := actor.ID
	postID := post.ID
	s.notifications.Notify(&model.Notification{
		RecipientID: thread.AuthorID,
		ActorID:     &actorID,
		ActorKind:   model.ActorUser,
		Type:        model.NotificationForumReply,
		ReferenceID: &postID,
		Message:     fmt.Sprintf("%s replied to %q", replier.DisplayName(), thread.Title),
	})
}

// FlagThread reports a thread. Flagging is idempotent per member, and any
// flag moves the thread to the flagged status.
func (s *ForumService) FlagThread(actor Actor, id uint) error {
	var thread model.ForumThread
	err := s.db.First(&thread, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrThreadNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		flag := &model.ThreadFlag{ThreadID: id, UserID: actor.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(flag).Error; err != nil {
			return err
		}
		return tx.Model(&thread).Update("status", model.ThreadFlagged).Error
	})
}

// FlagPost reports a post. Same idempotency rules as FlagThread.
func (s *ForumService) FlagPost(actor Actor, id uint) error {
	var post model.ForumPost
	err := s.db.First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		flag := &model.PostFlag{PostID: id, UserID: actor.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(flag).Error; err != nil {
			return err
		}
		return tx.Model(&post).Update("status", model.PostFlagged).Error
	})
}

// ModerateThread applies one moderation action. Restore clears every flag
// on the thread. Pin and unpin leave the status untouched.
func (s *ForumService) ModerateThread(id uint, action string) (*model.ForumThread, error) {
	var thread model.ForumThread
	err := s.db.First(&thread, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		switch action {
		case "delete":
			return tx.Model(&thread).Update("status", model.ThreadDeleted).Error
		case "restore":
			if err := tx.Where("thread_id = ?", id).Delete(&model.ThreadFlag{}).Error; err != nil {
				return err
			}
			return tx.Model(&thread).Update("status", model.ThreadActive).Error
		case "archive":
			return tx.Model(&thread).Update("status", model.ThreadArchived).Error
		case "pin":
			return tx.Model(&thread).Update("pinned", true).Error
		case "unpin":
			return tx.Model(&thread).Update("pinned", false).Error
		default:
			return ErrUnknownAction
		}
	})
	if err != nil {
		return nil, err
	}

	if s.search != nil {
		go s.search.IndexThread(id)
	}
	if err := s.db.First(&thread, id).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

// ModeratePost applies one moderation action to a post. Restore clears its
// flags; flag records the acting moderator in the flagger set.
func (s *ForumService) ModeratePost(actorID, id uint, action string) (*model.ForumPost, error) {
	var post model.ForumPost
	err := s.db.First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		switch action {
		case "delete":
			return tx.Model(&post).Update("status", model.PostDeleted).Error
		case "restore":
			if err := tx.Where("post_id = ?", id).Delete(&model.PostFlag{}).Error; err != nil {
				return err
			}
			return tx.Model(&post).Update("status", model.PostActive).Error
		case "flag":
			flag := &model.PostFlag{PostID: id, UserID: actorID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(flag).Error; err != nil {
				return err
			}
			return tx.Model(&post).Update("status", model.PostFlagged).Error
		default:
			return ErrUnknownAction
		}
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListFlagged returns the moderation queue: flagged threads and flagged
// posts with their flag counts, paginated together by the same page/limit.
func (s *ForumService) ListFlagged(page, limit int) (*dto.FlaggedContentResponse, int64, error) {
	if limit < 1 && config.GlobalConfig != nil {
		limit = config.GlobalConfig.Forum.FlaggedPageSize
	}
	page, limit = normalizePage(page, limit)

	var totalThreads int64
	threadQuery := s.db.Model(&model.ForumThread{}).Where("status = ?", model.ThreadFlagged)
	if err := threadQuery.Count(&totalThreads).Error; err != nil {
		return nil, 0, err
	}

	var threads []model.ForumThread
	if err := threadQuery.Preload("Author").Preload("Flags").
		Order("last_activity_at DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&threads).Error; err != nil {
		return nil, 0, err
	}

	var posts []model.ForumPost
	if err := s.db.Model(&model.ForumPost{}).
		Where("status = ?", model.PostFlagged).
		Preload("Author").Preload("Flags").
		Order("created_at DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	resp := &dto.FlaggedContentResponse{
		Threads: make([]dto.ThreadResponse, 0, len(threads)),
		Posts:   make([]dto.PostResponse, 0, len(posts)),
	}
	for i := range threads {
		resp.Threads = append(resp.Threads, toThreadResponse(&threads[i], int64(len(threads[i].Flags))))
	}
	for i := range posts {
		resp.Posts = append(resp.Posts, toPostResponse(&posts[i], int64(len(posts[i].Flags))))
	}
	return resp, totalThreads, nil
}

// SyncViews folds the buffered redis view counts into the threads table.
func (s *ForumService) SyncViews(ctx context.Context) error {
	if s.views == nil {
		return nil
	}
	pending, err := s.views.PendingViews(ctx)
	if err != nil {
		return err
	}
	for threadID, delta := range pending {
		if err := s.db.Model(&model.ForumThread{}).
			Where("id = ?", threadID).
			UpdateColumn("views", gorm.Expr("views + ?", delta)).Error; err != nil {
			s.logger.Warnf("sync views for thread %d failed: %v", threadID, err)
		}
	}
	return nil
}

// ReconcilePostsCounts recomputes posts_count for every thread from the
// posts table. The counter is normally kept by atomic increments; this
// corrects any drift.
func (s *ForumService) ReconcilePostsCounts() error {
	return s.db.Exec(`
		UPDATE forum_threads SET posts_count = (
			SELECT COUNT(*) FROM forum_posts
			WHERE forum_posts.thread_id = forum_threads.id
			AND forum_posts.status <> ?
		)`, model.PostDeleted).Error
}

func toThreadResponse(t *model.ForumThread, flagCount int64) dto.ThreadResponse {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.ThreadResponse{
		ID:             t.ID,
		Title:          t.Title,
		Author:         dto.ThreadAuthor{ID: t.Author.ID, FirstName: t.Author.FirstName},
		Tags:           tags,
		Status:         t.Status,
		Pinned:         t.Pinned,
		Views:          t.Views,
		PostsCount:     t.PostsCount,
		FlagCount:      flagCount,
		LastActivityAt: t.LastActivityAt.Format(time.RFC3339),
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
	}
}

func toPostResponse(p *model.ForumPost, flagCount int64) dto.PostResponse {
	return dto.PostResponse{
		ID:        p.ID,
		ThreadID:  p.ThreadID,
		Author:    dto.ThreadAuthor{ID: p.Author.ID, FirstName: p.Author.FirstName},
		Content:   p.Content,
		Status:    p.Status,
		FlagCount: flagCount,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

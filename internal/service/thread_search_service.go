package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/lucidpath/wellness-api/internal/database"
	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/lucidpath/wellness-api/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	threadSearchService     *ThreadSearchService
	threadSearchServiceOnce sync.Once
)

// ThreadSearchService mirrors forum threads into Elasticsearch and answers
// keyword searches. When the cluster is disabled it falls back to SQL LIKE
// queries, so search keeps working on small deployments.
type ThreadSearchService struct {
	db       *gorm.DB
	esClient *elasticsearch.Client
	log      *zap.SugaredLogger
}

// NewThreadSearchService returns the search service singleton.
func NewThreadSearchService() *ThreadSearchService {
	threadSearchServiceOnce.Do(func() {
		threadSearchService = &ThreadSearchService{
			db:       database.GetDB(),
			esClient: database.GetES(),
			log:      logger.GetSugaredLogger(),
		}
	})
	return threadSearchService
}

// IndexThread writes one thread document. Transient cluster errors are
// retried a few times before giving up.
func (s *ThreadSearchService) IndexThread(threadID uint) {
	if s.esClient == nil {
		return
	}

	var thread model.ForumThread
	if err := s.db.Preload("Author").First(&thread, threadID).Error; err != nil {
		s.log.Warnf("load thread %d for indexing failed: %v", threadID, err)
		return
	}

	var firstPost model.ForumPost
	if err := s.db.Where("thread_id = ?", threadID).Order("created_at ASC").First(&firstPost).Error; err != nil {
		s.log.Warnf("load first post of thread %d failed: %v", threadID, err)
	}

	doc := model.ESThread{
		ID:             fmt.Sprintf("thread_%d", thread.ID),
		ThreadID:       thread.ID,
		Title:          thread.Title,
		FirstPost:      firstPost.Content,
		AuthorID:       thread.AuthorID,
		AuthorName:     thread.Author.DisplayName(),
		Tags:           thread.Tags,
		Status:         thread.Status,
		Pinned:         thread.Pinned,
		PostsCount:     thread.PostsCount,
		LastActivityAt: thread.LastActivityAt,
		CreatedAt:      thread.CreatedAt,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		s.log.Errorf("encode thread document failed: %v", err)
		return
	}

	err = retry.Do(func() error {
		res, err := s.esClient.Index(
			model.ESThread{}.ESIndexName(),
			bytes.NewReader(body),
			s.esClient.Index.WithDocumentID(doc.ID),
			s.esClient.Index.WithRefresh("false"),
		)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("index thread %d: %s", threadID, res.String())
		}
		return nil
	}, retry.Attempts(3), retry.Delay(200*time.Millisecond))
	if err != nil {
		s.log.Warnf("index thread %d failed: %v", threadID, err)
	}
}

// Search finds active threads matching the keyword.
func (s *ThreadSearchService) Search(keyword string, page, limit int) ([]dto.ThreadResponse, int64, error) {
	page, limit = normalizePage(page, limit)
	if s.esClient == nil {
		return s.searchSQL(keyword, page, limit)
	}
	return s.searchES(keyword, page, limit)
}

func (s *ThreadSearchService) searchES(keyword string, page, limit int) ([]dto.ThreadResponse, int64, error) {
	ctx := context.Background()

	var buf bytes.Buffer
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"multi_match": map[string]interface{}{
							"query":  keyword,
							"fields": []string{"title^3", "first_post^2", "tags"},
							"type":   "best_fields",
						},
					},
				},
				"filter": []map[string]interface{}{
					{
						"term": map[string]interface{}{
							"status": model.ThreadActive,
						},
					},
				},
			},
		},
		"from": (page - 1) * limit,
		"size": limit,
		"sort": []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"last_activity_at": map[string]interface{}{"order": "desc"}},
		},
	}
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, 0, err
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(model.ESThread{}.ESIndexName()),
		s.esClient.Search.WithBody(&buf),
		s.esClient.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("search threads: %s", res.String())
	}

	var result struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source model.ESThread `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		ids = append(ids, hit.Source.ThreadID)
	}
	if len(ids) == 0 {
		return []dto.ThreadResponse{}, 0, nil
	}

	var threads []model.ForumThread
	if err := s.db.Preload("Author").Where("id IN ?", ids).Find(&threads).Error; err != nil {
		return nil, 0, err
	}

	// preserve relevance order
	byID := make(map[uint]*model.ForumThread, len(threads))
	for i := range threads {
		byID[threads[i].ID] = &threads[i]
	}
	ordered := make([]dto.ThreadResponse, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, toThreadResponse(t, 0))
		}
	}
	return ordered, result.Hits.Total.Value, nil
}

func (s *ThreadSearchService) searchSQL(keyword string, page, limit int) ([]dto.ThreadResponse, int64, error) {
	like := "%" + strings.TrimSpace(keyword) + "%"
	query := s.db.Model(&model.ForumThread{}).
		Where("status = ?", model.ThreadActive).
		Where("title LIKE ?", like)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var threads []model.ForumThread
	if err := query.Preload("Author").
		Order("last_activity_at DESC").
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

// ReindexAll rebuilds the whole thread index. Batches are indexed
// concurrently with a bounded worker count.
func (s *ThreadSearchService) ReindexAll(ctx context.Context) error {
	if s.esClient == nil {
		return fmt.Errorf("elasticsearch is disabled")
	}

	var ids []uint
	if err := s.db.Model(&model.ForumThread{}).Pluck("id", &ids).Error; err != nil {
		return err
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			s.IndexThread(id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.log.Infof("reindexed %d threads", len(ids))
	return nil
}

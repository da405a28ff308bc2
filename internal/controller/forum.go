package controller

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/lucidpath/wellness-api/internal/service"
	"github.com/lucidpath/wellness-api/pkg/response"
	"go.uber.org/zap"
)

// ForumApi handles community threads, replies and flagging.
type ForumApi struct {
	logger        *zap.SugaredLogger
	forumService  *service.ForumService
	searchService *service.ThreadSearchService
}

// NewForumApi creates the forum controller.
func NewForumApi() *ForumApi {
	return &ForumApi{
		logger:        logger.GetSugaredLogger(),
		forumService:  service.NewForumService(),
		searchService: service.NewThreadSearchService(),
	}
}

// CreateThread opens a new thread.
func (api *ForumApi) CreateThread(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	var req dto.ThreadCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	thread, err := api.forumService.CreateThread(actor, &req)
	if err != nil {
		api.logger.Errorf("create thread failed: %v", err)
		response.InternalServerError(c, "could not create thread", err)
		return
	}
	response.Created(c, thread)
}

// ListThreads pages through threads, pinned first.
func (api *ForumApi) ListThreads(c *gin.Context) {
	actor, _ := actorFromContext(c)

	var req dto.ThreadListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	threads, total, err := api.forumService.ListThreads(actor, &req)
	if err != nil {
		api.logger.Errorf("list threads failed: %v", err)
		response.InternalServerError(c, "could not list threads", err)
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	response.SuccessPage(c, threads, page, req.Limit, total)
}

// SearchThreads finds active threads matching a keyword.
func (api *ForumApi) SearchThreads(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		response.BadRequest(c, "query parameter q is required", nil)
		return
	}

	page, limit := pageQuery(c)
	threads, total, err := api.searchService.Search(keyword, page, limit)
	if err != nil {
		api.logger.Errorf("search threads failed: %v", err)
		response.InternalServerError(c, "search failed", err)
		return
	}
	response.SuccessPage(c, threads, page, limit, total)
}

// GetThread returns a thread with its posts.
func (api *ForumApi) GetThread(c *gin.Context) {
	actor, _ := actorFromContext(c)
	id, ok := idParam(c)
	if !ok {
		response.BadRequest(c, "invalid thread id", nil)
		return
	}

	detail, err := api.forumService.GetThread(c.Request.Context(), actor, id, c.ClientIP())
	if err != nil {
		if errors.Is(err, service.ErrThreadNotFound) {
			response.NotFound(c, err.Error(), nil)
			return
		}
		api.logger.Errorf("get thread failed: %v", err)
		response.InternalServerError(c, "could not load thread", err)
		return
	}
	response.Success(c, detail)
}

// AddPost replies to a thread.
func (api *ForumApi) AddPost(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required", nil)
		return
	}
	id, okID := idParam(c)
	if !okID {
		response.BadRequest(c, "invalid thread id", nil)
		return
	}

	var req dto.PostCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	post, err := api.forumService.AddPost(actor, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrThreadNotFound):
			response.NotFound(c, err.Error(), nil)
		default:
			api.logger.Errorf("add post failed: %v", err)
			response.InternalServerError(c, "could not add reply", err)
		}
		return
	}
	response.Created(c, post)
}

// FlagThread reports a thread. Repeat flags are accepted and ignored.
func (api *ForumApi) FlagThread(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required", nil)
		return
	}
	id, okID := idParam(c)
	if !okID {
		response.BadRequest(c, "invalid thread id", nil)
		return
	}

	if err := api.forumService.FlagThread(actor, id); err != nil {
		if errors.Is(err, service.ErrThreadNotFound) {
			response.NotFound(c, err.Error(), nil)
			return
		}
		api.logger.Errorf("flag thread failed: %v", err)
		response.InternalServerError(c, "could not flag thread", err)
		return
	}
	response.SuccessMessage(c, "thread reported")
}

// FlagPost reports a post.
func (api *ForumApi) FlagPost(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required", nil)
		return
	}
	id, okID := idParam(c)
	if !okID {
		response.BadRequest(c, "invalid post id", nil)
		return
	}

	if err := api.forumService.FlagPost(actor, id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, err.Error(), nil)
			return
		}
		api.logger.Errorf("flag post failed: %v", err)
		response.InternalServerError(c, "could not flag post", err)
		return
	}
	response.SuccessMessage(c, "post reported")
}

// ModerateThread applies a moderation action to a thread.
func (api *ForumApi) ModerateThread(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		response.BadRequest(c, "invalid thread id", nil)
		return
	}

	var req dto.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	thread, err := api.forumService.ModerateThread(id, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrThreadNotFound):
			response.NotFound(c, err.Error(), nil)
		case errors.Is(err, service.ErrUnknownAction):
			response.BadRequest(c, err.Error(), nil)
		default:
			api.logger.Errorf("moderate thread failed: %v", err)
			response.InternalServerError(c, "moderation failed", err)
		}
		return
	}
	response.Success(c, thread)
}

// ModeratePost applies a moderation action to a post.
func (api *ForumApi) ModeratePost(c *gin.Context) {
	actor, okActor := actorFromContext(c)
	if !okActor {
		response.Unauthorized(c, "authentication required", nil)
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.BadRequest(c, "invalid post id", nil)
		return
	}

	var req dto.PostModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	post, err := api.forumService.ModeratePost(actor.ID, id, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFound(c, err.Error(), nil)
		case errors.Is(err, service.ErrUnknownAction):
			response.BadRequest(c, err.Error(), nil)
		default:
			api.logger.Errorf("moderate post failed: %v", err)
			response.InternalServerError(c, "moderation failed", err)
		}
		return
	}
	response.Success(c, post)
}

// ListFlagged returns the moderation queue.
func (api *ForumApi) ListFlagged(c *gin.Context) {
	page, limit := pageQuery(c)

	flagged, total, err := api.forumService.ListFlagged(page, limit)
	if err != nil {
		api.logger.Errorf("list flagged content failed: %v", err)
		response.InternalServerError(c, "could not load moderation queue", err)
		return
	}
	response.SuccessPage(c, flagged, page, limit, total)
}

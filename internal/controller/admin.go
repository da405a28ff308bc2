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

// AdminApi handles the admin console: provider review, user listing and the
// dashboard.
type AdminApi struct {
	logger          *zap.SugaredLogger
	userService     *service.UserService
	providerService *service.ProviderService
	statsService    *service.StatsService
}

// NewAdminApi creates the admin controller.
func NewAdminApi() *AdminApi {
	return &AdminApi{
		logger:          logger.GetSugaredLogger(),
		userService:     service.NewUserService(),
		providerService: service.NewProviderService(),
		statsService:    service.NewStatsService(),
	}
}

// ListUsers pages through member accounts.
func (api *AdminApi) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	users, total, err := api.userService.List(&req)
	if err != nil {
		api.logger.Errorf("list users failed: %v", err)
		response.InternalServerError(c, "could not list users", err)
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	response.SuccessPage(c, users, page, req.Limit, total)
}

// ListProviders pages through provider accounts of any status.
func (api *AdminApi) ListProviders(c *gin.Context) {
	var req dto.ProviderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	providers, total, err := api.providerService.ListAll(&req)
	if err != nil {
		api.logger.Errorf("list providers failed: %v", err)
		response.InternalServerError(c, "could not list providers", err)
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	response.SuccessPage(c, providers, page, req.Limit, total)
}

// ReviewProvider approves or rejects a pending provider application.
func (api *AdminApi) ReviewProvider(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		response.BadRequest(c, "invalid provider id", nil)
		return
	}

	var req dto.ProviderReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	provider, err := api.providerService.Review(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProviderNotFound):
			response.NotFound(c, err.Error(), nil)
		case errors.Is(err, service.ErrProviderReviewed):
			response.Conflict(c, err.Error(), nil)
		default:
			api.logger.Errorf("review provider failed: %v", err)
			response.InternalServerError(c, "review failed", err)
		}
		return
	}
	response.Success(c, provider)
}

// Dashboard returns the admin overview counts.
func (api *AdminApi) Dashboard(c *gin.Context) {
	stats, err := api.statsService.Dashboard()
	if err != nil {
		api.logger.Errorf("dashboard stats failed: %v", err)
		response.InternalServerError(c, "could not load dashboard", err)
		return
	}
	response.Success(c, stats)
}

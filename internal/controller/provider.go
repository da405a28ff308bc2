package controller

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/lucidpath/wellness-api/internal/middleware"
	"github.com/lucidpath/wellness-api/internal/model"
	"github.com/lucidpath/wellness-api/internal/service"
	"github.com/lucidpath/wellness-api/pkg/response"
	"go.uber.org/zap"
)

// ProviderApi handles provider accounts and the public directory.
type ProviderApi struct {
	logger             *zap.SugaredLogger
	providerService    *service.ProviderService
	appointmentService *service.AppointmentService
}

// NewProviderApi creates the provider controller.
func NewProviderApi() *ProviderApi {
	return &ProviderApi{
		logger:             logger.GetSugaredLogger(),
		providerService:    service.NewProviderService(),
		appointmentService: service.NewAppointmentService(),
	}
}

// Register submits a provider application.
func (api *ProviderApi) Register(c *gin.Context) {
	var req dto.ProviderRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	provider, err := api.providerService.Register(&req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Conflict(c, err.Error(), nil)
			return
		}
		api.logger.Errorf("provider registration failed: %v", err)
		response.InternalServerError(c, "registration failed", err)
		return
	}

	response.Created(c, gin.H{"id": provider.ID, "status": provider.Status})
}

// Login authenticates an approved provider.
func (api *ProviderApi) Login(c *gin.Context) {
	var req dto.ProviderLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	pair, provider, err := api.providerService.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, err.Error(), nil)
		case errors.Is(err, service.ErrProviderNotApproved):
			response.Forbidden(c, err.Error(), nil)
		default:
			api.logger.Errorf("provider login failed: %v", err)
			response.InternalServerError(c, "login failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    pair.ExpiresIn,
		"provider": gin.H{
			"id":        provider.ID,
			"name":      provider.Name,
			"specialty": provider.Specialty,
		},
	})
}

// List returns the public directory of approved providers.
func (api *ProviderApi) List(c *gin.Context) {
	var req dto.ProviderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	providers, total, err := api.providerService.ListApproved(&req)
	if err != nil {
		api.logger.Errorf("list providers failed: %v", err)
		response.InternalServerError(c, "could not list providers", err)
		return
	}

	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	response.SuccessPage(c, providers, page, limit, total)
}

// Get returns one approved provider's public profile.
func (api *ProviderApi) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		response.BadRequest(c, "invalid provider id", nil)
		return
	}

	provider, err := api.providerService.Get(id)
	if err != nil || provider.Status != model.ProviderApproved {
		response.NotFound(c, "provider not found", err)
		return
	}

	response.Success(c, gin.H{
		"id":        provider.ID,
		"name":      provider.Name,
		"specialty": provider.Specialty,
		"bio":       provider.Bio,
	})
}

// Appointments lists the authenticated provider's bookings.
func (api *ProviderApi) Appointments(c *gin.Context) {
	providerID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	var req dto.AppointmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	appointments, total, err := api.appointmentService.ListForProvider(providerID, &req)
	if err != nil {
		api.logger.Errorf("list provider appointments failed: %v", err)
		response.InternalServerError(c, "could not list appointments", err)
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	response.SuccessPage(c, appointments, page, req.Limit, total)
}

// Me returns the caller's own provider record, including fields hidden
// from the public directory.
func (api *ProviderApi) Me(c *gin.Context) {
	providerID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	provider, err := api.providerService.Get(providerID)
	if err != nil {
		api.logger.Errorf("load provider profile failed: %v", err)
		response.InternalServerError(c, "could not load profile", err)
		return
	}
	response.Success(c, gin.H{
		"id":          provider.ID,
		"name":        provider.Name,
		"email":       provider.Email,
		"specialty":   provider.Specialty,
		"credentials": provider.Credentials,
		"bio":         provider.Bio,
		"status":      provider.Status,
	})
}

// UpdateMe edits the caller's directory entry.
func (api *ProviderApi) UpdateMe(c *gin.Context) {
	providerID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	var req dto.ProviderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	provider, err := api.providerService.UpdateProfile(providerID, &req)
	if err != nil {
		api.logger.Errorf("update provider profile failed: %v", err)
		response.InternalServerError(c, "update failed", err)
		return
	}
	response.Success(c, gin.H{"id": provider.ID, "name": provider.Name, "bio": provider.Bio})
}

// Message sends a direct notification to one of the provider's members.
func (api *ProviderApi) Message(c *gin.Context) {
	providerID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}
	userID, ok := idParam(c)
	if !ok {
		response.BadRequest(c, "invalid user id", nil)
		return
	}

	var req dto.ProviderMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	if err := api.providerService.Message(providerID, userID, req.Message); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrProviderNotFound):
			response.NotFound(c, err.Error(), nil)
		default:
			api.logger.Errorf("provider message failed: %v", err)
			response.InternalServerError(c, "message failed", err)
		}
		return
	}
	response.SuccessMessage(c, "message sent")
}

// UpdateAppointment moves one of the provider's appointments to a new
// state.
func (api *ProviderApi) UpdateAppointment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required", nil)
		return
	}
	id, okID := idParam(c)
	if !okID {
		response.BadRequest(c, "invalid appointment id", nil)
		return
	}

	var req dto.AppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	appointment, err := api.appointmentService.UpdateStatus(actor, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAppointmentNotFound):
			response.NotFound(c, err.Error(), nil)
		case errors.Is(err, service.ErrInvalidStatusChange):
			response.BadRequest(c, err.Error(), nil)
		default:
			api.logger.Errorf("update appointment failed: %v", err)
			response.InternalServerError(c, "update failed", err)
		}
		return
	}
	response.Success(c, appointment)
}

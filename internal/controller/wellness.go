package controller

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/lucidpath/wellness-api/internal/middleware"
	"github.com/lucidpath/wellness-api/internal/service"
	"github.com/lucidpath/wellness-api/pkg/response"
	"go.uber.org/zap"
)

// WellnessApi handles mood check-ins, journal entries and member
// appointments.
type WellnessApi struct {
	logger             *zap.SugaredLogger
	moodService        *service.MoodService
	journalService     *service.JournalService
	appointmentService *service.AppointmentService
}

// NewWellnessApi creates the wellness controller.
func NewWellnessApi() *WellnessApi {
	return &WellnessApi{
		logger:             logger.GetSugaredLogger(),
		moodService:        service.NewMoodService(),
		journalService:     service.NewJournalService(),
		appointmentService: service.NewAppointmentService(),
	}
}

// CreateMood records a mood check-in.
func (api *WellnessApi) CreateMood(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	var req dto.MoodCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	entry, err := api.moodService.Create(userID, &req)
	if err != nil {
		api.logger.Errorf("create mood entry failed: %v", err)
		response.InternalServerError(c, "could not save mood entry", err)
		return
	}
	response.Created(c, entry)
}

// ListMoods pages through the caller's mood history.
func (api *WellnessApi) ListMoods(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	var req dto.MoodListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	entries, total, err := api.moodService.List(userID, &req)
	if err != nil {
		api.logger.Errorf("list mood entries failed: %v", err)
		response.InternalServerError(c, "could not list mood entries", err)
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	response.SuccessPage(c, entries, page, req.Limit, total)
}

// DeleteMood removes one of the caller's mood entries.
func (api *WellnessApi) DeleteMood(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.BadRequest(c, "invalid entry id", nil)
		return
	}

	if err := api.moodService.Delete(userID, id); err != nil {
		if errors.Is(err, service.ErrMoodNotFound) {
			response.NotFound(c, err.Error(), nil)
			return
		}
		api.logger.Errorf("delete mood entry failed: %v", err)
		response.InternalServerError(c, "could not delete entry", err)
		return
	}
	response.SuccessMessage(c, "entry deleted")
}

// CreateJournal stores a new journal entry.
func (api *WellnessApi) CreateJournal(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	var req dto.JournalCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	entry, err := api.journalService.Create(userID, &req)
	if err != nil {
		api.logger.Errorf("create journal entry failed: %v", err)
		response.InternalServerError(c, "could not save journal entry", err)
		return
	}
	response.Created(c, entry)
}

// ListJournals pages through the caller's journal.
func (api *WellnessApi) ListJournals(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	page, limit := pageQuery(c)
	entries, total, err := api.journalService.List(userID, page, limit)
	if err != nil {
		api.logger.Errorf("list journal entries failed: %v", err)
		response.InternalServerError(c, "could not list journal entries", err)
		return
	}
	response.SuccessPage(c, entries, page, limit, total)
}

// GetJournal returns one of the caller's entries.
func (api *WellnessApi) GetJournal(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.BadRequest(c, "invalid entry id", nil)
		return
	}

	entry, err := api.journalService.Get(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrJournalNotFound) {
			response.NotFound(c, err.Error(), nil)
			return
		}
		api.logger.Errorf("get journal entry failed: %v", err)
		response.InternalServerError(c, "could not load entry", err)
		return
	}
	response.Success(c, entry)
}

// UpdateJournal rewrites one of the caller's entries.
func (api *WellnessApi) UpdateJournal(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.BadRequest(c, "invalid entry id", nil)
		return
	}

	var req dto.JournalUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	entry, err := api.journalService.Update(userID, id, &req)
	if err != nil {
		if errors.Is(err, service.ErrJournalNotFound) {
			response.NotFound(c, err.Error(), nil)
			return
		}
		api.logger.Errorf("update journal entry failed: %v", err)
		response.InternalServerError(c, "could not update entry", err)
		return
	}
	response.Success(c, entry)
}

// DeleteJournal removes one of the caller's entries.
func (api *WellnessApi) DeleteJournal(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.BadRequest(c, "invalid entry id", nil)
		return
	}

	if err := api.journalService.Delete(userID, id); err != nil {
		if errors.Is(err, service.ErrJournalNotFound) {
			response.NotFound(c, err.Error(), nil)
			return
		}
		api.logger.Errorf("delete journal entry failed: %v", err)
		response.InternalServerError(c, "could not delete entry", err)
		return
	}
	response.SuccessMessage(c, "entry deleted")
}

// CreateAppointment books an appointment with an approved provider.
func (api *WellnessApi) CreateAppointment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	var req dto.AppointmentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	appointment, err := api.appointmentService.Create(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProviderNotFound), errors.Is(err, service.ErrProviderNotApproved):
			response.NotFound(c, "provider not found", nil)
		case errors.Is(err, service.ErrAppointmentInPast):
			response.BadRequest(c, err.Error(), nil)
		default:
			api.logger.Errorf("create appointment failed: %v", err)
			response.InternalServerError(c, "could not book appointment", err)
		}
		return
	}
	response.Created(c, appointment)
}

// ListAppointments pages through the caller's bookings.
func (api *WellnessApi) ListAppointments(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	var req dto.AppointmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	appointments, total, err := api.appointmentService.ListForUser(userID, &req)
	if err != nil {
		api.logger.Errorf("list appointments failed: %v", err)
		response.InternalServerError(c, "could not list appointments", err)
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	response.SuccessPage(c, appointments, page, req.Limit, total)
}

// CancelAppointment lets a member cancel their own booking.
func (api *WellnessApi) CancelAppointment(c *gin.Context) {
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

	appointment, err := api.appointmentService.UpdateStatus(actor, id, "cancelled")
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAppointmentNotFound):
			response.NotFound(c, err.Error(), nil)
		case errors.Is(err, service.ErrInvalidStatusChange):
			response.BadRequest(c, err.Error(), nil)
		default:
			api.logger.Errorf("cancel appointment failed: %v", err)
			response.InternalServerError(c, "could not cancel appointment", err)
		}
		return
	}
	response.Success(c, appointment)
}

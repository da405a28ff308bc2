package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/lucidpath/wellness-api/internal/middleware"
	"github.com/lucidpath/wellness-api/internal/service"
	"github.com/lucidpath/wellness-api/pkg/response"
	"go.uber.org/zap"
)

// NotificationApi handles the notification feed and push subscriptions.
type NotificationApi struct {
	logger              *zap.SugaredLogger
	notificationService *service.NotificationService
}

// NewNotificationApi creates the notification controller.
func NewNotificationApi() *NotificationApi {
	return &NotificationApi{
		logger:              logger.GetSugaredLogger(),
		notificationService: service.NewNotificationService(),
	}
}

// List pages through the caller's notifications.
func (api *NotificationApi) List(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	notifications, total, err := api.notificationService.List(userID, &req)
	if err != nil {
		api.logger.Errorf("list notifications failed: %v", err)
		response.InternalServerError(c, "could not list notifications", err)
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	response.SuccessPage(c, notifications, page, req.Limit, total)
}

// UnreadCount returns the caller's badge count.
func (api *NotificationApi) UnreadCount(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	count, err := api.notificationService.UnreadCount(userID)
	if err != nil {
		api.logger.Errorf("unread count failed: %v", err)
		response.InternalServerError(c, "could not count notifications", err)
		return
	}
	response.Success(c, dto.UnreadCountResponse{Count: count})
}

// MarkRead marks one notification as read. Foreign ids are silently
// ignored.
func (api *NotificationApi) MarkRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}
	id, ok := idParam(c)
	if !ok {
		response.BadRequest(c, "invalid notification id", nil)
		return
	}

	if err := api.notificationService.MarkRead(userID, id); err != nil {
		api.logger.Errorf("mark notification read failed: %v", err)
		response.InternalServerError(c, "could not update notification", err)
		return
	}
	response.SuccessMessage(c, "notification marked read")
}

// MarkAllRead marks every unread notification of the caller as read.
func (api *NotificationApi) MarkAllRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	if err := api.notificationService.MarkAllRead(userID); err != nil {
		api.logger.Errorf("mark all notifications read failed: %v", err)
		response.InternalServerError(c, "could not update notifications", err)
		return
	}
	response.SuccessMessage(c, "all notifications marked read")
}

// VAPIDPublicKey returns the browser subscription key.
func (api *NotificationApi) VAPIDPublicKey(c *gin.Context) {
	response.Success(c, dto.VAPIDKeyResponse{
		PublicKey: api.notificationService.VAPIDPublicKey(),
	})
}

// Subscribe registers a browser push subscription.
func (api *NotificationApi) Subscribe(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	if err := api.notificationService.Subscribe(userID, &req); err != nil {
		api.logger.Errorf("subscribe failed: %v", err)
		response.InternalServerError(c, "could not save subscription", err)
		return
	}
	response.Created(c, gin.H{"endpoint": req.Endpoint})
}

// Unsubscribe removes the caller's push subscription.
func (api *NotificationApi) Unsubscribe(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	if err := api.notificationService.Unsubscribe(userID); err != nil {
		api.logger.Errorf("unsubscribe failed: %v", err)
		response.InternalServerError(c, "could not remove subscription", err)
		return
	}
	response.SuccessMessage(c, "subscription removed")
}

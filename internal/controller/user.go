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

// UserApi handles registration, login and profile endpoints.
type UserApi struct {
	logger      *zap.SugaredLogger
	userService *service.UserService
}

// NewUserApi creates the user controller.
func NewUserApi() *UserApi {
	return &UserApi{
		logger:      logger.GetSugaredLogger(),
		userService: service.NewUserService(),
	}
}

// Captcha issues a registration captcha challenge.
func (api *UserApi) Captcha(c *gin.Context) {
	challenge, err := service.NewCaptchaService().Generate()
	if err != nil {
		api.logger.Errorf("generate captcha failed: %v", err)
		response.InternalServerError(c, "could not generate captcha", err)
		return
	}
	response.Success(c, challenge)
}

// Register creates a member account.
func (api *UserApi) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	user, err := api.userService.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			response.Conflict(c, err.Error(), nil)
		case errors.Is(err, service.ErrCaptchaInvalid):
			response.BadRequest(c, err.Error(), nil)
		default:
			api.logger.Errorf("register failed: %v", err)
			response.InternalServerError(c, "registration failed", err)
		}
		return
	}

	response.Created(c, gin.H{"id": user.ID, "email": user.Email})
}

// Login authenticates a member.
func (api *UserApi) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	result, err := api.userService.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, err.Error(), nil)
		case errors.Is(err, service.ErrAccountDisabled):
			response.Forbidden(c, err.Error(), nil)
		default:
			api.logger.Errorf("login failed: %v", err)
			response.InternalServerError(c, "login failed", err)
		}
		return
	}

	response.Success(c, result)
}

// Refresh rotates a refresh token into a new pair.
func (api *UserApi) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	pair, err := api.userService.Refresh(req.RefreshToken)
	if err != nil {
		response.Unauthorized(c, "invalid refresh token", err)
		return
	}
	response.Success(c, pair)
}

// Logout revokes the caller's tokens.
func (api *UserApi) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	api.userService.Logout(req.AccessToken, req.RefreshToken)
	response.SuccessMessage(c, "logged out")
}

// Me returns the caller's profile.
func (api *UserApi) Me(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	user, err := api.userService.GetProfile(userID)
	if err != nil {
		response.NotFound(c, "user not found", err)
		return
	}
	response.Success(c, user)
}

// UpdateMe updates the caller's profile.
func (api *UserApi) UpdateMe(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	user, err := api.userService.UpdateProfile(userID, &req)
	if err != nil {
		api.logger.Errorf("update profile failed: %v", err)
		response.InternalServerError(c, "update failed", err)
		return
	}
	response.Success(c, user)
}

// ChangePassword changes the caller's password.
func (api *UserApi) ChangePassword(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "authentication required", nil)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	if err := api.userService.ChangePassword(userID, &req); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.BadRequest(c, "old password is incorrect", nil)
			return
		}
		api.logger.Errorf("change password failed: %v", err)
		response.InternalServerError(c, "change password failed", err)
		return
	}
	response.SuccessMessage(c, "password changed")
}

// ForgotPassword starts a password reset. The response never reveals
// whether the email exists.
func (api *UserApi) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	if err := api.userService.ForgotPassword(req.Email); err != nil {
		api.logger.Errorf("forgot password failed: %v", err)
	}
	response.SuccessMessage(c, "if the email exists, a reset code has been sent")
}

// ResetPassword completes a password reset.
func (api *UserApi) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err), err)
		return
	}

	if err := api.userService.ResetPassword(&req); err != nil {
		if errors.Is(err, service.ErrResetCodeInvalid) {
			response.BadRequest(c, err.Error(), nil)
			return
		}
		api.logger.Errorf("reset password failed: %v", err)
		response.InternalServerError(c, "reset failed", err)
		return
	}
	response.SuccessMessage(c, "password reset")
}

package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every handler returns.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Meta    any    `json:"meta,omitempty"`
}

// PageMeta carries pagination details for list endpoints.
type PageMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// NewPageMeta builds pagination metadata.
func NewPageMeta(page, limit int, total int64) PageMeta {
	return PageMeta{
		Page:  page,
		Limit: limit,
		Total: total,
	}
}

// Success writes a 200 response with data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessMessage writes a 200 response carrying only a message.
func SuccessMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
	})
}

// Created writes a 201 response with data.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessPage writes a 200 response with data and pagination metadata.
func SuccessPage(c *gin.Context, data any, page, limit int, total int64) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Meta: PageMeta{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}

// Error writes an error response. The underlying err is attached to the gin
// context for logging but never exposed to the client.
func Error(c *gin.Context, code int, message string, err error) {
	if err != nil {
		c.Error(err)
	}
	c.JSON(code, Response{
		Success: false,
		Message: message,
	})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string, err error) {
	Error(c, http.StatusUnauthorized, message, err)
}

// Forbidden writes a 403 response.
func Forbidden(c *gin.Context, message string, err error) {
	Error(c, http.StatusForbidden, message, err)
}

// NotFound writes a 404 response.
func NotFound(c *gin.Context, message string, err error) {
	Error(c, http.StatusNotFound, message, err)
}

// Conflict writes a 409 response.
func Conflict(c *gin.Context, message string, err error) {
	Error(c, http.StatusConflict, message, err)
}

// InternalServerError writes a 500 response.
func InternalServerError(c *gin.Context, message string, err error) {
	Error(c, http.StatusInternalServerError, message, err)
}

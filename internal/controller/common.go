package controller

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/lucidpath/wellness-api/internal/middleware"
	"github.com/lucidpath/wellness-api/internal/service"
)

// bindError turns a binding failure into a client-facing message. Validation
// failures name the first offending field; anything else stays generic.
func bindError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("field %s failed on the %s rule", verrs[0].Field(), verrs[0].Tag())
	}
	return "invalid request"
}

// actorFromContext builds the service-layer actor for the authenticated
// caller.
func actorFromContext(c *gin.Context) (service.Actor, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		return service.Actor{}, false
	}
	role, _ := middleware.GetUserRole(c)
	return service.Actor{ID: userID, Role: role}, true
}

// pageQuery reads page/limit query parameters. Limits are clamped in the
// service layer.
func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if page < 1 {
		page = 1
	}
	return page, limit
}

// idParam parses the :id path parameter.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

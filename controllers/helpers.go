package controllers

import (
	"errors"
	"net/http"
	"storefront/models"
	"strconv"

	"github.com/gin-gonic/gin"
)

func getPaginationParams(c *gin.Context, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func statusForError(err error) int {
	switch {
	case models.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrInvalidStatus):
		return http.StatusBadRequest
	case models.IsRetryable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusForError(err), models.ErrorResponse{
		Success: false,
		Message: err.Error(),
	})
}

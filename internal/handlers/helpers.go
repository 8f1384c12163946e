package handlers

import (
	"net/http"
	"strconv"

	"dream_build_backend/internal/middleware"
	"dream_build_backend/internal/models"
	"dream_build_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func parseIDParam(c *gin.Context, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+what+" ID format.", c.Param("id")))
		return 0, false
	}
	return id, true
}

func parseUUIDParam(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+what+" ID format.", err.Error()))
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context, defaultSize int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = defaultSize
	}
	return page, pageSize
}

func optionalQuery(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

// sessionUser returns the authenticated user. Routes reaching it sit behind RequireRole,
// so a missing user is answered with 401.
func sessionUser(c *gin.Context) (*models.User, bool) {
	session := middleware.GetSession(c)
	if !session.Authenticated || session.User == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, middleware.LoginRequiredMessage, ""))
		return nil, false
	}
	return session.User, true
}

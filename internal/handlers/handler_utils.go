package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"resto_pos_backend/internal/middleware"
	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// principalFromContext reads the identity AuthMiddleware stored on the request.
func principalFromContext(c *gin.Context) services.Principal {
	return services.Principal{
		UserID: c.GetInt64(middleware.ContextUserID),
		Name:   c.GetString(middleware.ContextUsername),
		Role:   c.GetString(middleware.ContextUserRole),
	}
}

// parseIDParam reads a positive integer path parameter, answering 400 itself on failure.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid "+name+" parameter", c.Param(name)))
		return 0, false
	}
	return id, true
}

// bindJSON binds the request body, answering 422 with per-field messages on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if fields, ok := utils.BindingErrorFields(err); ok {
			utils.RespondValidationFailed(c, fields)
			return false
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid request payload", err.Error()))
		return false
	}
	return true
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(c *gin.Context, name string, fallback int) (int, bool) {
	v, err := utils.StrToPositiveInt(c.Query(name), fallback)
	if err != nil {
		utils.RespondValidationFailed(c, map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return v, true
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error, action string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.RespondValidationFailed(c, verr.Fields)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
	case errors.Is(err, services.ErrConflict):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
	case errors.Is(err, services.ErrUnauthenticated):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), ""))
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
	default:
		utils.LogError(err, action, map[string]interface{}{"path": c.FullPath(), "user_id": c.GetInt64(middleware.ContextUserID)})
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to "+action, err.Error()))
	}
}

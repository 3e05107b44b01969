package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models/dto"
	"github.com/yigit/scholarlink/internal/app/services"
	"github.com/yigit/scholarlink/internal/middleware"
)

// currentActor reads the principal set by the JWT middleware. It writes a 401
// and returns false when the request is not authenticated.
func currentActor(ctx *gin.Context) (services.Actor, bool) {
	id, kind, ok := middleware.Principal(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
			WithDetails("User information not found")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return services.Actor{}, false
	}
	return services.Actor{ID: id, Kind: kind}, true
}

// parseIDParam parses a UUID parameter from the request path
func parseIDParam(ctx *gin.Context, paramName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(paramName))
	if err != nil || id == uuid.Nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+paramName).
			WithField(paramName).
			WithDetails("Must be a valid UUID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return uuid.Nil, false
	}
	return id, true
}

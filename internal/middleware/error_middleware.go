package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/scholarlink/internal/app/models/dto"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
	"github.com/yigit/scholarlink/internal/pkg/logger"
)

// errorMapping is the HTTP rendering of one error kind
type errorMapping struct {
	status int
	code   dto.ErrorCode
}

var kindMappings = map[error]errorMapping{
	apperrors.ErrResourceNotFound: {http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	apperrors.ErrPermissionDenied: {http.StatusForbidden, dto.ErrorCodeForbidden},
	apperrors.ErrInvalidState:     {http.StatusConflict, dto.ErrorCodeInvalidState},
	apperrors.ErrValidationFailed: {http.StatusBadRequest, dto.ErrorCodeValidationFailed},
	apperrors.ErrDuplicateState:   {http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")))
		return
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")))
		return
	}

	if m, ok := kindMappings[apperrors.Kind(err)]; ok {
		c.JSON(m.status, dto.NewErrorResponse(dto.NewErrorDetail(m.code, err.Error())))
		return
	}

	// Unclassified errors never leak their text to the client
	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
}

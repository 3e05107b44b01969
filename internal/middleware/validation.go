package middleware

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/scholarlink/internal/app/models/dto"
)

// BindJSON binds and validates the request body. On failure it writes a 400
// response and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(HandleValidationError(err)))
		return false
	}
	return true
}

// BindOptionalJSON is BindJSON for bodies the client may omit. An empty body
// leaves obj at its zero value so the service can report what is missing.
func BindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(HandleValidationError(err)))
		return false
	}
	return true
}

// HandleValidationError converts a binding failure into an error detail. The
// first failing field is reported by name.
func HandleValidationError(err error) *dto.ErrorDetail {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		messages := make([]string, 0, len(verrs))
		for _, e := range verrs {
			messages = append(messages, formatValidationError(e))
		}
		return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, messages[0]).
			WithField(verrs[0].Field()).
			WithDetails(messages)
	}

	return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
		WithDetails(err.Error())
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "uuid":
		return e.Field() + " must be a valid UUID"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

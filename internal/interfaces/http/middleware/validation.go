package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mfgops/backend/internal/interfaces/http/dto"
)

// SetupValidator makes gin's validator report field errors under their
// JSON (or form) tag names, so clients see "item_type" rather than
// "ItemType" in validation details.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return ""
	})
}

// HandleValidationError writes a 400 with per-field validation details.
// Non-validator errors (malformed JSON and the like) produce an empty
// detail list with the same envelope.
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}

	var details []dto.ValidationDetail
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		details = make([]dto.ValidationDetail, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			details = append(details, dto.ValidationDetail{
				Field:   fe.Field(),
				Message: getValidationMessage(fe),
			})
		}
	}

	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed", requestID, details))
}

// getValidationMessage translates a validator tag into a client-facing
// message. Unknown tags collapse to a generic one rather than leaking
// validator internals.
func getValidationMessage(fe validator.FieldError) string {
	isString := fe.Type().Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if isString {
			return fmt.Sprintf("Must be at least %s characters", fe.Param())
		}
		return "Must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("Must be at most %s characters", fe.Param())
		}
		return "Must be at most " + fe.Param()
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "uuid":
		return "Invalid UUID format"
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "lte":
		return "Must be less than or equal to " + fe.Param()
	}
	return "Invalid value"
}

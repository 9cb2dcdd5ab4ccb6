package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mr1hm/go-disaster-response/internal/service"
)

// writeServiceError maps the service error taxonomy to HTTP. Callers with
// operation-specific status codes (cancel) handle their case first.
func writeServiceError(c *gin.Context, err error) {
	kind, ok := service.KindOf(err)
	if !ok {
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
		return
	}

	var svcErr *service.Error
	errors.As(err, &svcErr)

	switch kind {
	case service.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": svcErr.Message})
	case service.KindAccessDenied:
		c.JSON(http.StatusForbidden, gin.H{"message": svcErr.Message})
	case service.KindInvalidTransition:
		c.JSON(http.StatusForbidden, gin.H{"message": svcErr.Message})
	case service.KindValidationFailed:
		body := gin.H{"message": svcErr.Message}
		if len(svcErr.Fields) > 0 {
			body["errors"] = svcErr.Fields
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case service.KindConflict:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": svcErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
	}
}

// bindJSON binds and validates the request body, writing a 422 with field
// errors on validation failure. Returns false when the response was written.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			if _, seen := fields[fe.Field()]; !seen {
				fields[fe.Field()] = validationMessage(fe)
			}
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Validation failed",
			"errors":  fields,
		})
		return false
	}

	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match the format %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

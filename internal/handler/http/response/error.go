package response

import (
	"errors"
	"net/http"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/apperrors"
	"github.com/kelola-hr/hrm-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		InternalServerError(w, "An unexpected error occurred")
		return
	}

	switch appErr.Code {
	case apperrors.CodeValidation:
		BadRequest(w, appErr.Message, nil)
	case apperrors.CodeUnauthorized:
		Unauthorized(w, appErr.Message)
	case apperrors.CodeForbidden:
		Forbidden(w, appErr.Message)
	case apperrors.CodeNotFound:
		NotFound(w, appErr.Message)
	case apperrors.CodeConflict:
		Conflict(w, appErr.Message)
	case apperrors.CodeDomain:
		DomainRule(w, appErr.Message)
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}

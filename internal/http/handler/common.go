package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/ledger"
	"github.com/straye-as/progress-api/internal/service"
)

var validate = newValidator()

// newValidator reports fields by their JSON names so error keys match the request body
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondAPIError(w http.ResponseWriter, apiErr domain.APIError) {
	respondJSON(w, apiErr.Status, apiErr)
}

// respondValidationError sends a standardized validation error response with specific field messages
func respondValidationError(w http.ResponseWriter, err error) {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			errs[fieldPath(fe.Namespace())] = formatValidationError(fe)
		}
	}

	respondAPIError(w, domain.APIError{
		Type:   domain.ErrorTypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
		Detail: "One or more fields failed validation",
		Errors: errs,
	})
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", toJSONFieldName(fe.Field()))
	case "email":
		return "Must be a valid email address"
	case "max":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// fieldPath drops the struct name from a validator namespace, turning
// "DailyReportRequest.entries[0].sheet2[1].subItemId" into
// "entries[0].sheet2[1].subItemId"
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = toJSONFieldName(p)
	}
	return strings.Join(parts, ".")
}

// toJSONFieldName converts a Go struct field name to its JSON equivalent (camelCase)
func toJSONFieldName(field string) string {
	if len(field) == 0 {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, message string) {
	respondAPIError(w, domain.APIError{
		Type:   getErrorType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: message,
	})
}

// getErrorType returns the appropriate error type for an HTTP status code
func getErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return domain.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return domain.ErrorTypeForbidden
	case http.StatusNotFound:
		return domain.ErrorTypeNotFound
	case http.StatusConflict:
		return domain.ErrorTypeConflict
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return domain.ErrorTypeExternal
	default:
		return domain.ErrorTypeInternal
	}
}

// handleServiceError maps service and ledger errors onto API errors.
// Unexpected errors are logged and reported as 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	var verr *ledger.ValidationError
	if errors.As(err, &verr) {
		respondAPIError(w, domain.APIError{
			Type:   domain.ErrorTypeValidation,
			Title:  "Validation Error",
			Status: http.StatusBadRequest,
			Detail: verr.Error(),
			Errors: map[string]string{verr.Field: verr.Err.Error()},
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrVersionConflict):
		respondAPIError(w, domain.APIError{
			Type:      domain.ErrorTypeConflict,
			Title:     "Version Conflict",
			Status:    http.StatusConflict,
			Detail:    "The project changed since it was loaded. Refresh and submit again.",
			Retryable: true,
		})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrCommentRequired),
		errors.Is(err, service.ErrNoChanges),
		errors.Is(err, service.ErrUnknownUpload),
		errors.Is(err, service.ErrUploadTooLarge):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, service.ErrPermissionDenied),
		errors.Is(err, service.ErrNotAssignedManager):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrUploadNotSupported):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrBlockageClosed):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUploadIncomplete),
		errors.Is(err, service.ErrStorageUnavailable):
		log.Warn("external dependency failed", zap.Error(err))
		respondWithError(w, http.StatusBadGateway, err.Error())
	default:
		log.Error("unhandled service error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// decodeAndValidate reads a JSON body into req and validates it.
// It writes the error response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return false
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return false
	}
	return true
}

func projectIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// queryTime parses an optional RFC 3339 timestamp or YYYY-MM-DD date
func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid %s: use RFC 3339 or YYYY-MM-DD", name)
}

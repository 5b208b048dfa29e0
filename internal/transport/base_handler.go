package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/internal/core/common/dateutil"
	"github.com/frahmantamala/research-analytics/internal/core/common/validation"
	"github.com/frahmantamala/research-analytics/pkg/logger"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes a plain status/message error body.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Warn("http error", "status", status, "message", message)
	h.WriteJSON(w, status, map[string]interface{}{
		"statusCode": status,
		"message":    message,
	})
}

// WriteAppError serialises an AppError in the {"error": {...}} envelope.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// HandleServiceError maps service errors to responses. Anything that is not
// an AppError becomes a generic 500 and its cause is only logged.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	lg := logger.From(r.Context())
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			lg.Error("request failed", "error", err, "path", r.URL.Path)
		} else {
			lg.Debug("request rejected", "code", appErr.Code, "message", appErr.GetDetailedMessage())
		}
		h.WriteAppError(w, appErr)
		return
	}

	lg.Error("unhandled service error", "error", err, "path", r.URL.Path)
	h.WriteAppError(w, internal.NewInternalError("Internal server error", err))
}

// DecodeJSON strictly decodes the body into dst (unknown fields are rejected)
// and then runs struct validation.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) *internal.AppError {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return internal.NewValidationError("request body must contain a single JSON object", internal.ErrCodeMalformedBody)
	}
	return validation.Struct(dst)
}

func decodeError(err error) *internal.AppError {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return internal.NewValidationError("request body is required", internal.ErrCodeMalformedBody)
	case errors.As(err, &syntaxErr):
		return internal.NewValidationError(fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset), internal.ErrCodeMalformedBody)
	case errors.As(err, &typeErr):
		return internal.NewValidationFieldError(typeErr.Field, fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type), internal.ErrCodeValidationFailed)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return internal.NewValidationFieldError(field, fmt.Sprintf("property %s should not exist", field), internal.ErrCodeValidationFailed)
	default:
		return internal.NewValidationError("invalid request body", internal.ErrCodeMalformedBody)
	}
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

// QueryInt parses an optional integer query parameter.
func (h *BaseHandler) QueryInt(r *http.Request, name string, def int) (int, *internal.AppError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, internal.NewValidationFieldError(name, fmt.Sprintf("%s must be a non-negative integer", name), internal.ErrCodeInvalidQuery)
	}
	return v, nil
}

// QueryDate parses an optional date query parameter.
func (h *BaseHandler) QueryDate(r *http.Request, name string) (*time.Time, *internal.AppError) {
	t, err := dateutil.ParseOptional(r.URL.Query().Get(name))
	if err != nil {
		return nil, internal.NewValidationFieldError(name, fmt.Sprintf("%s must be an ISO 8601 date", name), internal.ErrCodeInvalidDate)
	}
	return t, nil
}

// QueryBool parses an optional boolean query parameter.
func (h *BaseHandler) QueryBool(r *http.Request, name string) (*bool, *internal.AppError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, internal.NewValidationFieldError(name, fmt.Sprintf("%s must be a boolean", name), internal.ErrCodeInvalidQuery)
	}
	return &v, nil
}

// QueryEnum returns the query value if it belongs to the named allow-list.
func (h *BaseHandler) QueryEnum(r *http.Request, name, enum string) (string, *internal.AppError) {
	raw := r.URL.Query().Get(name)
	if raw != "" && !validation.InEnum(enum, raw) {
		return "", internal.NewValidationFieldError(name, fmt.Sprintf("%s is not a valid %s", name, enum), internal.ErrCodeInvalidQuery)
	}
	return raw, nil
}

// Pagination reads skip/take.
func (h *BaseHandler) Pagination(r *http.Request, defaultTake int) (internal.Pagination, *internal.AppError) {
	skip, appErr := h.QueryInt(r, "skip", 0)
	if appErr != nil {
		return internal.Pagination{}, appErr
	}
	take, appErr := h.QueryInt(r, "take", defaultTake)
	if appErr != nil {
		return internal.Pagination{}, appErr
	}
	return internal.Pagination{Skip: skip, Take: take}.Normalize(defaultTake), nil
}

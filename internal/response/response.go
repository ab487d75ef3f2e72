// file: internal/response/response.go
package response

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"allowancehub/internal/middleware"
	"allowancehub/internal/services"

	"go.uber.org/zap"
)

// ===============================
// RESPONSE TYPES
// ===============================

// APIResponse represents a standardized API response
type APIResponse struct {
	Success   bool         `json:"success"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp int64        `json:"timestamp,omitempty"`
}

// ErrorDetail represents error information in API responses
type ErrorDetail struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Fields  []FieldError           `json:"fields,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// FieldError represents field-specific validation errors
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ===============================
// RESPONSE BUILDER
// ===============================

// Builder constructs standardized JSON responses
type Builder struct {
	logger             *zap.Logger
	maskInternalErrors bool
}

// NewBuilder creates a new response builder. Internal error messages are
// masked when maskInternalErrors is set, which production should use.
func NewBuilder(logger *zap.Logger, maskInternalErrors bool) *Builder {
	return &Builder{
		logger:             logger,
		maskInternalErrors: maskInternalErrors,
	}
}

// Success creates a successful API response
func (b *Builder) Success(ctx context.Context, data interface{}) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		RequestID: middleware.GetRequestID(ctx),
		Timestamp: time.Now().Unix(),
	}
}

// Error creates an error response from a service error
func (b *Builder) Error(ctx context.Context, err error) *APIResponse {
	detail := b.convertError(err)

	b.logError(ctx, err, detail)

	return &APIResponse{
		Success:   false,
		Error:     detail,
		RequestID: middleware.GetRequestID(ctx),
		Timestamp: time.Now().Unix(),
	}
}

// ValidationError creates a field-level validation error response
func (b *Builder) ValidationError(ctx context.Context, message string, fields []FieldError) *APIResponse {
	return &APIResponse{
		Success: false,
		Error: &ErrorDetail{
			Type:    "VALIDATION_ERROR",
			Message: message,
			Fields:  fields,
		},
		RequestID: middleware.GetRequestID(ctx),
		Timestamp: time.Now().Unix(),
	}
}

// ===============================
// HTTP RESPONSE WRITERS
// ===============================

// WriteJSON writes a JSON response with appropriate headers
func (b *Builder) WriteJSON(w http.ResponseWriter, r *http.Request, resp *APIResponse, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		b.logger.Error("Failed to encode JSON response",
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}
}

// WriteSuccess writes a successful JSON response
func (b *Builder) WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, b.Success(r.Context(), data), http.StatusOK)
}

// WriteCreated writes a successful creation response
func (b *Builder) WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, b.Success(r.Context(), data), http.StatusCreated)
}

// WriteNoContent writes a 204 with an empty body
func (b *Builder) WriteNoContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError writes an error response with the status code carried by the
// service error, or 500 for anything unrecognized.
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := http.StatusInternalServerError
	if serviceErr, ok := services.AsServiceError(err); ok {
		statusCode = serviceErr.GetStatusCode()
	}
	b.WriteJSON(w, r, b.Error(r.Context(), err), statusCode)
}

// WriteValidationError writes a 400 with field-level details
func (b *Builder) WriteValidationError(w http.ResponseWriter, r *http.Request, message string, fields []FieldError) {
	b.WriteJSON(w, r, b.ValidationError(r.Context(), message, fields), http.StatusBadRequest)
}

// ===============================
// UTILITY METHODS
// ===============================

// convertError converts error types to ErrorDetail
func (b *Builder) convertError(err error) *ErrorDetail {
	if err == nil {
		return nil
	}

	if serviceErr, ok := services.AsServiceError(err); ok {
		detail := &ErrorDetail{
			Type:    serviceErr.Type,
			Message: serviceErr.Message,
			Code:    serviceErr.Code,
			Details: serviceErr.Details,
		}
		if b.maskInternalErrors && serviceErr.Type == "INTERNAL_ERROR" {
			detail.Message = "An internal error occurred"
			detail.Details = nil
		}
		return detail
	}

	message := err.Error()
	if b.maskInternalErrors {
		message = "An unexpected error occurred"
	}

	return &ErrorDetail{
		Type:    "INTERNAL_ERROR",
		Message: message,
	}
}

// logError logs errors at a level matching their type
func (b *Builder) logError(ctx context.Context, err error, detail *ErrorDetail) {
	requestID := middleware.GetRequestID(ctx)

	switch detail.Type {
	case "VALIDATION_ERROR", "BUSINESS_ERROR", "NOT_FOUND", "CONFLICT":
		b.logger.Warn("Request error",
			zap.String("request_id", requestID),
			zap.String("error_type", detail.Type),
			zap.String("error_message", detail.Message),
		)
	default:
		b.logger.Error("Internal error",
			zap.String("request_id", requestID),
			zap.String("error_type", detail.Type),
			zap.Error(err),
		)
	}
}

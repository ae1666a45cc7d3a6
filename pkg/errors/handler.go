package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse represents the API error response format
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorHandler handles errors and sends appropriate HTTP responses
type ErrorHandler struct {
	logger        *zap.Logger
	debug         bool
	defaultStatus int
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{
		logger:        logger,
		debug:         debug,
		defaultStatus: http.StatusInternalServerError,
	}
}

// Handle processes an error and sends an HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	requestID := r.Header.Get("X-Request-ID")

	var status int
	var response ErrorResponse

	if appErr := GetAppError(err); appErr != nil {
		status = appErr.HTTPStatus
		if status == 0 {
			status = h.defaultStatus
		}

		response = ErrorResponse{
			Error:     true,
			Type:      string(appErr.Type),
			Message:   appErr.Message,
			Code:      appErr.Code,
			Details:   appErr.Details,
			RequestID: requestID,
		}

		h.logError(r, appErr, status)

		if h.debug && appErr.StackTrace != "" {
			if response.Details == nil {
				response.Details = make(map[string]interface{})
			}
			response.Details["stack_trace"] = appErr.StackTrace
		}
	} else {
		status = h.defaultStatus
		response = ErrorResponse{
			Error:     true,
			Type:      string(ErrorTypeInternal),
			Message:   "An internal error occurred",
			RequestID: requestID,
		}

		h.logger.Error("Unhandled error",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID),
			zap.Int("status", status),
		)

		if h.debug {
			response.Message = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// logError logs an AppError at a severity matching its type. NotFound is
// expected traffic and stays at debug.
func (h *ErrorHandler) logError(r *http.Request, appErr *AppError, status int) {
	fields := []zap.Field{
		zap.String("type", string(appErr.Type)),
		zap.String("code", appErr.Code),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.NamedError("cause", appErr.Cause))
	}

	switch appErr.Type {
	case ErrorTypeNotFound:
		h.logger.Debug(appErr.Message, fields...)
	case ErrorTypeValidation, ErrorTypeConflict:
		h.logger.Warn(appErr.Message, fields...)
	default:
		h.logger.Error(appErr.Message, fields...)
	}
}

package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/go-chi/render"

	"salespulse/internal/dataprocessing"
	"salespulse/internal/infrastructure"
)

// Common error types following RFC 7807
const (
	TypeValidation  = "/errors/validation"
	TypeNotFound    = "/errors/not-found"
	TypeRateLimit   = "/errors/rate-limit"
	TypeInternal    = "/errors/internal"
	TypeServiceDown = "/errors/service-unavailable"
	TypeTimeout     = "/errors/timeout"
	TypeMethod      = "/errors/method-not-allowed"
)

// Sales data error types
const (
	TypeSchema         = "/errors/data/schema"
	TypeEmptyDataset   = "/errors/data/empty"
	TypeDataParse      = "/errors/data/parse"
	TypeSourceNotFound = "/errors/data/source-not-found"
	TypeConfig         = "/errors/config"
)

// ErrorHandler converts errors into RFC 7807 responses
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	traceID := infrastructure.GetTraceID(r.Context())
	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)

	if traceID != "" {
		problem.WithExtension("trace_id", traceID)
	}
	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	_ = render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	instance := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			instance,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var schemaErr *dataprocessing.SchemaError
	if errors.As(err, &schemaErr) {
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeSchema,
			"Schema Mismatch",
			schemaErr.Error(),
			instance,
		).WithExtension("missing_fields", schemaErr.Missing)
	}

	if errors.Is(err, dataprocessing.ErrEmptyDataset) {
		return NewProblemDetails(
			http.StatusNotFound,
			TypeEmptyDataset,
			"No Sales Records",
			"The sales source has no valid records after cleaning",
			instance,
		)
	}

	var argErr *dataprocessing.InvalidArgumentError
	if errors.As(err, &argErr) {
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Invalid Argument",
			argErr.Error(),
			instance,
		).WithExtension("argument", argErr.Name)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErrorToProblem(appErr, instance)
	}

	if errors.Is(err, fs.ErrNotExist) {
		return NewProblemDetails(
			http.StatusNotFound,
			TypeSourceNotFound,
			"Source Not Found",
			"The configured sales source file does not exist",
			instance,
		)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		instance,
	)
}

func appErrorToProblem(appErr *AppError, instance string) *ProblemDetails {
	var (
		status      int
		problemType string
		title       string
	)
	switch appErr.Type {
	case ErrTypeSchema:
		status, problemType, title = http.StatusUnprocessableEntity, TypeSchema, "Schema Mismatch"
	case ErrTypeParsing:
		status, problemType, title = http.StatusUnprocessableEntity, TypeDataParse, "Unreadable Source"
	case ErrTypeEmptyDataset:
		status, problemType, title = http.StatusNotFound, TypeEmptyDataset, "No Sales Records"
	case ErrTypeInvalidArgument:
		status, problemType, title = http.StatusBadRequest, TypeValidation, "Invalid Argument"
	case ErrTypeConfig:
		status, problemType, title = http.StatusInternalServerError, TypeConfig, "Configuration Error"
	default:
		status, problemType, title = http.StatusInternalServerError, TypeInternal, "Internal Server Error"
	}

	detail := appErr.Message
	if status >= http.StatusInternalServerError {
		detail = "An unexpected error occurred while processing your request"
	}

	problem := NewProblemDetails(status, problemType, title, detail, instance).
		WithExtension("error_type", string(appErr.Type))
	for k, v := range appErr.Context {
		if _, reserved := problem.Extensions[k]; !reserved {
			problem.WithExtension(k, v)
		}
	}
	return problem
}

func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case CodeValidationFailed, CodeInvalidRequest, CodeInvalidJSON, CodePayloadTooLarge:
		problemType = TypeValidation
	case CodeNoExports:
		problemType = TypeNotFound
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", infrastructure.GetTraceID(r.Context()))

	_ = render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethod,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", infrastructure.GetTraceID(r.Context()))

	_ = render.Render(w, r, problem)
}

func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

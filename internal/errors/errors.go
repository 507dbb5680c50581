package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeDatabase    ErrorType = "database"
	ErrorTypeExternal    ErrorType = "external_api"
	ErrorTypeParse       ErrorType = "parse"
	ErrorTypeEntitlement ErrorType = "entitlement"
	ErrorTypeInternal    ErrorType = "internal"
	ErrorTypeTimeout     ErrorType = "timeout"
)

// Error codes shared between the core and the presentation layer.
const (
	CodeValidation        = "VALIDATION"
	CodeProfileIncomplete = "PROFILE_INCOMPLETE"
	CodeAIFetchFailed     = "AI_FETCH_FAILED"
	CodeAIParseFailed     = "AI_PARSE_FAILED"
	CodeEntitlement       = "ENTITLEMENT_DENIED"
	CodeDatabase          = "DB_ERROR"
	CodeInternal          = "INTERNAL"
	CodeTimeout           = "TIMEOUT"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType
	Message  string
	Code     string
	Internal error
	Context  map[string]interface{}
	Source   string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is matches on type and code, so sentinels below work with errors.Is.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  caller(2),
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   caller(2),
		Context:  make(map[string]interface{}),
	}
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// Handler provides error handling strategies
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// Handle processes an error according to its type
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		h.handleAppError(ctx, appErr)
	} else {
		h.handleGenericError(ctx, err)
	}
}

func (h *Handler) handleAppError(ctx context.Context, err *AppError) {
	switch err.Type {
	case ErrorTypeValidation:
		h.logger.DebugContext(ctx, "Validation error", err.LogFields()...)
	case ErrorTypeEntitlement:
		h.logger.InfoContext(ctx, "Entitlement denied", err.LogFields()...)
	case ErrorTypeParse:
		h.logger.WarnContext(ctx, "AI response parse error", err.LogFields()...)
	case ErrorTypeDatabase, ErrorTypeExternal, ErrorTypeInternal, ErrorTypeTimeout:
		h.logger.ErrorContext(ctx, "Critical error", err.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Unknown error type", err.LogFields()...)
	}
}

func (h *Handler) handleGenericError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
}

// LogAndReturn logs an error and returns it
func (h *Handler) LogAndReturn(ctx context.Context, err error) error {
	h.Handle(ctx, err)
	return err
}

// Sentinels for errors.Is matching. Never returned directly; constructors
// below produce fresh values carrying the same type and code.
var (
	ErrValidation        = &AppError{Type: ErrorTypeValidation, Code: CodeValidation, Message: "Invalid input provided"}
	ErrProfileIncomplete = &AppError{Type: ErrorTypeValidation, Code: CodeProfileIncomplete, Message: "Health profile is not complete"}
	ErrProviderFailed    = &AppError{Type: ErrorTypeExternal, Code: CodeAIFetchFailed, Message: "AI fetch failed"}
	ErrParseFailed       = &AppError{Type: ErrorTypeParse, Code: CodeAIParseFailed, Message: "AI response could not be parsed"}
	ErrEntitlementDenied = &AppError{Type: ErrorTypeEntitlement, Code: CodeEntitlement, Message: "AI features are not available for this plan"}
	ErrDatabase          = &AppError{Type: ErrorTypeDatabase, Code: CodeDatabase, Message: "Database operation failed"}
	ErrTimeout           = &AppError{Type: ErrorTypeTimeout, Code: CodeTimeout, Message: "Operation timed out"}
)

func NewValidationError(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Code: CodeValidation, Message: message, Source: caller(2), Context: make(map[string]interface{})}
}

// NewProfileIncompleteError lists the record fields still missing.
func NewProfileIncompleteError(missing []string) *AppError {
	e := &AppError{
		Type:    ErrorTypeValidation,
		Code:    CodeProfileIncomplete,
		Message: "Health profile is not complete",
		Source:  caller(2),
		Context: make(map[string]interface{}),
	}
	if len(missing) > 0 {
		e.Message = fmt.Sprintf("Health profile is not complete: missing %s", strings.Join(missing, ", "))
		e.WithContext("missing", missing)
	}
	return e
}

// NewProviderError reports a transport or provider failure of the AI client.
// Details stay in Internal.
func NewProviderError(err error, provider string) *AppError {
	return (&AppError{
		Type:     ErrorTypeExternal,
		Code:     CodeAIFetchFailed,
		Message:  "AI fetch failed",
		Internal: err,
		Source:   caller(2),
	}).WithContext("provider", provider)
}

func NewParseError(err error, reason string) *AppError {
	return &AppError{
		Type:     ErrorTypeParse,
		Code:     CodeAIParseFailed,
		Message:  reason,
		Internal: err,
		Source:   caller(2),
		Context:  make(map[string]interface{}),
	}
}

func NewEntitlementError(reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeEntitlement,
		Code:    CodeEntitlement,
		Message: reason,
		Source:  caller(2),
		Context: make(map[string]interface{}),
	}
}

func NewDatabaseError(err error) *AppError {
	return Wrap(err, ErrorTypeDatabase, CodeDatabase, "Database operation failed")
}

func NewTimeoutError(operation string) *AppError {
	return New(ErrorTypeTimeout, CodeTimeout, fmt.Sprintf("%s operation timed out", operation)).
		WithContext("operation", operation)
}

func NewInternalError(err error) *AppError {
	return Wrap(err, ErrorTypeInternal, CodeInternal, "Internal server error")
}

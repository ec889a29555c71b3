package api

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"runtime/debug"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/skydeals/skydeals-api/internal/api/shared"
	"github.com/skydeals/skydeals-api/internal/config"
	"github.com/skydeals/skydeals-api/internal/domain"
	"github.com/skydeals/skydeals-api/internal/platform/logger"
	"github.com/skydeals/skydeals-api/internal/platform/media"
	"github.com/skydeals/skydeals-api/internal/service/auth"
	"github.com/skydeals/skydeals-api/internal/service/listing"
	"github.com/skydeals/skydeals-api/internal/store"
)

// Error is an operational error: one whose status and message are safe to
// surface verbatim to the caller.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an operational error with the given HTTP status.
func NewError(status int, message string) *Error {
	return &Error{StatusCode: status, Message: message}
}

// InvalidIDError builds the 400 returned when a route identifier fails to
// parse, naming the offending field and value.
func InvalidIDError(field, value string) *Error {
	return NewError(http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s", field, value))
}

// StatusLabel derives the envelope status label from an HTTP status code:
// "fail" for client errors, "error" for everything else.
func StatusLabel(status int) string {
	if status >= 400 && status < 500 {
		return "fail"
	}
	return "error"
}

// errorResponse is the terse wire shape for failures.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// verboseErrorResponse additionally exposes internals; only ever sent in
// non-production environments.
type verboseErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Stack   string `json:"stack"`
}

// ErrorWriter is the single boundary where errors become HTTP responses.
// Handlers return errors; nothing else in the API layer formats failure
// bodies.
type ErrorWriter struct {
	verbose bool
}

// NewErrorWriter creates an ErrorWriter. Outside production the writer
// echoes internals and stack traces to speed up debugging.
func NewErrorWriter(cfg config.ServerConfig) *ErrorWriter {
	return &ErrorWriter{verbose: !cfg.IsProduction()}
}

// WriteError normalizes err into an operational error where its shape is
// recognized, then renders it in the mode selected at construction.
func (ew *ErrorWriter) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	opErr := Normalize(err)

	if ew.verbose {
		shared.RespondWithJSON(w, r, opErr.StatusCode, verboseErrorResponse{
			Status:  StatusLabel(opErr.StatusCode),
			Error:   err.Error(),
			Message: opErr.Message,
			Stack:   string(debug.Stack()),
		})
		return
	}

	if opErr.StatusCode == http.StatusInternalServerError && opErr.Message == genericMessage {
		// Unrecognized shape: log the internals, tell the caller nothing.
		log.Error("unhandled error",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"trace_id", shared.GetTraceID(r.Context()))
	}

	shared.RespondWithJSON(w, r, opErr.StatusCode, errorResponse{
		Status:  StatusLabel(opErr.StatusCode),
		Message: opErr.Message,
	})
}

const genericMessage = "Something went wrong"

// duplicateValuePattern extracts the offending value from a unique-violation
// detail of the form `Key (email)=(a@b.com) already exists.`
var duplicateValuePattern = regexp.MustCompile(`\)=\((.+?)\)`)

// Normalize converts known storage, validation and auth error shapes into
// operational errors with caller-safe messages. Errors that are already
// operational pass through; anything unrecognized becomes a generic 500.
func Normalize(err error) *Error {
	var opErr *Error
	if errors.As(err, &opErr) {
		if opErr.StatusCode == 0 {
			opErr.StatusCode = http.StatusInternalServerError
		}
		return opErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return NewError(http.StatusBadRequest, validationMessage(validationErrs))
	}

	switch {
	case errors.Is(err, store.ErrDuplicate):
		return NewError(http.StatusBadRequest, duplicateMessage(err))

	case errors.Is(err, store.ErrUserNotFound):
		return NewError(http.StatusNotFound, "User not found")

	case errors.Is(err, store.ErrAircraftNotFound):
		return NewError(http.StatusNotFound, "Listing not found")

	case errors.Is(err, store.ErrNotFound):
		return NewError(http.StatusNotFound, "Resource not found")

	case errors.Is(err, store.ErrInvalidQuery):
		return NewError(http.StatusBadRequest, trimSentinel(err, store.ErrInvalidQuery, "Invalid query parameters"))

	case errors.Is(err, store.ErrInvalidEntity):
		return NewError(http.StatusBadRequest, "Invalid entity data")

	case errors.Is(err, auth.ErrExpiredToken):
		return NewError(http.StatusUnauthorized, "Your session has expired. Please log in again")

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return NewError(http.StatusUnauthorized, "Invalid token. Please log in again")

	case isDomainValidation(err) || isMediaRejection(err):
		return NewError(http.StatusBadRequest, sentinelMessage(err))

	case errors.Is(err, media.ErrUpload):
		return NewError(http.StatusInternalServerError, "File upload failed. Please try again later")

	case strings.Contains(err.Error(), "invalid UUID"):
		return NewError(http.StatusBadRequest, "Invalid id: malformed identifier")

	default:
		return NewError(http.StatusInternalServerError, genericMessage)
	}
}

// domainValidationErrs are entity-level failures safe to echo verbatim.
var domainValidationErrs = []error{
	domain.ErrMissingField,
	domain.ErrInvalidCategory,
	domain.ErrInvalidPrice,
	domain.ErrNoImages,
	domain.ErrEmptyEmail,
	domain.ErrInvalidEmail,
	domain.ErrEmptyName,
	domain.ErrEmptyPassword,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrInvalidRole,
}

func isDomainValidation(err error) bool {
	for _, target := range domainValidationErrs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// mediaRejectionErrs are upload-filter failures; rejection is terminal for
// the whole request and safe to echo.
var mediaRejectionErrs = []error{
	listing.ErrUnsupportedImage,
	listing.ErrUnsupportedVideo,
	listing.ErrImageTooLarge,
	listing.ErrVideoTooLarge,
	listing.ErrTooManyImages,
	listing.ErrTooManyVideos,
}

func isMediaRejection(err error) bool {
	for _, target := range mediaRejectionErrs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// sentinelMessage returns the matched sentinel's own text, capitalized, so
// wrapping context added on the way up never reaches the caller.
func sentinelMessage(err error) string {
	for _, target := range domainValidationErrs {
		if errors.Is(err, target) {
			return capitalize(target.Error())
		}
	}
	for _, target := range mediaRejectionErrs {
		if errors.Is(err, target) {
			return capitalize(target.Error())
		}
	}
	return capitalize(err.Error())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// duplicateMessage echoes the duplicate value when the underlying detail is
// available; otherwise falls back to a generic duplicate message.
func duplicateMessage(err error) string {
	if m := duplicateValuePattern.FindStringSubmatch(err.Error()); m != nil {
		return fmt.Sprintf("Duplicate field value: %s. Please use another value", m[1])
	}
	return "Duplicate field value. Please use another value"
}

// validationMessage joins all field-level failures into one message.
func validationMessage(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("Invalid %s: %s", fe.Field(), tagMessage(fe.Tag())))
	}
	return strings.Join(parts, ". ")
}

func tagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gt":
		return "must be greater"
	default:
		return "validation failed"
	}
}

func trimSentinel(err error, sentinel error, fallback string) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error())
	msg = strings.TrimPrefix(msg, ": ")
	if msg == "" || msg == err.Error() {
		return fallback
	}
	return fallback + ": " + msg
}

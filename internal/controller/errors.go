package controller

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/campusradio/server/internal/service/playback"
	"github.com/campusradio/server/internal/service/station"
	"github.com/campusradio/server/pkg/rest"
	"github.com/campusradio/server/pkg/validator"
	"github.com/campusradio/server/pkg/wsrouter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// inputError is a request or message body that failed validation.
type inputError struct {
	errors []validator.ValidationError
}

func newInputError(field, code, message string) *inputError {
	return &inputError{errors: []validator.ValidationError{{Field: field, Code: code, Message: message}}}
}

func (e *inputError) Error() string {
	msgs := make([]string, 0, len(e.errors))
	for _, ve := range e.errors {
		msgs = append(msgs, ve.Message)
	}

	return "invalid input: " + strings.Join(msgs, "; ")
}

func (c controller) validateInput(input any) error {
	if errs, ok := c.validate.Validate(input); !ok {
		return &inputError{errors: errs}
	}

	return nil
}

var errorTable = []struct {
	err    error
	status int
	code   string
}{
	{wsrouter.ErrUnknownMessageType, http.StatusBadRequest, "UNKNOWN_MESSAGE_TYPE"},
	{playback.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
	{playback.ErrWidgetNotFound, http.StatusNotFound, "WIDGET_NOT_FOUND"},
	{playback.ErrHostNotConnected, http.StatusConflict, "HOST_NOT_CONNECTED"},
	{playback.ErrHostAlreadyConnected, http.StatusConflict, "HOST_ALREADY_CONNECTED"},
	{playback.ErrPodcastWidgetNotConnected, http.StatusConflict, "PODCAST_WIDGET_NOT_CONNECTED"},
	{playback.ErrPodcastWidgetAlreadyConnected, http.StatusConflict, "PODCAST_WIDGET_ALREADY_CONNECTED"},
	{playback.ErrEpisodeNotLoaded, http.StatusConflict, "EPISODE_NOT_LOADED"},
	{playback.ErrPermissionDenied, http.StatusForbidden, "PERMISSION_DENIED"},
	{playback.ErrStreamNotConfigured, http.StatusServiceUnavailable, "STREAM_NOT_CONFIGURED"},
	{station.ErrPodcastNotFound, http.StatusNotFound, "PODCAST_NOT_FOUND"},
	{station.ErrProgramNotFound, http.StatusNotFound, "PROGRAM_NOT_FOUND"},
	{station.ErrPodcastAlreadyExists, http.StatusConflict, "PODCAST_ALREADY_EXISTS"},
	{station.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{station.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
	{station.ErrPermissionDenied, http.StatusForbidden, "PERMISSION_DENIED"},
	{station.ErrStorageNotConfigured, http.StatusServiceUnavailable, "STORAGE_NOT_CONFIGURED"},
}

// validationErrorsOf flattens body and service level validation failures into one list.
func validationErrorsOf(err error) ([]validator.ValidationError, bool) {
	var inErr *inputError
	if errors.As(err, &inErr) {
		return inErr.errors, true
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for field := range fieldErrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		res := make([]validator.ValidationError, 0, len(fieldErrs))
		for _, field := range fields {
			fe := fieldErrs[field]
			code := "INVALID"
			var ve validation.Error
			if errors.As(fe, &ve) {
				code = strings.ToUpper(strings.TrimPrefix(ve.Code(), "validation_"))
			}

			res = append(res, validator.ValidationError{Field: field, Code: code, Message: fe.Error()})
		}

		return res, true
	}

	var ve validation.Error
	if errors.As(err, &ve) {
		return []validator.ValidationError{{
			Code:    strings.ToUpper(strings.TrimPrefix(ve.Code(), "validation_")),
			Message: ve.Error(),
		}}, true
	}

	return nil, false
}

func classifyError(err error) (int, string) {
	if _, ok := validationErrorsOf(err); ok {
		return http.StatusBadRequest, "VALIDATION_FAILED"
	}

	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}

	return http.StatusInternalServerError, "INTERNAL"
}

// writeError maps err to a status code and writes the error envelope. Internal errors are logged, not exposed.
func (c controller) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)

	envelope := rest.Envelope{"code": code}
	if errs, ok := validationErrorsOf(err); ok {
		envelope["error"] = "validation failed"
		envelope["errors"] = errs
	} else if status == http.StatusInternalServerError {
		c.logger.ErrorContext(r.Context(), "request failed", "error", err)
		envelope["error"] = http.StatusText(status)
	} else {
		c.logger.InfoContext(r.Context(), "request rejected", "status", status, "error", err)
		envelope["error"] = err.Error()
	}

	if err := rest.WriteJSON(w, status, envelope); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write error", "error", err)
	}
}

func (c controller) writeData(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := rest.WriteJSON(w, status, rest.Envelope{"data": data}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write response", "error", err)
	}
}

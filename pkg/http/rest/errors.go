package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cloudgroundcontrol/voice-channel/pkg/backend"
	"github.com/cloudgroundcontrol/voice-channel/pkg/ledger"
	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
	"github.com/cloudgroundcontrol/voice-channel/pkg/recording"
)

var ErrEmptyFields = errors.New("one or more fields is empty")

func statusOf(err error) int {
	var be *backend.Error
	switch {
	case errors.Is(err, recorder.ErrPermissionDenied), backend.IsPermission(err):
		return http.StatusForbidden
	case errors.Is(err, recorder.ErrDeviceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, recording.ErrBusy),
		errors.Is(err, recording.ErrUploadInProgress),
		errors.Is(err, recorder.ErrAlreadyRecording),
		errors.Is(err, recorder.ErrNotRecording):
		return http.StatusConflict
	case errors.Is(err, recording.ErrEmptyChannel),
		errors.Is(err, backend.ErrMissingArgument),
		errors.Is(err, backend.ErrEmptyChannelName),
		errors.Is(err, ErrEmptyFields):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrOrphanNotFound):
		return http.StatusNotFound
	case errors.As(err, &be) && be.IsNotFound():
		return http.StatusNotFound
	case errors.Is(err, recording.ErrUploadFailed),
		errors.Is(err, recorder.ErrFlush),
		be != nil:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(statusOf(err), err.Error())
}

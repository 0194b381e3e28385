package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cloudgroundcontrol/voice-channel/pkg/recording"
)

type recordingController struct {
	recording.Service
}

type StartRecordingRequest struct {
	Channel     string `json:"channel"`
	StatusEmoji string `json:"status_emoji"`
}

const stopTimeout = 2 * time.Minute

type RecordingResponse struct {
	SessionID        string  `json:"session_id"`
	DurationSeconds  float64 `json:"duration_seconds"`
	Bytes            int     `json:"bytes"`
	Skipped          bool    `json:"skipped"`
	Stage            string  `json:"stage,omitempty"`
	Filename         string  `json:"filename,omitempty"`
	RemoteURL        string  `json:"remote_url,omitempty"`
	TimelineRecordID string  `json:"timeline_record_id,omitempty"`
	LocalPath        string  `json:"local_path,omitempty"`
	Error            string  `json:"error,omitempty"`
}

func NewRecordingController(service recording.Service) recordingController {
	return recordingController{service}
}

func (rc *recordingController) StartRecording(c echo.Context) error {
	// Bind request data
	data := new(StartRecordingRequest)
	if err := c.Bind(data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Sanitise request
	if data.Channel == "" {
		return echo.NewHTTPError(http.StatusBadRequest, ErrEmptyFields.Error())
	}

	// Call service
	err := rc.Service.Start(c.Request().Context(), recording.StartRequest{
		Channel:     data.Channel,
		StatusEmoji: data.StatusEmoji,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, rc.Service.Status())
}

func (rc *recordingController) StopRecording(c echo.Context) error {
	// A client that goes away must not cost the recording or its upload
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), stopTimeout)
	defer cancel()
	outcome, err := rc.Service.Stop(ctx)

	resp := RecordingResponse{
		SessionID:        outcome.SessionID,
		DurationSeconds:  outcome.DurationSeconds,
		Bytes:            outcome.Bytes,
		Skipped:          outcome.Skipped,
		Stage:            string(outcome.Result.Stage),
		Filename:         outcome.Result.Filename,
		RemoteURL:        outcome.Result.RemoteURL,
		TimelineRecordID: outcome.Result.TimelineRecordID,
		LocalPath:        outcome.LocalPath,
	}
	if err != nil {
		// Without a stage nothing reached the network
		if resp.Stage == "" {
			return httpError(err)
		}
		resp.Error = err.Error()
		return c.JSON(statusOf(err), resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (rc *recordingController) RecordingStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, rc.Service.Status())
}

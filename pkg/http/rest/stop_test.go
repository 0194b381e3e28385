package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"

	"github.com/cloudgroundcontrol/voice-channel/pkg/device"
	"github.com/cloudgroundcontrol/voice-channel/pkg/recording"
	"github.com/cloudgroundcontrol/voice-channel/pkg/upload"
)

type stubCreator struct {
	requests []upload.VoiceNoteRequest
}

func (c *stubCreator) CreateVoiceNote(_ context.Context, req upload.VoiceNoteRequest) (string, error) {
	c.requests = append(c.requests, req)
	return "TL-1", nil
}

func TestStartRecordingPassesStatusEmoji(t *testing.T) {
	svc := &fakeService{}
	rec := serve(t, svc, &fakeBackend{}, nil, http.MethodPost, "/recordings/start", `{"channel":"general","status_emoji":"🎉"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"🎉"}, svc.emojis)
}

func TestStopRecordingSurvivesClientDisconnect(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Slow enough for the client to give up first
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":{"file_url":"/private/files/voice.webm"}}`))
	}))
	defer files.Close()

	creator := &stubCreator{}
	store := upload.NewFrappeStore(resty.New().SetBaseURL(files.URL))
	svc := recording.NewService(
		device.NewStaticDevice(device.StaticConfig{Interval: 5 * time.Millisecond}),
		upload.NewCoordinator(store, creator),
	)
	require.NoError(t, svc.Start(context.Background(), recording.StartRequest{Channel: "general"}))
	time.Sleep(30 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(50*time.Millisecond, cancel)

	e := NewServer(svc, &fakeBackend{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/recordings/stop", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Error(t, ctx.Err())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp RecordingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, string(upload.StageSucceeded), resp.Stage)
	require.Equal(t, "/private/files/voice.webm", resp.RemoteURL)
	require.Equal(t, "TL-1", resp.TimelineRecordID)
	require.Len(t, creator.requests, 1)
}

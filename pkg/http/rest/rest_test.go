package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudgroundcontrol/voice-channel/pkg/backend"
	"github.com/cloudgroundcontrol/voice-channel/pkg/ledger"
	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
	"github.com/cloudgroundcontrol/voice-channel/pkg/recording"
	"github.com/cloudgroundcontrol/voice-channel/pkg/upload"
)

type fakeService struct {
	startErr error
	started  []string
	emojis   []string
	outcome  recording.Outcome
	stopErr  error
	status   recording.Status
}

func (s *fakeService) Start(_ context.Context, req recording.StartRequest) error {
	s.started = append(s.started, req.Channel)
	s.emojis = append(s.emojis, req.StatusEmoji)
	return s.startErr
}

func (s *fakeService) Stop(context.Context) (recording.Outcome, error) {
	return s.outcome, s.stopErr
}

func (s *fakeService) Status() recording.Status {
	return s.status
}

func (s *fakeService) Close(context.Context) error {
	return nil
}

type fakeBackend struct {
	err      error
	channels []backend.Channel
	items    []backend.TimelineItem
	query    backend.TimelineQuery
	todo     backend.TodoRequest
	deleted  string
}

func (b *fakeBackend) GetChannels(context.Context) ([]backend.Channel, error) {
	return b.channels, b.err
}

func (b *fakeBackend) CreateChannel(_ context.Context, req backend.ChannelRequest) (*backend.Channel, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &backend.Channel{ID: strings.ToLower(req.Name), DisplayName: req.Name, Emoji: "#", IsAdmin: true}, nil
}

func (b *fakeBackend) GetChannelMembers(context.Context, string) ([]backend.ChannelMember, error) {
	return nil, b.err
}

func (b *fakeBackend) GetTimeline(_ context.Context, _ string, q backend.TimelineQuery) ([]backend.TimelineItem, error) {
	b.query = q
	return b.items, b.err
}

func (b *fakeBackend) CreateTextNote(context.Context, string, string, string) (string, error) {
	return "TL-2", b.err
}

func (b *fakeBackend) CreateTodo(_ context.Context, req backend.TodoRequest) (string, error) {
	b.todo = req
	return "TL-3", b.err
}

func (b *fakeBackend) ToggleTodo(context.Context, string) (bool, error) {
	return true, b.err
}

func (b *fakeBackend) UpdateStatusEmoji(_ context.Context, _ string, emoji string) (string, error) {
	return emoji, b.err
}

func (b *fakeBackend) DeleteTimelineItem(_ context.Context, item string) error {
	b.deleted = item
	return b.err
}

type fakeLedger struct {
	orphans  []ledger.Orphan
	resolved []int64
}

func (l *fakeLedger) Record(context.Context, ledger.Orphan) (int64, error) { return 0, nil }

func (l *fakeLedger) List(context.Context, bool) ([]ledger.Orphan, error) { return l.orphans, nil }

func (l *fakeLedger) Resolve(_ context.Context, id int64) error {
	if id != 1 {
		return ledger.ErrOrphanNotFound
	}
	l.resolved = append(l.resolved, id)
	return nil
}

func (l *fakeLedger) Close() error { return nil }

func serve(t *testing.T, svc *fakeService, b *fakeBackend, l ledger.Ledger, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := NewServer(svc, b, l)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := serve(t, &fakeService{}, &fakeBackend{}, nil, http.MethodGet, "/health-check", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStartRecording(t *testing.T) {
	svc := &fakeService{status: recording.Status{Recording: true, Channel: "general", State: recorder.StateCapturing}}
	rec := serve(t, svc, &fakeBackend{}, nil, http.MethodPost, "/recordings/start", `{"channel":"general"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"general"}, svc.started)

	var status recording.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.True(t, status.Recording)
	require.Equal(t, recorder.StateCapturing, status.State)
}

func TestStartRecordingEmptyChannel(t *testing.T) {
	svc := &fakeService{}
	rec := serve(t, svc, &fakeBackend{}, nil, http.MethodPost, "/recordings/start", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, svc.started)
}

func TestStartRecordingErrors(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("%w: mic blocked", recorder.ErrPermissionDenied): http.StatusForbidden,
		fmt.Errorf("%w: no mic", recorder.ErrDeviceUnavailable):    http.StatusServiceUnavailable,
		recording.ErrBusy:             http.StatusConflict,
		recording.ErrUploadInProgress: http.StatusConflict,
		errors.New("boom"):            http.StatusInternalServerError,
	}
	for err, code := range cases {
		svc := &fakeService{startErr: err}
		rec := serve(t, svc, &fakeBackend{}, nil, http.MethodPost, "/recordings/start", `{"channel":"general"}`)
		require.Equal(t, code, rec.Code, err.Error())
	}
}

func TestStopRecording(t *testing.T) {
	svc := &fakeService{outcome: recording.Outcome{
		SessionID:       "abc",
		DurationSeconds: 4.5,
		Bytes:           10,
		Result: upload.Result{
			Stage:            upload.StageSucceeded,
			Filename:         "voice_1.webm",
			RemoteURL:        "/private/files/voice_1.webm",
			TimelineRecordID: "TL-1",
		},
	}}
	rec := serve(t, svc, &fakeBackend{}, nil, http.MethodPost, "/recordings/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecordingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, RecordingResponse{
		SessionID:        "abc",
		DurationSeconds:  4.5,
		Bytes:            10,
		Stage:            "succeeded",
		Filename:         "voice_1.webm",
		RemoteURL:        "/private/files/voice_1.webm",
		TimelineRecordID: "TL-1",
	}, resp)
}

func TestStopRecordingUploadFailure(t *testing.T) {
	svc := &fakeService{
		outcome: recording.Outcome{
			SessionID: "abc",
			Result: upload.Result{
				Stage:     upload.StageRecordCreateFailed,
				RemoteURL: "/private/files/voice_1.webm",
			},
		},
		stopErr: fmt.Errorf("%w: record_create_failed: not permitted", recording.ErrUploadFailed),
	}
	rec := serve(t, svc, &fakeBackend{}, nil, http.MethodPost, "/recordings/stop", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp RecordingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "record_create_failed", resp.Stage)
	require.Equal(t, "/private/files/voice_1.webm", resp.RemoteURL)
	require.Contains(t, resp.Error, "not permitted")
}

func TestStopRecordingWhenIdle(t *testing.T) {
	svc := &fakeService{stopErr: recorder.ErrNotRecording}
	rec := serve(t, svc, &fakeBackend{}, nil, http.MethodPost, "/recordings/stop", "")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestListChannels(t *testing.T) {
	b := &fakeBackend{channels: []backend.Channel{{ID: "general", DisplayName: "General", Emoji: "#"}}}
	rec := serve(t, &fakeService{}, b, nil, http.MethodGet, "/channels", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var channels []backend.Channel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &channels))
	require.Equal(t, b.channels, channels)
}

func TestListChannelsBackendPermission(t *testing.T) {
	b := &fakeBackend{err: &backend.Error{StatusCode: http.StatusForbidden, ExcType: "PermissionError"}}
	rec := serve(t, &fakeService{}, b, nil, http.MethodGet, "/channels", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListChannelsBackendDown(t *testing.T) {
	b := &fakeBackend{err: &backend.Error{StatusCode: http.StatusInternalServerError}}
	rec := serve(t, &fakeService{}, b, nil, http.MethodGet, "/channels", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCreateChannel(t *testing.T) {
	rec := serve(t, &fakeService{}, &fakeBackend{}, nil, http.MethodPost, "/channels", `{"name":"Ops","admin":"a@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"name":"ops"`)
}

func TestCreateChannelEmptyName(t *testing.T) {
	b := &fakeBackend{err: backend.ErrEmptyChannelName}
	rec := serve(t, &fakeService{}, b, nil, http.MethodPost, "/channels", `{"name":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimeline(t *testing.T) {
	b := &fakeBackend{items: []backend.TimelineItem{
		backend.VoiceNote{ItemMeta: backend.ItemMeta{ID: "TL-1"}, VoiceFile: "/private/files/voice_1.webm", DurationSeconds: 4.5},
	}}
	rec := serve(t, &fakeService{}, b, nil, http.MethodGet, "/channels/general/timeline?limit=10&offset=20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, backend.TimelineQuery{Limit: 10, Offset: 20}, b.query)
	require.Contains(t, rec.Body.String(), `"item_type":"Voice Note"`)
}

func TestTimelineInvalidLimit(t *testing.T) {
	rec := serve(t, &fakeService{}, &fakeBackend{}, nil, http.MethodGet, "/channels/general/timeline?limit=abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTodo(t *testing.T) {
	b := &fakeBackend{}
	rec := serve(t, &fakeService{}, b, nil, http.MethodPost, "/channels/general/todos", `{"title":"Ship it","assigned_user":"b@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, backend.TodoRequest{Channel: "general", Title: "Ship it", AssignedUser: "b@example.com"}, b.todo)
	require.Contains(t, rec.Body.String(), `"id":"TL-3"`)
}

func TestCreateTextNoteRequiresContent(t *testing.T) {
	rec := serve(t, &fakeService{}, &fakeBackend{}, nil, http.MethodPost, "/channels/general/notes", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemRoutes(t *testing.T) {
	b := &fakeBackend{}
	rec := serve(t, &fakeService{}, b, nil, http.MethodPost, "/items/TL-3/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"is_completed":true}`, rec.Body.String())

	rec = serve(t, &fakeService{}, b, nil, http.MethodPut, "/items/TL-3/emoji", `{"emoji":"✅"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status_emoji":"✅"}`, rec.Body.String())

	rec = serve(t, &fakeService{}, b, nil, http.MethodDelete, "/items/TL-3", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "TL-3", b.deleted)
}

func TestOrphanRoutes(t *testing.T) {
	l := &fakeLedger{orphans: []ledger.Orphan{{ID: 1, Filename: "voice_1.webm", RemoteURL: "/private/files/voice_1.webm"}}}

	rec := serve(t, &fakeService{}, &fakeBackend{}, l, http.MethodGet, "/orphans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"remote_url":"/private/files/voice_1.webm"`)

	rec = serve(t, &fakeService{}, &fakeBackend{}, l, http.MethodPost, "/orphans/1/resolve", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []int64{1}, l.resolved)

	rec = serve(t, &fakeService{}, &fakeBackend{}, l, http.MethodPost, "/orphans/7/resolve", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, &fakeService{}, &fakeBackend{}, l, http.MethodPost, "/orphans/x/resolve", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrphanRoutesWithoutLedger(t *testing.T) {
	rec := serve(t, &fakeService{}, &fakeBackend{}, nil, http.MethodGet, "/orphans", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

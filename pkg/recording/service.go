package recording

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/cloudgroundcontrol/voice-channel/pkg/ledger"
	"github.com/cloudgroundcontrol/voice-channel/pkg/notify"
	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
	"github.com/cloudgroundcontrol/voice-channel/pkg/upload"
)

type StartRequest struct {
	Channel     string
	StatusEmoji string
}

// Outcome is what a finished recording turned into. Skipped is set when
// nothing was captured and no upload was attempted.
type Outcome struct {
	SessionID       string        `json:"session_id"`
	DurationSeconds float64       `json:"duration_seconds"`
	Bytes           int           `json:"bytes"`
	Skipped         bool          `json:"skipped"`
	LocalPath       string        `json:"local_path,omitempty"`
	Result          upload.Result `json:"-"`
}

type Status struct {
	State     recorder.State `json:"state"`
	Recording bool           `json:"recording"`
	Uploading bool           `json:"uploading"`
	Channel   string         `json:"channel,omitempty"`
	Elapsed   time.Duration  `json:"elapsed"`
	Timer     string         `json:"timer"`
}

type Service interface {
	Start(ctx context.Context, req StartRequest) error
	Stop(ctx context.Context) (Outcome, error)
	Status() Status
	Close(ctx context.Context) error
}

var (
	ErrEmptyChannel     = errors.New("empty channel")
	ErrBusy             = errors.New("a recording is already running")
	ErrUploadInProgress = errors.New("an upload is still in progress")
	ErrUploadFailed     = errors.New("upload failed")
)

const (
	stageCaptureFailed = "capture_failed"
	notifyTimeout      = 10 * time.Second
	autoStopTimeout    = 2 * time.Minute
)

type Option func(*service)

func WithLedger(l ledger.Ledger) Option {
	return func(s *service) {
		s.ledger = l
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *service) {
		s.notifier = n
	}
}

// WithRecordingsDir keeps a local copy of every finished recording in dir.
func WithRecordingsDir(dir string) Option {
	return func(s *service) {
		s.dir = dir
	}
}

// WithMaxDuration stops and uploads a recording once it runs for d.
func WithMaxDuration(d time.Duration) Option {
	return func(s *service) {
		s.maxDuration = d
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		s.now = clock
	}
}

type service struct {
	// State
	lock      sync.Mutex
	starting  bool
	uploading bool
	channel   string
	emoji     string
	startedAt time.Time
	timer     *time.Timer
	closing   bool
	closed    bool

	// Services
	rec         recorder.Recorder
	coordinator upload.Coordinator
	ledger      ledger.Ledger
	notifier    notify.Notifier

	dir         string
	maxDuration time.Duration
	now         func() time.Time
	background  sync.WaitGroup
}

func NewService(device recorder.Device, coordinator upload.Coordinator, opts ...Option) Service {
	s := &service{
		coordinator: coordinator,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rec = recorder.NewRecorder(device,
		recorder.WithClock(s.now),
		recorder.WithHooks(recorder.Hooks{OnFailure: s.captureFailed}),
	)
	return s
}

func (s *service) Start(ctx context.Context, req StartRequest) error {
	if req.Channel == "" {
		return ErrEmptyChannel
	}

	s.lock.Lock()
	if s.uploading {
		s.lock.Unlock()
		return ErrUploadInProgress
	}
	if s.starting || s.rec.State() == recorder.StateCapturing || s.rec.State() == recorder.StateFinalizing {
		s.lock.Unlock()
		return ErrBusy
	}
	s.starting = true
	s.lock.Unlock()

	err := s.rec.Start(ctx)

	s.lock.Lock()
	defer s.lock.Unlock()
	s.starting = false
	if err != nil {
		if errors.Is(err, recorder.ErrAlreadyRecording) {
			return ErrBusy
		}
		log.Warnf("cannot start recording | channel: %v, error: %v", req.Channel, err)
		return err
	}

	s.channel = req.Channel
	s.emoji = req.StatusEmoji
	s.startedAt = s.now()
	if s.maxDuration > 0 {
		s.timer = time.AfterFunc(s.maxDuration, s.autoStop)
	}
	log.Infof("recording started | channel: %v", req.Channel)
	return nil
}

func (s *service) Stop(ctx context.Context) (Outcome, error) {
	s.lock.Lock()
	if s.uploading {
		s.lock.Unlock()
		return Outcome{}, ErrUploadInProgress
	}
	if !s.rec.IsRecording() {
		s.lock.Unlock()
		return Outcome{}, recorder.ErrNotRecording
	}
	s.uploading = true
	channel := s.channel
	emoji := s.emoji
	startedAt := s.startedAt
	s.stopTimer()
	s.lock.Unlock()

	defer func() {
		s.lock.Lock()
		s.uploading = false
		s.channel = ""
		s.emoji = ""
		s.lock.Unlock()
	}()

	artifact, err := s.rec.Stop(ctx)
	if err != nil {
		// captureFailed leaves this one to Stop
		log.Errorf("cannot finalize recording | channel: %v, error: %v", channel, err)
		s.publish(notify.Event{
			Channel:    channel,
			Stage:      stageCaptureFailed,
			StartedAt:  startedAt,
			FinishedAt: s.now(),
			Error:      err.Error(),
		})
		return Outcome{}, err
	}

	outcome := Outcome{
		SessionID:       artifact.SessionID(),
		DurationSeconds: artifact.DurationSeconds(),
		Bytes:           artifact.Len(),
	}
	if s.dir != "" {
		path, err := recorder.SaveArtifact(s.dir, artifact)
		if err != nil {
			log.Warnf("cannot keep local copy | session: %v, error: %v", artifact.SessionID(), err)
		} else {
			outcome.LocalPath = path
		}
	}

	// Nothing was captured, so there is nothing worth a timeline entry
	if artifact.Len() == 0 {
		log.Infof("empty recording discarded | session: %v", artifact.SessionID())
		outcome.Skipped = true
		return outcome, nil
	}

	var opts []upload.UploadOption
	if emoji != "" {
		opts = append(opts, upload.WithStatusEmoji(emoji))
	}
	result := s.coordinator.Upload(ctx, artifact, channel, opts...)
	outcome.Result = result
	if result.Orphaned() {
		s.recordOrphan(ctx, artifact, channel, result)
	}

	event := notify.Event{
		SessionID:        artifact.SessionID(),
		Channel:          channel,
		Stage:            string(result.Stage),
		Filename:         result.Filename,
		RemoteURL:        result.RemoteURL,
		TimelineRecordID: result.TimelineRecordID,
		DurationSeconds:  artifact.DurationSeconds(),
		StartedAt:        startedAt,
		FinishedAt:       s.now(),
	}
	if result.Err != nil {
		event.Error = result.Err.Error()
	}
	s.publish(event)

	if result.Err != nil {
		return outcome, fmt.Errorf("%w: %s: %v", ErrUploadFailed, result.Stage, result.Err)
	}
	log.Infof("voice note uploaded | channel: %v, id: %v", channel, result.TimelineRecordID)
	return outcome, nil
}

func (s *service) recordOrphan(ctx context.Context, artifact *recorder.Artifact, channel string, result upload.Result) {
	if s.ledger == nil {
		return
	}
	id, err := s.ledger.Record(ctx, ledger.Orphan{
		Filename:        result.Filename,
		RemoteURL:       result.RemoteURL,
		Channel:         channel,
		DurationSeconds: artifact.DurationSeconds(),
		SessionID:       artifact.SessionID(),
		Error:           result.Err.Error(),
	})
	if err != nil {
		log.Errorf("cannot record orphan | url: %v, error: %v", result.RemoteURL, err)
		return
	}
	log.Warnf("orphan recorded | id: %v, url: %v", id, result.RemoteURL)
}

func (s *service) Status() Status {
	s.lock.Lock()
	defer s.lock.Unlock()
	elapsed := s.rec.Elapsed()
	return Status{
		State:     s.rec.State(),
		Recording: s.rec.IsRecording(),
		Uploading: s.uploading,
		Channel:   s.channel,
		Elapsed:   elapsed,
		Timer:     recorder.FormatElapsed(elapsed),
	}
}

// Close uploads a recording that is still running and waits for pending
// notifications.
func (s *service) Close(ctx context.Context) error {
	s.lock.Lock()
	s.closing = true
	s.stopTimer()
	s.lock.Unlock()

	var err error
	if s.rec.IsRecording() {
		_, err = s.Stop(ctx)
		// An automatic stop already owns the upload and is waited for below
		if errors.Is(err, ErrUploadInProgress) {
			err = nil
		}
	}

	s.lock.Lock()
	s.closed = true
	s.lock.Unlock()
	s.background.Wait()
	return err
}

func (s *service) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *service) autoStop() {
	// Registering under the lock orders this Add before Close waits
	s.lock.Lock()
	if s.closing {
		s.lock.Unlock()
		return
	}
	s.background.Add(1)
	s.lock.Unlock()
	defer s.background.Done()

	ctx, cancel := context.WithTimeout(context.Background(), autoStopTimeout)
	defer cancel()

	log.Infof("maximum duration reached, stopping | limit: %v", s.maxDuration)
	if _, err := s.Stop(ctx); err != nil && !errors.Is(err, recorder.ErrNotRecording) {
		log.Errorf("cannot stop recording | error: %v", err)
	}
}

func (s *service) captureFailed(err error) {
	s.lock.Lock()
	channel := s.channel
	startedAt := s.startedAt
	uploading := s.uploading
	s.stopTimer()
	if !uploading {
		s.channel = ""
	}
	s.lock.Unlock()

	// Stop reports its own failures
	if uploading {
		return
	}
	log.Errorf("recording interrupted | channel: %v, error: %v", channel, err)
	s.publish(notify.Event{
		Channel:    channel,
		Stage:      stageCaptureFailed,
		StartedAt:  startedAt,
		FinishedAt: s.now(),
		Error:      err.Error(),
	})
}

func (s *service) publish(event notify.Event) {
	if s.notifier == nil {
		return
	}
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		log.Warnf("service closed, dropping notification | stage: %v, channel: %v", event.Stage, event.Channel)
		return
	}
	s.background.Add(1)
	s.lock.Unlock()
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, event); err != nil {
			log.Errorf("cannot send notification | session: %v, error: %v", event.SessionID, err)
		}
	}()
}

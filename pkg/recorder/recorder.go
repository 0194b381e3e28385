package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/livekit/protocol/logger"
)

type Recorder interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (*Artifact, error)
	IsRecording() bool
	State() State
	Elapsed() time.Duration
}

type Hooks struct {
	// OnComplete runs after a successful Stop with the finished artifact.
	OnComplete func(a *Artifact)
	// OnFailure runs when a started session ends in StateFailed.
	OnFailure func(err error)
}

type Option func(*recorder)

func WithClock(clock func() time.Time) Option {
	return func(r *recorder) {
		r.clock = clock
	}
}

func WithHooks(hooks Hooks) Option {
	return func(r *recorder) {
		r.hooks = hooks
	}
}

type recorder struct {
	device Device
	clock  func() time.Time
	hooks  Hooks

	// States
	lock    sync.Mutex
	state   State
	opening bool
	session *session
}

type session struct {
	id        string
	startedAt time.Time
	chunks    [][]byte
	stream    Stream

	cancel   context.CancelFunc
	done     chan struct{}
	stopping bool
	readErr  error

	release    sync.Once
	releaseErr error
}

// releaseStream stops the stream tracks. Only the first call reaches the
// stream; later calls return the first result.
func (s *session) releaseStream() error {
	s.release.Do(func() {
		s.releaseErr = s.stream.Close()
	})
	return s.releaseErr
}

func NewRecorder(device Device, opts ...Option) Recorder {
	r := &recorder{
		device: device,
		clock:  time.Now,
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *recorder) Start(ctx context.Context) error {
	r.lock.Lock()
	if r.state.busy() || r.opening {
		r.lock.Unlock()
		return ErrAlreadyRecording
	}
	r.opening = true
	r.lock.Unlock()

	// Wait for the device without holding the lock so status queries stay responsive
	stream, err := r.device.Open(ctx)

	r.lock.Lock()
	defer r.lock.Unlock()
	r.opening = false

	if err != nil {
		r.state = StateFailed
		r.session = nil
		return classifyOpenError(err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:        shortuuid.New(),
		startedAt: r.clock(),
		stream:    stream,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	r.session = s
	r.state = StateCapturing
	go r.capture(loopCtx, s)

	logger.Debugw("recording started", "session", s.id, "mimeType", r.device.MimeType())
	return nil
}

func (r *recorder) Stop(ctx context.Context) (*Artifact, error) {
	r.lock.Lock()
	s := r.session
	if r.state != StateCapturing || s == nil || s.stopping {
		r.lock.Unlock()
		return nil, ErrNotRecording
	}
	s.stopping = true
	r.lock.Unlock()

	// Ask the device to finalize, then wait for the capture loop to drain
	flushErr := s.stream.Flush()
	if flushErr != nil {
		s.cancel()
	}
	select {
	case <-s.done:
	case <-ctx.Done():
		if flushErr == nil {
			flushErr = ctx.Err()
		}
		s.cancel()
		// Releasing unblocks devices that ignore cancellation
		_ = s.releaseStream()
		<-s.done
	}
	s.cancel()

	r.lock.Lock()
	r.state = StateFinalizing
	finishedAt := r.clock()
	readErr := s.readErr
	r.lock.Unlock()

	if err := s.releaseStream(); err != nil {
		logger.Warnw("cannot release stream", err, "session", s.id)
	}

	r.lock.Lock()
	r.session = nil
	if cause := firstError(flushErr, readErr); cause != nil {
		r.state = StateFailed
		r.lock.Unlock()

		err := fmt.Errorf("%w: %v", ErrFlush, cause)
		logger.Warnw("recording failed while finalizing", err, "session", s.id)
		r.fail(err)
		return nil, err
	}
	a := assemble(s, r.device.MimeType(), finishedAt)
	r.state = StateCompleted
	r.lock.Unlock()

	logger.Debugw("recording completed", "session", s.id, "bytes", a.Len(), "chunks", a.ChunkCount(), "duration", a.Duration())
	if r.hooks.OnComplete != nil {
		r.hooks.OnComplete(a)
	}
	return a, nil
}

func (r *recorder) IsRecording() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.state == StateCapturing
}

func (r *recorder) State() State {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.state
}

// Elapsed is the wall time since the current capture started, or zero when
// nothing is being captured.
func (r *recorder) Elapsed() time.Duration {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.state != StateCapturing || r.session == nil {
		return 0
	}
	return r.clock().Sub(r.session.startedAt)
}

// capture reads the stream until it ends, appending non-empty chunks.
func (r *recorder) capture(ctx context.Context, s *session) {
	defer close(s.done)

	for {
		data, err := s.stream.ReadChunk(ctx)
		if err != nil {
			r.captureEnded(s, err)
			return
		}
		r.append(s, data)
	}
}

func (r *recorder) append(s *session, data []byte) {
	if len(data) == 0 {
		return
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.session != s || r.state != StateCapturing {
		return
	}
	chunk := make([]byte, len(data))
	copy(chunk, data)
	s.chunks = append(s.chunks, chunk)
}

func (r *recorder) captureEnded(s *session, err error) {
	r.lock.Lock()
	if s.stopping {
		// Stop owns the rest of the teardown
		if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
			s.readErr = err
		}
		r.lock.Unlock()
		return
	}
	if r.session != s || r.state != StateCapturing {
		r.lock.Unlock()
		return
	}
	r.state = StateFailed
	r.session = nil
	r.lock.Unlock()

	// The device went away without a stop request
	if errors.Is(err, io.EOF) {
		err = fmt.Errorf("%w: stream ended unexpectedly", ErrDeviceUnavailable)
	}
	if relErr := s.releaseStream(); relErr != nil {
		logger.Warnw("cannot release stream", relErr, "session", s.id)
	}
	logger.Warnw("recording interrupted", err, "session", s.id)
	r.fail(err)
}

func (r *recorder) fail(err error) {
	if r.hooks.OnFailure != nil {
		r.hooks.OnFailure(err)
	}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// FormatElapsed renders a duration as a mm:ss recording timer.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

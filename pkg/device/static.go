package device

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
)

// StaticConfig configures a device that repeats a fixed sample. It stands in
// for a microphone on machines without one.
type StaticConfig struct {
	Sample   []byte
	Interval time.Duration
	MimeType string
}

const (
	defaultStaticSample   = "hello world"
	defaultStaticInterval = 20 * time.Millisecond
)

type staticDevice struct {
	config StaticConfig
}

func NewStaticDevice(config StaticConfig) recorder.Device {
	if len(config.Sample) == 0 {
		config.Sample = []byte(defaultStaticSample)
	}
	if config.Interval <= 0 {
		config.Interval = defaultStaticInterval
	}
	if config.MimeType == "" {
		config.MimeType = recorder.MimeWebM
	}
	return &staticDevice{config: config}
}

func (d *staticDevice) MimeType() string {
	return d.config.MimeType
}

func (d *staticDevice) Open(context.Context) (recorder.Stream, error) {
	return &staticStream{
		sample:  d.config.Sample,
		ticker:  time.NewTicker(d.config.Interval),
		flushed: make(chan struct{}),
	}, nil
}

type staticStream struct {
	sample    []byte
	ticker    *time.Ticker
	flushOnce sync.Once
	flushed   chan struct{}
}

func (s *staticStream) ReadChunk(ctx context.Context) ([]byte, error) {
	select {
	case <-s.flushed:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.ticker.C:
		chunk := make([]byte, len(s.sample))
		copy(chunk, s.sample)
		return chunk, nil
	}
}

func (s *staticStream) Flush() error {
	s.flushOnce.Do(func() {
		close(s.flushed)
	})
	return nil
}

func (s *staticStream) Close() error {
	s.ticker.Stop()
	return nil
}

package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/livekit/protocol/logger"

	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
)

// FFmpegConfig selects the capture input handed to ffmpeg, for example
// "pulse"/"default" on Linux or "avfoundation"/":0" on macOS.
type FFmpegConfig struct {
	Binary      string
	InputFormat string
	Input       string
	// OpenTimeout bounds how long Open waits for the first encoded bytes.
	OpenTimeout time.Duration
}

const (
	defaultFFmpegBinary = "ffmpeg"
	defaultOpenTimeout  = 5 * time.Second
	ffmpegChunkSize     = 32 * 1024
)

type ffmpegDevice struct {
	config FFmpegConfig
}

func NewFFmpegDevice(config FFmpegConfig) recorder.Device {
	if config.Binary == "" {
		config.Binary = defaultFFmpegBinary
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = defaultOpenTimeout
	}
	return &ffmpegDevice{config: config}
}

func (d *ffmpegDevice) MimeType() string {
	return recorder.MimeWebM
}

func (d *ffmpegDevice) args() []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", d.config.InputFormat,
		"-i", d.config.Input,
		"-ac", "1",
		"-c:a", "libopus",
		"-f", "webm",
		"pipe:1",
	}
}

func (d *ffmpegDevice) Open(ctx context.Context) (recorder.Stream, error) {
	bin, err := exec.LookPath(d.config.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recorder.ErrDeviceUnavailable, err)
	}

	cmd := exec.Command(bin, d.args()...)
	ownProcessGroup(cmd)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	s := &ffmpegStream{
		cmd:    cmd,
		chunks: make(chan []byte, 16),
		exited: make(chan struct{}),
	}
	cmd.Stderr = &s.stderr

	if err = cmd.Start(); err != nil {
		return nil, classifyFFmpegError(err, "")
	}
	go s.pump(stdout)

	// Wait until the device proves it is producing audio
	timer := time.NewTimer(d.config.OpenTimeout)
	defer timer.Stop()
	select {
	case chunk, ok := <-s.chunks:
		if !ok {
			_ = s.Close()
			return nil, classifyFFmpegError(s.readErr, s.stderr.String())
		}
		s.pending = chunk
		logger.Debugw("ffmpeg device opened", "format", d.config.InputFormat, "input", d.config.Input)
		return s, nil
	case <-timer.C:
		_ = s.Close()
		return nil, fmt.Errorf("%w: no audio within %s", recorder.ErrDeviceUnavailable, d.config.OpenTimeout)
	case <-ctx.Done():
		_ = s.Close()
		return nil, ctx.Err()
	}
}

func classifyFFmpegError(err error, stderr string) error {
	msg := strings.ToLower(stderr)
	if strings.Contains(msg, "permission denied") || strings.Contains(msg, "not authorized") ||
		errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %s", recorder.ErrPermissionDenied, strings.TrimSpace(stderr))
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = errors.New("ffmpeg exited before producing audio")
	}
	if stderr != "" {
		return fmt.Errorf("%w: %v: %s", recorder.ErrDeviceUnavailable, err, strings.TrimSpace(stderr))
	}
	return fmt.Errorf("%w: %v", recorder.ErrDeviceUnavailable, err)
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stderr lockedBuffer

	chunks  chan []byte
	pending []byte
	readErr error

	exited    chan struct{}
	flushOnce sync.Once
	flushErr  error
	closeOnce sync.Once
	closeErr  error
}

func (s *ffmpegStream) pump(r io.Reader) {
	defer close(s.chunks)
	for {
		buf := make([]byte, ffmpegChunkSize)
		n, err := r.Read(buf)
		if n > 0 {
			select {
			case s.chunks <- buf[:n]:
			case <-s.exited:
				return
			}
		}
		if err != nil {
			s.readErr = err
			return
		}
	}
}

func (s *ffmpegStream) ReadChunk(ctx context.Context) ([]byte, error) {
	if s.pending != nil {
		chunk := s.pending
		s.pending = nil
		return chunk, nil
	}
	select {
	case chunk, ok := <-s.chunks:
		if !ok {
			if s.readErr == nil {
				return nil, io.EOF
			}
			return nil, s.readErr
		}
		return chunk, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Flush asks ffmpeg to finish the container. The remaining bytes arrive on
// the pipe followed by EOF.
func (s *ffmpegStream) Flush() error {
	s.flushOnce.Do(func() {
		if s.cmd.Process == nil {
			s.flushErr = errors.New("ffmpeg not started")
			return
		}
		s.flushErr = s.cmd.Process.Signal(os.Interrupt)
	})
	return s.flushErr
}

func (s *ffmpegStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.exited)
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		err := s.cmd.Wait()
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			s.closeErr = err
		}
	})
	return s.closeErr
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

package recorder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// Device is an audio input that can be acquired for one capture at a time.
type Device interface {
	// Open acquires the input. It blocks until access is granted or refused.
	Open(ctx context.Context) (Stream, error)
	// MimeType is the container type of the bytes the device produces.
	MimeType() string
}

// Stream is an acquired audio input.
//
// ReadChunk returns encoded audio in arrival order. After Flush has been
// requested the stream delivers whatever it still buffers and then returns
// io.EOF. Close stops every underlying track and must be safe to call after
// the stream has ended on its own.
type Stream interface {
	ReadChunk(ctx context.Context) ([]byte, error)
	Flush() error
	Close() error
}

var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrDeviceUnavailable = errors.New("device unavailable")
	ErrFlush             = errors.New("cannot finalize recording")
	ErrAlreadyRecording  = errors.New("already recording")
	ErrNotRecording      = errors.New("not recording")
)

// classifyOpenError maps an acquisition failure onto ErrPermissionDenied or
// ErrDeviceUnavailable, keeping the underlying error in the message.
func classifyOpenError(err error) error {
	if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrDeviceUnavailable) {
		return err
	}
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
}

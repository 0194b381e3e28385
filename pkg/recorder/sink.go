package recorder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type RecorderSink interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

var ErrSinkClosed = errors.New("sink closed")

type fileSink struct {
	lock   sync.Mutex
	file   *os.File
	closed bool
}

func NewFileSink(filename string) (RecorderSink, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	return &fileSink{file: f}, nil
}

func (s *fileSink) Name() string {
	return s.file.Name()
}

func (s *fileSink) Write(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return 0, ErrSinkClosed
	}
	return s.file.Write(p)
}

func (s *fileSink) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	s.closed = true
	return s.file.Close()
}

// SaveArtifact writes a local copy of the artifact into dir and returns the
// file path. The file is named after the session and capture start time.
func SaveArtifact(dir string, a *Artifact) (string, error) {
	ext := a.Extension()
	if ext == "" {
		ext = "bin"
	}
	id := a.SessionID()
	if id == "" {
		id = "artifact"
	}
	filename := filepath.Join(dir, fmt.Sprintf("%s_%d.%s", id, a.StartedAt().UnixMilli(), ext))

	sink, err := NewFileSink(filename)
	if err != nil {
		return "", err
	}
	if _, err = sink.Write(a.data); err != nil {
		_ = sink.Close()
		return "", err
	}
	return filename, sink.Close()
}

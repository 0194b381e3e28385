package recorder

import (
	"bytes"
	"io"
	"strings"
	"time"
)

const (
	MimeWebM = "audio/webm"
	MimeOGG  = "audio/ogg"
	MimeWAV  = "audio/wav"
)

// Extension returns the file extension for a container MIME type, or an
// empty string when the type is unknown.
func Extension(mimeType string) string {
	// Strip codec parameters such as "audio/webm;codecs=opus"
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case MimeWebM:
		return "webm"
	case MimeOGG:
		return "ogg"
	case MimeWAV, "audio/x-wav", "audio/wave":
		return "wav"
	default:
		return ""
	}
}

// Artifact is the finished output of one capture session. It is never
// modified after construction; accessors hand out copies or read-only views.
type Artifact struct {
	sessionID string
	data      []byte
	mimeType  string
	startedAt time.Time
	duration  time.Duration
	chunks    int
}

// NewArtifact builds an artifact from already assembled bytes.
func NewArtifact(data []byte, mimeType string, startedAt time.Time, duration time.Duration) *Artifact {
	buf := make([]byte, len(data))
	copy(buf, data)
	a := &Artifact{
		data:      buf,
		mimeType:  mimeType,
		startedAt: startedAt,
		duration:  duration,
	}
	if len(buf) > 0 {
		a.chunks = 1
	}
	return a
}

func assemble(s *session, mimeType string, finishedAt time.Time) *Artifact {
	var buf bytes.Buffer
	for _, c := range s.chunks {
		buf.Write(c)
	}
	duration := finishedAt.Sub(s.startedAt)
	if duration < 0 {
		duration = 0
	}
	return &Artifact{
		sessionID: s.id,
		data:      buf.Bytes(),
		mimeType:  mimeType,
		startedAt: s.startedAt,
		duration:  duration,
		chunks:    len(s.chunks),
	}
}

func (a *Artifact) SessionID() string {
	return a.sessionID
}

// Bytes returns a copy of the recorded content.
func (a *Artifact) Bytes() []byte {
	buf := make([]byte, len(a.data))
	copy(buf, a.data)
	return buf
}

// Reader returns a fresh reader over the content. Each call starts at offset 0.
func (a *Artifact) Reader() io.Reader {
	return bytes.NewReader(a.data)
}

func (a *Artifact) Len() int {
	return len(a.data)
}

func (a *Artifact) MimeType() string {
	return a.mimeType
}

func (a *Artifact) Extension() string {
	return Extension(a.mimeType)
}

func (a *Artifact) StartedAt() time.Time {
	return a.startedAt
}

func (a *Artifact) Duration() time.Duration {
	return a.duration
}

// DurationSeconds is the wall-clock length of the capture, not a value
// derived from audio samples.
func (a *Artifact) DurationSeconds() float64 {
	return a.duration.Seconds()
}

func (a *Artifact) ChunkCount() int {
	return a.chunks
}

package recorder

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExtensionWebM(t *testing.T) {
	require.Equal(t, "webm", Extension(MimeWebM))
	require.Equal(t, "webm", Extension("audio/webm;codecs=opus"))
}

func TestExtensionOGG(t *testing.T) {
	require.Equal(t, "ogg", Extension("Audio/OGG"))
}

func TestExtensionWAV(t *testing.T) {
	require.Equal(t, "wav", Extension("audio/x-wav"))
}

func TestExtensionUnknown(t *testing.T) {
	require.Equal(t, "", Extension("video/mp4"))
}

func TestArtifactIsNotMutatedThroughAccessors(t *testing.T) {
	src := []byte("voice")
	a := NewArtifact(src, MimeWebM, time.Now(), 2*time.Second)

	// Changing the source slice must not leak into the artifact
	src[0] = 'X'
	require.Equal(t, "voice", string(a.Bytes()))

	// Nor must changing a returned copy
	b := a.Bytes()
	b[0] = 'Y'
	require.Equal(t, "voice", string(a.Bytes()))

	// Every reader starts from the beginning
	first, err := io.ReadAll(a.Reader())
	require.NoError(t, err)
	second, err := io.ReadAll(a.Reader())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 2.0, a.DurationSeconds())
	require.Equal(t, 1, a.ChunkCount())
}

func TestEmptyArtifactHasNoChunks(t *testing.T) {
	a := NewArtifact(nil, MimeWebM, time.Now(), 0)
	require.Equal(t, 0, a.Len())
	require.Equal(t, 0, a.ChunkCount())
}

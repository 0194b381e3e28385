package recorder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateFileSink(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "testing.txt")
	sink, err := NewFileSink(filename)
	require.NoError(t, err)
	require.NotNil(t, sink)
	require.Equal(t, filename, sink.Name())

	err = sink.Close()
	require.NoError(t, err)
}

func TestWriteFileSink(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "testing.txt")
	sink, _ := NewFileSink(filename)
	defer sink.Close()

	n, err := sink.Write([]byte("Hello"))
	require.NoError(t, err)
	require.Equal(t, len("Hello"), n)
}

func TestWriteFileSinkWhenClosed(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "testing.txt")
	sink, _ := NewFileSink(filename)

	err := sink.Close()
	require.NoError(t, err)

	n, err := sink.Write([]byte("Hello"))
	require.ErrorIs(t, err, ErrSinkClosed)
	require.Equal(t, 0, n)
}

func TestCloseFileSinkMoreThanOnce(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "testing.txt")
	sink, _ := NewFileSink(filename)

	err := sink.Close()
	require.NoError(t, err)

	err = sink.Close()
	require.ErrorIs(t, err, ErrSinkClosed)
}

func TestSaveArtifact(t *testing.T) {
	dir := t.TempDir()
	startedAt := time.UnixMilli(1700000000000)
	a := NewArtifact([]byte("cgc"), MimeOGG, startedAt, time.Second)

	path, err := SaveArtifact(dir, a)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "artifact_1700000000000.ogg"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "cgc", string(content))
}

func TestSaveArtifactMissingDirectory(t *testing.T) {
	a := NewArtifact([]byte("cgc"), MimeWebM, time.Now(), time.Second)
	_, err := SaveArtifact(filepath.Join(t.TempDir(), "missing"), a)
	require.Error(t, err)
}

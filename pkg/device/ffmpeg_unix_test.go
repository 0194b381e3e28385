//go:build unix

package device

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
)

// fakeFFmpeg writes a script that streams "chunk" until SIGINT, then writes
// "tail" and exits like ffmpeg finishing its container.
func fakeFFmpeg(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\n" +
		"trap 'printf tail; exit 0' INT\n" +
		"while true; do printf chunk; sleep 0.02; done\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestFFmpegRunsInOwnProcessGroup(t *testing.T) {
	d := NewFFmpegDevice(FFmpegConfig{Binary: fakeFFmpeg(t), InputFormat: "lavfi", Input: "sine"})
	s, err := d.Open(context.Background())
	require.NoError(t, err)
	defer s.Close()

	proc := s.(*ffmpegStream).cmd.Process
	pgid, err := syscall.Getpgid(proc.Pid)
	require.NoError(t, err)
	require.Equal(t, proc.Pid, pgid)
	require.NotEqual(t, syscall.Getpgrp(), pgid)
}

func TestFFmpegFlushFinishesStream(t *testing.T) {
	d := NewFFmpegDevice(FFmpegConfig{Binary: fakeFFmpeg(t), InputFormat: "lavfi", Input: "sine"})
	rec := recorder.NewRecorder(d)

	require.NoError(t, rec.Start(context.Background()))
	time.Sleep(100 * time.Millisecond)
	require.True(t, rec.IsRecording())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a, err := rec.Stop(ctx)
	require.NoError(t, err)
	require.Equal(t, recorder.StateCompleted, rec.State())

	content := string(a.Bytes())
	require.True(t, strings.HasPrefix(content, "chunk"), content)
	require.True(t, strings.HasSuffix(content, "tail"), content)
}

func TestFFmpegStreamEndsAfterFlush(t *testing.T) {
	d := NewFFmpegDevice(FFmpegConfig{Binary: fakeFFmpeg(t), InputFormat: "lavfi", Input: "sine"})
	s, err := d.Open(context.Background())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Flush())
	var got strings.Builder
	for {
		chunk, err := s.ReadChunk(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got.Write(chunk)
	}
	require.True(t, strings.HasSuffix(got.String(), "tail"), got.String())
}

package device

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
)

func TestFFmpegDeviceMissingBinary(t *testing.T) {
	d := NewFFmpegDevice(FFmpegConfig{Binary: "definitely-not-ffmpeg-cgc"})
	require.Equal(t, recorder.MimeWebM, d.MimeType())

	_, err := d.Open(context.Background())
	require.ErrorIs(t, err, recorder.ErrDeviceUnavailable)
}

func TestFFmpegArgs(t *testing.T) {
	d := NewFFmpegDevice(FFmpegConfig{InputFormat: "pulse", Input: "default"}).(*ffmpegDevice)
	require.Equal(t, defaultFFmpegBinary, d.config.Binary)
	require.Equal(t, defaultOpenTimeout, d.config.OpenTimeout)
	require.Equal(t, []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "pulse", "-i", "default",
		"-ac", "1", "-c:a", "libopus", "-f", "webm", "pipe:1",
	}, d.args())
}

func TestClassifyFFmpegPermissionDenied(t *testing.T) {
	err := classifyFFmpegError(errors.New("exit status 1"), "[avfoundation] Not authorized to capture audio")
	require.ErrorIs(t, err, recorder.ErrPermissionDenied)

	err = classifyFFmpegError(os.ErrPermission, "")
	require.ErrorIs(t, err, recorder.ErrPermissionDenied)
}

func TestClassifyFFmpegUnavailable(t *testing.T) {
	err := classifyFFmpegError(nil, "default: No such file or directory")
	require.ErrorIs(t, err, recorder.ErrDeviceUnavailable)
	require.ErrorContains(t, err, "No such file or directory")

	err = classifyFFmpegError(errors.New("exit status 1"), "")
	require.ErrorIs(t, err, recorder.ErrDeviceUnavailable)
}

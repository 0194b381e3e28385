package upload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
)

const filenamePrefix = "voice"

var (
	ErrEmptyFileID       = errors.New("empty file ID")
	ErrExtensionInFileID = errors.New("file ID contains extension")
	ErrMediaNotSupported = errors.New("media not supported")
)

func getMediaFilename(fileID string, mimeType string) (string, error) {
	if fileID == "" {
		return "", ErrEmptyFileID
	} else if strings.Contains(fileID, ".") {
		return "", ErrExtensionInFileID
	}

	ext := recorder.Extension(mimeType)
	if ext == "" {
		return "", ErrMediaNotSupported
	}

	return fmt.Sprintf("%s.%s", fileID, ext), nil
}

// GenerateFilename names an upload after the capture start time, e.g.
// voice_1700000000000.webm. Collisions are left to the blob store.
func GenerateFilename(a *recorder.Artifact) (string, error) {
	fileID := fmt.Sprintf("%s_%d", filenamePrefix, a.StartedAt().UnixMilli())
	return getMediaFilename(fileID, a.MimeType())
}

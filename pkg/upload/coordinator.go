package upload

import (
	"context"
	"fmt"

	"github.com/labstack/gommon/log"

	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
)

// VoiceNoteRequest is what the record creator needs to attach a stored blob
// to a channel timeline.
type VoiceNoteRequest struct {
	Channel         string
	RemoteURL       string
	DurationSeconds float64
	StatusEmoji     string
}

type RecordCreator interface {
	CreateVoiceNote(ctx context.Context, req VoiceNoteRequest) (string, error)
}

type Coordinator interface {
	Upload(ctx context.Context, artifact *recorder.Artifact, channel string, opts ...UploadOption) Result
}

type UploadOption func(*VoiceNoteRequest)

// WithStatusEmoji sets the status emoji of the created voice note.
func WithStatusEmoji(emoji string) UploadOption {
	return func(r *VoiceNoteRequest) {
		r.StatusEmoji = emoji
	}
}

type coordinator struct {
	store   BlobStore
	creator RecordCreator
}

func NewCoordinator(store BlobStore, creator RecordCreator) Coordinator {
	return &coordinator{store: store, creator: creator}
}

func (c *coordinator) Upload(ctx context.Context, artifact *recorder.Artifact, channel string, opts ...UploadOption) Result {
	if artifact == nil || channel == "" {
		return Result{
			Stage: StageBlobStoreFailed,
			Err:   fmt.Errorf("%w: artifact and channel are required", ErrInvalidRequest),
		}
	}

	filename, err := GenerateFilename(artifact)
	if err != nil {
		return Result{Stage: StageBlobStoreFailed, Err: fmt.Errorf("%w: %v", ErrInvalidRequest, err)}
	}

	// Stage 1: store the blob
	remoteURL, err := c.store.Put(ctx, Object{
		Filename:    filename,
		ContentType: artifact.MimeType(),
		Body:        artifact.Reader(),
		Size:        int64(artifact.Len()),
		Private:     true,
	})
	if err == nil && remoteURL == "" {
		err = ErrMissingRemoteURL
	}
	if err != nil {
		log.Warnf("cannot store voice note | filename: %v, error: %v", filename, err)
		return Result{Stage: StageBlobStoreFailed, Filename: filename, Err: err}
	}
	log.Debugf("voice note stored | filename: %v, url: %v", filename, remoteURL)

	// Stage 2: reference it from the timeline
	req := VoiceNoteRequest{
		Channel:         channel,
		RemoteURL:       remoteURL,
		DurationSeconds: artifact.DurationSeconds(),
	}
	for _, opt := range opts {
		opt(&req)
	}
	recordID, err := c.creator.CreateVoiceNote(ctx, req)
	if err != nil {
		log.Warnf("cannot create voice note record | url: %v, error: %v", remoteURL, err)
		return Result{Stage: StageRecordCreateFailed, Filename: filename, RemoteURL: remoteURL, Err: err}
	}

	log.Debugf("voice note created | channel: %v, id: %v", channel, recordID)
	return Result{
		Stage:            StageSucceeded,
		Filename:         filename,
		RemoteURL:        remoteURL,
		TimelineRecordID: recordID,
	}
}

package upload

import (
	"context"
	"errors"
	"io"
)

// Object is one blob handed to a store.
type Object struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
	Private     bool
}

// BlobStore persists a blob and returns the URL under which it can be
// referenced by a timeline record.
type BlobStore interface {
	Put(ctx context.Context, obj Object) (string, error)
}

var (
	ErrMissingRemoteURL = errors.New("blob store returned no URL")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrInvalidRequest   = errors.New("invalid upload request")
)

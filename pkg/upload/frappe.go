package upload

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const (
	frappeUploadPath    = "/api/method/upload_file"
	timelineItemDoctype = "Channel Timeline Item"
)

type frappeStore struct {
	client *resty.Client
}

// NewFrappeStore stores blobs through the backend's file upload endpoint.
// The client must already carry the base URL and authentication.
func NewFrappeStore(client *resty.Client) BlobStore {
	return &frappeStore{client: client}
}

type frappeUploadResponse struct {
	Message struct {
		FileURL  string `json:"file_url"`
		FileName string `json:"file_name"`
	} `json:"message"`
}

func (s *frappeStore) Put(ctx context.Context, obj Object) (string, error) {
	private := "0"
	if obj.Private {
		private = "1"
	}

	var out frappeUploadResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetMultipartField("file", obj.Filename, obj.ContentType, obj.Body).
		SetMultipartFormData(map[string]string{
			"is_private": private,
			"doctype":    timelineItemDoctype,
		}).
		SetResult(&out).
		Post(frappeUploadPath)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	if out.Message.FileURL == "" {
		return "", ErrMissingRemoteURL
	}
	return out.Message.FileURL, nil
}

package upload

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newFakeMinio(t *testing.T, bucketExists bool) (*httptest.Server, *[]string) {
	t.Helper()
	var lock sync.Mutex
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(r.URL.Path, "/")
		lock.Lock()
		calls = append(calls, r.Method+" "+path)
		lock.Unlock()

		switch {
		case r.Method == http.MethodHead && !bucketExists:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && path == "/voice":
			bucketExists = true
			w.WriteHeader(http.StatusOK)
		default:
			w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestMinioStoreCreatesBucketAndPuts(t *testing.T) {
	srv, calls := newFakeMinio(t, false)
	endpoint := strings.TrimPrefix(srv.URL, "http://")

	store, err := NewMinioStore(context.Background(), MinioConfig{
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "voice",
		Directory: "notes",
	})
	require.NoError(t, err)
	require.Contains(t, *calls, "PUT /voice")

	url, err := store.Put(context.Background(), Object{
		Filename:    "voice_1.webm",
		ContentType: "audio/webm",
		Body:        bytes.NewReader([]byte("opus")),
		Size:        4,
	})
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/voice/notes/voice_1.webm", url)
	require.Contains(t, *calls, "PUT /voice/notes/voice_1.webm")
}

func TestNewMinioStoreEmptyBucket(t *testing.T) {
	_, err := NewMinioStore(context.Background(), MinioConfig{Endpoint: "localhost:9000"})
	require.ErrorIs(t, err, ErrEmptyBucketName)
}

func TestObjectURL(t *testing.T) {
	require.Equal(t, "http://minio:9000/voice/a.webm", objectURL("http://minio:9000", "voice", "a.webm"))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_PATH", "")
	t.Setenv("BACKEND_URL", "https://voice.example.com")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, 8080, c.AppPort)
	require.Equal(t, "frappe", c.BlobStore)
	require.Equal(t, "ffmpeg", c.Device)
	require.Equal(t, 30*time.Second, c.BackendTimeout)
	require.Equal(t, time.Duration(0), c.MaxDuration)
	require.Equal(t, "voice-channel.uploads", c.KafkaTopic)
	require.Equal(t, log.ERROR, c.LogLvl())
	require.Empty(t, c.Webhooks())
}

func TestLoadFromEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("WEBHOOK_URLS", "http://a.example.com/hook, http://b.example.com/hook,")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("MAX_DURATION", "5m")
	t.Setenv("DEVICE", "rtp")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9000, c.AppPort)
	require.Equal(t, log.DEBUG, c.LogLvl())
	require.Equal(t, []string{"http://a.example.com/hook", "http://b.example.com/hook"}, c.Webhooks())
	require.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokerList())
	require.Equal(t, 5*time.Minute, c.MaxDuration)
	require.Equal(t, "rtp", c.Device)
}

func TestLoadFromEnvFile(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	path := filepath.Join(t.TempDir(), "voice.env")
	content := "BACKEND_URL=https://file.example.com\nBLOB_STORE=minio\nMINIO_ENDPOINT=minio:9000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("ENV_PATH", path)

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://file.example.com", c.BackendURL)
	require.Equal(t, "minio", c.BlobStore)
	require.Equal(t, "minio:9000", c.MinioEndpoint)
	require.Equal(t, "voice-notes", c.MinioBucket)
}

func TestMissingBackendURL(t *testing.T) {
	t.Setenv("ENV_PATH", "")
	t.Setenv("BACKEND_URL", "")
	_, err := Load()
	require.ErrorContains(t, err, "BackendURL")
}

func TestS3RequiresBucket(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BLOB_STORE", "s3")
	t.Setenv("S3_REGION", "ap-southeast-2")
	_, err := Load()
	require.ErrorContains(t, err, "S3Bucket")
}

func TestAPIKeyNeedsSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BACKEND_API_KEY", "key")
	_, err := Load()
	require.ErrorContains(t, err, "BackendAPISecret")
}

func TestUnknownDevice(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DEVICE", "webcam")
	_, err := Load()
	require.ErrorContains(t, err, "Device")
}

package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort     int    `mapstructure:"app_port" validate:"required,min=1,max=65535"`
	LogLevel    string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	WebhookURLs string `mapstructure:"webhook_urls"`

	BackendURL       string        `mapstructure:"backend_url" validate:"required,url"`
	BackendAPIKey    string        `mapstructure:"backend_api_key" validate:"required_with=BackendAPISecret"`
	BackendAPISecret string        `mapstructure:"backend_api_secret" validate:"required_with=BackendAPIKey"`
	BackendCSRFToken string        `mapstructure:"backend_csrf_token"`
	BackendSID       string        `mapstructure:"backend_sid"`
	BackendTimeout   time.Duration `mapstructure:"backend_timeout"`

	BlobStore   string `mapstructure:"blob_store" validate:"oneof=frappe s3 minio"`
	S3Region    string `mapstructure:"s3_region" validate:"required_if=BlobStore s3"`
	S3Bucket    string `mapstructure:"s3_bucket" validate:"required_if=BlobStore s3"`
	S3Directory string `mapstructure:"s3_directory"`

	MinioEndpoint  string `mapstructure:"minio_endpoint" validate:"required_if=BlobStore minio"`
	MinioAccessKey string `mapstructure:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key"`
	MinioBucket    string `mapstructure:"minio_bucket" validate:"required_if=BlobStore minio"`
	MinioDirectory string `mapstructure:"minio_directory"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl"`

	KafkaBrokers string `mapstructure:"kafka_brokers"`
	KafkaTopic   string `mapstructure:"kafka_topic"`

	LedgerPath    string `mapstructure:"ledger_path"`
	RecordingsDir string `mapstructure:"recordings_dir"`

	Device            string        `mapstructure:"device" validate:"oneof=ffmpeg rtp static"`
	FFmpegBinary      string        `mapstructure:"ffmpeg_binary"`
	FFmpegInputFormat string        `mapstructure:"ffmpeg_input_format" validate:"required_if=Device ffmpeg"`
	FFmpegInput       string        `mapstructure:"ffmpeg_input" validate:"required_if=Device ffmpeg"`
	RTPAddr           string        `mapstructure:"rtp_addr" validate:"required_if=Device rtp"`
	MaxDuration       time.Duration `mapstructure:"max_duration"`
}

// InitConfig reads an optional .env file (or ENV_PATH) and the process
// environment.
func InitConfig() (*viper.Viper, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	if path := os.Getenv("ENV_PATH"); path != "" {
		log.Debugf("reading config file | path: %v", path)
		v.SetConfigFile(path)
	}
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefault(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
		log.Debugf("no config file, reading from environment variables")
	}
	return v, nil
}

func setDefault(v *viper.Viper) {
	// Every key needs a default so that AutomaticEnv values are unmarshalled
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "error")
	v.SetDefault("WEBHOOK_URLS", "")

	v.SetDefault("BACKEND_URL", "")
	v.SetDefault("BACKEND_API_KEY", "")
	v.SetDefault("BACKEND_API_SECRET", "")
	v.SetDefault("BACKEND_CSRF_TOKEN", "")
	v.SetDefault("BACKEND_SID", "")
	v.SetDefault("BACKEND_TIMEOUT", "30s")

	v.SetDefault("BLOB_STORE", "frappe")
	v.SetDefault("S3_REGION", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_DIRECTORY", "")

	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "voice-notes")
	v.SetDefault("MINIO_DIRECTORY", "")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "voice-channel.uploads")

	v.SetDefault("LEDGER_PATH", "data/ledger.db")
	v.SetDefault("RECORDINGS_DIR", "")

	v.SetDefault("DEVICE", "ffmpeg")
	v.SetDefault("FFMPEG_BINARY", "ffmpeg")
	v.SetDefault("FFMPEG_INPUT_FORMAT", "pulse")
	v.SetDefault("FFMPEG_INPUT", "default")
	v.SetDefault("RTP_ADDR", "127.0.0.1:5004")
	v.SetDefault("MAX_DURATION", "0s")
}

// GetApplicationConfig unmarshals and validates the configuration.
func GetApplicationConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func Load() (*Config, error) {
	v, err := InitConfig()
	if err != nil {
		return nil, err
	}
	return GetApplicationConfig(v)
}

func (c *Config) LogLvl() log.Lvl {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DEBUG
	case "info":
		return log.INFO
	case "warn":
		return log.WARN
	case "error":
		fallthrough
	default:
		return log.ERROR
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *Config) Webhooks() []string {
	return splitList(c.WebhookURLs)
}

func (c *Config) KafkaBrokerList() []string {
	return splitList(c.KafkaBrokers)
}

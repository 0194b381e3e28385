package app

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/cloudgroundcontrol/voice-channel/pkg/backend"
	"github.com/cloudgroundcontrol/voice-channel/pkg/config"
	"github.com/cloudgroundcontrol/voice-channel/pkg/device"
	"github.com/cloudgroundcontrol/voice-channel/pkg/http/rest"
	"github.com/cloudgroundcontrol/voice-channel/pkg/ledger"
	"github.com/cloudgroundcontrol/voice-channel/pkg/notify"
	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
	"github.com/cloudgroundcontrol/voice-channel/pkg/recording"
	"github.com/cloudgroundcontrol/voice-channel/pkg/upload"
)

// App holds every long lived collaborator built from the configuration.
type App struct {
	Backend   *backend.Client
	Store     upload.BlobStore
	Ledger    ledger.Ledger
	Notifier  notify.Notifier
	Device    recorder.Device
	Recording recording.Service

	kafka *notify.KafkaNotifier
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}
	a.Backend = backend.New(backend.Config{
		URL:       cfg.BackendURL,
		APIKey:    cfg.BackendAPIKey,
		APISecret: cfg.BackendAPISecret,
		CSRFToken: cfg.BackendCSRFToken,
		SessionID: cfg.BackendSID,
		Timeout:   cfg.BackendTimeout,
	})

	var err error
	a.Store, err = newBlobStore(ctx, cfg, a.Backend)
	if err != nil {
		return nil, fmt.Errorf("creating blob store: %w", err)
	}

	if cfg.LedgerPath != "" {
		a.Ledger, err = ledger.Open(ctx, cfg.LedgerPath)
		if err != nil {
			return nil, fmt.Errorf("opening ledger: %w", err)
		}
	}

	a.Notifier = a.newNotifier(cfg)

	kind, err := device.ParseKind(cfg.Device)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Device, err = device.New(device.Config{
		Kind: kind,
		FFmpeg: device.FFmpegConfig{
			Binary:      cfg.FFmpegBinary,
			InputFormat: cfg.FFmpegInputFormat,
			Input:       cfg.FFmpegInput,
		},
		RTP: device.RTPConfig{Addr: cfg.RTPAddr},
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating %v device: %w", kind, err)
	}

	opts := []recording.Option{
		recording.WithRecordingsDir(cfg.RecordingsDir),
		recording.WithMaxDuration(cfg.MaxDuration),
	}
	if a.Ledger != nil {
		opts = append(opts, recording.WithLedger(a.Ledger))
	}
	if a.Notifier != nil {
		opts = append(opts, recording.WithNotifier(a.Notifier))
	}
	coordinator := upload.NewCoordinator(a.Store, a.Backend)
	a.Recording = recording.NewService(a.Device, coordinator, opts...)

	log.Debugf("app initialised | blob store: %v, device: %v", cfg.BlobStore, kind)
	return a, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config, client *backend.Client) (upload.BlobStore, error) {
	switch cfg.BlobStore {
	case "s3":
		return upload.NewS3Store(ctx, upload.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Directory: cfg.S3Directory,
		})
	case "minio":
		return upload.NewMinioStore(ctx, upload.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			Directory: cfg.MinioDirectory,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return upload.NewFrappeStore(client.HTTP()), nil
	}
}

func (a *App) newNotifier(cfg *config.Config) notify.Notifier {
	var notifiers []notify.Notifier
	if urls := cfg.Webhooks(); len(urls) > 0 {
		notifiers = append(notifiers, notify.NewWebhookNotifier(urls))
	}
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		a.kafka = notify.NewKafkaNotifier(notify.KafkaConfig{
			Brokers: brokers,
			Topic:   cfg.KafkaTopic,
		})
		notifiers = append(notifiers, a.kafka)
	}
	if len(notifiers) == 0 {
		return nil
	}
	return notify.Multi(notifiers...)
}

// Server returns the REST control surface.
func (a *App) Server() *echo.Echo {
	return rest.NewServer(a.Recording, a.Backend, a.Ledger)
}

// Shutdown finishes a running recording and then releases every resource.
func (a *App) Shutdown(ctx context.Context) error {
	var err error
	if a.Recording != nil {
		err = a.Recording.Close(ctx)
	}
	a.Close()
	return err
}

func (a *App) Close() {
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			log.Warnf("cannot close kafka writer | error: %v", err)
		}
		a.kafka = nil
	}
	if a.Ledger != nil {
		if err := a.Ledger.Close(); err != nil {
			log.Warnf("cannot close ledger | error: %v", err)
		}
		a.Ledger = nil
	}
}

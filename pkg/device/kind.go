package device

import (
	"errors"

	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
)

type Kind string

const (
	KindFFmpeg Kind = "ffmpeg"
	KindRTP    Kind = "rtp"
	KindStatic Kind = "static"
)

var ErrUnknownDeviceKind = errors.New("unknown device kind")

func ParseKind(k string) (Kind, error) {
	switch k {
	case string(KindFFmpeg):
		return KindFFmpeg, nil
	case string(KindRTP):
		return KindRTP, nil
	case string(KindStatic):
		return KindStatic, nil
	default:
		return "", ErrUnknownDeviceKind
	}
}

type Config struct {
	Kind   Kind
	FFmpeg FFmpegConfig
	RTP    RTPConfig
	Static StaticConfig
}

func New(config Config) (recorder.Device, error) {
	switch config.Kind {
	case KindFFmpeg:
		return NewFFmpegDevice(config.FFmpeg), nil
	case KindRTP:
		return NewRTPDevice(config.RTP)
	case KindStatic:
		return NewStaticDevice(config.Static), nil
	default:
		return nil, ErrUnknownDeviceKind
	}
}

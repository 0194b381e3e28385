package device

import (
	"errors"
	"io"
	"strings"

	"github.com/livekit/server-sdk-go/pkg/samplebuilder"
	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v3"
	"github.com/pion/webrtc/v3/pkg/media"
	"github.com/pion/webrtc/v3/pkg/media/oggwriter"

	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
)

type mediaExtension string

const (
	mediaOGG mediaExtension = "ogg"
)

var ErrMediaNotSupported = errors.New("media not supported")

// getMediaExtension maps an RTP audio codec onto the container it is written to.
func getMediaExtension(mimeType string) (mediaExtension, error) {
	if strings.EqualFold(mimeType, webrtc.MimeTypeOpus) {
		return mediaOGG, nil
	}
	return "", ErrMediaNotSupported
}

func containerMimeType(ext mediaExtension) string {
	switch ext {
	case mediaOGG:
		return recorder.MimeOGG
	default:
		return ""
	}
}

func createMediaWriter(out io.Writer, codec webrtc.RTPCodecParameters) (media.Writer, error) {
	ext, err := getMediaExtension(codec.MimeType)
	if err != nil {
		return nil, err
	}
	switch ext {
	case mediaOGG:
		return oggwriter.NewWith(out, codec.ClockRate, codec.Channels)
	default:
		return nil, ErrMediaNotSupported
	}
}

const sampleMaxLate = 200

func createSampleBuilder(codec webrtc.RTPCodecParameters, opts ...samplebuilder.Option) *samplebuilder.SampleBuilder {
	var depacketizer rtp.Depacketizer
	switch {
	case strings.EqualFold(codec.MimeType, webrtc.MimeTypeOpus):
		depacketizer = &codecs.OpusPacket{}
	default:
		return nil
	}
	return samplebuilder.New(sampleMaxLate, depacketizer, codec.ClockRate, opts...)
}

// OpusCodec is the codec expected from RTP senders unless configured otherwise.
var OpusCodec = webrtc.RTPCodecParameters{
	RTPCodecCapability: webrtc.RTPCodecCapability{
		MimeType:  webrtc.MimeTypeOpus,
		ClockRate: 48000,
		Channels:  2,
	},
	PayloadType: 111,
}

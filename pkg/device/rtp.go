package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/livekit/protocol/logger"
	"github.com/livekit/server-sdk-go/pkg/samplebuilder"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"
	"github.com/pion/webrtc/v3/pkg/media"

	"github.com/cloudgroundcontrol/voice-channel/pkg/recorder"
)

// RTPConfig describes a UDP socket that receives an RTP audio track, for
// example one produced by `ffmpeg -f rtp` or a WebRTC gateway.
type RTPConfig struct {
	Addr  string
	Codec webrtc.RTPCodecParameters
}

type rtpDevice struct {
	addr  string
	codec webrtc.RTPCodecParameters
	mime  string
}

const (
	rtpReadPoll   = 100 * time.Millisecond
	rtpPacketSize = 1500
)

func NewRTPDevice(config RTPConfig) (recorder.Device, error) {
	codec := config.Codec
	if codec.MimeType == "" {
		codec = OpusCodec
	}
	ext, err := getMediaExtension(codec.MimeType)
	if err != nil {
		return nil, err
	}
	return &rtpDevice{
		addr:  config.Addr,
		codec: codec,
		mime:  containerMimeType(ext),
	}, nil
}

func (d *rtpDevice) MimeType() string {
	return d.mime
}

func (d *rtpDevice) Open(ctx context.Context) (recorder.Stream, error) {
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", d.addr)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", recorder.ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: %v", recorder.ErrDeviceUnavailable, err)
	}

	s := &rtpStream{
		conn:    conn,
		sb:      createSampleBuilder(d.codec),
		flushed: make(chan struct{}),
	}
	// The writer emits the container headers straight away
	s.mw, err = createMediaWriter(&s.buf, d.codec)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	logger.Debugw("rtp device listening", "addr", conn.LocalAddr().String(), "codec", d.codec.MimeType)
	return s, nil
}

type rtpStream struct {
	conn net.PacketConn
	sb   *samplebuilder.SampleBuilder
	mw   media.Writer
	buf  bytes.Buffer

	flushOnce sync.Once
	flushed   chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func (s *rtpStream) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *rtpStream) ReadChunk(ctx context.Context) ([]byte, error) {
	packet := make([]byte, rtpPacketSize)
	for {
		if s.buf.Len() > 0 {
			return s.take(), nil
		}

		select {
		case <-s.flushed:
			return nil, io.EOF
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// Poll so that flush and cancellation are noticed between packets
		if err := s.conn.SetReadDeadline(time.Now().Add(rtpReadPoll)); err != nil {
			return nil, err
		}
		n, _, err := s.conn.ReadFrom(packet)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return nil, err
		}

		p := &rtp.Packet{}
		if err = p.Unmarshal(packet[:n]); err != nil {
			logger.Debugw("dropping malformed rtp packet", "error", err.Error())
			continue
		}
		if err = s.writeToSink(p); err != nil {
			return nil, err
		}
	}
}

func (s *rtpStream) writeToSink(p *rtp.Packet) error {
	// If no sample buffer is used, write directly to sink
	if s.sb == nil {
		return s.mw.WriteRTP(p)
	}

	// If sample buffer is used, write to buffer first
	s.sb.Push(p)

	// And from the buffered packets, write to sink
	for _, p := range s.sb.PopPackets() {
		if err := s.mw.WriteRTP(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *rtpStream) take() []byte {
	chunk := make([]byte, s.buf.Len())
	copy(chunk, s.buf.Bytes())
	s.buf.Reset()
	return chunk
}

func (s *rtpStream) Flush() error {
	s.flushOnce.Do(func() {
		close(s.flushed)
	})
	return nil
}

func (s *rtpStream) Close() error {
	s.closeOnce.Do(func() {
		if err := s.mw.Close(); err != nil {
			logger.Warnw("cannot close media writer", err)
		}
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

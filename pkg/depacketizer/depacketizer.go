// Package depacketizer contains the types shared by depacketizers,
// that turn RTP packets into frames.
package depacketizer

import (
	"bytes"
	"time"

	"github.com/pion/rtp"
)

// PacketContext is diagnostic information about a received packet.
type PacketContext struct {
	ReceivedAt     time.Time
	SequenceNumber uint16
	SSRC           uint32
}

// ReceivedPacket is a RTP packet, together with the information
// added by the receiver.
type ReceivedPacket struct {
	*rtp.Packet

	Ctx PacketContext

	// presentation timestamp of the packet.
	PTS time.Duration

	// number of packets lost since the last emitted frame.
	Loss uint64

	StreamID int
}

// Depacketizer turns received packets into frames.
//
// Push must not be called while a frame is waiting to be pulled.
type Depacketizer interface {
	// Push processes a packet.
	Push(pkt *ReceivedPacket) error

	// Pull returns the pending frame, or nil if no frame is available.
	Pull() *VideoFrame

	// Parameters returns the parameters of the last emitted frame,
	// or nil if no frame has been emitted yet.
	Parameters() *VideoParameters
}

// PixelDimensions are the width and height of a frame, in pixels.
type PixelDimensions struct {
	Width  uint32
	Height uint32
}

// Rational is a fraction.
type Rational struct {
	Num uint32
	Den uint32
}

// VideoParameters are the parameters of a video stream.
type VideoParameters struct {
	PixelDimensions PixelDimensions

	// codec in the RFC 6381 form.
	// It is empty for codecs that RFC 6381 does not cover.
	RFC6381Codec string

	PixelAspectRatio *Rational
	FrameRate        *Rational
	ExtraData        []byte
}

// Equal checks whether two parameter sets are equal.
// A nil VideoParameters is equal only to another nil VideoParameters.
func (p *VideoParameters) Equal(o *VideoParameters) bool {
	if p == nil || o == nil {
		return p == o
	}

	return p.PixelDimensions == o.PixelDimensions &&
		p.RFC6381Codec == o.RFC6381Codec &&
		rationalEqual(p.PixelAspectRatio, o.PixelAspectRatio) &&
		rationalEqual(p.FrameRate, o.FrameRate) &&
		bytes.Equal(p.ExtraData, o.ExtraData)
}

func rationalEqual(a, b *Rational) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// VideoFrame is a complete video frame.
type VideoFrame struct {
	StartCtx PacketContext
	EndCtx   PacketContext

	// whether the parameters changed since the previous frame.
	HasNewParameters bool

	// number of packets lost while receiving the frame.
	Loss uint64

	// RTP timestamp.
	Timestamp uint32

	// presentation timestamp.
	PTS time.Duration

	StreamID int

	IsRandomAccessPoint bool
	IsDisposable        bool

	Data []byte
}

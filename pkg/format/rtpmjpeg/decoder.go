package rtpmjpeg

import (
	"errors"

	"github.com/pion/rtp"

	"github.com/bluenviron/rtpjpeg/pkg/codecs/jpeg"
	"github.com/bluenviron/rtpjpeg/pkg/depacketizer"
	"github.com/bluenviron/rtpjpeg/pkg/liberrors"
)

// ErrMorePacketsNeeded is returned when more packets are needed.
var ErrMorePacketsNeeded = errors.New("need more packets")

var _ depacketizer.Depacketizer = (*Decoder)(nil)

type frameMetadata struct {
	startCtx   depacketizer.PacketContext
	timestamp  uint32
	parameters depacketizer.VideoParameters
}

// Decoder is a RTP/M-JPEG decoder.
// It reassembles fragments into complete JPEG images.
//
// Packets must be provided in order, one at a time,
// and every decoded frame must be pulled before pushing another packet.
type Decoder struct {
	// maximum size of an image (optional).
	// Incomplete images bigger than this are discarded.
	// It defaults to 2000000.
	MaxFrameSize int

	qtables qtableCache

	// metadata of the frame being assembled, nil when idle.
	frame *frameMetadata

	// headers and scan data of the frame being assembled.
	// It's empty when frame is nil.
	buf []byte

	pending    *depacketizer.VideoFrame
	parameters *depacketizer.VideoParameters
}

// Init initializes the decoder.
func (d *Decoder) Init() error {
	if d.MaxFrameSize == 0 {
		d.MaxFrameSize = defaultMaxFrameSize
	}
	return nil
}

// Push processes a RTP/JPEG packet.
// A packet that completes an image makes a frame available through Pull.
// When an error is returned, the image being assembled is discarded.
//
// It panics when called while a frame is waiting to be pulled.
func (d *Decoder) Push(pkt *depacketizer.ReceivedPacket) error {
	if d.pending != nil {
		panic("Push() called while a frame is waiting to be pulled")
	}

	err := d.push(pkt)
	if err != nil {
		d.resetFrame()
	}
	return err
}

func (d *Decoder) push(pkt *depacketizer.ReceivedPacket) error {
	byts := pkt.Payload

	var jh headerJPEG
	n, err := jh.unmarshal(byts)
	if err != nil {
		return err
	}
	byts = byts[n:]

	if jh.FragmentOffset > 0 && d.frame == nil {
		return liberrors.ErrOrphanFragment{FragmentOffset: jh.FragmentOffset}
	}

	var restartInterval uint16

	if jh.hasRestartMarker() {
		var rh headerRestartMarker
		n, err = rh.unmarshal(byts)
		if err != nil {
			return err
		}
		byts = byts[n:]

		restartInterval = rh.Interval
	}

	if jh.FragmentOffset == 0 {
		byts, err = d.startFrame(pkt, &jh, restartInterval, byts)
		if err != nil {
			return err
		}
	}

	if d.frame == nil {
		return liberrors.ErrMissingFrameStart{}
	}

	// some cameras send packets of the next frame with the timestamp
	// of the previous one. Ignore them without returning errors.
	if pkt.Timestamp != d.frame.timestamp {
		return nil
	}

	d.buf = append(d.buf, byts...)

	if pkt.Marker {
		if len(d.buf) < 2 {
			return nil
		}

		d.finishFrame(pkt)
		return nil
	}

	// a completed frame has already been moved out of the buffer,
	// so the size limit is only checked on intermediate fragments.
	if len(d.buf) > d.MaxFrameSize {
		d.resetFrame()
	}

	return nil
}

func (d *Decoder) startFrame(
	pkt *depacketizer.ReceivedPacket,
	jh *headerJPEG,
	restartInterval uint16,
	byts []byte,
) ([]byte, error) {
	var qtables []byte
	var precision uint8
	var toCache []byte

	if jh.Quantization >= 128 {
		var qh headerQuantizationTable
		n, err := qh.unmarshal(byts)
		if err != nil {
			return nil, err
		}
		byts = byts[n:]

		precision = qh.Precision

		switch {
		case len(qh.Data) != 0:
			qtables = qh.Data

			// tables of Q=255 can change on every frame and can't be reused.
			if jh.Quantization != 255 {
				toCache = qh.Data
			}

		// RFC 2435, section 3.1.8:
		// Packets MUST NOT contain Q = 255 and Length = 0.
		case jh.Quantization == 255:
			return nil, liberrors.ErrInvalidQuantSpec{Q: jh.Quantization}

		default:
			qtables = d.qtables.get(jh.Quantization)
			if qtables == nil {
				return nil, liberrors.ErrMissingQuantTable{Q: jh.Quantization}
			}
		}
	} else {
		qtables = d.qtables.generated(jh.Quantization)
	}

	buf, err := writeHeaders(d.buf[:0], jh.Type, jh.Width, jh.Height, qtables, precision, restartInterval)
	if err != nil {
		return nil, err
	}
	d.buf = buf

	if toCache != nil {
		d.qtables.set(jh.Quantization, toCache)
	}

	d.frame = &frameMetadata{
		startCtx:  pkt.Ctx,
		timestamp: pkt.Timestamp,
		parameters: depacketizer.VideoParameters{
			PixelDimensions: depacketizer.PixelDimensions{
				Width:  uint32(jh.Width),
				Height: uint32(jh.Height),
			},
			// RFC 6381 does not cover JPEG
			RFC6381Codec: "",
		},
	}

	return byts, nil
}

func (d *Decoder) finishFrame(pkt *depacketizer.ReceivedPacket) {
	if !jpeg.HasEndOfImage(d.buf) {
		d.buf = jpeg.EndOfImage{}.Marshal(d.buf)
	}

	parameters := d.frame.parameters
	hasNewParameters := !d.parameters.Equal(&parameters)

	data := make([]byte, len(d.buf))
	copy(data, d.buf)

	d.pending = &depacketizer.VideoFrame{
		StartCtx:            d.frame.startCtx,
		EndCtx:              pkt.Ctx,
		HasNewParameters:    hasNewParameters,
		Loss:                pkt.Loss,
		Timestamp:           pkt.Timestamp,
		PTS:                 pkt.PTS,
		StreamID:            pkt.StreamID,
		IsRandomAccessPoint: false,
		IsDisposable:        true,
		Data:                data,
	}

	if hasNewParameters {
		d.parameters = &parameters
	}

	d.resetFrame()
}

// resetFrame discards the frame being assembled.
// The buffer is kept in order to be reused by the next frame.
func (d *Decoder) resetFrame() {
	d.frame = nil
	d.buf = d.buf[:0]
}

// Pull returns the last decoded frame, or nil if there's none.
func (d *Decoder) Pull() *depacketizer.VideoFrame {
	fr := d.pending
	d.pending = nil
	return fr
}

// Parameters returns the parameters of the last decoded frame,
// or nil if no frame has been decoded yet.
func (d *Decoder) Parameters() *depacketizer.VideoParameters {
	return d.parameters
}

// Decode decodes an image from a RTP packet.
// It returns ErrMorePacketsNeeded when the packet does not complete an image.
func (d *Decoder) Decode(pkt *rtp.Packet) ([]byte, error) {
	err := d.Push(&depacketizer.ReceivedPacket{
		Packet: pkt,
		Ctx: depacketizer.PacketContext{
			SequenceNumber: pkt.SequenceNumber,
			SSRC:           pkt.SSRC,
		},
	})
	if err != nil {
		return nil, err
	}

	fr := d.Pull()
	if fr == nil {
		return nil, ErrMorePacketsNeeded
	}

	return fr.Data, nil
}

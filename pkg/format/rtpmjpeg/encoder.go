package rtpmjpeg

import (
	"crypto/rand"
	"fmt"
	"sort"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/jpeg"
	"github.com/pion/rtp"
)

const (
	rtpVersion            = 2
	defaultPayloadMaxSize = 1460 // 1500 (UDP MTU) - 20 (IP header) - 8 (UDP header) - 12 (RTP header)
)

func randUint32() (uint32, error) {
	var b [4]byte
	_, err := rand.Read(b[:])
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// Encoder is a RTP/M-JPEG encoder.
// It splits baseline JPEG images into RTP/JPEG packets.
type Encoder struct {
	// payload type of packets.
	// It defaults to 26.
	PayloadType uint8

	// SSRC of packets (optional).
	// It defaults to a random value.
	SSRC *uint32

	// initial sequence number of packets (optional).
	// It defaults to a random value.
	InitialSequenceNumber *uint16

	// maximum size of packet payloads (optional).
	// It defaults to 1460.
	PayloadMaxSize int

	sequenceNumber uint16
}

// Init initializes the encoder.
func (e *Encoder) Init() error {
	if e.PayloadType == 0 {
		e.PayloadType = 26
	}
	if e.SSRC == nil {
		v, err := randUint32()
		if err != nil {
			return err
		}
		e.SSRC = &v
	}
	if e.InitialSequenceNumber == nil {
		v, err := randUint32()
		if err != nil {
			return err
		}
		v2 := uint16(v)
		e.InitialSequenceNumber = &v2
	}
	if e.PayloadMaxSize == 0 {
		e.PayloadMaxSize = defaultPayloadMaxSize
	}

	e.sequenceNumber = *e.InitialSequenceNumber
	return nil
}

func readSegment(image []byte) ([]byte, []byte, error) {
	if len(image) < 2 {
		return nil, nil, fmt.Errorf("image is too short")
	}

	mlen := int(image[0])<<8 | int(image[1])
	if mlen < 2 || len(image) < mlen {
		return nil, nil, fmt.Errorf("image is too short")
	}

	return image[2:mlen], image[mlen:], nil
}

// Encode encodes an image into RTP/M-JPEG packets.
// All packets have the given RTP timestamp.
func (e *Encoder) Encode(image []byte, timestamp uint32) ([]*rtp.Packet, error) {
	l := len(image)
	if l < 2 || image[0] != 0xFF || image[1] != jpeg.MarkerStartOfImage {
		return nil, fmt.Errorf("SOI not found")
	}

	image = image[2:]
	var sof *jpeg.StartOfFrame1
	var dri *jpeg.DefineRestartInterval
	quantizationTables := make(map[uint8][]byte)
	var data []byte

outer:
	for len(image) >= 2 {
		h0, h1 := image[0], image[1]
		image = image[2:]

		if h0 != 0xFF {
			return nil, fmt.Errorf("invalid image")
		}

		var segment []byte
		var err error
		segment, image, err = readSegment(image)
		if err != nil {
			return nil, err
		}

		switch h1 {
		case 0xE0, 0xE1, 0xE2, // JFIF
			jpeg.MarkerDefineHuffmanTable,
			jpeg.MarkerComment:

		case jpeg.MarkerDefineQuantizationTable:
			var dqt jpeg.DefineQuantizationTable
			err = dqt.Unmarshal(segment)
			if err != nil {
				return nil, err
			}

			for _, t := range dqt.Tables {
				quantizationTables[t.ID] = t.Data
			}

		case jpeg.MarkerDefineRestartInterval:
			dri = &jpeg.DefineRestartInterval{}
			err = dri.Unmarshal(segment)
			if err != nil {
				return nil, err
			}

		case jpeg.MarkerStartOfFrame1:
			sof = &jpeg.StartOfFrame1{}
			err = sof.Unmarshal(segment)
			if err != nil {
				return nil, err
			}

			if sof.Width > maxDimension {
				return nil, fmt.Errorf("an image with width of %d can't be sent with RTP/JPEG", sof.Width)
			}

			if sof.Height > maxDimension {
				return nil, fmt.Errorf("an image with height of %d can't be sent with RTP/JPEG", sof.Height)
			}

			if (sof.Width % 8) != 0 {
				return nil, fmt.Errorf("width must be multiple of 8")
			}

			if (sof.Height % 8) != 0 {
				return nil, fmt.Errorf("height must be multiple of 8")
			}

		case jpeg.MarkerStartOfScan:
			var sos jpeg.StartOfScan
			err = sos.Unmarshal(segment)
			if err != nil {
				return nil, err
			}

			data = image
			break outer

		default:
			return nil, fmt.Errorf("unknown marker: 0x%.2x", h1)
		}
	}

	if sof == nil {
		return nil, fmt.Errorf("SOF not found")
	}

	if sof.Type > 63 {
		return nil, fmt.Errorf("JPEG type %d is not supported", sof.Type)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("image data not found")
	}

	if len(quantizationTables) == 0 {
		return nil, fmt.Errorf("quantization tables not found")
	}

	jh := headerJPEG{
		TypeSpecific: 0,
		Type:         sof.Type,
		Quantization: 255,
		Width:        sof.Width,
		Height:       sof.Height,
	}

	if dri != nil {
		jh.Type += 64
	}

	// gather tables sorted by ID
	ids := make([]uint8, 0, len(quantizationTables))
	for id := range quantizationTables {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})

	var qth headerQuantizationTable
	for _, id := range ids {
		qth.Data = append(qth.Data, quantizationTables[id]...)
	}

	first := true
	offset := 0
	var ret []*rtp.Packet

	for {
		var buf []byte

		jh.FragmentOffset = uint32(offset)
		buf = jh.marshal(buf)

		if dri != nil {
			buf = headerRestartMarker{
				Interval: dri.Interval,
				First:    true,
				Last:     true,
				Count:    0x3FFF,
			}.marshal(buf)
		}

		if first {
			first = false
			buf = qth.marshal(buf)
		}

		remaining := e.PayloadMaxSize - len(buf)
		if remaining <= 0 {
			return nil, fmt.Errorf("payload max size %d is too small", e.PayloadMaxSize)
		}

		ldata := len(data)
		if remaining > ldata {
			remaining = ldata
		}

		buf = append(buf, data[:remaining]...)
		data = data[remaining:]
		offset += remaining

		ret = append(ret, &rtp.Packet{
			Header: rtp.Header{
				Version:        rtpVersion,
				PayloadType:    e.PayloadType,
				SequenceNumber: e.sequenceNumber,
				Timestamp:      timestamp,
				SSRC:           *e.SSRC,
				Marker:         len(data) == 0,
			},
			Payload: buf,
		})
		e.sequenceNumber++

		if len(data) == 0 {
			break
		}
	}

	return ret, nil
}

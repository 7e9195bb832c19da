package rtpmjpeg

import (
	"github.com/bluenviron/rtpjpeg/pkg/liberrors"
)

//	0                   1                   2                   3
//	0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//
// +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
// | Type-specific |              Fragment Offset                  |
// +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
// |      Type     |       Q       |     Width     |     Height    |
// +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
type headerJPEG struct {
	TypeSpecific   uint8
	FragmentOffset uint32

	// values between 64 and 127 signal the presence of a restart marker header.
	// The low 6 bits select the chroma subsampling.
	Type uint8

	Quantization uint8
	Width        int
	Height       int
}

func (h *headerJPEG) unmarshal(byts []byte) (int, error) {
	if len(byts) < 8 {
		return 0, liberrors.ErrInvalidPacket{Reason: "buffer is too short"}
	}

	h.TypeSpecific = byts[0]
	h.FragmentOffset = uint32(byts[1])<<16 | uint32(byts[2])<<8 | uint32(byts[3])
	h.Type = byts[4]
	h.Quantization = byts[5]
	h.Width = int(byts[6]) * 8
	h.Height = int(byts[7]) * 8

	return 8, nil
}

func (h headerJPEG) marshal(byts []byte) []byte {
	byts = append(byts, h.TypeSpecific)
	byts = append(byts, []byte{byte(h.FragmentOffset >> 16), byte(h.FragmentOffset >> 8), byte(h.FragmentOffset)}...)
	byts = append(byts, h.Type)
	byts = append(byts, h.Quantization)
	byts = append(byts, byte(h.Width/8))
	byts = append(byts, byte(h.Height/8))
	return byts
}

func (h headerJPEG) hasRestartMarker() bool {
	return h.Type > 63
}

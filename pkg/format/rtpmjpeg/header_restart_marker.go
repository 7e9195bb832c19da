package rtpmjpeg

import (
	"github.com/bluenviron/rtpjpeg/pkg/liberrors"
)

//	0                   1                   2                   3
//	0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//
// +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
// |       Restart Interval        |F|L|       Restart Count       |
// +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
type headerRestartMarker struct {
	Interval uint16
	First    bool
	Last     bool
	Count    uint16
}

func (h *headerRestartMarker) unmarshal(byts []byte) (int, error) {
	if len(byts) < 4 {
		return 0, liberrors.ErrInvalidPacket{Reason: "restart marker header is too short"}
	}

	h.Interval = uint16(byts[0])<<8 | uint16(byts[1])
	h.First = (byts[2] >> 7) != 0
	h.Last = ((byts[2] >> 6) & 0x01) != 0
	h.Count = uint16(byts[2]&0x3F)<<8 | uint16(byts[3])
	return 4, nil
}

func (h headerRestartMarker) marshal(byts []byte) []byte {
	byts = append(byts, []byte{byte(h.Interval >> 8), byte(h.Interval)}...)

	b := byte(h.Count>>8) & 0x3F
	if h.First {
		b |= 1 << 7
	}
	if h.Last {
		b |= 1 << 6
	}

	byts = append(byts, []byte{b, byte(h.Count)}...)
	return byts
}

package rtpmjpeg

import (
	"fmt"

	"github.com/bluenviron/rtpjpeg/pkg/liberrors"
)

//	0                   1                   2                   3
//	0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//
// +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
// |      MBZ      |   Precision   |             Length            |
// +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
// |                    Quantization Table Data                    |
// |                              ...                              |
// +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
type headerQuantizationTable struct {
	MBZ uint8

	// bit 0 is set when the first table has 16-bit precision,
	// bit 1 when the second one has.
	Precision uint8

	// concatenated tables. Empty when tables have to be taken
	// from previous frames.
	Data []byte
}

func (h *headerQuantizationTable) unmarshal(byts []byte) (int, error) {
	if len(byts) < 4 {
		return 0, liberrors.ErrInvalidPacket{Reason: "quantization table header is too short"}
	}

	h.MBZ = byts[0]
	h.Precision = byts[1]

	length := int(byts[2])<<8 | int(byts[3])
	if (len(byts) - 4) < length {
		return 0, liberrors.ErrInvalidPacket{
			Reason: fmt.Sprintf("quantization table length %d is larger than payload %d", length, len(byts)-4),
		}
	}

	h.Data = byts[4 : 4+length]

	return 4 + length, nil
}

func (h headerQuantizationTable) marshal(byts []byte) []byte {
	byts = append(byts, h.MBZ)
	byts = append(byts, h.Precision)

	l := len(h.Data)
	byts = append(byts, []byte{byte(l >> 8), byte(l)}...)
	byts = append(byts, h.Data...)

	return byts
}

package format

import (
	"fmt"
	"strconv"
	"strings"
)

func findClockRate(payloadType uint8, rtpMap string) (int, error) {
	// get clock rate from payload type
	// https://en.wikipedia.org/wiki/RTP_payload_formats
	switch payloadType {
	case 0, 1, 2, 3, 4, 5, 7, 8, 9, 12, 13, 15, 18:
		return 8000, nil

	case 6:
		return 16000, nil

	case 10, 11:
		return 44100, nil

	case 14, 25, 26, 28, 31, 32, 33, 34:
		return 90000, nil

	case 16:
		return 11025, nil

	case 17:
		return 22050, nil
	}

	// a=rtpmap:<payload type> <encoding name>/<clock rate> [/<encoding parameters>]
	if rtpMap == "" {
		return 0, fmt.Errorf("attribute 'rtpmap' not found")
	}

	tmp := strings.Split(rtpMap, "/")
	if len(tmp) != 2 && len(tmp) != 3 {
		return 0, fmt.Errorf("invalid rtpmap (%v)", rtpMap)
	}

	v, err := strconv.ParseInt(tmp[1], 10, 32)
	if err != nil {
		return 0, err
	}

	return int(v), nil
}

// Generic is a format that can't be decoded.
// Streams with this format are skipped.
type Generic struct {
	PayloadTyp uint8
	RTPMa      string
	FMTP       string

	// clock rate of the format. Filled when decoding.
	ClockRat int
}

func (f *Generic) unmarshal(ctx *unmarshalContext) error {
	f.PayloadTyp = ctx.payloadType
	f.RTPMa = ctx.rtpMap
	f.FMTP = ctx.fmtp

	var err error
	f.ClockRat, err = findClockRate(f.PayloadTyp, f.RTPMa)
	if err != nil {
		return fmt.Errorf("unable to get clock rate: %w", err)
	}

	return nil
}

// Codec implements Format.
func (f *Generic) Codec() string {
	return "Generic"
}

// ClockRate implements Format.
func (f *Generic) ClockRate() int {
	return f.ClockRat
}

// PayloadType implements Format.
func (f *Generic) PayloadType() uint8 {
	return f.PayloadTyp
}

// RTPMap implements Format.
func (f *Generic) RTPMap() string {
	return f.RTPMa
}

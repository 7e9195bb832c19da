// Package rtptime contains a RTP timestamp decoder.
package rtptime

import (
	"fmt"
	"time"
)

// avoid an int64 overflow and preserve resolution by splitting division into two parts:
// first add the integer part, then the decimal part.
func multiplyAndDivide(v, m, d time.Duration) time.Duration {
	secs := v / d
	dec := v % d
	return (secs*m + dec*m/d)
}

// Decoder converts RTP timestamps into durations
// relative to the first decoded timestamp.
// Timestamps can wrap around and go backwards.
type Decoder struct {
	// clock rate of the stream.
	ClockRate int

	initialized bool
	overall     int64
	prev        uint32
}

// Initialize initializes a Decoder.
func (d *Decoder) Initialize() error {
	if d.ClockRate <= 0 {
		return fmt.Errorf("invalid clock rate: %d", d.ClockRate)
	}
	return nil
}

// Decode decodes a timestamp.
func (d *Decoder) Decode(ts uint32) time.Duration {
	if !d.initialized {
		d.initialized = true
		d.prev = ts
		return 0
	}

	// differences bigger than half the timestamp range are negative.
	d.overall += int64(int32(ts - d.prev))
	d.prev = ts

	return multiplyAndDivide(time.Duration(d.overall), time.Second, time.Duration(d.ClockRate))
}

// Package rtplossdetector counts RTP packets that never arrived.
package rtplossdetector

import (
	"github.com/pion/rtp"
)

// packets whose sequence number is this far behind the expected one
// are considered late, not a sign of losses.
const lateThreshold = 0x8000

// LossDetector counts missing sequence numbers in a stream of ordered packets.
type LossDetector struct {
	initialized    bool
	expectedSeqNum uint16
}

// Process processes a RTP packet.
// It returns the number of packets lost between the previous packet and this one.
func (d *LossDetector) Process(pkt *rtp.Packet) uint64 {
	if !d.initialized {
		d.initialized = true
		d.expectedSeqNum = pkt.SequenceNumber + 1
		return 0
	}

	diff := pkt.SequenceNumber - d.expectedSeqNum

	// late or duplicate packet: the sequence stays where it is.
	if diff >= lateThreshold {
		return 0
	}

	d.expectedSeqNum = pkt.SequenceNumber + 1
	return uint64(diff)
}

// Reset makes the next packet restart the sequence.
func (d *LossDetector) Reset() {
	d.initialized = false
}

// Package rtpreorderer contains a RTP packet reorderer.
package rtpreorderer

import (
	"github.com/pion/rtp"
)

const (
	// must be a power of two.
	bufferSize = 64

	// packets whose sequence number is this far behind the expected one
	// are duplicates or were sent before the first processed packet.
	lateThreshold = 0x8000
)

// Reorderer sorts incoming RTP packets by sequence number
// and removes duplicates.
// Packets that follow a gap are kept until the gap is filled
// or the buffer is full, whatever comes first.
type Reorderer struct {
	initialized    bool
	expectedSeqNum uint16
	buffer         []*rtp.Packet
	absPos         uint16
}

// Initialize initializes a Reorderer.
func (r *Reorderer) Initialize() {
	r.buffer = make([]*rtp.Packet, bufferSize)
}

// Process processes a RTP packet.
// It returns the packets that can be forwarded, in order.
func (r *Reorderer) Process(pkt *rtp.Packet) []*rtp.Packet {
	if !r.initialized {
		r.initialized = true
		r.expectedSeqNum = pkt.SequenceNumber + 1
		return []*rtp.Packet{pkt}
	}

	relPos := pkt.SequenceNumber - r.expectedSeqNum

	if relPos >= lateThreshold {
		return nil
	}

	// the gap is too big to be filled. forward buffered packets,
	// then the current one.
	if relPos >= bufferSize {
		ret := r.flush()
		ret = append(ret, pkt)
		r.expectedSeqNum = pkt.SequenceNumber + 1
		return ret
	}

	if relPos != 0 {
		p := (r.absPos + relPos) & (bufferSize - 1)

		if r.buffer[p] != nil {
			return nil
		}

		r.buffer[p] = pkt
		return nil
	}

	ret := []*rtp.Packet{pkt}
	r.absPos = (r.absPos + 1) & (bufferSize - 1)

	for r.buffer[r.absPos] != nil {
		ret = append(ret, r.buffer[r.absPos])
		r.buffer[r.absPos] = nil
		r.absPos = (r.absPos + 1) & (bufferSize - 1)
	}

	r.expectedSeqNum += uint16(len(ret))

	return ret
}

func (r *Reorderer) flush() []*rtp.Packet {
	var ret []*rtp.Packet

	for i := uint16(0); i < bufferSize; i++ {
		p := (r.absPos + i) & (bufferSize - 1)
		if r.buffer[p] != nil {
			ret = append(ret, r.buffer[p])
			r.buffer[p] = nil
		}
	}

	r.absPos = 0
	return ret
}

// Package rtpreceiver contains a utility to receive RTP/JPEG streams.
package rtpreceiver

import (
	"fmt"
	"sync"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"

	"github.com/bluenviron/rtpjpeg/internal/rtplossdetector"
	"github.com/bluenviron/rtpjpeg/pkg/depacketizer"
	"github.com/bluenviron/rtpjpeg/pkg/liberrors"
	"github.com/bluenviron/rtpjpeg/pkg/rtpreorderer"
	"github.com/bluenviron/rtpjpeg/pkg/rtptime"
)

const (
	defaultClockRate = 90000

	// total lost packets are stored into 24 bits.
	maxTotalLost = 0xFFFFFF
)

// Receiver feeds a depacketizer with RTP packets. It is in charge of:
// - removing packets with wrong SSRC
// - removing duplicate packets
// - reordering packets
// - counting lost packets
// - computing presentation timestamps
// - generating RTCP receiver reports
//
// ProcessPacket must be called by a single goroutine.
// Report, ProcessSenderReport and Stats can be called by any goroutine.
type Receiver struct {
	// clock rate of the stream.
	// It defaults to 90000.
	ClockRate int

	// ID of the stream, copied into frames.
	StreamID int

	// SSRC of receiver reports.
	LocalSSRC uint32

	// depacketizer that reassembles frames.
	Depacketizer depacketizer.Depacketizer

	// called when a frame has been decoded.
	OnFrame func(*depacketizer.VideoFrame)

	// called when a packet can't be processed (optional).
	OnDecodeError func(error)

	reorderer    rtpreorderer.Reorderer
	lossDetector rtplossdetector.LossDetector
	timeDecoder  rtptime.Decoder

	// lost packets that haven't been attributed to a frame yet.
	pendingLoss uint64

	mutex sync.Mutex

	firstPacketReceived   bool
	remoteSSRC            uint32
	lastSequenceNumber    uint16
	sequenceNumberCycles  uint16
	totalReceived         uint64
	totalLost             uint32
	receivedSinceReport   uint32
	lostSinceReport       uint32
	jitter                float64
	lastTimeRTP           uint32
	lastTimeSystem        time.Time
	senderReportReceived  bool
	lastSenderReportNTP   uint64
	lastSenderReportLocal time.Time
}

// Initialize initializes Receiver.
func (rr *Receiver) Initialize() error {
	if rr.ClockRate == 0 {
		rr.ClockRate = defaultClockRate
	}

	if rr.Depacketizer == nil {
		return fmt.Errorf("Depacketizer not provided")
	}

	if rr.OnFrame == nil {
		return fmt.Errorf("OnFrame not provided")
	}

	if rr.OnDecodeError == nil {
		rr.OnDecodeError = func(error) {}
	}

	rr.timeDecoder = rtptime.Decoder{ClockRate: rr.ClockRate}
	err := rr.timeDecoder.Initialize()
	if err != nil {
		return err
	}

	rr.reorderer.Initialize()

	return nil
}

// ProcessPacket processes an incoming RTP packet.
// Packets are reordered and pushed into the depacketizer;
// decoded frames are passed to OnFrame, errors to OnDecodeError.
func (rr *Receiver) ProcessPacket(pkt *rtp.Packet, now time.Time) {
	rr.mutex.Lock()

	if !rr.firstPacketReceived {
		rr.firstPacketReceived = true
		rr.remoteSSRC = pkt.SSRC
		rr.lastSequenceNumber = pkt.SequenceNumber
	} else if pkt.SSRC != rr.remoteSSRC {
		rr.mutex.Unlock()
		rr.OnDecodeError(liberrors.ErrUnexpectedSSRC{SSRC: pkt.SSRC, Expected: rr.remoteSSRC})
		return
	}

	pkts := rr.reorderer.Process(pkt)
	losses := make([]uint64, len(pkts))

	for i, pkt := range pkts {
		losses[i] = rr.lossDetector.Process(pkt)
		rr.updateStats(pkt, losses[i], now)
	}

	rr.mutex.Unlock()

	for i, pkt := range pkts {
		rr.pendingLoss += losses[i]

		err := rr.Depacketizer.Push(&depacketizer.ReceivedPacket{
			Packet: pkt,
			Ctx: depacketizer.PacketContext{
				ReceivedAt:     now,
				SequenceNumber: pkt.SequenceNumber,
				SSRC:           pkt.SSRC,
			},
			PTS:      rr.timeDecoder.Decode(pkt.Timestamp),
			Loss:     rr.pendingLoss,
			StreamID: rr.StreamID,
		})
		if err != nil {
			rr.OnDecodeError(err)
			continue
		}

		fr := rr.Depacketizer.Pull()
		if fr != nil {
			rr.pendingLoss = 0
			rr.OnFrame(fr)
		}
	}
}

func (rr *Receiver) updateStats(pkt *rtp.Packet, lost uint64, now time.Time) {
	if rr.totalReceived != 0 {
		if pkt.SequenceNumber < rr.lastSequenceNumber {
			rr.sequenceNumberCycles++
		}

		// https://tools.ietf.org/html/rfc3550#appendix-A.8
		d := now.Sub(rr.lastTimeSystem).Seconds()*float64(rr.ClockRate) -
			float64(int32(pkt.Timestamp-rr.lastTimeRTP))
		if d < 0 {
			d = -d
		}
		rr.jitter += (d - rr.jitter) / 16
	}

	rr.totalReceived++
	rr.receivedSinceReport++
	rr.lastSequenceNumber = pkt.SequenceNumber
	rr.lastTimeRTP = pkt.Timestamp
	rr.lastTimeSystem = now

	if lost > maxTotalLost {
		lost = maxTotalLost
	}

	rr.totalLost += uint32(lost)
	if rr.totalLost > maxTotalLost {
		rr.totalLost = maxTotalLost
	}

	rr.lostSinceReport += uint32(lost)
}

// ProcessSenderReport processes an incoming RTCP sender report.
func (rr *Receiver) ProcessSenderReport(sr *rtcp.SenderReport, now time.Time) {
	rr.mutex.Lock()
	defer rr.mutex.Unlock()

	rr.senderReportReceived = true
	rr.lastSenderReportNTP = sr.NTPTime
	rr.lastSenderReportLocal = now
}

// Report returns a RTCP receiver report,
// or nil if no packet has been received yet.
func (rr *Receiver) Report(now time.Time) *rtcp.ReceiverReport {
	rr.mutex.Lock()
	defer rr.mutex.Unlock()

	if !rr.firstPacketReceived {
		return nil
	}

	report := &rtcp.ReceiverReport{
		SSRC: rr.LocalSSRC,
		Reports: []rtcp.ReceptionReport{
			{
				SSRC:               rr.remoteSSRC,
				LastSequenceNumber: uint32(rr.sequenceNumberCycles)<<16 | uint32(rr.lastSequenceNumber),
				TotalLost:          rr.totalLost,
				Jitter:             uint32(rr.jitter),
			},
		},
	}

	expected := uint64(rr.receivedSinceReport) + uint64(rr.lostSinceReport)
	if expected != 0 {
		// equivalent to taking the integer part after multiplying the
		// loss fraction by 256
		report.Reports[0].FractionLost = uint8(uint64(rr.lostSinceReport) * 256 / expected)
	}

	if rr.senderReportReceived {
		// middle 32 bits out of 64 in the NTP of last sender report
		report.Reports[0].LastSenderReport = uint32(rr.lastSenderReportNTP >> 16)

		// delay, expressed in units of 1/65536 seconds, between
		// receiving the last SR packet and sending this report
		report.Reports[0].Delay = uint32(now.Sub(rr.lastSenderReportLocal).Seconds() * 65536)
	}

	rr.receivedSinceReport = 0
	rr.lostSinceReport = 0

	return report
}

// Stats are statistics.
type Stats struct {
	RemoteSSRC         uint32
	LastSequenceNumber uint16
	PacketsReceived    uint64
	PacketsLost        uint32
	Jitter             float64
}

// Stats returns statistics, or nil if no packet has been received yet.
func (rr *Receiver) Stats() *Stats {
	rr.mutex.Lock()
	defer rr.mutex.Unlock()

	if !rr.firstPacketReceived {
		return nil
	}

	return &Stats{
		RemoteSSRC:         rr.remoteSSRC,
		LastSequenceNumber: rr.lastSequenceNumber,
		PacketsReceived:    rr.totalReceived,
		PacketsLost:        rr.totalLost,
		Jitter:             rr.jitter,
	}
}

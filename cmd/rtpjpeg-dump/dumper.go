package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"

	"github.com/bluenviron/rtpjpeg/pkg/depacketizer"
	"github.com/bluenviron/rtpjpeg/pkg/format/rtpmjpeg"
	"github.com/bluenviron/rtpjpeg/pkg/liberrors"
	"github.com/bluenviron/rtpjpeg/pkg/rtpreceiver"
)

func randUint32() (uint32, error) {
	var b [4]byte
	_, err := rand.Read(b[:])
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// dumper receives a RTP/JPEG stream and saves frames on disk.
type dumper struct {
	Address            string
	MulticastInterface *net.Interface
	PayloadType        uint8
	OutDir             string
	Count              int
	MaxFrameSize       int
	ReadBufferSize     int
	RTCPPeriod         time.Duration
	Log                *logrus.Entry

	receiver *rtpreceiver.Receiver
	rtp      *udpListener
	rtcp     *udpListener

	// packets are processed by a single goroutine at a time.
	mutex      sync.Mutex
	written    int
	finished   chan struct{}
	finishOnce sync.Once

	// address of the RTCP sender, receiver reports are sent here.
	rtcpMutex  sync.Mutex
	rtcpSender *net.UDPAddr
}

func (d *dumper) initialize() error {
	err := os.MkdirAll(d.OutDir, 0o755)
	if err != nil {
		return err
	}

	dec := &rtpmjpeg.Decoder{
		MaxFrameSize: d.MaxFrameSize,
	}
	err = dec.Init()
	if err != nil {
		return err
	}

	localSSRC, err := randUint32()
	if err != nil {
		return err
	}

	d.receiver = &rtpreceiver.Receiver{
		LocalSSRC:     localSSRC,
		Depacketizer:  dec,
		OnFrame:       d.onFrame,
		OnDecodeError: d.onDecodeError,
	}
	err = d.receiver.Initialize()
	if err != nil {
		return err
	}

	d.finished = make(chan struct{})

	d.rtp = &udpListener{
		address:            d.Address,
		multicastInterface: d.MulticastInterface,
		readBufferSize:     d.ReadBufferSize,
		readFunc:           d.readRTP,
	}
	err = d.rtp.initialize()
	if err != nil {
		return err
	}

	if d.RTCPPeriod != 0 {
		var addr string
		addr, err = rtcpAddress(d.Address, d.rtp.port())
		if err != nil {
			d.rtp.close()
			return err
		}

		d.rtcp = &udpListener{
			address:            addr,
			multicastInterface: d.MulticastInterface,
			readFunc:           d.readRTCP,
		}
		err = d.rtcp.initialize()
		if err != nil {
			d.rtp.close()
			return err
		}
	}

	return nil
}

// run receives packets until the context is canceled
// or Count frames have been saved.
func (d *dumper) run(ctx context.Context) error {
	d.Log.WithFields(logrus.Fields{
		"address":      d.Address,
		"port":         d.rtp.port(),
		"payload_type": d.PayloadType,
		"out_dir":      d.OutDir,
	}).Info("listening for RTP/JPEG packets")

	d.rtp.start()
	defer d.rtp.close()

	if d.rtcp != nil {
		d.rtcp.start()
		defer d.rtcp.close()

		ticker := time.NewTicker(d.RTCPPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				d.sendReport()

			case <-d.finished:
				return nil

			case <-ctx.Done():
				return nil
			}
		}
	}

	select {
	case <-d.finished:
	case <-ctx.Done():
	}

	return nil
}

func (d *dumper) readRTP(buf []byte, addr *net.UDPAddr, now time.Time) bool {
	var pkt rtp.Packet
	err := pkt.Unmarshal(buf)
	if err != nil {
		d.Log.WithFields(logrus.Fields{
			"source": addr.String(),
			"error":  err,
		}).Warn("invalid RTP packet")
		return false
	}

	if pkt.PayloadType != d.PayloadType {
		d.Log.WithFields(logrus.Fields{
			"source":       addr.String(),
			"payload_type": pkt.PayloadType,
		}).Debug("discarding packet with unexpected payload type")
		return false
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.Count != 0 && d.written >= d.Count {
		return false
	}

	d.receiver.ProcessPacket(&pkt, now)

	// the payload is referenced by the packet, that can be retained by the reorderer.
	return true
}

func (d *dumper) readRTCP(buf []byte, addr *net.UDPAddr, now time.Time) bool {
	pkts, err := rtcp.Unmarshal(buf)
	if err != nil {
		d.Log.WithFields(logrus.Fields{
			"source": addr.String(),
			"error":  err,
		}).Warn("invalid RTCP packet")
		return false
	}

	for _, pkt := range pkts {
		if sr, ok := pkt.(*rtcp.SenderReport); ok {
			d.receiver.ProcessSenderReport(sr, now)

			d.rtcpMutex.Lock()
			d.rtcpSender = addr
			d.rtcpMutex.Unlock()
		}
	}

	return false
}

func (d *dumper) sendReport() {
	d.rtcpMutex.Lock()
	dest := d.rtcpSender
	d.rtcpMutex.Unlock()

	if dest == nil {
		return
	}

	report := d.receiver.Report(time.Now())
	if report == nil {
		return
	}

	byts, err := report.Marshal()
	if err != nil {
		d.Log.WithError(err).Warn("unable to encode receiver report")
		return
	}

	_, err = d.rtcp.pc.WriteTo(byts, dest)
	if err != nil {
		d.Log.WithError(err).Warn("unable to send receiver report")
	}
}

func (d *dumper) onFrame(fr *depacketizer.VideoFrame) {
	if d.Count != 0 && d.written >= d.Count {
		return
	}

	fname := filepath.Join(d.OutDir, fmt.Sprintf("frame-%06d.jpg", d.written))

	err := os.WriteFile(fname, fr.Data, 0o644)
	if err != nil {
		d.Log.WithError(err).Error("unable to save frame")
		return
	}

	d.written++

	entry := d.Log.WithFields(logrus.Fields{
		"file":      fname,
		"size":      len(fr.Data),
		"pts":       fr.PTS,
		"timestamp": fr.Timestamp,
	})
	if fr.Loss != 0 {
		entry = entry.WithField("lost_packets", fr.Loss)
	}
	if fr.HasNewParameters {
		params := d.receiver.Depacketizer.Parameters()
		entry = entry.WithField("dimensions",
			fmt.Sprintf("%dx%d", params.PixelDimensions.Width, params.PixelDimensions.Height))
	}
	entry.Info("frame saved")

	if d.Count != 0 && d.written >= d.Count {
		d.finishOnce.Do(func() {
			close(d.finished)
		})
	}
}

func (d *dumper) onDecodeError(err error) {
	// it's normal to receive orphan fragments when joining a running stream.
	var orphan liberrors.ErrOrphanFragment
	if errors.As(err, &orphan) {
		d.Log.WithError(err).Debug("decode error")
		return
	}

	d.Log.WithError(err).Warn("decode error")
}

// savedFrames returns the number of saved frames.
func (d *dumper) savedFrames() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.written
}

// Command rtpjpeg-dump receives a RTP/JPEG stream and saves frames as JPEG files.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/bluenviron/rtpjpeg/pkg/format"
)

const (
	flagListen         = "listen"
	flagSDP            = "sdp"
	flagPayloadType    = "payload-type"
	flagInterface      = "interface"
	flagOut            = "out"
	flagCount          = "count"
	flagMaxFrameSize   = "max-frame-size"
	flagReadBufferSize = "read-buffer-size"
	flagRTCPPeriod     = "rtcp-period"
	flagLogLevel       = "log-level"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "rtpjpeg-dump",
		Usage: "receive a RTP/JPEG stream and save frames as JPEG files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagListen,
				Value: ":5004",
				Usage: "listen on `ADDRESS`. Multicast groups are joined automatically",
			},
			&cli.StringFlag{
				Name:  flagSDP,
				Usage: "read address and payload type from the session description in `FILE`",
			},
			&cli.UintFlag{
				Name:  flagPayloadType,
				Value: 26,
				Usage: "payload type of the stream",
			},
			&cli.StringFlag{
				Name:  flagInterface,
				Usage: "join multicast groups on interface `NAME` only",
			},
			&cli.StringFlag{
				Name:  flagOut,
				Usage: "save frames into `DIR`. It defaults to a directory named after the run ID",
			},
			&cli.IntFlag{
				Name:  flagCount,
				Usage: "exit after saving this number of frames. 0 means no limit",
			},
			&cli.IntFlag{
				Name:  flagMaxFrameSize,
				Value: 2000000,
				Usage: "discard frames bigger than this size",
			},
			&cli.IntFlag{
				Name:  flagReadBufferSize,
				Usage: "size of the UDP read buffer. 0 means system default",
			},
			&cli.DurationFlag{
				Name:  flagRTCPPeriod,
				Value: 5 * time.Second,
				Usage: "period of RTCP receiver reports. 0 disables RTCP",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Value: "info",
				Usage: "log level (debug, info, warn, error)",
			},
		},
		Action: run,
	}
}

func newDumper(c *cli.Context, log *logrus.Entry) (*dumper, error) {
	payloadType := c.Uint(flagPayloadType)
	if payloadType > 127 {
		return nil, fmt.Errorf("invalid payload type: %d", payloadType)
	}

	d := &dumper{
		Address:        c.String(flagListen),
		PayloadType:    uint8(payloadType),
		OutDir:         c.String(flagOut),
		Count:          c.Int(flagCount),
		MaxFrameSize:   c.Int(flagMaxFrameSize),
		ReadBufferSize: c.Int(flagReadBufferSize),
		RTCPPeriod:     c.Duration(flagRTCPPeriod),
		Log:            log,
	}

	if path := c.String(flagSDP); path != "" {
		byts, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		sd, err := format.UnmarshalSession(byts)
		if err != nil {
			return nil, fmt.Errorf("invalid session description: %w", err)
		}

		medi, err := format.FindMJPEG(sd)
		if err != nil {
			return nil, err
		}

		if !medi.IsMulticast() {
			medi.Address = ""
		}

		d.Address = medi.Listen()
		d.PayloadType = medi.Format.PayloadType()
	}

	if name := c.String(flagInterface); name != "" {
		intf, err := net.InterfaceByName(name)
		if err != nil {
			return nil, err
		}
		d.MulticastInterface = intf
	}

	return d, nil
}

func run(c *cli.Context) error {
	level, err := logrus.ParseLevel(c.String(flagLogLevel))
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetLevel(level)

	runID := uuid.New()
	log := logger.WithField("run_id", runID.String())

	d, err := newDumper(c, log)
	if err != nil {
		return err
	}

	if d.OutDir == "" {
		d.OutDir = "rtpjpeg-" + runID.String()
	}

	err = d.initialize()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = d.run(ctx)
	if err != nil {
		return err
	}

	log.WithField("frames", d.savedFrames()).Info("done")
	return nil
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		logrus.Fatal(err)
	}
}

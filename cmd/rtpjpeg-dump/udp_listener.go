package main

import (
	"net"
	"strconv"
	"time"

	"github.com/bluenviron/rtpjpeg/pkg/multicast"
)

const (
	// 1500 (UDP MTU) - 20 (IP header) - 8 (UDP header)
	udpMaxPayloadSize = 1472
)

type packetConn interface {
	net.PacketConn
	SetReadBuffer(bytes int) error
}

// readFunc processes a datagram.
// It returns true when the buffer has been retained and can't be reused.
type readFunc func(buf []byte, addr *net.UDPAddr, now time.Time) bool

type udpListener struct {
	address            string
	multicastInterface *net.Interface
	readBufferSize     int
	readFunc           readFunc

	pc   packetConn
	done chan struct{}
}

func (u *udpListener) initialize() error {
	addr, err := net.ResolveUDPAddr("udp", u.address)
	if err != nil {
		return err
	}

	if addr.IP != nil && addr.IP.IsMulticast() {
		u.pc, err = multicast.Listen(u.address, u.multicastInterface)
		if err != nil {
			return err
		}
	} else {
		var tmp net.PacketConn
		tmp, err = net.ListenPacket("udp", u.address)
		if err != nil {
			return err
		}
		u.pc = tmp.(*net.UDPConn)
	}

	if u.readBufferSize != 0 {
		err = u.pc.SetReadBuffer(u.readBufferSize)
		if err != nil {
			u.pc.Close() //nolint:errcheck
			return err
		}
	}

	return nil
}

func (u *udpListener) port() int {
	return u.pc.LocalAddr().(*net.UDPAddr).Port
}

func (u *udpListener) start() {
	u.done = make(chan struct{})
	go u.run()
}

// close stops the read loop and closes the connection.
func (u *udpListener) close() {
	u.pc.Close() //nolint:errcheck
	if u.done != nil {
		<-u.done
	}
}

func (u *udpListener) run() {
	defer close(u.done)

	var buf []byte

	createNewBuffer := func() {
		buf = make([]byte, udpMaxPayloadSize+1)
	}

	createNewBuffer()

	for {
		n, addr, err := u.pc.ReadFrom(buf)
		if err != nil {
			return
		}

		if u.readFunc(buf[:n], addr.(*net.UDPAddr), time.Now()) {
			createNewBuffer()
		}
	}
}

// rtcpAddress returns the address of the RTCP stream
// associated with a RTP stream received on address and rtpPort.
func rtcpAddress(address string, rtpPort int) (string, error) {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return "", err
	}

	return net.JoinHostPort(host, strconv.Itoa(rtpPort+1)), nil
}

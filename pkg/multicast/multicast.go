// Package multicast contains a listener of multicast groups.
package multicast

import (
	"fmt"
	"net"
	"strconv"

	"golang.org/x/net/ipv4"
)

// Conn is a connection that receives packets sent to a multicast group.
type Conn struct {
	*net.UDPConn

	connIP *ipv4.PacketConn
	group  *net.UDPAddr
	intfs  []*net.Interface
}

// Listen joins the multicast group of address (host:port) and
// listens for packets sent to it.
// When intf is nil, the group is joined on all multicast-capable interfaces.
func Listen(address string, intf *net.Interface) (*Conn, error) {
	addr, err := net.ResolveUDPAddr("udp4", address)
	if err != nil {
		return nil, err
	}

	if !addr.IP.IsMulticast() {
		return nil, fmt.Errorf("%v is not a multicast address", addr.IP)
	}

	var intfs []*net.Interface

	if intf != nil {
		intfs = []*net.Interface{intf}
	} else {
		intfs, err = multicastInterfaces()
		if err != nil {
			return nil, err
		}
	}

	tmp, err := net.ListenPacket("udp4", ":"+strconv.FormatInt(int64(addr.Port), 10))
	if err != nil {
		return nil, err
	}
	conn := tmp.(*net.UDPConn)

	connIP := ipv4.NewPacketConn(conn)

	var joined []*net.Interface //nolint:prealloc

	for _, intf := range intfs {
		err = connIP.JoinGroup(intf, &net.UDPAddr{IP: addr.IP})
		if err != nil {
			continue
		}
		joined = append(joined, intf)
	}

	if joined == nil {
		conn.Close() //nolint:errcheck
		return nil, fmt.Errorf("unable to join multicast group %v on any interface", addr.IP)
	}

	return &Conn{
		UDPConn: conn,
		connIP:  connIP,
		group:   &net.UDPAddr{IP: addr.IP},
		intfs:   joined,
	}, nil
}

func multicastInterfaces() ([]*net.Interface, error) {
	intfs, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var ret []*net.Interface //nolint:prealloc

	for _, intf := range intfs {
		if (intf.Flags&net.FlagMulticast) == 0 || (intf.Flags&net.FlagUp) == 0 {
			continue
		}
		cintf := intf
		ret = append(ret, &cintf)
	}

	if ret == nil {
		return nil, fmt.Errorf("no multicast-capable interfaces found")
	}

	return ret, nil
}

// Interfaces returns the interfaces on which the group has been joined.
func (c *Conn) Interfaces() []*net.Interface {
	return c.intfs
}

// Close leaves the multicast group and closes the connection.
func (c *Conn) Close() error {
	for _, intf := range c.intfs {
		c.connIP.LeaveGroup(intf, c.group) //nolint:errcheck
	}
	return c.UDPConn.Close()
}

package format

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	psdp "github.com/pion/sdp/v3"
)

// Media is a media stream that carries M-JPEG.
type Media struct {
	// format of the stream.
	Format *MJPEG

	// destination address of the stream, if any.
	// It can be a multicast group.
	Address string

	// destination port of the stream.
	Port int
}

// Listen returns the address where RTP packets of the stream
// can be received, in the host:port form.
func (m *Media) Listen() string {
	return net.JoinHostPort(m.Address, strconv.Itoa(m.Port))
}

// IsMulticast checks whether the destination address is a multicast group.
func (m *Media) IsMulticast() bool {
	ip := net.ParseIP(m.Address)
	return ip != nil && ip.IsMulticast()
}

func connectionAddress(ci *psdp.ConnectionInformation) string {
	if ci == nil || ci.Address == nil {
		return ""
	}

	// multicast addresses can be followed by /ttl[/count]
	addr, _, _ := strings.Cut(ci.Address.Address, "/")
	return addr
}

// FindMJPEG finds the first M-JPEG stream of a session description.
func FindMJPEG(sd *psdp.SessionDescription) (*Media, error) {
	for _, md := range sd.MediaDescriptions {
		if md.MediaName.Media != "video" {
			continue
		}

		for _, payloadType := range md.MediaName.Formats {
			forma, err := Unmarshal(md, payloadType)
			if err != nil {
				return nil, err
			}

			mjpeg, ok := forma.(*MJPEG)
			if !ok {
				continue
			}

			addr := connectionAddress(md.ConnectionInformation)
			if addr == "" {
				addr = connectionAddress(sd.ConnectionInformation)
			}

			return &Media{
				Format:  mjpeg,
				Address: addr,
				Port:    md.MediaName.Port.Value,
			}, nil
		}
	}

	return nil, fmt.Errorf("M-JPEG stream not found")
}

// UnmarshalSession decodes a session description.
func UnmarshalSession(byts []byte) (*psdp.SessionDescription, error) {
	var sd psdp.SessionDescription
	err := sd.Unmarshal(byts)
	if err != nil {
		return nil, err
	}
	return &sd, nil
}

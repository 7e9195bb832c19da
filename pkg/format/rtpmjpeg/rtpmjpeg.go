// Package rtpmjpeg contains a RTP/M-JPEG decoder and encoder.
//
// Specification: https://datatracker.ietf.org/doc/html/rfc2435
package rtpmjpeg

const (
	rtpClockRate = 90000

	// width and height are transmitted in units of 8 pixels in a single byte.
	maxDimension = 2040

	// frames bigger than this are discarded.
	defaultMaxFrameSize = 2000000
)

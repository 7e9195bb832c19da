// Package liberrors contains errors returned by the library.
package liberrors

import (
	"fmt"
)

// ErrInvalidPacket is returned when a RTP/JPEG payload or one of its headers is malformed.
type ErrInvalidPacket struct {
	Reason string
}

// Error implements the error interface.
func (e ErrInvalidPacket) Error() string {
	return fmt.Sprintf("invalid RTP/JPEG packet: %s", e.Reason)
}

// ErrOrphanFragment is returned when a non-starting fragment is received
// without any previous starting fragment.
// It's normal to receive this when we are decoding a stream that has been already
// running for some time.
type ErrOrphanFragment struct {
	FragmentOffset uint32
}

// Error implements the error interface.
func (e ErrOrphanFragment) Error() string {
	return fmt.Sprintf("received a fragment with offset %d without any previous starting fragment",
		e.FragmentOffset)
}

// ErrMissingQuantTable is returned when a frame refers to quantization tables
// that were neither sent inline nor received before.
type ErrMissingQuantTable struct {
	Q uint8
}

// Error implements the error interface.
func (e ErrMissingQuantTable) Error() string {
	return fmt.Sprintf("quantization tables for Q=%d not found", e.Q)
}

// ErrInvalidQuantSpec is returned when a frame with Q=255 does not carry
// its quantization tables.
type ErrInvalidQuantSpec struct {
	Q uint8
}

// Error implements the error interface.
func (e ErrInvalidQuantSpec) Error() string {
	return fmt.Sprintf("Q=%d requires inline quantization tables", e.Q)
}

// ErrInsufficientQuantData is returned when quantization tables are shorter
// than what their precision requires.
type ErrInsufficientQuantData struct {
	Table     int
	Needed    int
	Available int
}

// Error implements the error interface.
func (e ErrInsufficientQuantData) Error() string {
	return fmt.Sprintf("quantization table %d needs %d bytes, but only %d are available",
		e.Table, e.Needed, e.Available)
}

// ErrMissingFrameStart is returned when a payload can't be attached to any frame.
type ErrMissingFrameStart struct{}

// Error implements the error interface.
func (e ErrMissingFrameStart) Error() string {
	return "missing start of frame"
}

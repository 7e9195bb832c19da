package liberrors

import (
	"fmt"
)

// ErrUnexpectedSSRC is returned when a packet belongs to a different
// synchronization source than the one being received.
type ErrUnexpectedSSRC struct {
	SSRC     uint32
	Expected uint32
}

// Error implements the error interface.
func (e ErrUnexpectedSSRC) Error() string {
	return fmt.Sprintf("received packet with SSRC %d, expected %d", e.SSRC, e.Expected)
}

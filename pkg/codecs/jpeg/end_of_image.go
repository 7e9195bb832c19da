package jpeg

// EndOfImage is a EOI marker.
type EndOfImage struct{}

// Marshal encodes the marker.
func (EndOfImage) Marshal(buf []byte) []byte {
	buf = append(buf, []byte{0xFF, MarkerEndOfImage}...)
	return buf
}

// HasEndOfImage checks whether buf is terminated by a EOI marker.
func HasEndOfImage(buf []byte) bool {
	l := len(buf)
	return l >= 2 && buf[l-2] == 0xFF && buf[l-1] == MarkerEndOfImage
}

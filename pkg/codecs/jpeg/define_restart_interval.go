package jpeg

// DefineRestartInterval is a DRI marker.
type DefineRestartInterval struct {
	Interval uint16
}

// Marshal encodes the marker.
func (m DefineRestartInterval) Marshal(buf []byte) []byte {
	buf = append(buf, []byte{0xFF, MarkerDefineRestartInterval}...)
	buf = append(buf, []byte{0, 4}...) // length
	buf = append(buf, []byte{byte(m.Interval >> 8), byte(m.Interval)}...)
	return buf
}

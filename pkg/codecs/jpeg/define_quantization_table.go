package jpeg

// QuantizationTable is a DQT quantization table.
type QuantizationTable struct {
	ID uint8

	// 0 for 8-bit values, 1 for 16-bit values.
	Precision uint8

	// 64 bytes with 8-bit precision, 128 bytes with 16-bit precision.
	Data []byte
}

// DefineQuantizationTable is a DQT marker.
type DefineQuantizationTable struct {
	Tables []QuantizationTable
}

// Marshal encodes the marker.
func (m DefineQuantizationTable) Marshal(buf []byte) []byte {
	buf = append(buf, []byte{0xFF, MarkerDefineQuantizationTable}...)

	// length
	s := 2
	for _, t := range m.Tables {
		s += 1 + len(t.Data)
	}
	buf = append(buf, []byte{byte(s >> 8), byte(s)}...)

	for _, t := range m.Tables {
		buf = append(buf, []byte{t.Precision<<4 | t.ID}...)
		buf = append(buf, t.Data...)
	}

	return buf
}

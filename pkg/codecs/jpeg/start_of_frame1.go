package jpeg

// StartOfFrame1 is a baseline SOF marker with three components,
// Y in the first one and Cb/Cr in the other two.
type StartOfFrame1 struct {
	// low 6 bits select the chroma subsampling:
	// 0 is 4:2:2, anything else is 4:2:0.
	Type                   uint8
	Width                  int
	Height                 int
	QuantizationTableCount uint8
}

// Marshal encodes the marker.
func (m StartOfFrame1) Marshal(buf []byte) []byte {
	buf = append(buf, []byte{0xFF, MarkerStartOfFrame1}...)
	buf = append(buf, []byte{0, 17}...)                               // length
	buf = append(buf, []byte{8}...)                                   // precision
	buf = append(buf, []byte{byte(m.Height >> 8), byte(m.Height)}...) // height
	buf = append(buf, []byte{byte(m.Width >> 8), byte(m.Width)}...)   // width
	buf = append(buf, []byte{3}...)                                   // components
	if (m.Type & 0x3f) == 0 {                                         // component 0
		buf = append(buf, []byte{0x00, 0x21, 0}...)
	} else {
		buf = append(buf, []byte{0x00, 0x22, 0}...)
	}

	var secondQuantizationTable byte
	if m.QuantizationTableCount == 2 {
		secondQuantizationTable = 1
	} else {
		secondQuantizationTable = 0
	}

	buf = append(buf, []byte{1, 0x11, secondQuantizationTable}...) // component 1
	buf = append(buf, []byte{2, 0x11, secondQuantizationTable}...) // component 2
	return buf
}

package rtpmjpeg

import (
	"github.com/bluenviron/rtpjpeg/pkg/codecs/jpeg"
	"github.com/bluenviron/rtpjpeg/pkg/liberrors"
)

// quantizationTableSize returns the size of the table with the given index,
// depending on the precision field of the quantization table header.
func quantizationTableSize(precision uint8, index int) int {
	if (precision>>index)&0x01 != 0 {
		return 128
	}
	return 64
}

// writeHeaders writes the JPEG marker segments that precede the scan data
// of a RTP/JPEG frame, as described in RFC 2435, Appendix B.
func writeHeaders(
	buf []byte,
	typ uint8,
	width int,
	height int,
	qtables []byte,
	precision uint8,
	restartInterval uint16,
) ([]byte, error) {
	buf = jpeg.StartOfImage{}.Marshal(buf)

	for i := 0; i < 2; i++ {
		size := quantizationTableSize(precision, i)
		if len(qtables) < size {
			return nil, liberrors.ErrInsufficientQuantData{
				Table:     i,
				Needed:    size,
				Available: len(qtables),
			}
		}

		buf = jpeg.DefineQuantizationTable{
			Tables: []jpeg.QuantizationTable{{
				ID:        uint8(i),
				Precision: (precision >> i) & 0x01,
				Data:      qtables[:size],
			}},
		}.Marshal(buf)
		qtables = qtables[size:]
	}

	if restartInterval != 0 {
		buf = jpeg.DefineRestartInterval{
			Interval: restartInterval,
		}.Marshal(buf)
	}

	buf = jpeg.StartOfFrame1{
		Type:                   typ,
		Width:                  width,
		Height:                 height,
		QuantizationTableCount: 2,
	}.Marshal(buf)

	buf = jpeg.DefineHuffmanTable{
		Codes:       lumDcCodelens,
		Symbols:     lumDcSymbols,
		TableNumber: 0,
		TableClass:  0,
	}.Marshal(buf)

	buf = jpeg.DefineHuffmanTable{
		Codes:       lumAcCodelens,
		Symbols:     lumAcSymbols,
		TableNumber: 0,
		TableClass:  1,
	}.Marshal(buf)

	buf = jpeg.DefineHuffmanTable{
		Codes:       chmDcCodelens,
		Symbols:     chmDcSymbols,
		TableNumber: 1,
		TableClass:  0,
	}.Marshal(buf)

	buf = jpeg.DefineHuffmanTable{
		Codes:       chmAcCodelens,
		Symbols:     chmAcSymbols,
		TableNumber: 1,
		TableClass:  1,
	}.Marshal(buf)

	buf = jpeg.StartOfScan{}.Marshal(buf)

	return buf, nil
}

package rtpmjpeg

// position in the 8x8 block of each coefficient, in zigzag order.
var zigzag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// Table K.1 of ITU-T T.81.
var lumQuantizer = [64]int{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

// Table K.2 of ITU-T T.81.
var chmQuantizer = [64]int{
	17, 18, 24, 47, 99, 99, 99, 99,
	18, 21, 26, 66, 99, 99, 99, 99,
	24, 26, 56, 99, 99, 99, 99, 99,
	47, 66, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

func clamp(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

// makeTables computes the luma and chroma quantization tables
// associated with a quality factor, as described in RFC 2435, Appendix A.
func makeTables(q int) [128]byte {
	factor := clamp(q, 1, 99)

	var scale int
	if factor < 50 {
		scale = 5000 / factor
	} else {
		scale = 200 - factor*2
	}

	var tables [128]byte

	for i := 0; i < 64; i++ {
		lq := (lumQuantizer[zigzag[i]]*scale + 50) / 100
		cq := (chmQuantizer[zigzag[i]]*scale + 50) / 100

		tables[i] = byte(clamp(lq, 1, 255))
		tables[i+64] = byte(clamp(cq, 1, 255))
	}

	return tables
}

package rtpmjpeg

// qtableCache stores quantization tables by Q value.
// Entries are never evicted.
type qtableCache struct {
	tables [255][]byte
}

func (c *qtableCache) get(q uint8) []byte {
	if int(q) >= len(c.tables) {
		return nil
	}
	return c.tables[q]
}

// set stores a copy of tables.
func (c *qtableCache) set(q uint8, tables []byte) {
	if int(q) >= len(c.tables) {
		return
	}
	c.tables[q] = append([]byte(nil), tables...)
}

// generated returns the tables of a Q value lower than 128,
// generating and storing them if needed.
func (c *qtableCache) generated(q uint8) []byte {
	if t := c.tables[q]; t != nil {
		return t
	}

	t := makeTables(int(q))
	c.tables[q] = t[:]
	return c.tables[q]
}

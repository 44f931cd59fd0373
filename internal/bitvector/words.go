package bitvector

// AppendWords appends words to buf in little-endian byte order.
func AppendWords(buf []byte, words []uint64) []byte {
	for _, w := range words {
		buf = append(buf,
			byte(w), byte(w>>8), byte(w>>16), byte(w>>24),
			byte(w>>32), byte(w>>40), byte(w>>48), byte(w>>56))
	}
	return buf
}

// ReadWords decodes little-endian words from data. len(data) must be a
// multiple of 8.
func ReadWords(data []byte) []uint64 {
	words := make([]uint64, len(data)/8)
	for i := range words {
		b := data[i*8:]
		words[i] = uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
			uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
	}
	return words
}

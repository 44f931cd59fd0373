package pef

import "github.com/lightjacket/pef/internal/block"

// Stats summarizes the shape and space usage of an Encoded structure.
type Stats struct {
	// NumElements is the number of stored values.
	NumElements uint64
	// Universe is one past the maximum stored value.
	Universe uint64
	// NumBlocks is the number of partitions.
	NumBlocks int
	// EliasFanoBlocks, BitmapBlocks and PlainBlocks count partitions
	// per representation.
	EliasFanoBlocks int
	BitmapBlocks    int
	PlainBlocks     int
	// SerializedBytes is the size of Bytes() output.
	SerializedBytes uint64
	// BitsPerElement is the serialized size normalized per value. Zero
	// when the structure is empty.
	BitsPerElement float64
}

// Stats computes summary statistics for the structure.
func (e *Encoded) Stats() Stats {
	s := Stats{
		NumElements:     e.n,
		Universe:        e.u,
		NumBlocks:       len(e.blocks),
		SerializedBytes: uint64(headerSize) + uint64(len(e.dir))*dirEntrySize,
	}
	for i, blk := range e.blocks {
		s.SerializedBytes += e.dir[i].payloadLen
		switch blk.Kind() {
		case block.KindBitmap:
			s.BitmapBlocks++
		case block.KindPlain:
			s.PlainBlocks++
		default:
			s.EliasFanoBlocks++
		}
	}
	if e.n > 0 {
		s.BitsPerElement = float64(s.SerializedBytes*8) / float64(e.n)
	}
	return s
}

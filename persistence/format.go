// Package persistence wraps the serialized form of an encoded set in a
// checksummed, optionally compressed file container. The container
// never alters the inner byte layout: what Read hands back to Decode
// is exactly what Encoded.Bytes produced.
package persistence

import "errors"

const (
	// MagicNumber identifies container files (ASCII "PEFS").
	MagicNumber = 0x50454653
	// Version is the current container format version.
	Version = 1

	// headerSize is the fixed container header:
	// magic(4) version(1) compression(1) pad(2) rawSize(8)
	// storedSize(8) checksum(4) pad(4).
	headerSize = 32
)

// Compression selects the algorithm applied to the inner byte stream.
type Compression uint8

const (
	// CompressionNone stores the stream as-is.
	CompressionNone Compression = 0
	// CompressionSnappy favors speed over ratio.
	CompressionSnappy Compression = 1
	// CompressionLZ4 is fast with a slightly better ratio than snappy.
	CompressionLZ4 Compression = 2
	// CompressionZSTD favors ratio; use for cold storage.
	CompressionZSTD Compression = 3
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionSnappy:
		return "snappy"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidMagic       = errors.New("persistence: invalid magic number")
	ErrInvalidVersion     = errors.New("persistence: unsupported version")
	ErrInvalidCompression = errors.New("persistence: unknown compression")
	ErrInvalidSize        = errors.New("persistence: implausible raw size")
	ErrTruncated          = errors.New("persistence: truncated container")
)

// Package block defines the per-partition representations of a
// partitioned Elias-Fano structure. Every block stores a contiguous
// run of the input sequence, rebased so its first value is zero, in
// whichever representation encodes it smallest:
//
//   - EliasFano: the general case.
//   - Bitmap: one bit per universe slot; wins when the run is nearly
//     dense (universe close to count). Requires distinct values.
//   - Plain: fixed-width fields; wins for very short runs where the
//     Elias-Fano high-bit overhead dominates.
//
// The representation set is closed: query code dispatches over Kind,
// and every representation answers Get and NextGEQ.
package block

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/lightjacket/pef/internal/eliasfano"
)

// Kind identifies a block representation. The values are part of the
// serialized format and must not be renumbered.
type Kind uint8

const (
	KindEliasFano Kind = 0
	KindBitmap    Kind = 1
	KindPlain     Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindEliasFano:
		return "eliasfano"
	case KindBitmap:
		return "bitmap"
	case KindPlain:
		return "plain"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Block is one encoded partition. Values are relative to the block
// base; the first value is always zero. Blocks are immutable and safe
// for concurrent readers.
type Block interface {
	Kind() Kind
	// Count returns the number of values in the block.
	Count() uint64
	// Universe returns one past the largest relative value.
	Universe() uint64
	// Get returns the i-th relative value. Requires i < Count.
	Get(i uint64) uint64
	// NextGEQ returns the index and value of the first relative value
	// >= x, or false if the block holds no such value.
	NextGEQ(x uint64) (uint64, uint64, bool)
	// PayloadSize returns the serialized payload size in bytes.
	PayloadSize() uint64
	// AppendPayload appends the serialized payload to buf.
	AppendPayload(buf []byte) []byte
}

// Costs are compared in payload bytes, the unit that actually lands in
// the serialized structure (bit costs rounded up to whole words).

func efPayloadBytes(n, u uint64) uint64 {
	l := eliasfano.LowBits(n, u)
	lowBytes := (n*uint64(l) + 63) / 64 * 8
	highBytes := (n + (u >> l) + 63 + 1) / 64 * 8
	return lowBytes + highBytes
}

func bitmapPayloadBytes(u uint64) uint64 {
	if u > math.MaxUint64-63 {
		// u+63 would wrap; a bitmap this wide is never competitive.
		return math.MaxUint64
	}
	return (u + 63) / 64 * 8
}

func plainWidth(u uint64) uint {
	if u <= 1 {
		return 0
	}
	return uint(bits.Len64(u - 1))
}

func plainPayloadBytes(n, u uint64) uint64 {
	return (n*uint64(plainWidth(u)) + 63) / 64 * 8
}

// ChooseKind returns the cheapest representation for n values in
// universe u. distinct reports whether the values are strictly
// increasing; only distinct runs may use a bitmap. Ties prefer
// EliasFano, then Bitmap.
func ChooseKind(n, u uint64, distinct bool) (Kind, uint64) {
	kind := KindEliasFano
	cost := efPayloadBytes(n, u)
	if distinct {
		if c := bitmapPayloadBytes(u); c < cost {
			kind, cost = KindBitmap, c
		}
	}
	if c := plainPayloadBytes(n, u); c < cost {
		kind, cost = KindPlain, c
	}
	return kind, cost
}

// Cost returns the payload cost in bytes of encoding n values in
// universe u with the cheapest eligible representation.
func Cost(n, u uint64, distinct bool) uint64 {
	_, c := ChooseKind(n, u, distinct)
	return c
}

// Build encodes values (relative to the block base, non-decreasing,
// starting at zero) into the cheapest representation.
func Build(values []uint64) (Block, error) {
	n := uint64(len(values))
	if n == 0 {
		return nil, fmt.Errorf("block: empty block")
	}
	u := values[n-1] + 1

	distinct := true
	for i := 1; i < len(values); i++ {
		if values[i] == values[i-1] {
			distinct = false
			break
		}
	}

	kind, _ := ChooseKind(n, u, distinct)
	switch kind {
	case KindBitmap:
		return newBitmapBlock(values, u)
	case KindPlain:
		return newPlainBlock(values, u)
	default:
		seq, err := eliasfano.New(values, u)
		if err != nil {
			return nil, err
		}
		return &efBlock{seq: seq}, nil
	}
}

// Decode reconstructs a block of n values in universe u from its
// payload.
func Decode(kind Kind, n, u uint64, payload []byte) (Block, error) {
	if n == 0 || u == 0 {
		return nil, fmt.Errorf("block: invalid shape n=%d u=%d", n, u)
	}
	switch kind {
	case KindEliasFano:
		seq, err := eliasfano.FromPayload(payload, n, u)
		if err != nil {
			return nil, err
		}
		return &efBlock{seq: seq}, nil
	case KindBitmap:
		return decodeBitmapBlock(payload, n, u)
	case KindPlain:
		return decodePlainBlock(payload, n, u)
	default:
		return nil, fmt.Errorf("block: unknown kind %d", uint8(kind))
	}
}

// efBlock adapts an eliasfano.Sequence to the Block interface.
type efBlock struct {
	seq *eliasfano.Sequence
}

func (b *efBlock) Kind() Kind       { return KindEliasFano }
func (b *efBlock) Count() uint64    { return b.seq.Len() }
func (b *efBlock) Universe() uint64 { return b.seq.Universe() }
func (b *efBlock) Get(i uint64) uint64 {
	return b.seq.Get(i)
}
func (b *efBlock) NextGEQ(x uint64) (uint64, uint64, bool) {
	return b.seq.NextGEQ(x)
}
func (b *efBlock) PayloadSize() uint64 {
	return b.seq.PayloadSize()
}
func (b *efBlock) AppendPayload(buf []byte) []byte {
	return b.seq.AppendPayload(buf)
}

package pef

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/lightjacket/pef/internal/block"
	"github.com/lightjacket/pef/internal/partition"
)

// dirEntry is one partition of the directory. PayloadOff/PayloadLen
// locate the block payload (including its universe prefix) within the
// payload section of the serialized form.
type dirEntry struct {
	base       uint64
	count      uint32
	kind       block.Kind
	payloadOff uint64
	payloadLen uint64
	// cumOffset is the global index of the block's first element.
	cumOffset uint64
}

// Encoded is an immutable partitioned Elias-Fano representation of a
// non-decreasing sequence. It is built once by Encode or Decode and is
// safe for unlimited concurrent readers.
type Encoded struct {
	n      uint64
	u      uint64
	dir    []dirEntry
	blocks []block.Block
}

// Encode builds an Encoded structure from a non-decreasing sequence of
// non-negative integers. It returns an *UnsortedError if any element
// is smaller than its predecessor, and ErrValueOverflow if any element
// is MaxUint64. The empty sequence is valid and yields a structure on
// which every query reports absence.
func Encode(values []uint64, opts ...Option) (*Encoded, error) {
	o := applyOptions(opts)

	u, err := partition.Validate(values)
	if err != nil {
		var pe *partition.UnsortedError
		if errors.As(err, &pe) {
			return nil, &UnsortedError{Index: uint64(pe.Index)}
		}
		if errors.Is(err, partition.ErrUniverseOverflow) {
			return nil, ErrValueOverflow
		}
		return nil, err
	}

	e := &Encoded{n: uint64(len(values)), u: u}
	if e.n == 0 {
		return e, nil
	}

	var spans []partition.Span
	if o.fixedSize > 0 {
		spans = partition.Fixed(values, o.fixedSize)
	} else {
		spans = partition.Optimal(values, o.maxBlockSize)
	}

	var payloadOff uint64
	for _, sp := range spans {
		base := values[sp.Start]
		rel := make([]uint64, sp.End-sp.Start)
		for i, v := range values[sp.Start:sp.End] {
			rel[i] = v - base
		}
		blk, err := block.Build(rel)
		if err != nil {
			return nil, fmt.Errorf("encode block [%d,%d): %w", sp.Start, sp.End, err)
		}
		payloadLen := 8 + blk.PayloadSize() // universe prefix + bit words
		e.dir = append(e.dir, dirEntry{
			base:       base,
			count:      uint32(sp.End - sp.Start),
			kind:       blk.Kind(),
			payloadOff: payloadOff,
			payloadLen: payloadLen,
			cumOffset:  uint64(sp.Start),
		})
		e.blocks = append(e.blocks, blk)
		payloadOff += payloadLen
	}

	o.logger.Debug("encoded sequence",
		"elements", e.n,
		"universe", e.u,
		"blocks", len(e.blocks),
		"payload_bytes", payloadOff,
	)
	return e, nil
}

// EncodeBitmap builds an Encoded structure from the set bits of a
// roaring bitmap. Roaring iterates in ascending order, so the input is
// sorted by construction.
func EncodeBitmap(rb *roaring.Bitmap, opts ...Option) (*Encoded, error) {
	if rb == nil || rb.IsEmpty() {
		return Encode(nil, opts...)
	}
	values := make([]uint64, 0, rb.GetCardinality())
	it := rb.Iterator()
	for it.HasNext() {
		values = append(values, uint64(it.Next()))
	}
	return Encode(values, opts...)
}

// Bitmap exports the stored values as a roaring bitmap. It fails when
// the universe exceeds the 32-bit roaring domain. Duplicates collapse
// to a single set bit.
func (e *Encoded) Bitmap() (*roaring.Bitmap, error) {
	if e.u > math.MaxUint32+1 {
		return nil, fmt.Errorf("universe %d exceeds 32-bit bitmap domain", e.u)
	}
	rb := roaring.New()
	for it := e.Iterator(); ; {
		v, ok := it.Next()
		if !ok {
			break
		}
		rb.Add(uint32(v))
	}
	return rb, nil
}

// Len returns the number of stored values.
func (e *Encoded) Len() uint64 {
	return e.n
}

// Universe returns one past the maximum stored value, or 0 when the
// structure is empty.
func (e *Encoded) Universe() uint64 {
	return e.u
}

// Get returns the value at the given global index. The second result
// is false when index is not in [0, Len).
func (e *Encoded) Get(index uint64) (uint64, bool) {
	if index >= e.n {
		return 0, false
	}
	// Last block whose first element is at or before index.
	bi := sort.Search(len(e.dir), func(i int) bool {
		return e.dir[i].cumOffset > index
	}) - 1
	d := &e.dir[bi]
	return d.base + e.blocks[bi].Get(index-d.cumOffset), true
}

// NextGEQ returns the smallest stored value >= x. The second result is
// false when x exceeds the maximum stored value.
func (e *Encoded) NextGEQ(x uint64) (uint64, bool) {
	_, v, ok := e.nextGEQ(x)
	return v, ok
}

// nextGEQ additionally reports the global index of the successor,
// which the iterator needs to resume traversal.
func (e *Encoded) nextGEQ(x uint64) (uint64, uint64, bool) {
	if e.n == 0 || x >= e.u {
		return 0, 0, false
	}
	// First block whose last value is >= x. Earlier blocks end below x;
	// searching by base instead would skip occurrences when a duplicate
	// run straddles a block boundary.
	bi := sort.Search(len(e.dir), func(i int) bool {
		return e.dir[i].base+e.blocks[i].Universe()-1 >= x
	})
	if bi == len(e.dir) {
		return 0, 0, false
	}
	d := &e.dir[bi]
	rel := uint64(0)
	if x > d.base {
		rel = x - d.base
	}
	i, v, ok := e.blocks[bi].NextGEQ(rel)
	if !ok {
		return 0, 0, false
	}
	return d.cumOffset + i, d.base + v, true
}

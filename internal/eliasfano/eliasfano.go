// Package eliasfano implements the Elias-Fano encoding of a single
// monotone sequence of non-negative integers.
//
// Each value v in a sequence of n values drawn from [0, u) is split
// into a low part (the low l = floor(log2(u/n)) bits, stored as a
// fixed-width field) and a high part (v >> l, stored in unary: the
// i-th value contributes one set bit at position (v >> l) + i of the
// high bit vector). Total space is n*l + n + (u >> l) + 1 bits, close
// to the information-theoretic minimum.
package eliasfano

import (
	"fmt"
	"math/bits"

	"github.com/lightjacket/pef/internal/bitvector"
)

// Sequence is an immutable Elias-Fano encoded block. It is safe for
// concurrent readers once built.
type Sequence struct {
	n   uint64
	u   uint64
	l   uint
	max uint64

	low  *bitvector.BitVector
	high *bitvector.BitVector
}

// LowBits returns the low-part width l for n values in universe u.
func LowBits(n, u uint64) uint {
	if n == 0 || u <= n {
		return 0
	}
	return uint(bits.Len64(u/n)) - 1
}

// BitCost returns the encoded size in bits of n values in universe u,
// excluding any container framing.
func BitCost(n, u uint64) uint64 {
	l := LowBits(n, u)
	return n*uint64(l) + n + (u >> l) + 1
}

// New encodes values into an Elias-Fano sequence. values must be
// non-decreasing, non-empty, and all strictly below universe.
func New(values []uint64, universe uint64) (*Sequence, error) {
	n := uint64(len(values))
	if n == 0 {
		return nil, fmt.Errorf("eliasfano: empty sequence")
	}
	if last := values[n-1]; last >= universe {
		return nil, fmt.Errorf("eliasfano: value %d outside universe %d", last, universe)
	}

	l := LowBits(n, universe)
	low := bitvector.New()
	high := bitvector.NewFixed(n + (universe >> l) + 1)

	for i, v := range values {
		if err := low.AppendBits(v&(1<<l-1), l); err != nil {
			return nil, err
		}
		high.SetBit((v >> l) + uint64(i))
	}
	low.Seal()
	high.Seal()

	return &Sequence{
		n:    n,
		u:    universe,
		l:    l,
		max:  values[n-1],
		low:  low,
		high: high,
	}, nil
}

// Len returns the number of encoded values.
func (s *Sequence) Len() uint64 {
	return s.n
}

// Universe returns the universe size u.
func (s *Sequence) Universe() uint64 {
	return s.u
}

// Max returns the largest encoded value.
func (s *Sequence) Max() uint64 {
	return s.max
}

// Get returns the i-th value. Requires i < Len.
func (s *Sequence) Get(i uint64) uint64 {
	pos, _ := s.high.Select1(i)
	return (pos-i)<<s.l | s.low.GetBits(i*uint64(s.l), s.l)
}

// NextGEQ returns the index and value of the first encoded value >= x.
// The last result is false when no such value exists in this block.
func (s *Sequence) NextGEQ(x uint64) (uint64, uint64, bool) {
	if x > s.max {
		return 0, 0, false
	}
	hx := x >> s.l

	// The first candidate is the first value whose high part is hx,
	// located just past the (hx-1)-th zero of the high bits. Values
	// before it have a strictly smaller high part and cannot be >= x.
	var i uint64
	if hx > 0 {
		p, ok := s.high.Select0(hx - 1)
		if !ok {
			return 0, 0, false
		}
		i = p + 1 - hx
	}

	// Scan the hx bucket; the first value whose high part exceeds hx
	// is >= x as well, so the loop ends within the bucket.
	for ; i < s.n; i++ {
		if v := s.Get(i); v >= x {
			return i, v, true
		}
	}
	return 0, 0, false
}

// PayloadSize returns the serialized payload size in bytes.
func (s *Sequence) PayloadSize() uint64 {
	return uint64(len(s.low.Words())+len(s.high.Words())) * 8
}

// AppendPayload appends the low then high bit words, little-endian, to
// buf. The layout is fully determined by (n, u), so no parameters are
// written.
func (s *Sequence) AppendPayload(buf []byte) []byte {
	buf = bitvector.AppendWords(buf, s.low.Words())
	return bitvector.AppendWords(buf, s.high.Words())
}

// FromPayload reconstructs a sequence of n values in universe u from a
// payload produced by AppendPayload.
func FromPayload(data []byte, n, universe uint64) (*Sequence, error) {
	if n == 0 {
		return nil, fmt.Errorf("eliasfano: empty sequence")
	}
	l := LowBits(n, universe)
	lowBits := n * uint64(l)
	highBits := n + (universe >> l) + 1
	lowBytes := (lowBits + 63) / 64 * 8
	highBytes := (highBits + 63) / 64 * 8
	if uint64(len(data)) != lowBytes+highBytes {
		return nil, fmt.Errorf("eliasfano: payload is %d bytes, want %d", len(data), lowBytes+highBytes)
	}

	low, err := bitvector.FromWords(bitvector.ReadWords(data[:lowBytes]), lowBits)
	if err != nil {
		return nil, err
	}
	high, err := bitvector.FromWords(bitvector.ReadWords(data[lowBytes:]), highBits)
	if err != nil {
		return nil, err
	}
	if high.Ones() != n {
		return nil, fmt.Errorf("eliasfano: high bits carry %d values, want %d", high.Ones(), n)
	}
	low.Seal()
	high.Seal()

	s := &Sequence{n: n, u: universe, l: l, low: low, high: high}
	// The high bits enforce non-decreasing high parts, but corrupted
	// low bits can still produce a decrease within a bucket.
	prev := s.Get(0)
	for i := uint64(1); i < n; i++ {
		v := s.Get(i)
		if v < prev {
			return nil, fmt.Errorf("eliasfano: values not sorted at index %d", i)
		}
		prev = v
	}
	s.max = prev
	if s.max >= universe {
		return nil, fmt.Errorf("eliasfano: decoded value %d outside universe %d", s.max, universe)
	}
	return s, nil
}

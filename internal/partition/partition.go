// Package partition decides block boundaries for a partitioned
// Elias-Fano structure. Two policies are provided: fixed-size chunking
// (one pass, no optimization) and a cost-based dynamic program that
// picks boundaries minimizing the total encoded size, counting both
// block payloads and the per-block directory overhead.
package partition

import (
	"errors"
	"fmt"
	"math"

	"github.com/lightjacket/pef/internal/block"
)

// ErrUniverseOverflow is returned by Validate when the maximum value is
// MaxUint64, leaving no room for the universe max+1.
var ErrUniverseOverflow = errors.New("universe overflow")

// DirEntryBytes is the serialized size of one directory entry:
// base (8) + count (4) + kind (1) + payload offset (8) + length (8),
// plus the 8-byte per-block universe prefix inside the payload.
const DirEntryBytes = 29 + 8

// DefaultFixedSize is the chunk length used by the fixed policy when
// none is configured.
const DefaultFixedSize = 1024

// DefaultMaxBlockSize bounds the lookback of the cost-based dynamic
// program and the largest block either policy will emit.
const DefaultMaxBlockSize = 4096

// dpStep is the boundary granularity of the dynamic program. Candidate
// boundaries are multiples of dpStep (plus the sequence end), which
// bounds construction work at a small constant per element.
const dpStep = 64

// Span is a half-open run [Start, End) of the input sequence assigned
// to one block.
type Span struct {
	Start int
	End   int
}

// UnsortedError reports the first position where the input sequence
// decreases.
type UnsortedError struct {
	Index int
}

func (e *UnsortedError) Error() string {
	return fmt.Sprintf("sequence decreases at index %d", e.Index)
}

// Validate checks that values is non-decreasing and returns the
// universe size (one past the maximum value, 0 for an empty sequence).
func Validate(values []uint64) (uint64, error) {
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			return 0, &UnsortedError{Index: i}
		}
	}
	if len(values) == 0 {
		return 0, nil
	}
	last := values[len(values)-1]
	if last == math.MaxUint64 {
		return 0, ErrUniverseOverflow
	}
	return last + 1, nil
}

// Fixed splits values into chunks of the given size.
func Fixed(values []uint64, size int) []Span {
	if size <= 0 {
		size = DefaultFixedSize
	}
	var spans []Span
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}

// spanCost returns the serialized cost in bytes of encoding
// values[start:end) as one block, including its directory entry.
// dups is the prefix count of adjacent-equal pairs, so distinctness of
// any span is answered in constant time.
func spanCost(values []uint64, dups []int, start, end int) uint64 {
	n := uint64(end - start)
	base := values[start]
	u := values[end-1] - base + 1
	distinct := dups[end] == dups[start+1]
	return block.Cost(n, u, distinct) + DirEntryBytes
}

// dupPrefix returns dups where dups[i] counts positions k < i with
// values[k] == values[k-1].
func dupPrefix(values []uint64) []int {
	dups := make([]int, len(values)+1)
	for i := 1; i < len(values); i++ {
		dups[i+1] = dups[i]
		if values[i] == values[i-1] {
			dups[i+1]++
		}
	}
	return dups
}

// Optimal partitions values by a bounded-lookback dynamic program over
// candidate boundaries. Boundaries are restricted to multiples of
// dpStep; within that grid the split minimizes total encoded bytes.
// Equal-cost alternatives resolve to fewer, larger blocks.
func Optimal(values []uint64, maxBlock int) []Span {
	if maxBlock <= 0 {
		maxBlock = DefaultMaxBlockSize
	}
	n := len(values)
	if n == 0 {
		return nil
	}
	if n <= dpStep {
		return []Span{{Start: 0, End: n}}
	}
	dups := dupPrefix(values)

	// Boundary positions: 0, dpStep, 2*dpStep, ..., n.
	numPos := (n+dpStep-1)/dpStep + 1
	pos := func(i int) int {
		p := i * dpStep
		if p > n {
			p = n
		}
		return p
	}

	const inf = ^uint64(0)
	cost := make([]uint64, numPos)
	prev := make([]int, numPos)
	for i := 1; i < numPos; i++ {
		cost[i] = inf
	}

	maxLookback := maxBlock / dpStep
	if maxLookback < 1 {
		maxLookback = 1
	}
	for i := 1; i < numPos; i++ {
		lo := i - maxLookback
		if lo < 0 {
			lo = 0
		}
		// Scan longer blocks first so ties keep the larger block.
		for j := lo; j < i; j++ {
			if cost[j] == inf {
				continue
			}
			c := cost[j] + spanCost(values, dups, pos(j), pos(i))
			if c < cost[i] {
				cost[i] = c
				prev[i] = j
			}
		}
	}

	var spans []Span
	for i := numPos - 1; i > 0; i = prev[i] {
		spans = append(spans, Span{Start: pos(prev[i]), End: pos(i)})
	}
	// Reverse into sequence order.
	for l, r := 0, len(spans)-1; l < r; l, r = l+1, r-1 {
		spans[l], spans[r] = spans[r], spans[l]
	}
	return spans
}

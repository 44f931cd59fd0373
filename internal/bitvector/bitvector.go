// Package bitvector provides append-only packed bit storage with
// constant-time multi-bit field access and rank/select primitives.
//
// A BitVector is built once (appends and positional sets), then sealed.
// Seal computes the sampled select index that accelerates Select1 and
// Select0; a sealed vector is read-only and safe for concurrent readers.
package bitvector

import (
	"fmt"
	"math/bits"
)

// selectSampleRate is the sampling interval of the select index: the
// position of every selectSampleRate-th set (or unset) bit is recorded
// at seal time. Queries start scanning from the nearest sample instead
// of from word zero.
const selectSampleRate = 256

// BitVector is a word-packed sequence of bits with a tracked logical
// length. Reads beyond the logical length are invalid.
type BitVector struct {
	words []uint64
	nbits uint64
	ones  uint64

	// Sampled positions of every selectSampleRate-th one/zero bit.
	// Populated by Seal; nil until then.
	oneSamples  []uint64
	zeroSamples []uint64
}

// New returns an empty bit vector.
func New() *BitVector {
	return &BitVector{}
}

// NewFixed returns a zeroed bit vector with logical length nbits.
func NewFixed(nbits uint64) *BitVector {
	return &BitVector{
		words: make([]uint64, wordsFor(nbits)),
		nbits: nbits,
	}
}

// FromWords reconstructs a bit vector from its backing words. The slice
// is retained, not copied. Bits at positions >= nbits must be zero for
// rank/select results to be meaningful.
func FromWords(words []uint64, nbits uint64) (*BitVector, error) {
	if uint64(len(words)) != wordsFor(nbits) {
		return nil, fmt.Errorf("bitvector: %d words cannot back %d bits", len(words), nbits)
	}
	bv := &BitVector{words: words, nbits: nbits}
	for _, w := range words {
		bv.ones += uint64(bits.OnesCount64(w))
	}
	return bv, nil
}

func wordsFor(nbits uint64) uint64 {
	return (nbits + 63) / 64
}

// Len returns the logical length in bits.
func (bv *BitVector) Len() uint64 {
	return bv.nbits
}

// Ones returns the number of set bits.
func (bv *BitVector) Ones() uint64 {
	return bv.ones
}

// Words exposes the backing words. The final word's bits beyond Len are
// zero. Callers must not mutate the slice of a sealed vector.
func (bv *BitVector) Words() []uint64 {
	return bv.words
}

func (bv *BitVector) grow(nbits uint64) {
	need := int(wordsFor(nbits))
	for len(bv.words) < need {
		bv.words = append(bv.words, 0)
	}
}

// AppendBits appends the low width bits of v. It fails if v does not
// fit in width bits.
func (bv *BitVector) AppendBits(v uint64, width uint) error {
	if width > 64 {
		return fmt.Errorf("bitvector: width %d exceeds 64", width)
	}
	if width < 64 && v>>width != 0 {
		return fmt.Errorf("bitvector: value %d does not fit in %d bits", v, width)
	}
	if width == 0 {
		return nil
	}
	bv.grow(bv.nbits + uint64(width))
	idx := bv.nbits >> 6
	off := bv.nbits & 63
	bv.words[idx] |= v << off
	if off+uint64(width) > 64 {
		bv.words[idx+1] = v >> (64 - off)
	}
	bv.nbits += uint64(width)
	bv.ones += uint64(bits.OnesCount64(v))
	return nil
}

// AppendBit appends a single bit.
func (bv *BitVector) AppendBit(set bool) {
	bv.grow(bv.nbits + 1)
	if set {
		bv.words[bv.nbits>>6] |= 1 << (bv.nbits & 63)
		bv.ones++
	}
	bv.nbits++
}

// AppendZeros appends n zero bits.
func (bv *BitVector) AppendZeros(n uint64) {
	bv.nbits += n
	bv.grow(bv.nbits)
}

// GetBits reads a width-bit field starting at bit position pos.
// Requires pos+width <= Len.
func (bv *BitVector) GetBits(pos uint64, width uint) uint64 {
	if width == 0 {
		return 0
	}
	idx := pos >> 6
	off := pos & 63
	v := bv.words[idx] >> off
	if off+uint64(width) > 64 {
		v |= bv.words[idx+1] << (64 - off)
	}
	if width == 64 {
		return v
	}
	return v & (1<<width - 1)
}

// SetBit sets the bit at pos. Requires pos < Len.
func (bv *BitVector) SetBit(pos uint64) {
	idx := pos >> 6
	mask := uint64(1) << (pos & 63)
	if bv.words[idx]&mask == 0 {
		bv.words[idx] |= mask
		bv.ones++
	}
}

// GetBit reports whether the bit at pos is set. Requires pos < Len.
func (bv *BitVector) GetBit(pos uint64) bool {
	return bv.words[pos>>6]&(1<<(pos&63)) != 0
}

// Rank1 returns the number of set bits in [0, pos). pos is clamped to Len.
func (bv *BitVector) Rank1(pos uint64) uint64 {
	if pos > bv.nbits {
		pos = bv.nbits
	}
	full := pos >> 6
	var count uint64
	for i := uint64(0); i < full; i++ {
		count += uint64(bits.OnesCount64(bv.words[i]))
	}
	if rem := pos & 63; rem != 0 {
		count += uint64(bits.OnesCount64(bv.words[full] & (1<<rem - 1)))
	}
	return count
}

// Seal builds the sampled select index. Must be called after the last
// mutation; afterwards the vector is read-only.
func (bv *BitVector) Seal() {
	bv.oneSamples = buildSamples(bv.words, bv.nbits, false)
	bv.zeroSamples = buildSamples(bv.words, bv.nbits, true)
}

func buildSamples(words []uint64, nbits uint64, invert bool) []uint64 {
	var samples []uint64
	var seen uint64
	for wi, w := range words {
		if invert {
			w = ^w
		}
		// Mask tail bits of the final word.
		if base := uint64(wi) * 64; base+64 > nbits {
			if rem := nbits - base; rem < 64 {
				w &= 1<<rem - 1
			}
		}
		c := uint64(bits.OnesCount64(w))
		for seen+c > uint64(len(samples))*selectSampleRate {
			k := uint64(len(samples))*selectSampleRate - seen
			samples = append(samples, uint64(wi)*64+selectInWord(w, k))
		}
		seen += c
	}
	return samples
}

// selectInWord returns the position (0-63) of the k-th (0-indexed) set
// bit of w. Requires popcount(w) > k.
func selectInWord(w uint64, k uint64) uint64 {
	for ; k > 0; k-- {
		w &= w - 1
	}
	return uint64(bits.TrailingZeros64(w))
}

// Select1 returns the position of the k-th (0-indexed) set bit.
// The second result is false if fewer than k+1 set bits exist.
func (bv *BitVector) Select1(k uint64) (uint64, bool) {
	if k >= bv.ones {
		return 0, false
	}
	var wi, seen uint64
	if bv.oneSamples != nil {
		s := k / selectSampleRate
		pos := bv.oneSamples[s]
		wi = pos >> 6
		seen = s * selectSampleRate
		// Subtract ones in the sample word before the sampled bit so the
		// word loop can start at its beginning.
		seen -= uint64(bits.OnesCount64(bv.words[wi] & (1<<(pos&63) - 1)))
	}
	for ; wi < uint64(len(bv.words)); wi++ {
		c := uint64(bits.OnesCount64(bv.words[wi]))
		if seen+c > k {
			return wi*64 + selectInWord(bv.words[wi], k-seen), true
		}
		seen += c
	}
	return 0, false
}

// Select0 returns the position of the k-th (0-indexed) unset bit.
func (bv *BitVector) Select0(k uint64) (uint64, bool) {
	if k >= bv.nbits-bv.ones {
		return 0, false
	}
	var wi, seen uint64
	if bv.zeroSamples != nil {
		s := k / selectSampleRate
		pos := bv.zeroSamples[s]
		wi = pos >> 6
		seen = s * selectSampleRate
		seen -= uint64(bits.OnesCount64(^bv.words[wi] & (1<<(pos&63) - 1)))
	}
	for ; wi < uint64(len(bv.words)); wi++ {
		w := ^bv.words[wi]
		if base := wi * 64; base+64 > bv.nbits {
			w &= 1<<(bv.nbits-base) - 1
		}
		c := uint64(bits.OnesCount64(w))
		if seen+c > k {
			return wi*64 + selectInWord(w, k-seen), true
		}
		seen += c
	}
	return 0, false
}

// NextSet returns the position of the first set bit at or after pos.
func (bv *BitVector) NextSet(pos uint64) (uint64, bool) {
	if pos >= bv.nbits {
		return 0, false
	}
	wi := pos >> 6
	w := bv.words[wi] &^ (1<<(pos&63) - 1)
	for {
		if w != 0 {
			p := wi*64 + uint64(bits.TrailingZeros64(w))
			if p >= bv.nbits {
				return 0, false
			}
			return p, true
		}
		wi++
		if wi >= uint64(len(bv.words)) {
			return 0, false
		}
		w = bv.words[wi]
	}
}

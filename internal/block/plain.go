package block

import (
	"fmt"
	"sort"

	"github.com/lightjacket/pef/internal/bitvector"
)

// plainBlock stores each value as a fixed-width field of
// ceil(log2(u)) bits. NextGEQ is a binary search over Get.
type plainBlock struct {
	bv    *bitvector.BitVector
	n     uint64
	u     uint64
	width uint
}

func newPlainBlock(values []uint64, u uint64) (*plainBlock, error) {
	width := plainWidth(u)
	bv := bitvector.New()
	for _, v := range values {
		if err := bv.AppendBits(v, width); err != nil {
			return nil, err
		}
	}
	bv.Seal()
	return &plainBlock{bv: bv, n: uint64(len(values)), u: u, width: width}, nil
}

func decodePlainBlock(payload []byte, n, u uint64) (*plainBlock, error) {
	want := plainPayloadBytes(n, u)
	if uint64(len(payload)) != want {
		return nil, fmt.Errorf("block: plain payload is %d bytes, want %d", len(payload), want)
	}
	width := plainWidth(u)
	bv, err := bitvector.FromWords(bitvector.ReadWords(payload), n*uint64(width))
	if err != nil {
		return nil, err
	}
	bv.Seal()
	b := &plainBlock{bv: bv, n: n, u: u, width: width}
	for i := uint64(1); i < n; i++ {
		if b.Get(i) < b.Get(i-1) {
			return nil, fmt.Errorf("block: plain values not sorted at index %d", i)
		}
	}
	if b.Get(n-1) >= u {
		return nil, fmt.Errorf("block: plain value %d outside universe %d", b.Get(n-1), u)
	}
	return b, nil
}

func (b *plainBlock) Kind() Kind       { return KindPlain }
func (b *plainBlock) Count() uint64    { return b.n }
func (b *plainBlock) Universe() uint64 { return b.u }

func (b *plainBlock) Get(i uint64) uint64 {
	return b.bv.GetBits(i*uint64(b.width), b.width)
}

func (b *plainBlock) NextGEQ(x uint64) (uint64, uint64, bool) {
	i := uint64(sort.Search(int(b.n), func(i int) bool {
		return b.Get(uint64(i)) >= x
	}))
	if i == b.n {
		return 0, 0, false
	}
	return i, b.Get(i), true
}

func (b *plainBlock) PayloadSize() uint64 {
	return uint64(len(b.bv.Words())) * 8
}

func (b *plainBlock) AppendPayload(buf []byte) []byte {
	return bitvector.AppendWords(buf, b.bv.Words())
}

package block

import (
	"fmt"

	"github.com/lightjacket/pef/internal/bitvector"
)

// bitmapBlock stores one bit per universe slot. Get is select1,
// NextGEQ is a forward word scan from the query position. Only valid
// for runs of distinct values.
type bitmapBlock struct {
	bv *bitvector.BitVector
	n  uint64
}

func newBitmapBlock(values []uint64, u uint64) (*bitmapBlock, error) {
	bv := bitvector.NewFixed(u)
	for i, v := range values {
		if i > 0 && v == values[i-1] {
			return nil, fmt.Errorf("block: duplicate value %d in bitmap block", v)
		}
		bv.SetBit(v)
	}
	bv.Seal()
	return &bitmapBlock{bv: bv, n: uint64(len(values))}, nil
}

func decodeBitmapBlock(payload []byte, n, u uint64) (*bitmapBlock, error) {
	want := bitmapPayloadBytes(u)
	if uint64(len(payload)) != want {
		return nil, fmt.Errorf("block: bitmap payload is %d bytes, want %d", len(payload), want)
	}
	bv, err := bitvector.FromWords(bitvector.ReadWords(payload), u)
	if err != nil {
		return nil, err
	}
	if bv.Ones() != n {
		return nil, fmt.Errorf("block: bitmap carries %d values, want %d", bv.Ones(), n)
	}
	bv.Seal()
	return &bitmapBlock{bv: bv, n: n}, nil
}

func (b *bitmapBlock) Kind() Kind       { return KindBitmap }
func (b *bitmapBlock) Count() uint64    { return b.n }
func (b *bitmapBlock) Universe() uint64 { return b.bv.Len() }

func (b *bitmapBlock) Get(i uint64) uint64 {
	pos, _ := b.bv.Select1(i)
	return pos
}

func (b *bitmapBlock) NextGEQ(x uint64) (uint64, uint64, bool) {
	pos, ok := b.bv.NextSet(x)
	if !ok {
		return 0, 0, false
	}
	return b.bv.Rank1(pos), pos, true
}

func (b *bitmapBlock) PayloadSize() uint64 {
	return uint64(len(b.bv.Words())) * 8
}

func (b *bitmapBlock) AppendPayload(buf []byte) []byte {
	return bitvector.AppendWords(buf, b.bv.Words())
}

package bitvector

import (
	"testing"
)

func TestAppendGetBits(t *testing.T) {
	bv := New()
	if err := bv.AppendBits(0b101, 3); err != nil {
		t.Fatalf("AppendBits failed: %v", err)
	}
	if err := bv.AppendBits(0xFFFF, 16); err != nil {
		t.Fatalf("AppendBits failed: %v", err)
	}
	if bv.Len() != 19 {
		t.Errorf("expected len 19, got %d", bv.Len())
	}
	if got := bv.GetBits(0, 3); got != 0b101 {
		t.Errorf("expected 0b101, got %b", got)
	}
	if got := bv.GetBits(3, 16); got != 0xFFFF {
		t.Errorf("expected 0xFFFF, got %x", got)
	}
}

func TestAppendBits_CrossesWordBoundary(t *testing.T) {
	bv := New()
	if err := bv.AppendBits(0, 60); err != nil {
		t.Fatalf("AppendBits failed: %v", err)
	}
	// 10 bits spanning words 0 and 1.
	if err := bv.AppendBits(0x2AB, 10); err != nil {
		t.Fatalf("AppendBits failed: %v", err)
	}
	if got := bv.GetBits(60, 10); got != 0x2AB {
		t.Errorf("expected 0x2AB, got %x", got)
	}
}

func TestAppendBits_FullWidth(t *testing.T) {
	bv := New()
	const v = 0xDEADBEEFCAFEBABE
	if err := bv.AppendBits(7, 3); err != nil {
		t.Fatal(err)
	}
	if err := bv.AppendBits(v, 64); err != nil {
		t.Fatal(err)
	}
	if got := bv.GetBits(3, 64); got != v {
		t.Errorf("expected %x, got %x", uint64(v), got)
	}
}

func TestAppendBits_ValueTooWide(t *testing.T) {
	bv := New()
	if err := bv.AppendBits(4, 2); err == nil {
		t.Error("expected error for value 4 in 2 bits")
	}
	if err := bv.AppendBits(3, 2); err != nil {
		t.Errorf("value 3 fits in 2 bits: %v", err)
	}
}

func TestSetGetBit(t *testing.T) {
	bv := NewFixed(100)
	bv.SetBit(0)
	bv.SetBit(63)
	bv.SetBit(64)
	bv.SetBit(99)
	for _, pos := range []uint64{0, 63, 64, 99} {
		if !bv.GetBit(pos) {
			t.Errorf("expected bit %d set", pos)
		}
	}
	if bv.GetBit(1) {
		t.Error("expected bit 1 unset")
	}
	if bv.Ones() != 4 {
		t.Errorf("expected 4 ones, got %d", bv.Ones())
	}
	bv.SetBit(0) // idempotent
	if bv.Ones() != 4 {
		t.Errorf("double set changed ones count to %d", bv.Ones())
	}
}

func TestRank1(t *testing.T) {
	bv := NewFixed(200)
	for _, pos := range []uint64{3, 64, 65, 130, 199} {
		bv.SetBit(pos)
	}
	cases := []struct {
		pos  uint64
		want uint64
	}{
		{0, 0}, {3, 0}, {4, 1}, {64, 1}, {66, 3}, {200, 5}, {500, 5},
	}
	for _, c := range cases {
		if got := bv.Rank1(c.pos); got != c.want {
			t.Errorf("Rank1(%d) = %d, want %d", c.pos, got, c.want)
		}
	}
}

func TestSelect1(t *testing.T) {
	positions := []uint64{3, 64, 65, 130, 199}
	bv := NewFixed(200)
	for _, pos := range positions {
		bv.SetBit(pos)
	}
	check := func() {
		for k, want := range positions {
			got, ok := bv.Select1(uint64(k))
			if !ok || got != want {
				t.Errorf("Select1(%d) = (%d, %v), want (%d, true)", k, got, ok, want)
			}
		}
		if _, ok := bv.Select1(5); ok {
			t.Error("Select1 past the last set bit should fail")
		}
	}
	check() // unsealed, linear scan
	bv.Seal()
	check() // sealed, sampled index
}

func TestSelect1_ManyBits(t *testing.T) {
	// Enough set bits to exercise several select samples.
	bv := NewFixed(10000)
	var positions []uint64
	for pos := uint64(1); pos < 10000; pos += 7 {
		bv.SetBit(pos)
		positions = append(positions, pos)
	}
	bv.Seal()
	for k, want := range positions {
		got, ok := bv.Select1(uint64(k))
		if !ok || got != want {
			t.Fatalf("Select1(%d) = (%d, %v), want (%d, true)", k, got, ok, want)
		}
	}
}

func TestSelect0(t *testing.T) {
	// Everything set except a few holes.
	bv := NewFixed(300)
	holes := map[uint64]bool{5: true, 64: true, 200: true}
	for pos := uint64(0); pos < 300; pos++ {
		if !holes[pos] {
			bv.SetBit(pos)
		}
	}
	bv.Seal()
	wants := []uint64{5, 64, 200}
	for k, want := range wants {
		got, ok := bv.Select0(uint64(k))
		if !ok || got != want {
			t.Errorf("Select0(%d) = (%d, %v), want (%d, true)", k, got, ok, want)
		}
	}
	if _, ok := bv.Select0(3); ok {
		t.Error("Select0 past the last zero should fail")
	}
}

func TestNextSet(t *testing.T) {
	bv := NewFixed(200)
	bv.SetBit(10)
	bv.SetBit(150)
	cases := []struct {
		pos  uint64
		want uint64
		ok   bool
	}{
		{0, 10, true}, {10, 10, true}, {11, 150, true}, {150, 150, true}, {151, 0, false}, {400, 0, false},
	}
	for _, c := range cases {
		got, ok := bv.NextSet(c.pos)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("NextSet(%d) = (%d, %v), want (%d, %v)", c.pos, got, ok, c.want, c.ok)
		}
	}
}

func TestWordsRoundTrip(t *testing.T) {
	bv := New()
	for i := uint64(0); i < 50; i++ {
		if err := bv.AppendBits(i%16, 4); err != nil {
			t.Fatal(err)
		}
	}
	data := AppendWords(nil, bv.Words())
	back, err := FromWords(ReadWords(data), bv.Len())
	if err != nil {
		t.Fatalf("FromWords failed: %v", err)
	}
	if back.Ones() != bv.Ones() {
		t.Errorf("ones mismatch: %d vs %d", back.Ones(), bv.Ones())
	}
	for i := uint64(0); i < 50; i++ {
		if got := back.GetBits(i*4, 4); got != i%16 {
			t.Errorf("field %d = %d, want %d", i, got, i%16)
		}
	}
}

func TestFromWords_LengthMismatch(t *testing.T) {
	if _, err := FromWords(make([]uint64, 1), 65); err == nil {
		t.Error("expected error for too few words")
	}
	if _, err := FromWords(make([]uint64, 3), 65); err == nil {
		t.Error("expected error for too many words")
	}
}

package pef

// Iterator traverses the stored values in order. The zero position is
// before the first value; Next advances and Seek jumps forward to the
// first value >= x. Iterators are cheap; create one per goroutine
// rather than sharing.
type Iterator struct {
	e   *Encoded
	pos uint64
}

// Iterator returns a new iterator positioned before the first value.
func (e *Encoded) Iterator() *Iterator {
	return &Iterator{e: e}
}

// Next returns the next value in sequence order. The second result is
// false once the sequence is exhausted.
func (it *Iterator) Next() (uint64, bool) {
	v, ok := it.e.Get(it.pos)
	if ok {
		it.pos++
	}
	return v, ok
}

// Seek advances to the first value >= x at or after the current
// position and returns it, consuming it like Next. Seeking backwards
// degenerates to the current position.
func (it *Iterator) Seek(x uint64) (uint64, bool) {
	i, v, ok := it.e.nextGEQ(x)
	if !ok {
		it.pos = it.e.n
		return 0, false
	}
	if i < it.pos {
		// Already past the successor; resume sequentially.
		return it.Next()
	}
	it.pos = i + 1
	return v, true
}

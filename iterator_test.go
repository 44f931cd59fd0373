package pef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterator_Next(t *testing.T) {
	values := clustered()
	e, err := Encode(values)
	require.NoError(t, err)

	it := e.Iterator()
	for i, want := range values {
		v, ok := it.Next()
		require.True(t, ok, "Next at %d", i)
		require.Equal(t, want, v, "Next at %d", i)
	}
	_, ok := it.Next()
	assert.False(t, ok)
	_, ok = it.Next()
	assert.False(t, ok, "exhausted iterator stays exhausted")
}

func TestIterator_Empty(t *testing.T) {
	e, err := Encode(nil)
	require.NoError(t, err)
	_, ok := e.Iterator().Next()
	assert.False(t, ok)
	_, ok = e.Iterator().Seek(0)
	assert.False(t, ok)
}

func TestIterator_Seek(t *testing.T) {
	e, err := Encode(clustered())
	require.NoError(t, err)

	it := e.Iterator()
	v, ok := it.Seek(500)
	require.True(t, ok)
	assert.Equal(t, uint64(1000), v)

	// Seek consumes the successor; Next continues after it.
	v, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(1001), v)

	v, ok = it.Seek(1401)
	require.True(t, ok)
	assert.Equal(t, uint64(20000), v)

	_, ok = it.Next()
	assert.False(t, ok)

	_, ok = it.Seek(30000)
	assert.False(t, ok)
}

func TestIterator_SeekBackwardsDegenerates(t *testing.T) {
	e, err := Encode([]uint64{10, 20, 30})
	require.NoError(t, err)

	it := e.Iterator()
	v, ok := it.Seek(25)
	require.True(t, ok)
	require.Equal(t, uint64(30), v)

	// The successor of 10 precedes the cursor; the cursor does not move
	// back, traversal just continues.
	_, ok = it.Seek(10)
	assert.False(t, ok)
}

func TestIterator_SeekDuplicateRunAcrossBlocks(t *testing.T) {
	// Both occurrences land in their own block; Seek must resolve to
	// the first one so the traversal still visits the second.
	e, err := Encode([]uint64{7, 7}, WithFixedPartitions(1))
	require.NoError(t, err)

	it := e.Iterator()
	v, ok := it.Seek(7)
	require.True(t, ok)
	assert.Equal(t, uint64(7), v)

	v, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(7), v)

	_, ok = it.Next()
	assert.False(t, ok)
}

func TestIterator_SeekIntoLongDuplicateRun(t *testing.T) {
	// A duplicate run spanning several blocks: seeking to the value
	// must not drop any of its occurrences.
	values := make([]uint64, 200)
	for i := 100; i < 200; i++ {
		values[i] = 7
	}
	e, err := Encode(values, WithFixedPartitions(64))
	require.NoError(t, err)

	it := e.Iterator()
	v, ok := it.Seek(7)
	require.True(t, ok)
	require.Equal(t, uint64(7), v)
	count := 1
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		require.Equal(t, uint64(7), v)
		count++
	}
	assert.Equal(t, 100, count)
}

func TestIterator_SeekToCurrent(t *testing.T) {
	e, err := Encode([]uint64{10, 20, 30})
	require.NoError(t, err)

	it := e.Iterator()
	v, ok := it.Seek(10)
	require.True(t, ok)
	assert.Equal(t, uint64(10), v)
	v, ok = it.Seek(20)
	require.True(t, ok)
	assert.Equal(t, uint64(20), v)
	v, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(30), v)
}

// Package mmap provides read-only memory mapping of files, with a
// plain-read fallback on platforms without mmap support.
package mmap

import (
	"sync/atomic"
)

// Mapping is a read-only view of a file's contents. It owns the
// underlying byte slice and is responsible for releasing it.
type Mapping struct {
	data   []byte
	closed atomic.Bool
	// unmap releases the mapping; nil when the data is heap-backed.
	unmap func([]byte) error
}

// Bytes returns the mapped contents. The slice is valid only until
// Close is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the length of the mapping in bytes.
func (m *Mapping) Size() int {
	return len(m.data)
}

// Close releases the mapping. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

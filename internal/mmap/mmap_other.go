//go:build !unix

package mmap

import "os"

// Open reads the file at path into memory. On platforms without mmap
// the mapping is a heap copy with the same interface.
func Open(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data}, nil
}

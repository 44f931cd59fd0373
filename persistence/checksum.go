package persistence

import (
	"fmt"
	"hash/crc32"
)

// crc32cTable is pre-computed for the CRC32-Castagnoli polynomial,
// which is hardware-accelerated on modern x86 and ARM.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// checksum computes the CRC32-Castagnoli checksum of data. It covers
// the uncompressed inner stream, so corruption is detected regardless
// of the compression algorithm in use.
func checksum(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// ChecksumMismatchError is returned when a container's stored checksum
// does not match the recomputed one.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("persistence: checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// Package pef implements partitioned Elias-Fano encoding for monotone
// sequences of non-negative integers.
//
// A sorted sequence of n values below a universe u is stored in close
// to the information-theoretic minimum of n*log2(u/n) + 2n bits while
// still answering positional and successor queries without
// decompression. Sequences are split into blocks chosen to minimize
// total encoded size; each block independently uses Elias-Fano, a
// bitmap (for nearly dense runs), or plain fixed-width storage (for
// short runs), whichever is smallest.
//
// # Quick start
//
//	e, _ := pef.Encode([]uint64{1, 2, 5})
//	v, ok := e.Get(1)       // 2, true
//	v, ok = e.NextGEQ(4)    // 5, true
//	_, ok = e.NextGEQ(6)    // false
//
//	data := e.Bytes()
//	e2, _ := pef.Decode(data)
//
// Structures are immutable after construction and safe for unlimited
// concurrent readers. Construction rejects unsorted input with an
// error matching ErrUnsorted; Decode rejects malformed buffers with an
// error matching ErrCorrupt. Queries never fail: absence is reported
// through the boolean result.
//
// The persistence package wraps the serialized form in a checksummed,
// optionally compressed file container, and the blobstore package
// stores encoded sets by name in memory, on the local filesystem, or
// in S3-compatible object storage.
package pef

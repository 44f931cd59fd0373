package pef

import (
	"encoding/binary"

	"github.com/lightjacket/pef/internal/block"
)

// Serialized layout (stable, versioned):
//
//	[magic "PEF1": 4 bytes]
//	[version: 1 byte]
//	[n: 8 bytes LE]
//	[u: 8 bytes LE]
//	[block_count: 4 bytes LE]
//	[directory: block_count entries of
//	    base: 8 | count: 4 | kind: 1 | payload_offset: 8 | payload_length: 8]
//	[payload: concatenated per-block data, byte-aligned;
//	    each block payload starts with its 8-byte universe]
//
// Payload offsets are relative to the start of the payload section.

const (
	formatVersion = 1

	headerSize   = 4 + 1 + 8 + 8 + 4
	dirEntrySize = 8 + 4 + 1 + 8 + 8
)

var magic = [4]byte{'P', 'E', 'F', '1'}

// Bytes serializes the structure. The output is deterministic: equal
// structures produce byte-identical buffers.
func (e *Encoded) Bytes() []byte {
	var payloadSize uint64
	for i := range e.dir {
		payloadSize += e.dir[i].payloadLen
	}
	buf := make([]byte, 0, uint64(headerSize)+uint64(len(e.dir))*dirEntrySize+payloadSize)

	buf = append(buf, magic[:]...)
	buf = append(buf, formatVersion)
	buf = binary.LittleEndian.AppendUint64(buf, e.n)
	buf = binary.LittleEndian.AppendUint64(buf, e.u)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(e.dir)))

	for i := range e.dir {
		d := &e.dir[i]
		buf = binary.LittleEndian.AppendUint64(buf, d.base)
		buf = binary.LittleEndian.AppendUint32(buf, d.count)
		buf = append(buf, byte(d.kind))
		buf = binary.LittleEndian.AppendUint64(buf, d.payloadOff)
		buf = binary.LittleEndian.AppendUint64(buf, d.payloadLen)
	}
	for _, blk := range e.blocks {
		buf = binary.LittleEndian.AppendUint64(buf, blk.Universe())
		buf = blk.AppendPayload(buf)
	}
	return buf
}

// Decode reconstructs an Encoded structure from a buffer produced by
// Bytes. The buffer is fully copied; it may be reused or discarded
// after the call. Malformed input yields an error matching ErrCorrupt.
func Decode(data []byte) (*Encoded, error) {
	if len(data) < headerSize {
		return nil, corruptf(len(data), "buffer of %d bytes is shorter than the %d-byte header", len(data), headerSize)
	}
	if [4]byte(data[:4]) != magic {
		return nil, corruptf(0, "bad magic %q", data[:4])
	}
	if v := data[4]; v != formatVersion {
		return nil, corruptf(4, "unsupported version %d", v)
	}
	n := binary.LittleEndian.Uint64(data[5:])
	u := binary.LittleEndian.Uint64(data[13:])
	blockCount := binary.LittleEndian.Uint32(data[21:])

	e := &Encoded{n: n, u: u}
	if blockCount == 0 {
		if n != 0 || u != 0 {
			return nil, corruptf(5, "no blocks but n=%d u=%d", n, u)
		}
		if len(data) != headerSize {
			return nil, corruptf(headerSize, "%d trailing bytes after empty structure", len(data)-headerSize)
		}
		return e, nil
	}
	if n == 0 {
		return nil, corruptf(5, "%d blocks but n=0", blockCount)
	}

	dirSize := uint64(blockCount) * dirEntrySize
	payloadStart := uint64(headerSize) + dirSize
	if uint64(len(data)) < payloadStart {
		return nil, corruptf(len(data), "buffer truncated inside directory")
	}
	payload := data[payloadStart:]

	e.dir = make([]dirEntry, blockCount)
	var cumOffset, wantOff uint64
	for i := range e.dir {
		off := headerSize + i*dirEntrySize
		d := &e.dir[i]
		d.base = binary.LittleEndian.Uint64(data[off:])
		d.count = binary.LittleEndian.Uint32(data[off+8:])
		d.kind = block.Kind(data[off+12])
		d.payloadOff = binary.LittleEndian.Uint64(data[off+13:])
		d.payloadLen = binary.LittleEndian.Uint64(data[off+21:])
		d.cumOffset = cumOffset

		if d.count == 0 {
			return nil, corruptf(off+8, "block %d is empty", i)
		}
		if d.kind > block.KindPlain {
			return nil, corruptf(off+12, "unknown representation kind %d", d.kind)
		}
		if i > 0 && d.base < e.dir[i-1].base {
			return nil, corruptf(off, "block %d base %d below predecessor", i, d.base)
		}
		if d.payloadOff != wantOff {
			return nil, corruptf(off+13, "block %d payload offset %d, want %d", i, d.payloadOff, wantOff)
		}
		// Compare by subtraction: payloadOff+payloadLen can wrap uint64.
		if d.payloadLen < 8 || d.payloadLen > uint64(len(payload))-wantOff {
			return nil, corruptf(off+21, "block %d payload [%d,+%d) outside payload section of %d bytes",
				i, d.payloadOff, d.payloadLen, len(payload))
		}
		cumOffset += uint64(d.count)
		wantOff += d.payloadLen
	}
	if cumOffset != n {
		return nil, corruptf(headerSize, "directory counts sum to %d, want %d", cumOffset, n)
	}
	if wantOff != uint64(len(payload)) {
		return nil, corruptf(len(data), "%d trailing payload bytes", uint64(len(payload))-wantOff)
	}

	e.blocks = make([]block.Block, blockCount)
	for i := range e.dir {
		d := &e.dir[i]
		p := payload[d.payloadOff : d.payloadOff+d.payloadLen]
		blockU := binary.LittleEndian.Uint64(p)
		blk, err := block.Decode(d.kind, uint64(d.count), blockU, p[8:])
		if err != nil {
			return nil, corruptErr(int(payloadStart+d.payloadOff), err)
		}
		// The block's value range must stay below the next base (equal
		// is allowed: duplicates may straddle a boundary).
		last := d.base + blockU - 1
		if blockU == 0 || last < d.base {
			return nil, corruptf(int(payloadStart+d.payloadOff), "block %d universe %d overflows", i, blockU)
		}
		if i+1 < len(e.dir) && last > e.dir[i+1].base {
			return nil, corruptf(int(payloadStart+d.payloadOff), "block %d range reaches %d past next base %d",
				i, last, e.dir[i+1].base)
		}
		e.blocks[i] = blk
	}
	if lastDir := &e.dir[len(e.dir)-1]; lastDir.base+e.blocks[len(e.blocks)-1].Universe() != u {
		return nil, corruptf(13, "universe %d disagrees with last block", u)
	}
	return e, nil
}

package persistence

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/lightjacket/pef"
	"github.com/lightjacket/pef/internal/mmap"
)

// maxCompressionRatio bounds the claimed rawSize/storedSize ratio a
// container is allowed to declare.
const maxCompressionRatio = 1024

type options struct {
	compression Compression
}

// Option configures container writes.
type Option func(*options)

// WithCompression selects the compression applied to the stored
// stream. The default is CompressionNone.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// Marshal produces the container bytes for an encoded set.
func Marshal(e *pef.Encoded, opts ...Option) ([]byte, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	raw := e.Bytes()
	stored, err := compress(raw, o.compression)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, headerSize, headerSize+len(stored))
	binary.LittleEndian.PutUint32(buf[0:], MagicNumber)
	buf[4] = Version
	buf[5] = byte(o.compression)
	binary.LittleEndian.PutUint64(buf[8:], uint64(len(raw)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(len(stored)))
	binary.LittleEndian.PutUint32(buf[24:], checksum(raw))
	return append(buf, stored...), nil
}

// Unmarshal reconstructs an encoded set from container bytes.
func Unmarshal(data []byte) (*pef.Encoded, error) {
	if len(data) < headerSize {
		return nil, ErrTruncated
	}
	if m := binary.LittleEndian.Uint32(data[0:]); m != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, m)
	}
	if v := data[4]; v != Version {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVersion, v)
	}
	comp := Compression(data[5])
	rawSize := binary.LittleEndian.Uint64(data[8:])
	storedSize := binary.LittleEndian.Uint64(data[16:])
	sum := binary.LittleEndian.Uint32(data[24:])

	if uint64(len(data)-headerSize) != storedSize {
		return nil, ErrTruncated
	}
	// rawSize drives allocations; cap it before trusting it. No codec
	// here comes close to this ratio on an encoded set.
	if rawSize/maxCompressionRatio > storedSize {
		return nil, fmt.Errorf("%w: %d raw bytes from %d stored", ErrInvalidSize, rawSize, storedSize)
	}
	raw, err := decompress(data[headerSize:], comp, rawSize)
	if err != nil {
		return nil, err
	}
	if uint64(len(raw)) != rawSize {
		return nil, fmt.Errorf("%w: decompressed to %d bytes, header says %d", ErrInvalidSize, len(raw), rawSize)
	}
	if actual := checksum(raw); actual != sum {
		return nil, &ChecksumMismatchError{Expected: sum, Actual: actual}
	}
	return pef.Decode(raw)
}

// Write writes the container to w.
func Write(w io.Writer, e *pef.Encoded, opts ...Option) error {
	data, err := Marshal(e, opts...)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Read reconstructs an encoded set from r, consuming it fully.
func Read(r io.Reader) (*pef.Encoded, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Save writes the container to filename atomically: the data lands in
// a temp file in the same directory and is renamed into place, so
// readers never observe a partial file.
func Save(filename string, e *pef.Encoded, opts ...Option) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := Write(buf, e, opts...); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	tmpName = ""
	return nil
}

// Load reads a container from filename. The file is memory-mapped for
// the duration of the call; the returned structure owns its data and
// does not alias the file.
func Load(filename string) (*pef.Encoded, error) {
	m, err := mmap.Open(filename)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	return Unmarshal(m.Bytes())
}

func compress(raw []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return raw, nil
	case CompressionSnappy:
		return snappy.Encode(nil, raw), nil
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		var compressor lz4.Compressor
		n, err := compressor.CompressBlock(raw, dst)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// Incompressible; lz4 requires the caller to fall back.
			dst = append(dst[:0], raw...)
			return dst, nil
		}
		return dst[:n], nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(raw, nil), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, c)
	}
}

func decompress(stored []byte, c Compression, rawSize uint64) ([]byte, error) {
	switch c {
	case CompressionNone:
		out := make([]byte, len(stored))
		copy(out, stored)
		return out, nil
	case CompressionSnappy:
		return snappy.Decode(make([]byte, 0, rawSize), stored)
	case CompressionLZ4:
		if uint64(len(stored)) == rawSize {
			// Stored uncompressed after an incompressible block.
			out := make([]byte, len(stored))
			copy(out, stored)
			return out, nil
		}
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(stored, out)
		if err != nil {
			return nil, err
		}
		return out[:n], nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(stored, make([]byte, 0, rawSize))
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, c)
	}
}

package persistence

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightjacket/pef"
)

func testSet(t *testing.T) *pef.Encoded {
	t.Helper()
	values := make([]uint64, 0, 2000)
	v := uint64(0)
	for i := 0; i < 2000; i++ {
		v += uint64(i%9) + 1
		values = append(values, v)
	}
	e, err := pef.Encode(values)
	require.NoError(t, err)
	return e
}

func requireEqualSets(t *testing.T, want, got *pef.Encoded) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	require.Equal(t, want.Universe(), got.Universe())
	require.Equal(t, want.Bytes(), got.Bytes())
}

func TestMarshalUnmarshal(t *testing.T) {
	e := testSet(t)
	for _, comp := range []Compression{CompressionNone, CompressionSnappy, CompressionLZ4, CompressionZSTD} {
		t.Run(comp.String(), func(t *testing.T) {
			data, err := Marshal(e, WithCompression(comp))
			require.NoError(t, err)

			back, err := Unmarshal(data)
			require.NoError(t, err)
			requireEqualSets(t, e, back)
		})
	}
}

func TestMarshal_InvalidCompression(t *testing.T) {
	_, err := Marshal(testSet(t), WithCompression(Compression(42)))
	assert.ErrorIs(t, err, ErrInvalidCompression)
}

func TestUnmarshal_Errors(t *testing.T) {
	e := testSet(t)
	data, err := Marshal(e)
	require.NoError(t, err)

	_, err = Unmarshal(data[:headerSize-1])
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = Unmarshal(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrTruncated)

	bad := append([]byte(nil), data...)
	bad[0] ^= 0xFF
	_, err = Unmarshal(bad)
	assert.ErrorIs(t, err, ErrInvalidMagic)

	bad = append([]byte(nil), data...)
	bad[4] = 99
	_, err = Unmarshal(bad)
	assert.ErrorIs(t, err, ErrInvalidVersion)

	bad = append([]byte(nil), data...)
	bad[5] = 42
	_, err = Unmarshal(bad)
	assert.ErrorIs(t, err, ErrInvalidCompression)
}

func TestUnmarshal_ImplausibleRawSize(t *testing.T) {
	data, err := Marshal(testSet(t), WithCompression(CompressionSnappy))
	require.NoError(t, err)

	// A header claiming an absurd decompressed size must be rejected
	// before anything is allocated for it.
	bad := append([]byte(nil), data...)
	binary.LittleEndian.PutUint64(bad[8:], 1<<62)
	_, err = Unmarshal(bad)
	require.ErrorIs(t, err, ErrInvalidSize)

	// Same with a minimal header-only container.
	tiny := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(tiny[0:], MagicNumber)
	tiny[4] = Version
	tiny[5] = byte(CompressionSnappy)
	binary.LittleEndian.PutUint64(tiny[8:], 1<<62)
	_, err = Unmarshal(tiny)
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestUnmarshal_RawSizeMismatch(t *testing.T) {
	data, err := Marshal(testSet(t))
	require.NoError(t, err)

	// An uncompressed stream one byte shorter than the header claims.
	bad := append([]byte(nil), data...)
	rawSize := binary.LittleEndian.Uint64(bad[8:])
	binary.LittleEndian.PutUint64(bad[8:], rawSize+1)
	_, err = Unmarshal(bad)
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestUnmarshal_ChecksumMismatch(t *testing.T) {
	data, err := Marshal(testSet(t))
	require.NoError(t, err)

	// Flip a payload byte; the stored stream is uncompressed so the
	// inner checksum must catch it.
	data[len(data)-1] ^= 0xFF
	_, err = Unmarshal(data)
	var cme *ChecksumMismatchError
	require.ErrorAs(t, err, &cme)
	assert.NotEqual(t, cme.Expected, cme.Actual)
}

func TestWriteRead(t *testing.T) {
	e := testSet(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, e, WithCompression(CompressionZSTD)))

	back, err := Read(&buf)
	require.NoError(t, err)
	requireEqualSets(t, e, back)
}

func TestSaveLoad(t *testing.T) {
	e := testSet(t)
	for _, comp := range []Compression{CompressionNone, CompressionSnappy, CompressionLZ4, CompressionZSTD} {
		t.Run(comp.String(), func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "set.pef")
			require.NoError(t, Save(filename, e, WithCompression(comp)))

			back, err := Load(filename)
			require.NoError(t, err)
			requireEqualSets(t, e, back)
		})
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(filepath.Join(dir, "set.pef"), testSet(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "set.pef", entries[0].Name())
}

func TestSave_Overwrites(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "set.pef")
	first, err := pef.Encode([]uint64{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, Save(filename, first))

	second := testSet(t)
	require.NoError(t, Save(filename, second))

	back, err := Load(filename)
	require.NoError(t, err)
	requireEqualSets(t, second, back)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.pef"))
	assert.Error(t, err)
}

func TestEmptySetRoundTrip(t *testing.T) {
	e, err := pef.Encode(nil)
	require.NoError(t, err)

	data, err := Marshal(e, WithCompression(CompressionSnappy))
	require.NoError(t, err)
	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), back.Len())
}

func TestCompressionString(t *testing.T) {
	assert.Equal(t, "none", CompressionNone.String())
	assert.Equal(t, "snappy", CompressionSnappy.String())
	assert.Equal(t, "lz4", CompressionLZ4.String())
	assert.Equal(t, "zstd", CompressionZSTD.String())
	assert.Equal(t, "unknown", Compression(9).String())
}

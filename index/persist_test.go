package index

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlat_WriteToReadFrom(t *testing.T) {
	f, err := Build([][]float32{{0.5, -1}, {2, 3.25}, {0, 0}})
	require.NoError(t, err)

	var buf bytes.Buffer
	written, err := f.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(headerSize+3*2*4), written)
	assert.Equal(t, []byte("SBIX"), buf.Bytes()[:4])

	restored := &Flat{}
	read, err := restored.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, written, read)
	assert.Equal(t, 3, restored.Len())
	assert.Equal(t, 2, restored.Dimension())

	for i := 0; i < 3; i++ {
		want, _ := f.Vector(i)
		got, err := restored.Vector(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestFlat_ReadFromCorrupt(t *testing.T) {
	f, err := Build([][]float32{{1, 2, 3}})
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)
	good := buf.Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", good[:7]},
		{"bad magic", append([]byte("NOPE"), good[4:]...)},
		{"truncated vectors", good[:len(good)-2]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&Flat{}).ReadFrom(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrCorruptIndex)
		})
	}

	t.Run("dimension too large", func(t *testing.T) {
		data := bytes.Clone(good)
		binary.LittleEndian.PutUint32(data[8:12], maxSnapshotDim+1)
		_, err := (&Flat{}).ReadFrom(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrCorruptIndex)
	})

	t.Run("bad version", func(t *testing.T) {
		data := bytes.Clone(good)
		data[4] = 9
		_, err := (&Flat{}).ReadFrom(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrCorruptIndex)
	})
}

func TestFlat_ReadFromInflatedCount(t *testing.T) {
	const dim = 1024
	var header [headerSize]byte
	copy(header[0:4], snapshotMagic[:])
	binary.LittleEndian.PutUint16(header[4:6], snapshotVersion)
	binary.LittleEndian.PutUint32(header[8:12], dim)
	binary.LittleEndian.PutUint64(header[12:20], maxSnapshotFloat/dim)

	data := append(header[:], make([]byte, 4*dim)...)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := (&Flat{}).ReadFrom(bytes.NewReader(data))
	runtime.ReadMemStats(&after)

	require.ErrorIs(t, err, ErrCorruptIndex)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(64<<20),
		"a header claiming %d floats must not be trusted for allocation", maxSnapshotFloat)
}

func TestFlat_SaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indexes", "bio.idx")

	f, err := Build([][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	require.NoError(t, err)
	require.NoError(t, f.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())

	results, err := loaded.Search([]float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Ordinal)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFlat_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.idx")

	first, err := Build([][]float32{{1}})
	require.NoError(t, err)
	require.NoError(t, first.SaveToFile(path))

	second, err := Build([][]float32{{1}, {2}, {3}})
	require.NoError(t, err)
	require.NoError(t, second.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())
}

func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.idx"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	garbage := filepath.Join(dir, "garbage.idx")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not zstd"), 0o644))
	_, err = LoadFromFile(garbage)
	assert.Error(t, err)
}

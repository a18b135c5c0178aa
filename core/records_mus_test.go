package core

import (
	"testing"
	"time"

	"github.com/mus-format/mus-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialMUS(t *testing.T) {
	inserted := time.Date(2025, 1, 2, 3, 4, 5, 6000, time.UTC)
	material := Material{
		Id:             MaterialID("chemistry"),
		Name:           "chemistry",
		SourcePath:     "/data/chemistry.pdf",
		Pages:          42,
		ChunkSize:      400,
		Overlap:        50,
		Dimension:      1536,
		ChunkCount:     88,
		EmbeddingModel: "text-embedding-3-small",
		InsertedAt:     inserted,
		UpdatedAt:      inserted.Add(time.Hour),
	}

	buf := make([]byte, MaterialMUS.Size(material))
	n := MaterialMUS.Marshal(material, buf)
	assert.Equal(t, len(buf), n)

	decoded, read, err := MaterialMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, n, read)
	assert.Equal(t, material, decoded)

	skipped, err := MaterialMUS.Skip(buf)
	require.NoError(t, err)
	assert.Equal(t, n, skipped)
}

func TestMaterialMUS_ZeroTimes(t *testing.T) {
	material := Material{Id: 1, Name: "empty"}

	buf := make([]byte, MaterialMUS.Size(material))
	MaterialMUS.Marshal(material, buf)

	decoded, _, err := MaterialMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.True(t, decoded.InsertedAt.IsZero())
	assert.True(t, decoded.UpdatedAt.IsZero())
}

func TestQuizRecordMUS_Truncated(t *testing.T) {
	record := QuizRecord{
		Id:        3,
		StudentId: "alice",
		Question:  "osmosis",
		Correct:   true,
		Timestamp: time.Now(),
	}

	buf := make([]byte, QuizRecordMUS.Size(record))
	QuizRecordMUS.Marshal(record, buf)

	for _, cut := range []int{1, 9, len(buf) - 1} {
		_, _, err := QuizRecordMUS.Unmarshal(buf[:cut])
		assert.ErrorIs(t, err, mus.ErrTooSmallByteSlice, "cut at %d", cut)
	}
}

func TestIDMUS(t *testing.T) {
	for _, id := range []ID{0, 127, 128, IDFromContent("x"), ID(^uint64(0))} {
		buf := make([]byte, IDMUS.Size(id))
		IDMUS.Marshal(id, buf)

		decoded, _, err := IDMUS.Unmarshal(buf)
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	}
}

package storage

import (
	"bytes"
	"testing"
	"time"

	"github.com/poiesic/studybot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.Len(t, data, 8)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestMarshalID_PreservesOrder(t *testing.T) {
	small := MarshalID(core.ID(255))
	large := MarshalID(core.ID(256))
	assert.Negative(t, bytes.Compare(small, large), "big-endian encoding must sort numerically")
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestMarshalUnmarshalMaterial(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	material := &core.Material{
		Id:             core.MaterialID("biology.pdf"),
		Name:           "biology.pdf",
		SourcePath:     "/tmp/biology.pdf",
		Pages:          12,
		ChunkSize:      400,
		Overlap:        50,
		Dimension:      384,
		ChunkCount:     17,
		EmbeddingModel: "all-minilm",
		InsertedAt:     now,
		UpdatedAt:      now,
	}

	data, err := MarshalMaterial(material)
	require.NoError(t, err)

	decoded, err := UnmarshalMaterial(data)
	require.NoError(t, err)
	assert.Equal(t, material.Id, decoded.Id)
	assert.Equal(t, material.Name, decoded.Name)
	assert.Equal(t, material.ChunkCount, decoded.ChunkCount)
	assert.True(t, material.InsertedAt.Equal(decoded.InsertedAt))
}

func TestUnmarshal_Invalid(t *testing.T) {
	t.Run("empty data", func(t *testing.T) {
		_, err := UnmarshalChunk(nil)
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("truncated material", func(t *testing.T) {
		data, err := MarshalMaterial(&core.Material{Id: 9, Name: "physics", SourcePath: "/tmp/physics.pdf"})
		require.NoError(t, err)

		_, err = UnmarshalMaterial(data[:len(data)-3])
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("bad bool", func(t *testing.T) {
		// id 1, empty student, empty question, correct flag 5
		_, err := UnmarshalQuizRecord([]byte{0x01, 0x00, 0x00, 0x05})
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("nil record", func(t *testing.T) {
		_, err := MarshalQARecord(nil)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	chunk := &core.Chunk{
		MaterialId: core.MaterialID("biology.pdf"),
		Ordinal:    3,
		Text:       "The mitochondria is the powerhouse of the cell.",
	}

	data, err := MarshalChunk(chunk)
	require.NoError(t, err)

	decoded, err := UnmarshalChunk(data)
	require.NoError(t, err)
	assert.Equal(t, chunk, decoded)
}

func TestMarshalUnmarshalQARecord(t *testing.T) {
	record := &core.QARecord{
		Id:        12,
		StudentId: "student-1",
		Question:  "What is ATP?",
		Answer:    "Adenosine triphosphate, the energy currency of the cell.",
		Timestamp: time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC),
	}

	data, err := MarshalQARecord(record)
	require.NoError(t, err)

	decoded, err := UnmarshalQARecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
}

func TestMarshalUnmarshalQuizRecord(t *testing.T) {
	record := &core.QuizRecord{
		Id:        7,
		StudentId: "student-1",
		Question:  "mitochondria",
		Correct:   true,
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}

	data, err := MarshalQuizRecord(record)
	require.NoError(t, err)

	decoded, err := UnmarshalQuizRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record.Id, decoded.Id)
	assert.Equal(t, record.StudentId, decoded.StudentId)
	assert.True(t, decoded.Correct)
}

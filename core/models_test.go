package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestMaterialID(t *testing.T) {
	if MaterialID("biology.pdf") != IDFromContent("biology.pdf") {
		t.Error("MaterialID should hash the material name")
	}
	if MaterialID("biology.pdf") == MaterialID("chemistry.pdf") {
		t.Error("different names should produce different material IDs")
	}
}

func TestChunkParams_Step(t *testing.T) {
	tests := []struct {
		params ChunkParams
		want   int
	}{
		{ChunkParams{Size: 200, Overlap: 30}, 170},
		{ChunkParams{Size: 400, Overlap: 50}, 350},
		{ChunkParams{Size: 600, Overlap: 100}, 500},
		{ChunkParams{Size: 5, Overlap: 0}, 5},
	}
	for _, tt := range tests {
		if got := tt.params.Step(); got != tt.want {
			t.Errorf("Step() for %+v = %d, want %d", tt.params, got, tt.want)
		}
	}
}

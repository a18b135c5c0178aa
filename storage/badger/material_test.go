package badger

import (
	"context"
	"testing"

	"github.com/poiesic/studybot/core"
	"github.com/poiesic/studybot/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepositories(t *testing.T) *Repositories {
	t.Helper()
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

func TestMaterialRepository_SaveAndGet(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	saved, err := repos.Materials.SaveMaterial(ctx, &core.Material{
		Name:       "biology.pdf",
		Pages:      4,
		ChunkSize:  200,
		Overlap:    30,
		ChunkCount: 3,
		Dimension:  384,
	})
	require.NoError(t, err)
	assert.Equal(t, core.MaterialID("biology.pdf"), saved.Id)
	assert.False(t, saved.InsertedAt.IsZero())

	got, err := repos.Materials.GetMaterial(ctx, saved.Id)
	require.NoError(t, err)
	assert.Equal(t, "biology.pdf", got.Name)
	assert.Equal(t, 3, got.ChunkCount)
}

func TestMaterialRepository_SaveKeepsInsertedAt(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	first, err := repos.Materials.SaveMaterial(ctx, &core.Material{Name: "a.pdf", ChunkSize: 200, Overlap: 30})
	require.NoError(t, err)
	insertedAt := first.InsertedAt

	second, err := repos.Materials.SaveMaterial(ctx, &core.Material{Name: "a.pdf", ChunkSize: 400, Overlap: 50})
	require.NoError(t, err)
	assert.True(t, insertedAt.Equal(second.InsertedAt))
	assert.Equal(t, 400, second.ChunkSize)

	all, err := repos.Materials.ListMaterials(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "same name replaces the material")
}

func TestMaterialRepository_Validation(t *testing.T) {
	repos := newTestRepositories(t)

	_, err := repos.Materials.SaveMaterial(context.Background(), &core.Material{ChunkSize: 200, Overlap: 30})
	assert.ErrorIs(t, err, core.ErrInvalidMaterial)
}

func TestMaterialRepository_GetMissing(t *testing.T) {
	repos := newTestRepositories(t)

	_, err := repos.Materials.GetMaterial(context.Background(), core.MaterialID("missing.pdf"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMaterialRepository_ListOrderedByName(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	for _, name := range []string{"zoology.pdf", "algebra.pdf", "history.pdf"} {
		_, err := repos.Materials.SaveMaterial(ctx, &core.Material{Name: name, ChunkSize: 200, Overlap: 30})
		require.NoError(t, err)
	}

	all, err := repos.Materials.ListMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "algebra.pdf", all[0].Name)
	assert.Equal(t, "history.pdf", all[1].Name)
	assert.Equal(t, "zoology.pdf", all[2].Name)
}

func TestMaterialRepository_DeleteRemovesChunks(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	m, err := repos.Materials.SaveMaterial(ctx, &core.Material{Name: "a.pdf", ChunkSize: 200, Overlap: 30})
	require.NoError(t, err)
	require.NoError(t, repos.Chunks.ReplaceChunks(ctx, m.Id, []string{"one", "two"}))

	require.NoError(t, repos.Materials.DeleteMaterial(ctx, m.Id))

	_, err = repos.Materials.GetMaterial(ctx, m.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	count, err := repos.Chunks.CountChunks(ctx, m.Id)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, repos.Materials.DeleteMaterial(ctx, m.Id), storage.ErrNotFound)
}

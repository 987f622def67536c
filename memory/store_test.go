package memory_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/habiliai/mcpchat/config"
	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T, path string, dim int, minScore float64) *memory.FileStore {
	t.Helper()
	store, err := memory.OpenFileStore(t.Context(), path, memory.NewHashEmbedder(dim), minScore, nil)
	require.NoError(t, err)
	return store
}

func TestHashEmbedder(t *testing.T) {
	embedder := memory.NewHashEmbedder(128)
	ctx := t.Context()

	embeddings, err := embedder.Embed(ctx, "Hello, World!", "hello world", "")
	require.NoError(t, err)
	require.Len(t, embeddings, 3)

	assert.Equal(t, 128, embedder.Dimension())
	assert.Len(t, embeddings[0], 128)
	// case and punctuation are ignored
	assert.Equal(t, embeddings[0], embeddings[1])

	var norm float64
	for _, v := range embeddings[0] {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)

	for _, v := range embeddings[2] {
		assert.Zero(t, v)
	}

	assert.Equal(t, 256, memory.NewHashEmbedder(0).Dimension())
}

func TestFileStore_EmptySearch(t *testing.T) {
	store := newFileStore(t, filepath.Join(t.TempDir(), "memory.json"), 256, 0)

	results, err := store.Search(t.Context(), "anything", 3)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Equal(t, 0, store.Len())
}

func TestFileStore_AddAndSearch(t *testing.T) {
	store := newFileStore(t, filepath.Join(t.TempDir(), "memory.json"), 1024, 0)
	ctx := t.Context()

	texts := []string{
		"the weather in paris is sunny",
		"I like jazz music",
		"calculate two plus two",
	}
	for _, text := range texts {
		_, err := store.Add(ctx, text, memory.SourceUser)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.Len())

	results, err := store.Search(ctx, "weather paris", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, texts[0], results[0].Document.Text)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}

	exact, err := store.Search(ctx, "I like jazz music", 1)
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, texts[1], exact[0].Document.Text)
	assert.InDelta(t, 1.0, exact[0].Score, 1e-5)

	all, err := store.Search(ctx, "music", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFileStore_MinScore(t *testing.T) {
	store := newFileStore(t, filepath.Join(t.TempDir(), "memory.json"), 1024, 0.99)
	ctx := t.Context()

	_, err := store.Add(ctx, "remember the milk", memory.SourceUser)
	require.NoError(t, err)
	_, err = store.Add(ctx, "completely different topic", memory.SourceAssistant)
	require.NoError(t, err)

	results, err := store.Search(ctx, "remember the milk", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "remember the milk", results[0].Document.Text)
}

func TestFileStore_AddRejectsEmptyText(t *testing.T) {
	store := newFileStore(t, filepath.Join(t.TempDir(), "memory.json"), 64, 0)

	_, err := store.Add(t.Context(), "   ", memory.SourceUser)
	require.ErrorIs(t, err, errors.ErrEmptyText)
	assert.Equal(t, 0, store.Len())
}

func TestFileStore_DocumentsKeepInsertionOrder(t *testing.T) {
	store := newFileStore(t, filepath.Join(t.TempDir(), "memory.json"), 64, 0)
	ctx := t.Context()

	input, err := store.Add(ctx, "what is 2+2", memory.SourceUser)
	require.NoError(t, err)
	output, err := store.Add(ctx, "4", memory.SourceAssistant)
	require.NoError(t, err)

	assert.NotEqual(t, input.ID, output.ID)
	assert.False(t, output.Timestamp.Before(input.Timestamp))

	docs := store.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, memory.SourceUser, docs[0].Source)
	assert.Equal(t, memory.SourceAssistant, docs[1].Source)

	// callers get a copy
	docs[0].Text = "changed"
	assert.Equal(t, "what is 2+2", store.Documents()[0].Text)
}

func TestFileStore_PersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "memory.json")
	ctx := t.Context()

	store := newFileStore(t, path, 256, 0)
	_, err := store.Add(ctx, "first message", memory.SourceUser)
	require.NoError(t, err)
	_, err = store.Add(ctx, "first reply", memory.SourceAssistant)
	require.NoError(t, err)
	require.NoError(t, store.Persist(ctx))
	require.NoError(t, store.Close())

	reloaded := newFileStore(t, path, 256, 0)
	before, after := store.Documents(), reloaded.Documents()
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, before[i].Text, after[i].Text)
		assert.Equal(t, before[i].Source, after[i].Source)
		assert.True(t, before[i].Timestamp.Equal(after[i].Timestamp))
	}

	results, err := reloaded.Search(ctx, "first reply", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "first reply", results[0].Document.Text)
}

func TestFileStore_UnpersistedWritesAreLost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	ctx := t.Context()

	store := newFileStore(t, path, 64, 0)
	_, err := store.Add(ctx, "not saved", memory.SourceUser)
	require.NoError(t, err)

	reloaded := newFileStore(t, path, 64, 0)
	assert.Equal(t, 0, reloaded.Len())
}

func TestFileStore_Reset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	ctx := t.Context()

	store := newFileStore(t, path, 64, 0)
	_, err := store.Add(ctx, "something to forget", memory.SourceUser)
	require.NoError(t, err)
	require.NoError(t, store.Persist(ctx))

	require.NoError(t, store.Reset(ctx))
	results, err := store.Search(ctx, "something to forget", 3)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, store.Persist(ctx))
	reloaded := newFileStore(t, path, 64, 0)
	assert.Equal(t, 0, reloaded.Len())
}

func TestFileStore_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	store := newFileStore(t, path, 128, 0)
	ctx := t.Context()

	kept, err := store.Add(ctx, "what is the weather", memory.SourceUser)
	require.NoError(t, err)
	dropped, err := store.Add(ctx, "play some jazz", memory.SourceUser)
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, dropped.ID))
	require.ErrorIs(t, store.Remove(ctx, dropped.ID), errors.ErrNotFound)

	results, err := store.Search(ctx, "play some jazz", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, kept.ID, results[0].Document.ID)

	require.NoError(t, store.Persist(ctx))
	docs := newFileStore(t, path, 128, 0).Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "what is the weather", docs[0].Text)
}

func TestFileStore_DimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	ctx := t.Context()

	store := newFileStore(t, path, 64, 0)
	_, err := store.Add(ctx, "hello", memory.SourceUser)
	require.NoError(t, err)
	require.NoError(t, store.Persist(ctx))

	_, err = memory.OpenFileStore(ctx, path, memory.NewHashEmbedder(128), 0, nil)
	require.ErrorIs(t, err, errors.ErrDimensionMismatch)
}

type fixedEmbedder struct {
	dim int
	out []float32
}

func (e *fixedEmbedder) Embed(_ context.Context, texts ...string) ([][]float32, error) {
	res := make([][]float32, len(texts))
	for i := range texts {
		res[i] = e.out
	}
	return res, nil
}

func (e *fixedEmbedder) Dimension() int { return e.dim }

func TestFileStore_RejectsWrongEmbeddingSize(t *testing.T) {
	embedder := &fixedEmbedder{dim: 4, out: []float32{1, 0}}
	store, err := memory.OpenFileStore(t.Context(), filepath.Join(t.TempDir(), "memory.json"), embedder, 0, nil)
	require.NoError(t, err)

	_, err = store.Add(t.Context(), "hello", memory.SourceUser)
	require.ErrorIs(t, err, errors.ErrDimensionMismatch)
}

func TestOpen(t *testing.T) {
	conf := config.NewMemoryConfig()
	conf.Path = filepath.Join(t.TempDir(), "memory.json")

	embedder, err := memory.NewEmbedder(conf, "")
	require.NoError(t, err)
	assert.Equal(t, conf.Dimension, embedder.Dimension())

	store, err := memory.Open(t.Context(), conf, embedder, nil)
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &memory.FileStore{}, store)

	conf.Backend = "redis"
	_, err = memory.Open(t.Context(), conf, embedder, nil)
	require.ErrorIs(t, err, errors.ErrInvalidConfig)

	conf.Embedder = "unknown"
	_, err = memory.NewEmbedder(conf, "")
	require.ErrorIs(t, err, errors.ErrInvalidConfig)

	conf.Embedder = config.EmbedderOpenAI
	_, err = memory.NewEmbedder(conf, "")
	assert.Error(t, err)
}

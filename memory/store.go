package memory

import (
	"context"
	"log/slog"

	"github.com/habiliai/mcpchat/config"
	"github.com/habiliai/mcpchat/errors"
)

type (
	// Store is the conversational memory: an append-only list of documents
	// with a similarity index over their text.
	Store interface {
		// Add appends one document. Writes stay in memory until Persist.
		Add(ctx context.Context, text string, source Source) (*Document, error)
		// Search returns at most k documents ranked by similarity to query.
		Search(ctx context.Context, query string, k int) ([]ScoredDocument, error)
		// Persist writes the full state to the store location, replacing the previous snapshot.
		Persist(ctx context.Context) error
		// Remove drops the document with id. ErrNotFound if there is none.
		Remove(ctx context.Context, id string) error
		// Reset empties the store. The change is durable after the next Persist.
		Reset(ctx context.Context) error
		// Documents returns the documents in insertion order.
		Documents() []Document
		Len() int
		Close() error
	}
)

// Open creates the store selected by conf.Backend.
func Open(ctx context.Context, conf *config.MemoryConfig, embedder Embedder, logger *slog.Logger) (Store, error) {
	switch conf.Backend {
	case config.MemoryBackendFile, "":
		s, err := OpenFileStore(ctx, conf.Path, embedder, conf.MinScore, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.MemoryBackendSqlite:
		s, err := OpenSqliteStore(ctx, conf.Path, embedder, conf.MinScore, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown memory backend %q", conf.Backend)
}

// NewEmbedder creates the embedder selected by conf.Embedder.
func NewEmbedder(conf *config.MemoryConfig, openAIAPIKey string) (Embedder, error) {
	switch conf.Embedder {
	case config.EmbedderHash, "":
		return NewHashEmbedder(conf.Dimension), nil
	case config.EmbedderOpenAI:
		e, err := NewOpenAIEmbedder(openAIAPIKey, conf.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown embedder %q", conf.Embedder)
}

func embedOne(ctx context.Context, embedder Embedder, text string) ([]float32, error) {
	embeddings, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to embed text")
	}
	if len(embeddings) != 1 {
		return nil, errors.Errorf("expected 1 embedding, got %d", len(embeddings))
	}
	if len(embeddings[0]) != embedder.Dimension() {
		return nil, errors.Wrapf(errors.ErrDimensionMismatch, "expected %d, got %d", embedder.Dimension(), len(embeddings[0]))
	}
	return embeddings[0], nil
}

package memory

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/habiliai/mcpchat/errors"
	"gonum.org/v1/gonum/mat"
)

const snapshotVersion = 1

type (
	// FileStore keeps documents and embeddings in memory and persists them as a
	// JSON snapshot that is replaced atomically.
	FileStore struct {
		mu         sync.RWMutex
		path       string
		embedder   Embedder
		minScore   float64
		logger     *slog.Logger
		documents  []Document
		embeddings [][]float32
	}

	snapshot struct {
		Version   int                `json:"version"`
		Dimension int                `json:"dimension"`
		SavedAt   time.Time          `json:"savedAt"`
		Documents []snapshotDocument `json:"documents"`
	}

	snapshotDocument struct {
		Document
		Embedding []float32 `json:"embedding"`
	}
)

var (
	_ Store = (*FileStore)(nil)
)

// OpenFileStore loads the snapshot at path if it exists, otherwise it starts empty.
func OpenFileStore(_ context.Context, path string, embedder Embedder, minScore float64, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileStore{
		path:     path,
		embedder: embedder,
		minScore: minScore,
		logger:   logger,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Info("created new memory store", "path", path)
		return s, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to read memory snapshot %s", path)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(err, "failed to decode memory snapshot %s", path)
	}
	if len(snap.Documents) > 0 && snap.Dimension != embedder.Dimension() {
		return nil, errors.Wrapf(errors.ErrDimensionMismatch, "snapshot %s has dimension %d, embedder has %d", path, snap.Dimension, embedder.Dimension())
	}

	for _, doc := range snap.Documents {
		if len(doc.Embedding) != embedder.Dimension() {
			return nil, errors.Wrapf(errors.ErrDimensionMismatch, "document %s in %s", doc.ID, path)
		}
		s.documents = append(s.documents, doc.Document)
		s.embeddings = append(s.embeddings, doc.Embedding)
	}

	logger.Info("loaded memory store", "path", path, "documents", len(s.documents))
	return s, nil
}

func (s *FileStore) Add(ctx context.Context, text string, source Source) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.WithStack(errors.ErrEmptyText)
	}

	embedding, err := embedOne(ctx, s.embedder, text)
	if err != nil {
		return nil, err
	}

	doc := Document{
		ID:        uuid.NewString(),
		Text:      text,
		Source:    source,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = append(s.documents, doc)
	s.embeddings = append(s.embeddings, embedding)

	return &doc, nil
}

func (s *FileStore) Search(ctx context.Context, query string, k int) ([]ScoredDocument, error) {
	if s.Len() == 0 || strings.TrimSpace(query) == "" {
		return []ScoredDocument{}, nil
	}

	queryEmbedding, err := embedOne(ctx, s.embedder, query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	numDocuments := len(s.documents)
	if numDocuments == 0 {
		return []ScoredDocument{}, nil
	}
	embeddingDim := len(queryEmbedding)

	queryVec := make([]float64, embeddingDim)
	for i, v := range queryEmbedding {
		queryVec[i] = float64(v)
	}

	// N x d matrix of document embeddings
	data := make([]float64, numDocuments*embeddingDim)
	for i, embedding := range s.embeddings {
		for j, v := range embedding {
			data[i*embeddingDim+j] = float64(v)
		}
	}

	var scores mat.VecDense
	scores.MulVec(mat.NewDense(numDocuments, embeddingDim, data), mat.NewVecDense(embeddingDim, queryVec))

	results := make([]ScoredDocument, 0, numDocuments)
	for i, doc := range s.documents {
		// unit vectors: inner product in [-1,1] mapped to [0,1]
		score := (scores.AtVec(i) + 1.0) * 0.5
		if score < s.minScore {
			continue
		}
		results = append(results, ScoredDocument{
			Document: doc,
			Score:    score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}

	return results, nil
}

func (s *FileStore) Persist(_ context.Context) error {
	s.mu.RLock()
	snap := snapshot{
		Version:   snapshotVersion,
		Dimension: s.embedder.Dimension(),
		SavedAt:   time.Now(),
		Documents: make([]snapshotDocument, len(s.documents)),
	}
	for i, doc := range s.documents {
		snap.Documents[i] = snapshotDocument{
			Document:  doc,
			Embedding: s.embeddings[i],
		}
	}
	data, err := json.Marshal(&snap)
	s.mu.RUnlock()
	if err != nil {
		return errors.Wrapf(err, "failed to encode memory snapshot")
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return err
	}

	s.logger.Debug("persisted memory store", "path", s.path, "documents", len(snap.Documents))
	return nil
}

func (s *FileStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.documents, func(doc Document) bool {
		return doc.ID == id
	})
	if i < 0 {
		return errors.Wrapf(errors.ErrNotFound, "document %s", id)
	}

	s.documents = slices.Delete(s.documents, i, i+1)
	s.embeddings = slices.Delete(s.embeddings, i, i+1)
	return nil
}

func (s *FileStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = nil
	s.embeddings = nil
	return nil
}

func (s *FileStore) Documents() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	documents := make([]Document, len(s.documents))
	copy(documents, s.documents)
	return documents
}

func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

func (s *FileStore) Close() error {
	return nil
}

// writeFileAtomic writes to a temporary file in the target directory and
// renames it over path, so readers see either the old or the new snapshot.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary snapshot in %s", dir)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(data); err != nil {
		return errors.Wrapf(err, "failed to write snapshot")
	}
	if err = f.Sync(); err != nil {
		return errors.Wrapf(err, "failed to sync snapshot")
	}
	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close snapshot")
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to replace snapshot %s", path)
	}
	return nil
}

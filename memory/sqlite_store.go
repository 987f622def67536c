//go:build !without_sqlite

package memory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// vec0 rejects KNN queries with a larger k
const maxKNN = 4096

type (
	// SqliteStore implements Store using SQLite with the sqlite-vec extension.
	// All writes between two Persist calls share one transaction.
	SqliteStore struct {
		mu        sync.RWMutex
		db        *gorm.DB
		tx        *gorm.DB
		path      string
		embedder  Embedder
		minScore  float64
		logger    *slog.Logger
		documents []Document
	}

	SqliteDocumentRecord struct {
		Seq      uint64 `gorm:"primaryKey;autoIncrement"`
		ID       string `gorm:"uniqueIndex;not null"`
		Text     string `gorm:"not null"`
		Metadata datatypes.JSONType[DocumentMetadata]
	}

	SqliteMetaRecord struct {
		Name  string `gorm:"primaryKey"`
		Value string `gorm:"not null"`
	}

	// DocumentMetadata is stored next to the text of every document.
	DocumentMetadata struct {
		Source    Source    `json:"source"`
		Timestamp time.Time `json:"timestamp"`
	}
)

var (
	_ Store = (*SqliteStore)(nil)
)

func (SqliteDocumentRecord) TableName() string {
	return "memory_documents"
}

func (SqliteMetaRecord) TableName() string {
	return "memory_meta"
}

func (r *SqliteDocumentRecord) toDocument() Document {
	metadata := r.Metadata.Data()
	return Document{
		ID:        r.ID,
		Text:      r.Text,
		Source:    metadata.Source,
		Timestamp: metadata.Timestamp,
	}
}

// OpenSqliteStore opens or creates the database at path.
func OpenSqliteStore(ctx context.Context, path string, embedder Embedder, minScore float64, logger *slog.Logger) (*SqliteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	// the long-lived turn transaction owns the only connection
	conn, err := db.OpenSqlite(path)
	if err != nil {
		return nil, err
	}

	s := &SqliteStore{
		db:       conn,
		path:     path,
		embedder: embedder,
		minScore: minScore,
		logger:   logger,
	}

	if err := s.migrate(ctx); err != nil {
		_ = db.CloseDB(conn)
		return nil, err
	}
	if err := s.load(ctx); err != nil {
		_ = db.CloseDB(conn)
		return nil, err
	}
	if err := s.begin(); err != nil {
		_ = db.CloseDB(conn)
		return nil, err
	}

	logger.Info("opened sqlite memory store", "path", path, "documents", len(s.documents))
	return s, nil
}

func (s *SqliteStore) migrate(ctx context.Context) error {
	tx := s.db.WithContext(ctx)
	if err := tx.AutoMigrate(&SqliteDocumentRecord{}, &SqliteMetaRecord{}); err != nil {
		return errors.Wrapf(err, "failed to auto-migrate sqlite database at %s", s.path)
	}

	// Verify sqlite-vec is loaded
	var sqliteVersion, vecVersion string
	if err := tx.Raw("SELECT sqlite_version(), vec_version()").Row().Scan(&sqliteVersion, &vecVersion); err != nil {
		return errors.Wrapf(err, "sqlite-vec extension not properly loaded")
	}

	dim := strconv.Itoa(s.embedder.Dimension())
	var meta SqliteMetaRecord
	if r := tx.Find(&meta, "name = ?", "dimension"); r.Error != nil {
		return errors.Wrapf(r.Error, "failed to read store dimension")
	} else if r.RowsAffected == 0 {
		if err := tx.Create(&SqliteMetaRecord{Name: "dimension", Value: dim}).Error; err != nil {
			return errors.Wrapf(err, "failed to save store dimension")
		}
	} else if meta.Value != dim {
		return errors.Wrapf(errors.ErrDimensionMismatch, "database %s has dimension %s, embedder has %s", s.path, meta.Value, dim)
	}

	createTableSQL := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS memory_vectors USING vec0(
			document_id TEXT PRIMARY KEY,
			embedding float[%s]
		);
	`, dim)
	if err := tx.Exec(createTableSQL).Error; err != nil {
		return errors.Wrapf(err, "failed to create memory_vectors table")
	}

	return nil
}

func (s *SqliteStore) load(ctx context.Context) error {
	var records []SqliteDocumentRecord
	if err := s.db.WithContext(ctx).Order("seq").Find(&records).Error; err != nil {
		return errors.Wrapf(err, "failed to load documents")
	}

	s.documents = make([]Document, 0, len(records))
	for i := range records {
		s.documents = append(s.documents, records[i].toDocument())
	}
	return nil
}

// begin opens the turn transaction. It is not bound to any caller context:
// database/sql rolls a transaction back when its context is cancelled.
func (s *SqliteStore) begin() error {
	tx := s.db.WithContext(context.Background()).Begin()
	if tx.Error != nil {
		return errors.Wrapf(tx.Error, "failed to begin transaction")
	}
	s.tx = tx
	return nil
}

func (s *SqliteStore) Add(ctx context.Context, text string, source Source) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.WithStack(errors.ErrEmptyText)
	}

	embedding, err := embedOne(ctx, s.embedder, text)
	if err != nil {
		return nil, err
	}
	serializedEmbedding, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize embedding")
	}

	doc := Document{
		ID:        uuid.NewString(),
		Text:      text,
		Source:    source,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.tx.WithContext(ctx)
	if err := tx.SavePoint("add_document").Error; err != nil {
		return nil, errors.Wrapf(err, "failed to create savepoint")
	}
	record := SqliteDocumentRecord{
		ID:   doc.ID,
		Text: doc.Text,
		Metadata: datatypes.NewJSONType(DocumentMetadata{
			Source:    doc.Source,
			Timestamp: doc.Timestamp,
		}),
	}
	if err := tx.Create(&record).Error; err != nil {
		tx.RollbackTo("add_document")
		return nil, errors.Wrapf(err, "failed to save document record")
	}
	if err := tx.Exec("INSERT INTO memory_vectors (document_id, embedding) VALUES (?, ?)", doc.ID, serializedEmbedding).Error; err != nil {
		tx.RollbackTo("add_document")
		return nil, errors.Wrapf(err, "failed to insert document vector")
	}

	s.documents = append(s.documents, doc)
	return &doc, nil
}

func (s *SqliteStore) Search(ctx context.Context, query string, k int) ([]ScoredDocument, error) {
	if s.Len() == 0 || strings.TrimSpace(query) == "" {
		return []ScoredDocument{}, nil
	}

	queryEmbedding, err := embedOne(ctx, s.embedder, query)
	if err != nil {
		return nil, err
	}
	serializedQuery, err := sqlite_vec.SerializeFloat32(queryEmbedding)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize query embedding")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := k
	if limit <= 0 || limit > len(s.documents) {
		limit = len(s.documents)
	}
	limit = min(limit, maxKNN)
	if limit == 0 {
		return []ScoredDocument{}, nil
	}

	tx := s.tx.WithContext(ctx)
	rows, err := tx.Raw(`
		SELECT document_id, distance
		FROM memory_vectors
		WHERE embedding MATCH ?
		ORDER BY distance
		LIMIT ?
	`, serializedQuery, limit).Rows()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to execute search query")
	}
	defer rows.Close()

	distances := make(map[string]float64)
	var ids []string
	for rows.Next() {
		var (
			id       string
			distance float64
		)
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, errors.Wrapf(err, "failed to scan result row")
		}
		ids = append(ids, id)
		distances[id] = distance
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read result rows")
	}
	if len(ids) == 0 {
		return []ScoredDocument{}, nil
	}

	var records []SqliteDocumentRecord
	if err := tx.Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to fetch document records")
	}

	results := make([]ScoredDocument, 0, len(records))
	for i := range records {
		d := distances[records[i].ID]
		// unit vectors: d^2 = 2 - 2cos, so (cos+1)/2 = 1 - d^2/4
		score := 1.0 - d*d/4.0
		if score < s.minScore {
			continue
		}
		results = append(results, ScoredDocument{
			Document: records[i].toDocument(),
			Score:    score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}

func (s *SqliteStore) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tx.Commit().Error; err != nil {
		s.logger.Warn("failed to commit memory transaction, reloading last snapshot", "path", s.path, "error", err)
		if loadErr := s.load(context.WithoutCancel(ctx)); loadErr != nil {
			s.logger.Error("failed to reload memory store", "error", loadErr)
		}
		if beginErr := s.begin(); beginErr != nil {
			return errors.Wrapf(beginErr, "failed to restart transaction after commit failure: %v", err)
		}
		return errors.Wrapf(err, "failed to commit memory transaction")
	}

	if err := s.begin(); err != nil {
		return err
	}

	s.logger.Debug("persisted memory store", "path", s.path, "documents", len(s.documents))
	return nil
}

func (s *SqliteStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.documents, func(doc Document) bool {
		return doc.ID == id
	})
	if i < 0 {
		return errors.Wrapf(errors.ErrNotFound, "document %s", id)
	}

	tx := s.tx.WithContext(ctx)
	if err := tx.Exec("DELETE FROM memory_vectors WHERE document_id = ?", id).Error; err != nil {
		return errors.Wrapf(err, "failed to delete document vector")
	}
	if err := tx.Where("id = ?", id).Delete(&SqliteDocumentRecord{}).Error; err != nil {
		return errors.Wrapf(err, "failed to delete document record")
	}

	s.documents = slices.Delete(s.documents, i, i+1)
	return nil
}

func (s *SqliteStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.tx.WithContext(ctx)
	if err := tx.Exec("DELETE FROM memory_vectors").Error; err != nil {
		return errors.Wrapf(err, "failed to delete vectors")
	}
	if err := tx.Exec("DELETE FROM memory_documents").Error; err != nil {
		return errors.Wrapf(err, "failed to delete documents")
	}

	s.documents = nil
	return nil
}

func (s *SqliteStore) Documents() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	documents := make([]Document, len(s.documents))
	copy(documents, s.documents)
	return documents
}

func (s *SqliteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Close rolls back writes that were not persisted and closes the database.
func (s *SqliteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx != nil {
		if err := s.tx.Rollback().Error; err != nil {
			s.logger.Warn("failed to roll back memory transaction", "error", err)
		}
		s.tx = nil
	}

	return db.CloseDB(s.db)
}

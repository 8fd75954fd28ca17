package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sitechat-io/sitechat-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a SQLite-based storage that provides access to the
// knowledge and ingest state store interfaces through wrapper types.
type Store struct {
	db    *sql.DB
	path  string
	model string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.sitechat/knowledge.db. The model
// name is stamped on empty indexes, mirroring the file store.
func NewStore(dataDir, embeddingModel string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sitechat")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "knowledge.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:    db,
		path:  dbPath,
		model: embeddingModel,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// KnowledgeStore returns a KnowledgeStore interface backed by this store.
func (s *Store) KnowledgeStore() driven.KnowledgeStore {
	return &knowledgeStore{store: s}
}

// IngestStateStore returns an IngestStateStore interface backed by this store.
func (s *Store) IngestStateStore() driven.IngestStateStore {
	return &ingestStateStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Knowledge Store ====================

// knowledgeStore implements driven.KnowledgeStore.
type knowledgeStore struct {
	store *Store
}

var _ driven.KnowledgeStore = (*knowledgeStore)(nil)

// Load returns the persisted index. An empty database loads as a
// well-formed empty index with GeneratedAt at the epoch. Chunks come
// back in insertion order.
func (k *knowledgeStore) Load(ctx context.Context) (*domain.KnowledgeIndex, error) {
	index := domain.EmptyIndex(k.store.model)

	row := k.store.db.QueryRowContext(ctx, `
		SELECT format_version, generated_at, embedding_model
		FROM index_meta WHERE id = 1
	`)
	var generatedAt sql.NullTime
	err := row.Scan(&index.FormatVersion, &generatedAt, &index.EmbeddingModel)
	switch {
	case err == sql.ErrNoRows:
		return index, nil
	case err != nil:
		return nil, fmt.Errorf("scanning index meta: %w", err)
	}
	if generatedAt.Valid {
		index.GeneratedAt = generatedAt.Time.UTC()
	}

	rows, err := k.store.db.QueryContext(ctx, `
		SELECT id, document_id, document_title, slug, chunk_index,
			content, embedding, priority, origin, language, tags
		FROM chunks ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		index.Chunks = append(index.Chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return index, nil
}

// ReplaceAll overwrites the persisted index in one transaction.
func (k *knowledgeStore) ReplaceAll(ctx context.Context, index *domain.KnowledgeIndex) error {
	tx, err := k.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	if err := upsertMeta(ctx, tx, index.FormatVersion, index.GeneratedAt, index.EmbeddingModel); err != nil {
		return err
	}

	if err := insertChunks(ctx, tx, index.Chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// AppendChunks inserts the new chunks and refreshes GeneratedAt, all in
// one transaction.
func (k *knowledgeStore) AppendChunks(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := k.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := upsertMeta(ctx, tx, domain.FormatVersion, time.Now().UTC(), k.store.model); err != nil {
		return err
	}

	if err := insertChunks(ctx, tx, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteByTag removes every chunk carrying the tag and reports how
// many were removed. Tag sets live as JSON arrays, so matching goes
// through json_each.
func (k *knowledgeStore) DeleteByTag(ctx context.Context, tag string) (int, error) {
	result, err := k.store.db.ExecContext(ctx, `
		DELETE FROM chunks WHERE EXISTS (
			SELECT 1 FROM json_each(chunks.tags) WHERE json_each.value = ?
		)
	`, tag)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks by tag: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting removed chunks: %w", err)
	}
	return int(removed), nil
}

// upsertMeta writes the single index metadata row.
func upsertMeta(ctx context.Context, tx *sql.Tx, formatVersion int, generatedAt time.Time, model string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO index_meta (id, format_version, generated_at, embedding_model)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			format_version = excluded.format_version,
			generated_at = excluded.generated_at,
			embedding_model = excluded.embedding_model
	`, formatVersion, generatedAt.UTC(), model)
	if err != nil {
		return fmt.Errorf("saving index meta: %w", err)
	}
	return nil
}

// insertChunks writes chunk rows with a prepared statement.
func insertChunks(ctx context.Context, tx *sql.Tx, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, document_title, slug, chunk_index,
			content, embedding, priority, origin, language, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		tagsJSON, err := json.Marshal(chunk.Tags)
		if err != nil {
			return fmt.Errorf("marshalling tags: %w", err)
		}

		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID,
			chunk.DocumentTitle, chunk.Slug, chunk.ChunkIndex, chunk.Content,
			embeddingBlob, string(chunk.Priority), string(chunk.Origin),
			chunk.Language, string(tagsJSON)); err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	return nil
}

// scanChunk scans a single chunk row.
func scanChunk(rows *sql.Rows) (domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var priority, origin, tagsJSON string

	if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.DocumentTitle,
		&chunk.Slug, &chunk.ChunkIndex, &chunk.Content, &embeddingBlob,
		&priority, &origin, &chunk.Language, &tagsJSON); err != nil {
		return chunk, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
	chunk.Priority = domain.Priority(priority)
	chunk.Origin = domain.Origin(origin)

	if tagsJSON != "" && tagsJSON != jsonNull {
		if err := json.Unmarshal([]byte(tagsJSON), &chunk.Tags); err != nil {
			return chunk, fmt.Errorf("unmarshaling tags: %w", err)
		}
	}

	return chunk, nil
}

// ==================== Ingest State Store ====================

// ingestStateStore implements driven.IngestStateStore.
type ingestStateStore struct {
	store *Store
}

var _ driven.IngestStateStore = (*ingestStateStore)(nil)

// Load retrieves the last recorded state. Returns domain.ErrNotFound
// when no run has been recorded yet.
func (s *ingestStateStore) Load(ctx context.Context) (*domain.IngestState, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT last_run_at, sources_signature, chunks_added
		FROM ingest_state WHERE id = 1
	`)

	var state domain.IngestState
	var lastRunAt sql.NullTime
	err := row.Scan(&lastRunAt, &state.SourcesSignature, &state.ChunksAdded)
	switch {
	case err == sql.ErrNoRows:
		return nil, domain.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("scanning ingest state: %w", err)
	}

	if lastRunAt.Valid {
		state.LastRunAt = lastRunAt.Time.UTC()
	}
	return &state, nil
}

// Save overwrites the recorded state.
func (s *ingestStateStore) Save(ctx context.Context, state domain.IngestState) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ingest_state (id, last_run_at, sources_signature, chunks_added)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_run_at = excluded.last_run_at,
			sources_signature = excluded.sources_signature,
			chunks_added = excluded.chunks_added
	`, state.LastRunAt.UTC(), state.SourcesSignature, state.ChunksAdded)
	if err != nil {
		return fmt.Errorf("saving ingest state: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

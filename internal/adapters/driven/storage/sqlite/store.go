package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sitechat/internal/adapters/driven/storage/rank"
	"github.com/custodia-labs/sitechat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "collections.db"

// Ensure Store implements the interface.
var _ driven.CollectionStore = (*Store)(nil)

// Store is a SQLite-backed collection store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.sitechat/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sitechat", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
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

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

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
			continue
		}
		if version <= currentVersion {
			continue
		}

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

// EnsureCollection returns the named collection, creating it on first use.
func (s *Store) EnsureCollection(ctx context.Context, name, model string, dimensions int) (*domain.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}

	// INSERT OR IGNORE keeps the first writer's model when two race.
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO collections (name, embedding_model, dimensions, created_at)
		VALUES (?, ?, ?, ?)
	`, name, model, dimensions, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	c, err := s.GetCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	if !c.Compatible(model, dimensions) {
		return nil, fmt.Errorf("collection %s uses %s (%d dims), got %s (%d dims): %w",
			name, c.EmbeddingModel, c.Dimensions, model, dimensions, domain.ErrEmbeddingModelMismatch)
	}
	return c, nil
}

// GetCollection returns the named collection or domain.ErrNotFound.
func (s *Store) GetCollection(ctx context.Context, name string) (*domain.Collection, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, embedding_model, dimensions, created_at
		FROM collections WHERE name = ?
	`, name)

	var c domain.Collection
	if err := row.Scan(&c.Name, &c.EmbeddingModel, &c.Dimensions, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning collection: %w", err)
	}
	return &c, nil
}

// ListCollections returns all collections with entry counts, sorted by name.
func (s *Store) ListCollections(ctx context.Context) ([]domain.CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, c.embedding_model, c.dimensions, c.created_at, COUNT(e.seq)
		FROM collections c
		LEFT JOIN entries e ON e.collection = c.name
		GROUP BY c.name
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var infos []domain.CollectionInfo
	for rows.Next() {
		var info domain.CollectionInfo
		if err := rows.Scan(&info.Name, &info.EmbeddingModel, &info.Dimensions, &info.CreatedAt, &info.Count); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Count returns the number of entries in a collection.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE collection = ?", name).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// DeleteCollection removes a collection; its entries cascade.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Append stores entries in a single transaction.
func (s *Store) Append(ctx context.Context, name string, entries []domain.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var dims int
	row := tx.QueryRowContext(ctx, "SELECT dimensions FROM collections WHERE name = ?", name)
	if err := row.Scan(&dims); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
		}
		return fmt.Errorf("reading collection: %w", err)
	}

	if dims == 0 && len(entries) > 0 {
		dims = len(entries[0].Embedding)
		if _, err := tx.ExecContext(ctx, "UPDATE collections SET dimensions = ? WHERE name = ?", dims, name); err != nil {
			return fmt.Errorf("recording dimensions: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, collection, locator, chunk_index, content, start_offset, end_offset, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if len(e.Embedding) != dims {
			return fmt.Errorf("entry %s has %d dims, collection %s has %d: %w",
				e.Chunk.ID, len(e.Embedding), name, dims, domain.ErrEmbeddingModelMismatch)
		}
		c := e.Chunk
		if _, err := stmt.ExecContext(ctx, c.ID, name, c.Locator, c.Index, c.Text, c.Start, c.End,
			float32SliceToBytes(e.Embedding)); err != nil {
			return fmt.Errorf("inserting entry %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing entries: %w", err)
	}
	return nil
}

// Search scores every entry of the collection against query.
func (s *Store) Search(ctx context.Context, name string, query []float32, k int) (domain.RetrievalResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, locator, chunk_index, content, start_offset, end_offset, embedding
		FROM entries WHERE collection = ?
		ORDER BY seq
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var blob []byte
		c := &e.Chunk
		if err := rows.Scan(&c.ID, &c.Locator, &c.Index, &c.Text, &c.Start, &c.End, &blob); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Embedding = bytesToFloat32Slice(blob)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return rank.TopK(query, entries, k), nil
}

// float32SliceToBytes encodes a vector as little-endian float32 bytes.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice decodes little-endian float32 bytes.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

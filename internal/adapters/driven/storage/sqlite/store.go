// Package sqlite persists the built retrieval index so a process restart
// can skip re-extraction and re-embedding of an unchanged document.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// schema holds one snapshot at a time: the manifest row records which
// fingerprint the stored chunks belong to, and chunk rows carry the text,
// page attribution and embedding blob keyed by chunk id.
const schema = `
CREATE TABLE IF NOT EXISTS manifest (
	id TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	chunk_count INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	id INTEGER PRIMARY KEY,
	text TEXT NOT NULL,
	pages TEXT NOT NULL,
	embedding BLOB NOT NULL
);
`

// Store is a SQLite-backed index snapshot store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.prescribewise/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".prescribewise", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// WAL mode so a concurrent reader does not block the writer.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces any persisted snapshot with the given corpus. Vector i
// belongs to chunk i; the caller guarantees alignment.
func (s *Store) Save(ctx context.Context, fingerprint string, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("sqlite: %d chunks with %d vectors", len(chunks), len(vectors))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM manifest"); err != nil {
		return fmt.Errorf("clearing manifest: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, text, pages, embedding) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		pagesJSON, err := json.Marshal(chunk.Pages)
		if err != nil {
			return fmt.Errorf("marshalling pages for chunk %d: %w", chunk.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.Text, string(pagesJSON),
			float32SliceToBytes(vectors[i])); err != nil {
			return fmt.Errorf("saving chunk %d: %w", chunk.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO manifest (id, fingerprint, chunk_count, created_at) VALUES (?, ?, ?, ?)
	`, uuid.NewString(), fingerprint, len(chunks), time.Now().UTC()); err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Load returns the persisted corpus for the given fingerprint.
func (s *Store) Load(ctx context.Context, fingerprint string) ([]domain.Chunk, [][]float32, error) {
	var storedFingerprint string
	var count int
	row := s.db.QueryRowContext(ctx, "SELECT fingerprint, chunk_count FROM manifest")
	if err := row.Scan(&storedFingerprint, &count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("scanning manifest: %w", err)
	}

	if storedFingerprint != fingerprint {
		return nil, nil, domain.ErrStaleIndex
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, text, pages, embedding FROM chunks ORDER BY id")
	if err != nil {
		return nil, nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	chunks := make([]domain.Chunk, 0, count)
	vectors := make([][]float32, 0, count)

	for rows.Next() {
		var chunk domain.Chunk
		var pagesJSON string
		var embeddingBlob []byte
		if err := rows.Scan(&chunk.ID, &chunk.Text, &pagesJSON, &embeddingBlob); err != nil {
			return nil, nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(pagesJSON), &chunk.Pages); err != nil {
			return nil, nil, fmt.Errorf("unmarshaling pages for chunk %d: %w", chunk.ID, err)
		}
		chunks = append(chunks, chunk)
		vectors = append(vectors, bytesToFloat32Slice(embeddingBlob))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating chunks: %w", err)
	}

	if len(chunks) != count {
		return nil, nil, fmt.Errorf("sqlite: manifest records %d chunks, found %d", count, len(chunks))
	}

	return chunks, vectors, nil
}

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

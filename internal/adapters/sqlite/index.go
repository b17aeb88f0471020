package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Index implements ports.LinkIndex using SQLite
type Index struct {
	db        *sql.DB
	vaultPath string
	dbPath    string
}

// Ensure Index implements LinkIndex
var _ ports.LinkIndex = (*Index)(nil)

// NewIndex creates a new SQLite index
func NewIndex() *Index {
	return &Index{}
}

// Open initializes the index for the given vault path under the XDG data dir
func (idx *Index) Open(vaultPath string) error {
	// Expand ~ in path
	if len(vaultPath) > 0 && vaultPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		vaultPath = filepath.Join(home, vaultPath[1:])
	}
	return idx.OpenAt(vaultPath, databasePath(vaultPath))
}

// OpenAt initializes the index with an explicit database file
func (idx *Index) OpenAt(vaultPath, dbPath string) error {
	idx.vaultPath = vaultPath
	idx.dbPath = dbPath

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(idx.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", idx.dbPath+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	idx.db = db

	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS documents (
			path TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			mtime INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS links (
			source_path TEXT NOT NULL,
			target_path TEXT NOT NULL,
			PRIMARY KEY (source_path, target_path)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_path);
		CREATE INDEX IF NOT EXISTS idx_documents_name ON documents(name);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}
	return nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// NeedsFullRebuild returns true if the index should be fully rebuilt
func (idx *Index) NeedsFullRebuild() bool {
	var version, vaultHash string

	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'vault_path_hash'").Scan(&vaultHash)

	return version != schemaVersion || vaultHash != hashVaultPath(idx.vaultPath)
}

// databasePath returns the path for the SQLite database
func databasePath(vaultPath string) string {
	// XDG data directory
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}

	// Hash vault path for unique DB name
	return filepath.Join(dataHome, "vaultgraph", hashVaultPath(vaultPath)+".db")
}

// hashVaultPath returns a short hash of the vault path
func hashVaultPath(vaultPath string) string {
	h := sha256.Sum256([]byte(vaultPath))
	return hex.EncodeToString(h[:8]) // First 8 bytes = 16 hex chars
}

// updateMeta records the schema version and vault path hash
func (idx *Index) updateMeta() error {
	if _, err := idx.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`,
		schemaVersion); err != nil {
		return err
	}
	_, err := idx.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('vault_path_hash', ?)`,
		hashVaultPath(idx.vaultPath))
	return err
}

// Document retrieves a document row by path
func (idx *Index) Document(path string) (*domain.IndexedDocument, error) {
	var doc domain.IndexedDocument
	err := idx.db.QueryRow(`
		SELECT path, name, mtime FROM documents WHERE path = ?
	`, path).Scan(&doc.Path, &doc.Name, &doc.Mtime)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Backlinks returns the sorted paths of documents linking to path
func (idx *Index) Backlinks(ctx context.Context, path string) ([]string, error) {
	rows, err := idx.db.QueryContext(ctx, `
		SELECT source_path FROM links
		WHERE target_path = ? AND source_path != target_path
		ORDER BY source_path
	`, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// LinksFrom returns all links from a source document
func (idx *Index) LinksFrom(sourcePath string) ([]domain.IndexedLink, error) {
	rows, err := idx.db.Query(`
		SELECT source_path, target_path FROM links
		WHERE source_path = ? ORDER BY target_path
	`, sourcePath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.IndexedLink
	for rows.Next() {
		var l domain.IndexedLink
		if err := rows.Scan(&l.SourcePath, &l.TargetPath); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// BeginTx starts a new transaction
func (idx *Index) BeginTx() (ports.IndexTx, error) {
	tx, err := idx.db.Begin()
	if err != nil {
		return nil, err
	}
	return &indexTx{tx: tx}, nil
}

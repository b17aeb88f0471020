package sqlite

import (
	"database/sql"

	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

// indexTx implements ports.IndexTx
type indexTx struct {
	tx *sql.Tx
}

// Ensure indexTx implements IndexTx
var _ ports.IndexTx = (*indexTx)(nil)

// UpsertDocument inserts or updates a document row
func (t *indexTx) UpsertDocument(doc *domain.IndexedDocument) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO documents (path, name, mtime)
		VALUES (?, ?, ?)
	`, doc.Path, doc.Name, doc.Mtime)
	return err
}

// DeleteDocument removes a document and its outgoing links
func (t *indexTx) DeleteDocument(path string) error {
	if _, err := t.tx.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return err
	}
	return t.DeleteLinksFrom(path)
}

// RenameDocument moves a document row and its outgoing links to a new path
func (t *indexTx) RenameDocument(oldPath, newPath string) error {
	if _, err := t.tx.Exec(`DELETE FROM documents WHERE path = ?`, newPath); err != nil {
		return err
	}
	if _, err := t.tx.Exec(`
		UPDATE documents SET path = ?, name = ? WHERE path = ?
	`, newPath, domain.DocumentName(newPath), oldPath); err != nil {
		return err
	}
	_, err := t.tx.Exec(`UPDATE OR REPLACE links SET source_path = ? WHERE source_path = ?`, newPath, oldPath)
	return err
}

// DeleteLinksFrom removes all links from a source document
func (t *indexTx) DeleteLinksFrom(sourcePath string) error {
	_, err := t.tx.Exec(`DELETE FROM links WHERE source_path = ?`, sourcePath)
	return err
}

// InsertLink adds a new link
func (t *indexTx) InsertLink(link *domain.IndexedLink) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO links (source_path, target_path)
		VALUES (?, ?)
	`, link.SourcePath, link.TargetPath)
	return err
}

// Commit commits the transaction
func (t *indexTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *indexTx) Rollback() error {
	return t.tx.Rollback()
}

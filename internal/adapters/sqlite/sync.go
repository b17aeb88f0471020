package sqlite

import (
	"context"
	"fmt"
	"time"

	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

// SyncFull performs a complete rebuild of the index from src
func (idx *Index) SyncFull(ctx context.Context, src ports.LinkSource) (*domain.SyncStats, error) {
	start := time.Now()
	stats := &domain.SyncStats{}

	tx, err := idx.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Clear existing data
	if err := clearAll(tx); err != nil {
		return nil, err
	}

	for _, path := range src.Paths() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.FilesScanned++
		added, err := upsert(ctx, tx, src, path)
		if err != nil {
			return stats, err
		}
		if added {
			stats.DocumentsAdded++
		}
	}
	links, err := relinkAll(tx, src)
	if err != nil {
		return stats, err
	}
	stats.LinksAdded = links

	if err := tx.Commit(); err != nil {
		return stats, err
	}
	if err := idx.finishSync(); err != nil {
		return stats, err
	}
	stats.Duration = time.Since(start)
	return stats, nil
}

// SyncIncremental updates only documents whose mtime changed and drops
// documents that no longer exist. When the set of documents changed every
// link is re-resolved, since names may now resolve differently.
func (idx *Index) SyncIncremental(ctx context.Context, src ports.LinkSource) (*domain.SyncStats, error) {
	if idx.NeedsFullRebuild() {
		return idx.SyncFull(ctx, src)
	}
	start := time.Now()
	stats := &domain.SyncStats{}

	// Track existing documents to detect deletions
	existing := make(map[string]int64)
	rows, err := idx.db.QueryContext(ctx, `SELECT path, mtime FROM documents`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var path string
		var mtime int64
		if err := rows.Scan(&path, &mtime); err != nil {
			rows.Close()
			return nil, err
		}
		existing[path] = mtime
	}
	rows.Close()

	tx, err := idx.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var changed []string
	seen := make(map[string]bool)
	for _, path := range src.Paths() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		seen[path] = true
		stats.FilesScanned++

		meta, err := src.Metadata(ctx, path)
		if err != nil {
			return stats, err
		}
		if meta == nil {
			continue
		}
		mtime, ok := existing[path]
		if ok && mtime == meta.Mtime {
			continue
		}
		if err := tx.UpsertDocument(indexedDocument(meta)); err != nil {
			return stats, err
		}
		if ok {
			stats.DocumentsUpdated++
		} else {
			stats.DocumentsAdded++
		}
		changed = append(changed, path)
	}

	// Delete documents that no longer exist
	for path := range existing {
		if !seen[path] {
			if err := tx.DeleteDocument(path); err != nil {
				return stats, err
			}
			stats.DocumentsDeleted++
		}
	}

	if stats.DocumentsAdded > 0 || stats.DocumentsDeleted > 0 {
		links, err := relinkAll(tx, src)
		if err != nil {
			return stats, err
		}
		stats.LinksAdded = links
	} else {
		for _, path := range changed {
			n, err := relink(tx, src, path)
			if err != nil {
				return stats, err
			}
			stats.LinksAdded += n
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, err
	}
	if err := idx.finishSync(); err != nil {
		return stats, err
	}
	stats.Duration = time.Since(start)
	return stats, nil
}

// Apply updates the index for a single document change. src must already
// reflect the change.
func (idx *Index) Apply(ctx context.Context, src ports.LinkSource, change domain.Change) error {
	previous, err := idx.Document(change.Path)
	if err != nil {
		return err
	}

	tx, err := idx.BeginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	structural := false
	switch change.Kind {
	case domain.ChangeDeleted:
		if err := tx.DeleteDocument(change.Path); err != nil {
			return err
		}
		structural = true

	case domain.ChangeRenamed:
		if err := tx.RenameDocument(change.OldPath, change.Path); err != nil {
			return err
		}
		if _, err := upsert(ctx, tx, src, change.Path); err != nil {
			return err
		}
		structural = true

	case domain.ChangeModified:
		present, err := upsert(ctx, tx, src, change.Path)
		if err != nil {
			return err
		}
		switch {
		case !present:
			if err := tx.DeleteDocument(change.Path); err != nil {
				return err
			}
			structural = previous != nil
		case previous == nil:
			structural = true
		default:
			if _, err := relink(tx, src, change.Path); err != nil {
				return err
			}
		}
	}

	if structural {
		if _, err := relinkAll(tx, src); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("applying %s change for %s: %w", change.Kind, change.Path, err)
	}
	return nil
}

// upsert writes the document row for path. Returns false when src has no
// metadata for it.
func upsert(ctx context.Context, tx ports.IndexTx, src ports.LinkSource, path string) (bool, error) {
	meta, err := src.Metadata(ctx, path)
	if err != nil {
		return false, err
	}
	if meta == nil {
		return false, nil
	}
	return true, tx.UpsertDocument(indexedDocument(meta))
}

// relink replaces the outgoing links of one document
func relink(tx ports.IndexTx, src ports.LinkSource, path string) (int, error) {
	if err := tx.DeleteLinksFrom(path); err != nil {
		return 0, err
	}
	n := 0
	for _, target := range src.LinkedPaths(path) {
		if err := tx.InsertLink(&domain.IndexedLink{SourcePath: path, TargetPath: target}); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func relinkAll(tx ports.IndexTx, src ports.LinkSource) (int, error) {
	total := 0
	for _, path := range src.Paths() {
		n, err := relink(tx, src, path)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func clearAll(tx ports.IndexTx) error {
	t, ok := tx.(*indexTx)
	if !ok {
		return fmt.Errorf("unexpected transaction type %T", tx)
	}
	if _, err := t.tx.Exec(`DELETE FROM documents`); err != nil {
		return err
	}
	_, err := t.tx.Exec(`DELETE FROM links`)
	return err
}

func (idx *Index) finishSync() error {
	if err := idx.updateMeta(); err != nil {
		return fmt.Errorf("failed to update metadata: %w", err)
	}
	// Update last sync time
	_, err := idx.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('last_sync_time', ?)`,
		time.Now().Unix())
	return err
}

func indexedDocument(meta *domain.DocumentMeta) *domain.IndexedDocument {
	return &domain.IndexedDocument{Path: meta.Path, Name: meta.Name, Mtime: meta.Mtime}
}

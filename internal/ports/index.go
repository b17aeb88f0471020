package ports

import (
	"context"

	"vaultgraph/internal/domain"
)

// LinkSource is the document side a link index is synchronised from
type LinkSource interface {
	Paths() []string
	Metadata(ctx context.Context, path string) (*domain.DocumentMeta, error)
	// LinkedPaths returns the resolved, deduplicated link targets of a document
	LinkedPaths(path string) []string
}

// LinkIndex is a persistent reverse-link index over a vault.
// Backlink queries should be O(log n) via database indexes.
type LinkIndex interface {
	BacklinkIndex

	// Lifecycle
	Open(vaultPath string) error
	Close() error

	// Sync operations
	NeedsFullRebuild() bool
	SyncIncremental(ctx context.Context, src LinkSource) (*domain.SyncStats, error)
	SyncFull(ctx context.Context, src LinkSource) (*domain.SyncStats, error)
	Apply(ctx context.Context, src LinkSource, change domain.Change) error

	// Link queries
	Document(path string) (*domain.IndexedDocument, error)
	LinksFrom(sourcePath string) ([]domain.IndexedLink, error)

	// Batch updates
	BeginTx() (IndexTx, error)
}

// IndexTx represents a transaction for atomic index updates
type IndexTx interface {
	// Document operations
	UpsertDocument(doc *domain.IndexedDocument) error
	DeleteDocument(path string) error
	RenameDocument(oldPath, newPath string) error

	// Link operations
	DeleteLinksFrom(sourcePath string) error
	InsertLink(link *domain.IndexedLink) error

	// Transaction control
	Commit() error
	Rollback() error
}

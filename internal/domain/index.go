package domain

import "time"

// IndexedDocument is a document row of the persistent link index
type IndexedDocument struct {
	Path  string // Relative path from vault root (primary key)
	Name  string // Logical name, the base name without extension
	Mtime int64  // Unix timestamp for incremental sync
}

// IndexedLink is a resolved link between two documents
type IndexedLink struct {
	SourcePath string // File containing the link
	TargetPath string // Document the link resolves to
}

// SyncStats holds statistics from a sync operation
type SyncStats struct {
	DocumentsAdded   int
	DocumentsUpdated int
	DocumentsDeleted int
	LinksAdded       int
	FilesScanned     int
	Duration         time.Duration
}

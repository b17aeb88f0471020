package ports

import (
	"context"

	"vaultgraph/internal/domain"
)

// DocumentStore is the host document corpus: link resolution, cached
// structural metadata, content and the forward-link index.
type DocumentStore interface {
	// ResolveLink locates the document a link points at, relative to
	// sourcePath. ok is false for dangling links.
	ResolveLink(link, sourcePath string) (path string, ok bool)

	// Metadata returns the cached structure of a document, or nil when the
	// document does not exist or has not been indexed yet.
	Metadata(ctx context.Context, path string) (*domain.DocumentMeta, error)

	// ReadContent reads the full text of a document
	ReadContent(ctx context.Context, path string) (string, error)

	// Exists reports whether a document currently exists
	Exists(path string) bool

	// ForwardLinks returns the resolved forward-link index: path -> linked paths
	ForwardLinks(ctx context.Context) (map[string][]string, error)

	// Subscribe registers a change listener and returns its cancel func
	Subscribe(fn func(domain.Change)) (cancel func())
}

// IndexSignal is the capability of a document store to tell when its
// metadata for a path has caught up with the file system.
type IndexSignal interface {
	// Indexed returns a channel closed once metadata for path is current
	Indexed(path string) <-chan struct{}
}

// BacklinkIndex answers "which documents link to this one"
type BacklinkIndex interface {
	Backlinks(ctx context.Context, path string) ([]string, error)
}

// DocumentWriter appends text to existing documents
type DocumentWriter interface {
	AppendContent(ctx context.Context, path, text string) error
}

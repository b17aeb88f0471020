package linkgraph

import (
	"strings"

	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

// Resolver maps link text and document paths to graph identities
type Resolver struct {
	docs ports.DocumentStore
}

// NewResolver creates a resolver over a document store
func NewResolver(docs ports.DocumentStore) *Resolver {
	return &Resolver{docs: docs}
}

// Resolve returns the identity a link points at from sourcePath. Links to
// missing documents resolve to a dangling placeholder built from the
// normalised link path, so the same text always yields the same id.
func (r *Resolver) Resolve(link, sourcePath string) (id domain.VizID, path string, ok bool) {
	target := NormalizeLink(link)
	if target == "" {
		return domain.VizID{}, "", false
	}
	if p, found := r.docs.ResolveLink(target, sourcePath); found {
		return r.IDForPath(p), p, true
	}
	return domain.NewVizID(strings.TrimSuffix(target, ".md")), "", false
}

// IDForPath returns the identity of an existing document
func (r *Resolver) IDForPath(path string) domain.VizID {
	return domain.NewVizID(domain.DocumentName(path))
}

// PathForID finds the document behind a core identity
func (r *Resolver) PathForID(id domain.VizID) (string, bool) {
	if id.Store != domain.StoreCore {
		return "", false
	}
	return r.docs.ResolveLink(id.ID, "")
}

// NormalizeLink strips aliases, headings and block references from link text
func NormalizeLink(link string) string {
	if i := strings.IndexByte(link, '|'); i >= 0 {
		link = link[:i]
	}
	if i := strings.IndexByte(link, '#'); i >= 0 {
		link = link[:i]
	}
	if i := strings.IndexByte(link, '^'); i >= 0 {
		link = link[:i]
	}
	link = strings.ReplaceAll(strings.TrimSpace(link), "\\", "/")
	return strings.TrimPrefix(link, "./")
}

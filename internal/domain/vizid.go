package domain

import (
	"fmt"
	"path"
	"strings"
)

// StoreID tags the origin store that contributed a graph node
type StoreID string

const (
	// StoreCore is the document corpus (markdown files in the vault)
	StoreCore StoreID = "core"
	// StoreTerminal holds user-created annotation nodes that no document backs
	StoreTerminal StoreID = "terminal"
)

// VizID identifies a graph node across all origin stores.
// Its serialized form is the sole dedupe key of the live graph.
type VizID struct {
	ID    string // logical name, e.g. "Project Alpha"
	Store StoreID
}

// NewVizID builds a core-store identity for a logical document name
func NewVizID(name string) VizID {
	return VizID{ID: name, Store: StoreCore}
}

// String serializes the identity as "<store>:<id>"
func (v VizID) String() string {
	return string(v.Store) + ":" + v.ID
}

// IsZero reports whether the identity is unset
func (v VizID) IsZero() bool {
	return v.ID == "" && v.Store == ""
}

// ParseVizID parses a serialized identity. The store tag never contains a
// colon, so the first colon is the separator and ids may contain colons.
func ParseVizID(s string) (VizID, error) {
	store, id, ok := strings.Cut(s, ":")
	if !ok || store == "" || id == "" {
		return VizID{}, fmt.Errorf("invalid node id: %q", s)
	}
	return VizID{ID: id, Store: StoreID(store)}, nil
}

// DocumentName returns the logical name of a document path: the base name
// without its markdown extension ("notes/Project.md" -> "Project")
func DocumentName(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// IsMarkdown reports whether a path names a supported textual document
func IsMarkdown(p string) bool {
	return strings.EqualFold(path.Ext(p), ".md")
}

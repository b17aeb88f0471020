package domain

// Span locates a reference in a document's raw content
type Span struct {
	StartOffset int `json:"start_offset"`
	EndOffset   int `json:"end_offset"`
	StartLine   int `json:"start_line"` // zero based
	StartCol    int `json:"start_col"`
	EndLine     int `json:"end_line"`
	EndCol      int `json:"end_col"`
}

// Reference is a structural link found in a document body
type Reference struct {
	Link     string `json:"link"`     // raw target text, e.g. "Project#Goals"
	Original string `json:"original"` // full source text, e.g. "[[Project#Goals|goals]]"
	Span     Span   `json:"span"`
}

// FrontmatterReference is a link declared in front matter under a dotted key
type FrontmatterReference struct {
	Key      string `json:"key"` // e.g. "related.friend" or "related.0"
	Link     string `json:"link"`
	Original string `json:"original"`
}

// DocumentMeta is the cached structural metadata of one document
type DocumentMeta struct {
	Path             string                 `json:"path"` // vault-relative, forward slashes
	Name             string                 `json:"name"`
	Mtime            int64                  `json:"mtime"`
	Links            []Reference            `json:"links,omitempty"`
	FrontmatterLinks []FrontmatterReference `json:"frontmatter_links,omitempty"`
	Tags             []string               `json:"tags,omitempty"`
	Aliases          []string               `json:"aliases,omitempty"`
}

// ChangeKind is the kind of document change notification
type ChangeKind int

const (
	ChangeModified ChangeKind = iota
	ChangeRenamed
	ChangeDeleted
)

// String returns the string representation of the change kind
func (k ChangeKind) String() string {
	switch k {
	case ChangeModified:
		return "modified"
	case ChangeRenamed:
		return "renamed"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is a document change notification from the document store
type Change struct {
	Kind    ChangeKind
	Path    string // current path (new path for renames)
	OldPath string // renames only
}

// UpToDateMarker is the append sentinel that marks a document as caught up
const UpToDateMarker = "%% vaultgraph: up to date %%"

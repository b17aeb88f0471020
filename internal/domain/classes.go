package domain

import "strings"

// Graph-membership classes layered onto live elements. None are persisted.
const (
	ClassExpanded  = "expanded"
	ClassProtected = "protected"
	ClassActive    = "active"
	ClassPinned    = "pinned"
	ClassFiltered  = "filtered"

	ClassNote        = "note"
	ClassDangling    = "dangling"
	ClassInline      = "inline"
	ClassFrontmatter = "frontmatter"
	ClassTerminal    = "terminal"
)

const (
	typeClassPrefix     = "type-"
	tagClassPrefix      = "tag-"
	incomingClassPrefix = "has-incoming-"
	outgoingClassPrefix = "has-outgoing-"
)

// TypeClass returns the class for an edge type token ("type-friend")
func TypeClass(edgeType string) string {
	return typeClassPrefix + ClassToken(edgeType)
}

// TagClass returns the class for a document tag ("tag-project")
func TagClass(tag string) string {
	return tagClassPrefix + ClassToken(strings.TrimPrefix(tag, "#"))
}

// IncomingClass returns the derived class for nodes with an incoming edge of a type
func IncomingClass(edgeType string) string {
	return incomingClassPrefix + ClassToken(edgeType)
}

// OutgoingClass returns the derived class for nodes with an outgoing edge of a type
func OutgoingClass(edgeType string) string {
	return outgoingClassPrefix + ClassToken(edgeType)
}

// IsDerivedClass reports whether a class is recomputed on every structural change
func IsDerivedClass(class string) bool {
	return strings.HasPrefix(class, incomingClassPrefix) || strings.HasPrefix(class, outgoingClassPrefix)
}

// ClassToken turns a label into a CSS-safe token. Underscores and dashes are
// kept as written; whitespace and slashes become dashes.
func ClassToken(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r == ' ' || r == '\t' || r == '/' || r == '\\':
			b.WriteByte('-')
		case r == '.' || r == '#' || r == ':' || r == ',' || r == '"' || r == '\'':
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DisplayType renders a type token for presentation (underscores as spaces)
func DisplayType(edgeType string) string {
	return strings.ReplaceAll(edgeType, "_", " ")
}

// EdgeToken is the type token of an edge for derived node classes;
// untyped inline edges count as "inline"
func EdgeToken(e EdgeDefinition) string {
	if t := strings.TrimSpace(e.Type); t != "" {
		return t
	}
	return ClassInline
}

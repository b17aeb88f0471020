package linkgraph

import (
	"regexp"
	"strconv"
	"strings"

	"vaultgraph/internal/domain"
)

// ParsedReference is one reference normalised to (link, type, context)
type ParsedReference struct {
	Link        string
	Type        string // raw token, empty for untyped inline links
	Context     string
	Frontmatter bool
}

// A list item of the form "- friend [[Bob]]" types every link on its line
var typedLinePattern = regexp.MustCompile(`^\s*[-*+]\s+([\p{L}\p{N}_-]+):?\s+\[\[`)

// ParseReferences enumerates a document's references: body links first, in
// document order, then front-matter links. content slices display context and
// may be empty, in which case the reference's original text is used.
func ParseReferences(meta *domain.DocumentMeta, content string) []ParsedReference {
	if meta == nil {
		return nil
	}

	refs := make([]ParsedReference, 0, len(meta.Links)+len(meta.FrontmatterLinks))
	for _, link := range meta.Links {
		context := sliceContext(content, link.Span)
		if context == "" {
			context = link.Original
		}
		refs = append(refs, ParsedReference{
			Link:    link.Link,
			Type:    inlineType(content, link.Span),
			Context: context,
		})
	}

	for _, fm := range meta.FrontmatterLinks {
		refs = append(refs, ParsedReference{
			Link:        fm.Link,
			Type:        RelationType(fm.Key),
			Context:     fm.Key + ": " + fm.Original,
			Frontmatter: true,
		})
	}
	return refs
}

// RelationType derives an edge type from a dotted front-matter key: the last
// segment that is not a list index. "related.friend" -> "friend",
// "related.0" -> "related", "project" -> "project".
func RelationType(key string) string {
	segments := strings.Split(key, ".")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := strings.TrimSpace(segments[i])
		if seg == "" {
			continue
		}
		if _, err := strconv.Atoi(seg); err == nil {
			continue
		}
		return seg
	}
	return key
}

// sliceContext returns the full lines covered by a span, trimmed. Returns ""
// when the span no longer fits the content.
func sliceContext(content string, span domain.Span) string {
	start, end := span.StartOffset, span.EndOffset
	if content == "" || start < 0 || end > len(content) || start > end {
		return ""
	}
	lineStart := strings.LastIndexByte(content[:start], '\n') + 1
	lineEnd := len(content)
	if i := strings.IndexByte(content[end:], '\n'); i >= 0 {
		lineEnd = end + i
	}
	return strings.TrimSpace(content[lineStart:lineEnd])
}

func inlineType(content string, span domain.Span) string {
	line := sliceContext(content, span)
	if line == "" {
		return ""
	}
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	m := typedLinePattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[1]
}

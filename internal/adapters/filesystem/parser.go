package filesystem

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"vaultgraph/internal/domain"
)

// Link patterns for Obsidian wiki links ([[Target#Heading|alias]], embeds
// included) and markdown links to notes ([text](Target.md))
var (
	wikiLinkPattern     = regexp.MustCompile(`!?\[\[([^\]|]+)(?:\|[^\]]+)?\]\]`)
	markdownLinkPattern = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+\.md)(?:#[^)\s]*)?\)`)
	tagPattern          = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}_/-]*[\p{L}_/-][\p{L}\p{N}_/-]*)`)
)

// ParseDocument extracts a document's structural metadata. A malformed front
// matter block is reported as an error alongside metadata for the body.
func ParseDocument(relPath string, content []byte, mtime int64) (*domain.DocumentMeta, error) {
	meta := &domain.DocumentMeta{
		Path:  relPath,
		Name:  domain.DocumentName(relPath),
		Mtime: mtime,
	}
	text := string(content)

	fmRaw, bodyStart := splitFrontmatter(text)
	var fmErr error
	if fmRaw != "" {
		var fm map[string]any
		if err := yaml.Unmarshal([]byte(fmRaw), &fm); err != nil {
			fmErr = fmt.Errorf("front matter in %s: %w", relPath, err)
		} else {
			meta.FrontmatterLinks = frontmatterLinks("", fm, nil)
			meta.Tags = stringList(fm["tags"])
			meta.Aliases = stringList(fm["aliases"])
		}
	}

	fences := codeFences(text, bodyStart)
	lines := newLineIndex(text)

	for _, m := range wikiLinkPattern.FindAllStringSubmatchIndex(text[bodyStart:], -1) {
		start, end := m[0]+bodyStart, m[1]+bodyStart
		if inRanges(fences, start) {
			continue
		}
		meta.Links = append(meta.Links, domain.Reference{
			Link:     strings.TrimSpace(text[m[2]+bodyStart : m[3]+bodyStart]),
			Original: text[start:end],
			Span:     lines.span(start, end),
		})
	}
	for _, m := range markdownLinkPattern.FindAllStringSubmatchIndex(text[bodyStart:], -1) {
		start, end := m[0]+bodyStart, m[1]+bodyStart
		if inRanges(fences, start) || (start > 0 && text[start-1] == '!') {
			continue
		}
		target := text[m[2]+bodyStart : m[3]+bodyStart]
		if strings.Contains(target, "://") {
			continue
		}
		if unescaped, err := url.PathUnescape(target); err == nil {
			target = unescaped
		}
		meta.Links = append(meta.Links, domain.Reference{
			Link:     target,
			Original: text[start:end],
			Span:     lines.span(start, end),
		})
	}
	slices.SortStableFunc(meta.Links, func(a, b domain.Reference) int {
		return a.Span.StartOffset - b.Span.StartOffset
	})

	for _, m := range tagPattern.FindAllStringSubmatchIndex(text[bodyStart:], -1) {
		if inRanges(fences, m[2]+bodyStart) {
			continue
		}
		tag := text[m[2]+bodyStart : m[3]+bodyStart]
		if !slices.Contains(meta.Tags, tag) {
			meta.Tags = append(meta.Tags, tag)
		}
	}

	return meta, fmErr
}

// splitFrontmatter returns the raw YAML block and the offset where the body
// starts. Documents without a leading "---" line have no front matter.
func splitFrontmatter(text string) (string, int) {
	first, rest, ok := strings.Cut(text, "\n")
	if !ok || strings.TrimRight(first, "\r ") != "---" {
		return "", 0
	}
	offset := len(first) + 1
	for rest != "" {
		line, next, found := strings.Cut(rest, "\n")
		trimmed := strings.TrimRight(line, "\r ")
		if trimmed == "---" || trimmed == "..." {
			end := offset + len(line)
			if found {
				end++
			}
			return text[len(first)+1 : offset], end
		}
		offset += len(line)
		if found {
			offset++
		}
		rest = next
	}
	return "", 0
}

// frontmatterLinks walks the YAML tree and collects every wiki link found in a
// string value, keyed by its dotted path
func frontmatterLinks(prefix string, node any, out []domain.FrontmatterReference) []domain.FrontmatterReference {
	switch v := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			out = frontmatterLinks(joinKey(prefix, k), v[k], out)
		}
	case []any:
		for i, item := range v {
			out = frontmatterLinks(joinKey(prefix, strconv.Itoa(i)), item, out)
		}
	case string:
		for _, m := range wikiLinkPattern.FindAllStringSubmatch(v, -1) {
			out = append(out, domain.FrontmatterReference{
				Key:      prefix,
				Link:     strings.TrimSpace(m[1]),
				Original: m[0],
			})
		}
	}
	return out
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// stringList accepts a YAML scalar, comma separated string or list
func stringList(v any) []string {
	var out []string
	add := func(s string) {
		s = strings.TrimPrefix(strings.TrimSpace(s), "#")
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	switch t := v.(type) {
	case string:
		for _, s := range strings.Split(t, ",") {
			add(s)
		}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	}
	return out
}

// codeFences returns the byte ranges of fenced code blocks after from
func codeFences(text string, from int) [][2]int {
	var (
		ranges [][2]int
		open   = -1
		offset = from
	)
	for _, line := range strings.SplitAfter(text[from:], "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if open < 0 {
				open = offset
			} else {
				ranges = append(ranges, [2]int{open, offset + len(line)})
				open = -1
			}
		}
		offset += len(line)
	}
	if open >= 0 {
		ranges = append(ranges, [2]int{open, len(text)})
	}
	return ranges
}

func inRanges(ranges [][2]int, offset int) bool {
	for _, r := range ranges {
		if offset >= r[0] && offset < r[1] {
			return true
		}
	}
	return false
}

// lineIndex maps byte offsets to zero based line and column
type lineIndex []int

func newLineIndex(text string) lineIndex {
	starts := lineIndex{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (l lineIndex) position(offset int) (line, col int) {
	line, _ = slices.BinarySearch(l, offset+1)
	line--
	return line, offset - l[line]
}

func (l lineIndex) span(start, end int) domain.Span {
	sl, sc := l.position(start)
	el, ec := l.position(end)
	return domain.Span{
		StartOffset: start,
		EndOffset:   end,
		StartLine:   sl,
		StartCol:    sc,
		EndLine:     el,
		EndCol:      ec,
	}
}

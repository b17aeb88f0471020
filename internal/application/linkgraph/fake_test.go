package linkgraph

import (
	"context"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"vaultgraph/internal/domain"
)

var testLinkPattern = regexp.MustCompile(`\[\[([^\]|]+)(?:\|[^\]]+)?\]\]`)

type fakeDoc struct {
	content string
	fm      []domain.FrontmatterReference
}

// fakeDocs is an in-memory document store keyed by vault-relative path
type fakeDocs struct {
	docs      map[string]*fakeDoc
	unindexed map[string]bool
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{docs: make(map[string]*fakeDoc), unindexed: make(map[string]bool)}
}

func (f *fakeDocs) add(p, content string, fm ...domain.FrontmatterReference) {
	f.docs[p] = &fakeDoc{content: content, fm: fm}
}

func (f *fakeDocs) ResolveLink(link, sourcePath string) (string, bool) {
	link = strings.TrimSuffix(link, ".md")
	if _, ok := f.docs[link+".md"]; ok {
		return link + ".md", true
	}
	var matches []string
	for p := range f.docs {
		if domain.DocumentName(p) == path.Base(link) {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[0], true
}

func (f *fakeDocs) Metadata(_ context.Context, p string) (*domain.DocumentMeta, error) {
	d, ok := f.docs[p]
	if !ok || f.unindexed[p] {
		return nil, nil
	}
	meta := &domain.DocumentMeta{Path: p, Name: domain.DocumentName(p), FrontmatterLinks: d.fm}
	for _, m := range testLinkPattern.FindAllStringSubmatchIndex(d.content, -1) {
		meta.Links = append(meta.Links, domain.Reference{
			Link:     d.content[m[2]:m[3]],
			Original: d.content[m[0]:m[1]],
			Span:     domain.Span{StartOffset: m[0], EndOffset: m[1]},
		})
	}
	return meta, nil
}

func (f *fakeDocs) ReadContent(_ context.Context, p string) (string, error) {
	d, ok := f.docs[p]
	if !ok {
		return "", os.ErrNotExist
	}
	return d.content, nil
}

func (f *fakeDocs) Exists(p string) bool {
	_, ok := f.docs[p]
	return ok
}

func (f *fakeDocs) ForwardLinks(ctx context.Context) (map[string][]string, error) {
	index := make(map[string][]string)
	for p := range f.docs {
		meta, _ := f.Metadata(ctx, p)
		if meta == nil {
			continue
		}
		for _, l := range meta.Links {
			if target, ok := f.ResolveLink(NormalizeLink(l.Link), p); ok {
				index[p] = append(index[p], target)
			}
		}
		for _, l := range meta.FrontmatterLinks {
			if target, ok := f.ResolveLink(NormalizeLink(l.Link), p); ok {
				index[p] = append(index[p], target)
			}
		}
	}
	return index, nil
}

func (f *fakeDocs) Subscribe(func(domain.Change)) func() {
	return func() {}
}

package workspace

import (
	"context"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"vaultgraph/internal/adapters/memgraph"
	"vaultgraph/internal/application/linkgraph"
	"vaultgraph/internal/domain"
)

var testLinkPattern = regexp.MustCompile(`\[\[([^\]|]+)(?:\|[^\]]+)?\]\]`)

type fakeDoc struct {
	content string
	fm      []domain.FrontmatterReference
}

// fakeDocs is a mutable in-memory document store
type fakeDocs struct {
	mu        sync.Mutex
	docs      map[string]*fakeDoc
	unindexed map[string]bool
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{docs: make(map[string]*fakeDoc), unindexed: make(map[string]bool)}
}

func (f *fakeDocs) add(p, content string, fm ...domain.FrontmatterReference) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[p] = &fakeDoc{content: content, fm: fm}
}

func (f *fakeDocs) remove(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, p)
}

func (f *fakeDocs) rename(from, to string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[to] = f.docs[from]
	delete(f.docs, from)
}

func (f *fakeDocs) setIndexed(p string, indexed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unindexed[p] = !indexed
}

func (f *fakeDocs) ResolveLink(link, _ string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link = strings.TrimSuffix(link, ".md")
	var matches []string
	for p := range f.docs {
		if p == link+".md" || domain.DocumentName(p) == link {
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
	f.mu.Lock()
	defer f.mu.Unlock()
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
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[p]
	if !ok {
		return "", os.ErrNotExist
	}
	return d.content, nil
}

func (f *fakeDocs) Exists(p string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[p]
	return ok
}

func (f *fakeDocs) ForwardLinks(ctx context.Context) (map[string][]string, error) {
	f.mu.Lock()
	paths := make([]string, 0, len(f.docs))
	for p := range f.docs {
		paths = append(paths, p)
	}
	f.mu.Unlock()

	index := make(map[string][]string)
	for _, p := range paths {
		meta, _ := f.Metadata(ctx, p)
		if meta == nil {
			continue
		}
		for _, l := range meta.Links {
			if target, ok := f.ResolveLink(linkgraph.NormalizeLink(l.Link), p); ok {
				index[p] = append(index[p], target)
			}
		}
	}
	return index, nil
}

func (f *fakeDocs) Subscribe(func(domain.Change)) func() {
	return func() {}
}

// recorder collects workspace events
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func newTestWorkspace(t *testing.T, docs *fakeDocs, opts Options) (*Workspace, *memgraph.Graph, *recorder) {
	t.Helper()
	store := linkgraph.NewStore(docs, linkgraph.Options{MergeEdges: true})
	view := memgraph.New()
	w := New(NewRegistry(nil), Deps{Docs: docs, Core: store, View: view}, opts)
	t.Cleanup(w.Close)

	rec := &recorder{}
	w.Subscribe(rec.record)
	return w, view, rec
}

func open(t *testing.T, w *Workspace, seeds ...string) {
	t.Helper()
	var ids []domain.VizID
	for _, s := range seeds {
		ids = append(ids, domain.NewVizID(s))
	}
	if err := w.Open(t.Context(), ids); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

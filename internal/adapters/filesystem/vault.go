package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

// Vault implements ports.DocumentStore and ports.IndexSignal over a directory
// of markdown files. Metadata is kept in memory and refreshed by the watcher.
type Vault struct {
	root   string
	logger *slog.Logger

	mu      sync.RWMutex
	docs    map[string]*domain.DocumentMeta // relative path -> metadata
	byName  map[string][]string             // lowercased name -> sorted paths
	pending map[string]bool                 // paths with unindexed changes
	waiters map[string][]chan struct{}

	subMu  sync.Mutex
	subs   map[int]func(domain.Change)
	nextID int
	queue  chan domain.Change
	done   chan struct{}
	once   sync.Once
}

var (
	_ ports.DocumentStore  = (*Vault)(nil)
	_ ports.DocumentWriter = (*Vault)(nil)
	_ ports.IndexSignal    = (*Vault)(nil)
	_ ports.LinkSource     = (*Vault)(nil)
)

// NewVault creates a vault rooted at root. Call Load to index its documents.
func NewVault(root string, logger *slog.Logger) (*Vault, error) {
	if len(root) > 0 && root[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		root = filepath.Join(home, root[1:])
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault %s is not a directory", abs)
	}
	if logger == nil {
		logger = slog.Default()
	}

	v := &Vault{
		root:    abs,
		logger:  logger,
		docs:    make(map[string]*domain.DocumentMeta),
		byName:  make(map[string][]string),
		pending: make(map[string]bool),
		waiters: make(map[string][]chan struct{}),
		subs:    make(map[int]func(domain.Change)),
		queue:   make(chan domain.Change, 256),
		done:    make(chan struct{}),
	}
	go v.dispatch()
	return v, nil
}

// Root returns the absolute vault directory
func (v *Vault) Root() string {
	return v.root
}

// Close stops change dispatching
func (v *Vault) Close() error {
	v.once.Do(func() { close(v.done) })
	return nil
}

// Load indexes every markdown document in the vault, skipping hidden directories
func (v *Vault) Load(ctx context.Context) (int, error) {
	count := 0
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !domain.IsMarkdown(p) {
			return nil
		}
		rel, err := v.rel(p)
		if err != nil {
			return nil
		}
		if err := v.IndexFile(rel); err != nil {
			v.logger.Warn("indexing document", "path", rel, "error", err)
			return nil
		}
		count++
		return nil
	})
	return count, err
}

// IndexFile parses one document and replaces its cached metadata. Waiters on
// the path are released even when the file turns out to be missing.
func (v *Vault) IndexFile(rel string) error {
	rel = filepath.ToSlash(rel)
	full := filepath.Join(v.root, filepath.FromSlash(rel))

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			v.Forget(rel)
			return nil
		}
		return err
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return err
	}
	meta, parseErr := ParseDocument(rel, content, info.ModTime().Unix())
	if parseErr != nil {
		v.logger.Warn("parsing document", "path", rel, "error", parseErr)
	}

	v.mu.Lock()
	if _, ok := v.docs[rel]; !ok {
		key := strings.ToLower(meta.Name)
		v.byName[key] = insertSorted(v.byName[key], rel)
	}
	v.docs[rel] = meta
	v.releaseLocked(rel)
	v.mu.Unlock()
	return nil
}

// Forget drops a document from the index
func (v *Vault) Forget(rel string) {
	rel = filepath.ToSlash(rel)
	v.mu.Lock()
	defer v.mu.Unlock()
	if meta, ok := v.docs[rel]; ok {
		key := strings.ToLower(meta.Name)
		paths := slices.DeleteFunc(v.byName[key], func(p string) bool { return p == rel })
		if len(paths) == 0 {
			delete(v.byName, key)
		} else {
			v.byName[key] = paths
		}
		delete(v.docs, rel)
	}
	v.releaseLocked(rel)
}

// MarkPending records that path changed on disk and its metadata is stale
func (v *Vault) MarkPending(rel string) {
	v.mu.Lock()
	v.pending[filepath.ToSlash(rel)] = true
	v.mu.Unlock()
}

func (v *Vault) releaseLocked(rel string) {
	delete(v.pending, rel)
	for _, ch := range v.waiters[rel] {
		close(ch)
	}
	delete(v.waiters, rel)
}

// Indexed returns a channel closed once metadata for path is current. A
// path that is neither indexed nor pending has nothing to wait for.
func (v *Vault) Indexed(p string) <-chan struct{} {
	p = filepath.ToSlash(p)
	ch := make(chan struct{})
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.pending[p] {
		close(ch)
		return ch
	}
	v.waiters[p] = append(v.waiters[p], ch)
	return ch
}

// ResolveLink locates a document by exact path, then relative to the source
// document, then by name. Ambiguous names prefer the shortest path.
func (v *Vault) ResolveLink(link, sourcePath string) (string, bool) {
	link = strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(link)), "/")
	if link == "" {
		return "", false
	}
	withExt := link
	if !domain.IsMarkdown(link) {
		withExt = link + ".md"
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if _, ok := v.docs[withExt]; ok {
		return withExt, true
	}
	if sourcePath != "" {
		rel := path.Join(path.Dir(filepath.ToSlash(sourcePath)), withExt)
		if _, ok := v.docs[rel]; ok {
			return rel, true
		}
	}

	candidates := v.byName[strings.ToLower(domain.DocumentName(withExt))]
	var best string
	for _, c := range candidates {
		if strings.Contains(link, "/") && !strings.HasSuffix(strings.ToLower(c), "/"+strings.ToLower(withExt)) {
			continue
		}
		if best == "" || len(c) < len(best) {
			best = c
		}
	}
	return best, best != ""
}

// Metadata returns the cached metadata of a document, nil when not indexed
func (v *Vault) Metadata(ctx context.Context, p string) (*domain.DocumentMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	meta, ok := v.docs[filepath.ToSlash(p)]
	if !ok {
		return nil, nil
	}
	cp := *meta
	return &cp, nil
}

// ReadContent reads the full text of a document
func (v *Vault) ReadContent(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := os.ReadFile(filepath.Join(v.root, filepath.FromSlash(p)))
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// AppendContent appends text to an existing document
func (v *Vault) AppendContent(ctx context.Context, p, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(v.root, filepath.FromSlash(p)), os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Exists reports whether a document currently exists on disk
func (v *Vault) Exists(p string) bool {
	info, err := os.Stat(filepath.Join(v.root, filepath.FromSlash(p)))
	return err == nil && !info.IsDir()
}

// ForwardLinks resolves every indexed document's links: path -> linked paths
func (v *Vault) ForwardLinks(ctx context.Context) (map[string][]string, error) {
	v.mu.RLock()
	metas := make([]*domain.DocumentMeta, 0, len(v.docs))
	for _, meta := range v.docs {
		metas = append(metas, meta)
	}
	v.mu.RUnlock()

	index := make(map[string][]string, len(metas))
	for _, meta := range metas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		index[meta.Path] = v.linkedPaths(meta)
	}
	return index, nil
}

// LinkedPaths returns the resolved, deduplicated targets of one document
func (v *Vault) LinkedPaths(p string) []string {
	v.mu.RLock()
	meta, ok := v.docs[filepath.ToSlash(p)]
	v.mu.RUnlock()
	if !ok {
		return nil
	}
	return v.linkedPaths(meta)
}

func (v *Vault) linkedPaths(meta *domain.DocumentMeta) []string {
	var out []string
	add := func(link string) {
		target, ok := v.ResolveLink(stripLinkSuffix(link), meta.Path)
		if ok && !slices.Contains(out, target) {
			out = append(out, target)
		}
	}
	for _, l := range meta.Links {
		add(l.Link)
	}
	for _, l := range meta.FrontmatterLinks {
		add(l.Link)
	}
	return out
}

// Paths returns every indexed document path, sorted
func (v *Vault) Paths() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	paths := make([]string, 0, len(v.docs))
	for p := range v.docs {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Subscribe registers a change listener. Listeners run sequentially on the
// vault's dispatch goroutine in publication order.
func (v *Vault) Subscribe(fn func(domain.Change)) func() {
	v.subMu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	v.subMu.Unlock()
	return func() {
		v.subMu.Lock()
		delete(v.subs, id)
		v.subMu.Unlock()
	}
}

// Publish queues a change notification for all listeners
func (v *Vault) Publish(c domain.Change) {
	select {
	case v.queue <- c:
	case <-v.done:
	}
}

func (v *Vault) dispatch() {
	for {
		select {
		case c := <-v.queue:
			v.subMu.Lock()
			ids := make([]int, 0, len(v.subs))
			for id := range v.subs {
				ids = append(ids, id)
			}
			slices.Sort(ids)
			fns := make([]func(domain.Change), 0, len(ids))
			for _, id := range ids {
				fns = append(fns, v.subs[id])
			}
			v.subMu.Unlock()
			for _, fn := range fns {
				fn(c)
			}
		case <-v.done:
			return
		}
	}
}

func (v *Vault) rel(full string) (string, error) {
	rel, err := filepath.Rel(v.root, full)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// stripLinkSuffix drops heading, block and alias parts from link text
func stripLinkSuffix(link string) string {
	if i := strings.IndexAny(link, "#^|"); i >= 0 {
		link = link[:i]
	}
	return strings.TrimSpace(link)
}

func insertSorted(paths []string, p string) []string {
	i, found := slices.BinarySearch(paths, p)
	if found {
		return paths
	}
	return slices.Insert(paths, i, p)
}

package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"vaultgraph/internal/domain"
)

// DefaultDebounce is the window in which raw file events are batched
const DefaultDebounce = 100 * time.Millisecond

// Op is a simplified file system operation
type Op int

const (
	OpWrite Op = iota
	OpCreate
	OpRemove
	OpRename
)

// RawEvent is one file system event with a vault-relative path
type RawEvent struct {
	Path string
	Op   Op
}

// Watcher feeds file system events into a vault: stale paths are marked,
// listeners are notified and metadata is re-indexed
type Watcher struct {
	vault    *Vault
	fsw      *fsnotify.Watcher
	debounce time.Duration

	events   chan RawEvent
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Watch starts watching the vault recursively. Stop the watcher, or cancel
// ctx, to release it.
func (v *Vault) Watch(ctx context.Context, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		vault:    v,
		fsw:      fsw,
		debounce: debounce,
		events:   make(chan RawEvent, 256),
		done:     make(chan struct{}),
	}
	if err := w.addRecursive(v.root); err != nil {
		fsw.Close()
		return nil, err
	}

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return w, nil
}

// Stop stops watching. Safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.vault.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.vault.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := w.vault.rel(ev.Name)
	if err != nil || hiddenPath(rel) {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				w.vault.logger.Warn("watching new directory", "path", rel, "error", err)
			}
			return
		}
	}
	if !domain.IsMarkdown(rel) {
		return
	}
	op, ok := convertOp(ev.Op)
	if !ok {
		return
	}
	select {
	case w.events <- RawEvent{Path: rel, Op: op}:
	case <-w.done:
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()
	var (
		batch []RawEvent
		timer *time.Timer
		fire  <-chan time.Time
	)
	flush := func() {
		if len(batch) > 0 {
			w.vault.Apply(Changes(batch))
			batch = nil
		}
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev := <-w.events:
			batch = append(batch, ev)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			flush()
		}
	}
}

// Apply publishes changes and brings the index up to date. Listeners are
// notified before re-indexing completes; they wait on Indexed when they need
// fresh metadata.
func (v *Vault) Apply(changes []domain.Change) {
	for _, c := range changes {
		v.MarkPending(c.Path)
		v.Publish(c)
	}
	for _, c := range changes {
		if c.Kind == domain.ChangeRenamed {
			v.Forget(c.OldPath)
		}
		if c.Kind == domain.ChangeDeleted {
			v.Forget(c.Path)
			continue
		}
		if err := v.IndexFile(c.Path); err != nil {
			v.logger.Warn("re-indexing document", "path", c.Path, "error", err)
			v.Forget(c.Path)
		}
	}
}

// Changes folds a batch of raw events into document changes. A rename of an
// old path followed by a create pairs into one rename; unpaired renames are
// moves out of the vault and count as deletions. Repeated events for a path
// collapse into the last one.
func Changes(events []RawEvent) []domain.Change {
	var (
		out      []domain.Change
		index    = make(map[string]int)
		renamed  []string
		setEvent = func(c domain.Change) {
			if i, ok := index[c.Path]; ok {
				if out[i].Kind == domain.ChangeRenamed && c.Kind == domain.ChangeModified {
					return
				}
				out[i] = c
				return
			}
			index[c.Path] = len(out)
			out = append(out, c)
		}
	)
	for _, ev := range events {
		switch ev.Op {
		case OpRename:
			renamed = append(renamed, ev.Path)
		case OpCreate:
			if len(renamed) > 0 {
				old := renamed[0]
				renamed = renamed[1:]
				setEvent(domain.Change{Kind: domain.ChangeRenamed, Path: ev.Path, OldPath: old})
				continue
			}
			setEvent(domain.Change{Kind: domain.ChangeModified, Path: ev.Path})
		case OpWrite:
			setEvent(domain.Change{Kind: domain.ChangeModified, Path: ev.Path})
		case OpRemove:
			setEvent(domain.Change{Kind: domain.ChangeDeleted, Path: ev.Path})
		}
	}
	for _, old := range renamed {
		setEvent(domain.Change{Kind: domain.ChangeDeleted, Path: old})
	}
	return out
}

func convertOp(op fsnotify.Op) (Op, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	}
	return 0, false
}

func hiddenPath(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") && part != "." {
			return true
		}
	}
	return false
}

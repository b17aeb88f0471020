package workspace

import (
	"sync"
	"time"
)

type hoverState struct {
	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// Hover arms a delayed preview of a node. With MetaKeyHover set the preview
// only opens while the meta key is held. Unknown ids are ignored.
func (w *Workspace) Hover(id string, metaKey bool) {
	if w.opts.MetaKeyHover && !metaKey {
		return
	}
	if _, ok := w.view.Node(id); !ok {
		return
	}

	w.hover.mu.Lock()
	defer w.hover.mu.Unlock()
	if w.hover.timer != nil {
		w.hover.timer.Stop()
	}
	w.hover.seq++
	seq := w.hover.seq
	w.hover.timer = time.AfterFunc(w.opts.HoverDelay, func() {
		w.showPreview(id, seq)
	})
}

// Unhover cancels a pending preview
func (w *Workspace) Unhover() {
	w.hover.mu.Lock()
	defer w.hover.mu.Unlock()
	if w.hover.timer != nil {
		w.hover.timer.Stop()
		w.hover.timer = nil
	}
	w.hover.seq++
}

func (w *Workspace) showPreview(id string, seq uint64) {
	w.hover.mu.Lock()
	current := w.hover.seq == seq
	w.hover.mu.Unlock()
	if !current {
		return
	}

	n, ok := w.view.Node(id)
	if !ok {
		return
	}
	content := n.Name
	if n.Path != "" {
		text, err := w.docs.ReadContent(w.ctx, n.Path)
		if err != nil {
			w.logger.Debug("preview unavailable", "id", id, "error", err)
			return
		}
		content = text
	}

	w.hover.mu.Lock()
	current = w.hover.seq == seq
	w.hover.mu.Unlock()
	if current {
		w.emit(PreviewReady{ID: id, Path: n.Path, Content: content})
	}
}

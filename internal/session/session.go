// Package session wires the vault, link index, core store and workspace
// registry into one process-wide unit shared by the binaries.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vaultgraph/internal/adapters/filesystem"
	"vaultgraph/internal/adapters/memgraph"
	"vaultgraph/internal/adapters/sqlite"
	"vaultgraph/internal/application/linkgraph"
	"vaultgraph/internal/application/workspace"
	"vaultgraph/internal/config"
	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

// Session owns every long-lived collaborator of one vault
type Session struct {
	cfg    *config.Config
	logger *slog.Logger

	vault    *filesystem.Vault
	index    *sqlite.Index // nil with the scan back-link strategy
	core     *linkgraph.Store
	registry *workspace.Registry

	watcher     *filesystem.Watcher
	unsubscribe []func()
}

// Open loads the vault and, with the sqlite strategy, brings the reverse
// link index up to date
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	vault, err := filesystem.NewVault(cfg.Vault.Path, logger)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	n, err := vault.Load(ctx)
	if err != nil {
		vault.Close()
		return nil, fmt.Errorf("loading vault: %w", err)
	}
	logger.Info("vault loaded", "path", vault.Root(), "documents", n, "duration", time.Since(start))

	s := &Session{
		cfg:      cfg,
		logger:   logger,
		vault:    vault,
		registry: workspace.NewRegistry(logger),
	}

	var backlinks ports.BacklinkIndex
	if cfg.Index.Backlinks == config.BacklinksSQLite {
		if err := s.openIndex(ctx); err != nil {
			vault.Close()
			return nil, err
		}
		backlinks = s.index
	}

	s.core = linkgraph.NewStore(vault, linkgraph.Options{
		MergeEdges:  cfg.Graph.MergeEdges,
		Concurrency: cfg.Graph.Concurrency,
		Backlinks:   backlinks,
		Logger:      logger,
	})
	return s, nil
}

func (s *Session) openIndex(ctx context.Context) error {
	idx := sqlite.NewIndex()
	var err error
	if s.cfg.Index.DBPath != "" {
		err = idx.OpenAt(s.vault.Root(), s.cfg.Index.DBPath)
	} else {
		err = idx.Open(s.vault.Root())
	}
	if err != nil {
		return fmt.Errorf("opening link index: %w", err)
	}
	stats, err := idx.SyncIncremental(ctx, s.vault)
	if err != nil {
		idx.Close()
		return fmt.Errorf("syncing link index: %w", err)
	}
	s.logger.Info("link index synced",
		"added", stats.DocumentsAdded,
		"updated", stats.DocumentsUpdated,
		"deleted", stats.DocumentsDeleted,
		"duration", stats.Duration)

	s.index = idx
	s.unsubscribe = append(s.unsubscribe, s.vault.Subscribe(s.applyToIndex))
	return nil
}

// applyToIndex keeps the sqlite index in step with the vault once the
// vault's own metadata for the change is current. Deletions need no
// metadata: the vault drops the path first so re-resolving links cannot
// bring the deleted document's links back.
func (s *Session) applyToIndex(change domain.Change) {
	timeout := s.cfg.Graph.RenameTimeout
	if timeout <= 0 {
		timeout = workspace.DefaultIndexWait
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if change.Kind != domain.ChangeDeleted {
		select {
		case <-s.vault.Indexed(change.Path):
		case <-ctx.Done():
			s.logger.Warn("link index update skipped", "path", change.Path, "error", ctx.Err())
			return
		}
	} else {
		s.vault.Forget(change.Path)
	}
	if err := s.index.Apply(ctx, s.vault, change); err != nil {
		s.logger.Error("link index update failed", "path", change.Path, "error", err)
	}
}

// Config returns the session configuration
func (s *Session) Config() *config.Config {
	return s.cfg
}

// Logger returns the session logger
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Vault returns the document store
func (s *Session) Vault() *filesystem.Vault {
	return s.vault
}

// Core returns the document-corpus data store
func (s *Session) Core() *linkgraph.Store {
	return s.core
}

// Registry returns the workspace registry
func (s *Session) Registry() *workspace.Registry {
	return s.registry
}

// Backlinks returns the configured back-link strategy
func (s *Session) Backlinks() ports.BacklinkIndex {
	if s.index != nil {
		return s.index
	}
	return linkgraph.NewScanBacklinks(s.vault)
}

// NewWorkspace creates a registered workspace over a fresh in-memory view
func (s *Session) NewWorkspace() (*workspace.Workspace, *memgraph.Graph, error) {
	view := memgraph.New()

	var layout ports.Layout
	if s.cfg.Graph.Layout != config.LayoutNone {
		l, err := memgraph.LayoutByName(s.cfg.Graph.Layout)
		if err != nil {
			return nil, nil, err
		}
		layout = l
	}

	ws := workspace.New(s.registry, workspace.Deps{
		Docs: s.vault,
		Core: s.core,
		View: view,
	}, workspace.Options{
		ExpandInitial:  s.cfg.Graph.ExpandInitial,
		AutoZoom:       s.cfg.Graph.AutoZoom,
		MetaKeyHover:   s.cfg.Graph.MetaKeyHover,
		Filter:         s.cfg.Graph.Filter,
		StyleGroups:    s.cfg.Graph.StyleGroups,
		Layout:         layout,
		LayoutDebounce: s.cfg.Graph.LayoutDebounce,
		HoverDelay:     s.cfg.Graph.HoverDelay,
		Rename:         s.renameResolver(),
		Logger:         s.logger,
	})
	return ws, view, nil
}

func (s *Session) renameResolver() workspace.RenameResolver {
	if s.cfg.Graph.Rename == config.RenameBackoff {
		return workspace.BackoffResolver{Docs: s.vault}
	}
	return workspace.SignalResolver{Signal: s.vault, Timeout: s.cfg.Graph.RenameTimeout}
}

// Watch starts the file watcher and fans vault changes out to every
// registered workspace until ctx is done or Close is called
func (s *Session) Watch(ctx context.Context) error {
	if s.watcher != nil {
		return errors.New("session is already watching")
	}
	w, err := s.vault.Watch(ctx, s.cfg.Vault.WatchDebounce)
	if err != nil {
		return err
	}
	s.watcher = w
	s.unsubscribe = append(s.unsubscribe, s.registry.Watch(ctx, s.vault, s.cfg.Graph.RenameTimeout))
	return nil
}

// Close releases the watcher, the index and every workspace
func (s *Session) Close() error {
	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Stop())
	}
	for _, cancel := range s.unsubscribe {
		cancel()
	}
	for _, ws := range s.registry.List() {
		ws.Close()
	}
	if s.index != nil {
		errs = append(errs, s.index.Close())
	}
	errs = append(errs, s.vault.Close())
	return errors.Join(errs...)
}

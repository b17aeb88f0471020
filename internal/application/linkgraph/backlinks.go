package linkgraph

import (
	"context"
	"slices"

	"vaultgraph/internal/ports"
)

// ScanBacklinks finds back-links by scanning the whole forward-link index.
// Cost is linear in corpus size per call.
type ScanBacklinks struct {
	docs ports.DocumentStore
}

// NewScanBacklinks creates the scanning back-link strategy
func NewScanBacklinks(docs ports.DocumentStore) *ScanBacklinks {
	return &ScanBacklinks{docs: docs}
}

// Backlinks returns, in path order, every document whose forward links
// include path. A document never back-links to itself.
func (s *ScanBacklinks) Backlinks(ctx context.Context, path string) ([]string, error) {
	index, err := s.docs.ForwardLinks(ctx)
	if err != nil {
		return nil, err
	}
	var sources []string
	for src, targets := range index {
		if src == path {
			continue
		}
		if slices.Contains(targets, path) {
			sources = append(sources, src)
		}
	}
	slices.Sort(sources)
	return sources, nil
}

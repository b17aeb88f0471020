package commands

import (
	"context"
	"sort"

	"vaultgraph/internal/domain"
)

// DocumentIndex lists the indexed documents of a vault
type DocumentIndex interface {
	Paths() []string
	Metadata(ctx context.Context, path string) (*domain.DocumentMeta, error)
}

// SearchResult is one matching document with a relevance score
type SearchResult struct {
	ID          string
	Name        string
	Path        string
	MatchedText string // alias that matched, if it beat the name
	Score       int
}

// SearchCommand searches document names, paths and aliases with fuzzy matching
type SearchCommand struct {
	docs  DocumentIndex
	Query string
	Limit int
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(docs DocumentIndex, query string) *SearchCommand {
	return &SearchCommand{
		docs:  docs,
		Query: query,
	}
}

// Execute runs the search command and returns scored, sorted results
func (c *SearchCommand) Execute(ctx context.Context) ([]SearchResult, error) {
	if len(c.Query) < 2 {
		return nil, nil
	}

	var results []SearchResult
	for _, path := range c.docs.Paths() {
		meta, err := c.docs.Metadata(ctx, path)
		if err != nil {
			return nil, err
		}
		if meta == nil {
			continue
		}
		if r, ok := scoreDocument(meta, c.Query); ok {
			results = append(results, r)
		}
	}

	// Sort by score descending, then by path
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})

	if c.Limit > 0 && len(results) > c.Limit {
		results = results[:c.Limit]
	}
	return results, nil
}

func scoreDocument(meta *domain.DocumentMeta, query string) (SearchResult, bool) {
	r := SearchResult{
		ID:    domain.NewVizID(meta.Name).String(),
		Name:  meta.Name,
		Path:  meta.Path,
		Score: max(domain.FuzzyScore(meta.Name, query), domain.FuzzyScore(meta.Path, query)),
	}
	for _, alias := range meta.Aliases {
		if s := domain.FuzzyScore(alias, query); s > r.Score {
			r.Score = s
			r.MatchedText = alias
		}
	}
	return r, r.Score > 0
}

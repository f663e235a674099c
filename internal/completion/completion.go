// Package completion provides candidate sources for the dropdown widget.
// A source answers one question: given the word part under the cursor,
// which candidate strings apply. Matching is case-insensitive by prefix;
// matches are ranked with fuzzy scoring so the tightest candidates list
// first.
package completion

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/andyslucky/gobang/internal/adapter"
	"github.com/andyslucky/gobang/internal/schema"
)

// Source produces candidates for a word part. Implementations must be safe
// for calls from command goroutines.
type Source interface {
	Suggestions(ctx context.Context, wordPart string) ([]string, error)
}

// KeywordSource serves a fixed keyword list.
type KeywordSource struct {
	keywords []string
}

// NewKeywordSource returns a source over the given keywords. With no
// keywords the default SQL list is used.
func NewKeywordSource(keywords ...string) *KeywordSource {
	if len(keywords) == 0 {
		keywords = adapter.DefaultKeywords
	}
	return &KeywordSource{keywords: keywords}
}

func (s *KeywordSource) Suggestions(ctx context.Context, wordPart string) ([]string, error) {
	return Match(wordPart, s.keywords), nil
}

// PoolSource serves the backend keyword list plus names drawn from the
// active pool: databases, tables of the selected database, and columns of
// the selected table. Pool reads happen in Refresh so Suggestions never
// blocks a key cycle.
type PoolSource struct {
	shared *adapter.SharedPool

	mu       sync.RWMutex
	keywords []string
	names    []string

	database *schema.Database
	table    *schema.Table
}

// NewPoolSource returns a pool-backed source reading from the shared cell.
func NewPoolSource(shared *adapter.SharedPool) *PoolSource {
	return &PoolSource{shared: shared, keywords: adapter.DefaultKeywords}
}

// SetScope pins the database and table whose members the source offers.
func (s *PoolSource) SetScope(database *schema.Database, table *schema.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.database = database
	s.table = table
}

// Refresh re-reads keywords and names from the pool. Callers run it from a
// command; an error leaves the previous candidates in place.
func (s *PoolSource) Refresh(ctx context.Context) error {
	pool := s.shared.Get()
	if pool == nil {
		return adapter.ErrNotConnected
	}

	s.mu.RLock()
	database := s.database
	table := s.table
	s.mu.RUnlock()

	keywords := pool.GetKeywords()

	var names []string
	dbs, err := pool.GetDatabases(ctx)
	if err != nil {
		return err
	}
	for _, db := range dbs {
		names = append(names, db.Name)
	}

	if database != nil {
		for _, t := range database.Tables() {
			names = append(names, t.Name)
		}
	}
	if database != nil && table != nil {
		cols, err := pool.GetColumns(ctx, database, table)
		if err != nil {
			return err
		}
		for _, row := range cols {
			cells := row.Cells()
			if len(cells) > 0 {
				names = append(names, cells[0])
			}
		}
	}

	s.mu.Lock()
	s.keywords = keywords
	s.names = names
	s.mu.Unlock()
	return nil
}

func (s *PoolSource) Suggestions(ctx context.Context, wordPart string) ([]string, error) {
	s.mu.RLock()
	candidates := make([]string, 0, len(s.keywords)+len(s.names))
	candidates = append(candidates, s.keywords...)
	candidates = append(candidates, s.names...)
	s.mu.RUnlock()

	return Match(wordPart, candidates), nil
}

// Match filters candidates by case-insensitive prefix and orders the
// survivors by fuzzy score, best first. Duplicates are dropped.
func Match(wordPart string, candidates []string) []string {
	if wordPart == "" {
		return nil
	}
	lower := strings.ToLower(wordPart)

	seen := make(map[string]bool)
	var matched []string
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		if strings.HasPrefix(strings.ToLower(c), lower) {
			seen[c] = true
			matched = append(matched, c)
		}
	}
	if len(matched) <= 1 {
		return matched
	}

	ranks := fuzzy.Find(lower, lowered(matched))
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Score > ranks[j].Score
	})

	ranked := make([]string, 0, len(matched))
	used := make(map[int]bool)
	for _, r := range ranks {
		ranked = append(ranked, matched[r.Index])
		used[r.Index] = true
	}
	for i, m := range matched {
		if !used[i] {
			ranked = append(ranked, m)
		}
	}
	return ranked
}

func lowered(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

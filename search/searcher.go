package search

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/clinref/medkb/ai"
	"github.com/clinref/medkb/core"
	"github.com/clinref/medkb/index"
	"github.com/clinref/medkb/kb"
)

// Query describes one search request.
type Query struct {
	// Text is the free-text query. Empty text matches all entries.
	Text string

	// Filters restricts results by metadata. Zero-valued fields are
	// ignored; every set field must be satisfied.
	Filters Filters

	// Limit is the maximum number of results. Zero or negative means no
	// limit.
	Limit int

	// Offset is the number of ranked results to skip.
	Offset int

	// Semantic requests embedding-based ranking. Without a configured
	// embedding engine this is identical to keyword search.
	Semantic bool
}

// Filters is the metadata filter set. Modality and Pathology match when
// the entry's corresponding sequence contains the filter value.
type Filters struct {
	Type       core.EntryType
	System     string
	Modality   string
	Pathology  string
	BodyPart   string
	Difficulty core.Difficulty
	Source     core.Source
}

// Match reports whether the entry satisfies every set filter field.
func (f Filters) Match(entry *core.KnowledgeBaseEntry) bool {
	if f.Type != "" && entry.Type != f.Type {
		return false
	}
	if f.System != "" && !strings.EqualFold(entry.Metadata.System, f.System) {
		return false
	}
	if f.Modality != "" && !containsFold(entry.Metadata.Modality, f.Modality) {
		return false
	}
	if f.Pathology != "" && !containsFold(entry.Metadata.Pathology, f.Pathology) {
		return false
	}
	if f.BodyPart != "" && !strings.EqualFold(entry.Metadata.BodyPart, f.BodyPart) {
		return false
	}
	if f.Difficulty != "" && entry.Metadata.Difficulty != f.Difficulty {
		return false
	}
	if f.Source != "" && entry.Metadata.Source != f.Source {
		return false
	}
	return true
}

// Result is the search response envelope.
type Result struct {
	// Entries are the matched entries in ranked order, paginated.
	Entries []*core.KnowledgeBaseEntry

	// TotalCount is the number of matches before pagination.
	TotalCount int

	// Took is the elapsed search time.
	Took time.Duration

	// Suggestions holds up to five alternate query terms.
	Suggestions []string
}

// Searcher answers search queries over a knowledge base service. It is a
// pure reader: nothing it does mutates the store, the index or the
// statistics.
type Searcher struct {
	svc      *kb.Service
	embedder ai.Embedder
	curated  []string
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithCuratedTerms replaces the built-in clinical suggestion vocabulary.
func WithCuratedTerms(terms []string) Option {
	return func(s *Searcher) error {
		s.curated = terms
		return nil
	}
}

// NewSearcher creates a searcher over the given service. The provider is
// the optional embedding capability; pass nil to run keyword-only.
func NewSearcher(svc *kb.Service, provider ai.Provider, opts ...Option) (*Searcher, error) {
	if svc == nil {
		return nil, ErrServiceRequired
	}

	s := &Searcher{
		svc:     svc,
		curated: clinicalTerms,
		logger:  slog.Default(),
	}
	if provider != nil {
		s.embedder = provider.Embedder()
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// HasEmbeddingEngine reports whether an embedding engine is configured.
// Without one, semantic queries degrade to keyword search.
func (s *Searcher) HasEmbeddingEngine() bool {
	return s.embedder != nil
}

// Search answers a query. It never fails for "no matches": an empty result
// set plus suggestions comes back instead.
func (s *Searcher) Search(ctx context.Context, query Query) (*Result, error) {
	return s.SearchWithMonitor(ctx, query, nil)
}

// SearchWithMonitor answers a query with monitoring callbacks at each
// stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query Query, monitor Monitor) (*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	start := time.Now()
	monitor.Start(query.Text)

	var (
		matched     []*core.KnowledgeBaseEntry
		suggestions []string
	)

	err := s.svc.Read(ctx, func(v kb.View) error {
		tokens := index.Tokenize(query.Text)
		monitor.AfterTokenize(tokens)

		candidates, err := s.candidates(v, tokens)
		if err != nil {
			return err
		}
		ids := make([]string, len(candidates))
		for i, entry := range candidates {
			ids[i] = entry.ID
		}
		monitor.AfterCandidates(ids)

		for _, entry := range candidates {
			if query.Filters.Match(entry) {
				matched = append(matched, entry)
			}
		}
		monitor.AfterFilter(len(matched))

		suggestions = s.suggest(v, query.Text)
		return nil
	})
	if err != nil {
		return nil, err
	}

	rank(matched)

	if query.Semantic && s.embedder != nil && query.Text != "" {
		matched = s.rerankSemantic(ctx, query.Text, matched)
	}

	total := len(matched)
	page := paginate(matched, query.Offset, query.Limit)

	result := &Result{
		Entries:     page,
		TotalCount:  total,
		Took:        time.Since(start),
		Suggestions: suggestions,
	}
	monitor.Finish(result)
	return result, nil
}

// candidates returns the entries matching all query tokens (AND
// semantics). With no tokens, every stored entry is a candidate. Posting
// sets may briefly reference IDs deleted by a concurrent writer
// transaction; such IDs simply drop out at fetch time.
func (s *Searcher) candidates(v kb.View, tokens []string) ([]*core.KnowledgeBaseEntry, error) {
	if len(tokens) == 0 {
		return v.AllEntries()
	}

	ids := v.Postings(tokens[0])
	for _, token := range tokens[1:] {
		if len(ids) == 0 {
			return nil, nil
		}
		ids = intersect(ids, v.Postings(token))
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return v.Entries(ids...)
}

// intersect returns the elements present in both sorted slices.
func intersect(a, b []string) []string {
	var out []string
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// rank orders entries by relevance score descending when both entries
// carry one, otherwise by view count descending, with ID as the final
// tiebreak. Entries are pre-sorted by ID so mixed-presence comparisons
// stay deterministic.
func rank(entries []*core.KnowledgeBaseEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})
	slices.SortStableFunc(entries, compareRank)
}

func compareRank(a, b *core.KnowledgeBaseEntry) int {
	ar, br := a.Metadata.RelevanceScore, b.Metadata.RelevanceScore
	if ar != nil && br != nil && *ar != *br {
		if *ar > *br {
			return -1
		}
		return 1
	}
	if a.Metadata.Views != b.Metadata.Views {
		if a.Metadata.Views > b.Metadata.Views {
			return -1
		}
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}

// paginate slices the ranked list. Offsets past the end yield an empty
// page; limit <= 0 means everything after the offset.
func paginate(entries []*core.KnowledgeBaseEntry, offset, limit int) []*core.KnowledgeBaseEntry {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return []*core.KnowledgeBaseEntry{}
	}
	entries = entries[offset:]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

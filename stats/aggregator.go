// Package stats maintains the running aggregate counters over stored
// entries: totals per entry type plus per-system, per-modality and
// per-pathology breakdowns. Counters are updated incrementally alongside
// every store mutation, so reading statistics never requires a rescan.
//
// The Aggregator is owned by the kb.Service and guarded by the service
// writer lock; it is not safe for concurrent use on its own.
package stats

import (
	"time"

	"github.com/clinref/medkb/core"
)

// Aggregator keeps the counters in sync with the entry store. Every Add
// must be paired with exactly one Remove for the same entry version;
// a counter going negative means a pairing was missed upstream.
type Aggregator struct {
	totalEntries  int
	totalArticles int
	totalCases    int
	totalImages   int
	bySystem      map[string]int
	byModality    map[string]int
	byPathology   map[string]int
	lastUpdated   time.Time
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		bySystem:    make(map[string]int),
		byModality:  make(map[string]int),
		byPathology: make(map[string]int),
	}
}

// Add records an entry's contribution: one per type, one per occurrence of
// each system/modality/pathology value.
func (a *Aggregator) Add(entry *core.KnowledgeBaseEntry) {
	a.totalEntries++
	switch entry.Type {
	case core.EntryTypeArticle:
		a.totalArticles++
	case core.EntryTypeCase:
		a.totalCases++
	case core.EntryTypeImage:
		a.totalImages++
	}

	if entry.Metadata.System != "" {
		a.bySystem[entry.Metadata.System]++
	}
	for _, modality := range entry.Metadata.Modality {
		a.byModality[modality]++
	}
	for _, pathology := range entry.Metadata.Pathology {
		a.byPathology[pathology]++
	}

	a.lastUpdated = time.Now().UTC()
}

// Remove reverses Add for the same entry version. Keys that reach zero are
// deleted so a snapshot always equals a fresh recount.
func (a *Aggregator) Remove(entry *core.KnowledgeBaseEntry) {
	a.totalEntries--
	switch entry.Type {
	case core.EntryTypeArticle:
		a.totalArticles--
	case core.EntryTypeCase:
		a.totalCases--
	case core.EntryTypeImage:
		a.totalImages--
	}

	if entry.Metadata.System != "" {
		decrement(a.bySystem, entry.Metadata.System)
	}
	for _, modality := range entry.Metadata.Modality {
		decrement(a.byModality, modality)
	}
	for _, pathology := range entry.Metadata.Pathology {
		decrement(a.byPathology, pathology)
	}

	a.lastUpdated = time.Now().UTC()
}

// Touch refreshes the last-updated timestamp without changing counters.
// Used for mutations that don't alter any counted attribute.
func (a *Aggregator) Touch() {
	a.lastUpdated = time.Now().UTC()
}

// Snapshot returns a deep copy of the current counters.
func (a *Aggregator) Snapshot() core.Stats {
	return core.Stats{
		TotalEntries:  a.totalEntries,
		TotalArticles: a.totalArticles,
		TotalCases:    a.totalCases,
		TotalImages:   a.totalImages,
		BySystem:      copyCounts(a.bySystem),
		ByModality:    copyCounts(a.byModality),
		ByPathology:   copyCounts(a.byPathology),
		LastUpdated:   a.lastUpdated,
	}
}

// Clear resets all counters to zero.
func (a *Aggregator) Clear() {
	a.totalEntries = 0
	a.totalArticles = 0
	a.totalCases = 0
	a.totalImages = 0
	a.bySystem = make(map[string]int)
	a.byModality = make(map[string]int)
	a.byPathology = make(map[string]int)
	a.lastUpdated = time.Now().UTC()
}

func decrement(counts map[string]int, key string) {
	counts[key]--
	if counts[key] <= 0 {
		delete(counts, key)
	}
}

func copyCounts(counts map[string]int) map[string]int {
	out := make(map[string]int, len(counts))
	for k, v := range counts {
		out[k] = v
	}
	return out
}

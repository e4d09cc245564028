package kb

import (
	"context"

	"github.com/clinref/medkb/core"
)

// View is a read-only handle over the service state, valid only inside the
// function passed to Service.Read. All returned values are copies; holding
// onto them after Read returns is safe, holding onto the View is not.
type View struct {
	svc *Service
	ctx context.Context
}

// Entry returns the entry with the given ID without touching its view
// count, or (nil, nil) when absent.
func (v View) Entry(id string) (*core.KnowledgeBaseEntry, error) {
	return v.svc.repo.GetEntry(v.ctx, id)
}

// Entries returns the entries for the given IDs, skipping unknown IDs.
func (v View) Entries(ids ...string) ([]*core.KnowledgeBaseEntry, error) {
	return v.svc.repo.GetEntries(v.ctx, ids...)
}

// AllEntries returns every stored entry, ordered by ID.
func (v View) AllEntries() ([]*core.KnowledgeBaseEntry, error) {
	return v.svc.repo.AllEntries(v.ctx)
}

// Postings returns the sorted posting set for term, or nil if the term is
// not indexed.
func (v View) Postings(term string) []string {
	return v.svc.index.Postings(term)
}

// TermsWithPrefix returns all indexed terms starting with prefix, sorted.
func (v View) TermsWithPrefix(prefix string) []string {
	return v.svc.index.TermsWithPrefix(prefix)
}

// Stats returns a copy of the aggregate counters.
func (v View) Stats() core.Stats {
	return v.svc.stats.Snapshot()
}

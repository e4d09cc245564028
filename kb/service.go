// Copyright 2025 ClinRef Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package kb implements the knowledge base service: the single logical
// owner of the entry store, the inverted index and the statistics
// aggregator. Every mutation updates all three before returning, under one
// writer lock, so readers never observe an entry that is present in the
// store but missing from the index or the counters.
//
// The service is an explicit object constructed once at process start and
// passed to collaborators; there is no package-level singleton.
package kb

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/clinref/medkb/core"
	"github.com/clinref/medkb/index"
	"github.com/clinref/medkb/stats"
	"github.com/clinref/medkb/storage"
)

// Service owns the entry store and its derived structures. Writers take
// the exclusive lock for the full store+index+stats transaction; readers
// share the lock between writer transactions.
type Service struct {
	mu     sync.RWMutex
	repo   storage.EntryRepository
	index  *index.Inverted
	stats  *stats.Aggregator
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewService creates a knowledge base service over the given repository.
// If the repository already holds entries, the index and statistics are
// rebuilt from its contents.
func NewService(repo storage.EntryRepository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	s := &Service{
		repo:   repo,
		index:  index.NewInverted(),
		stats:  stats.NewAggregator(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if err := s.rebuild(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// rebuild derives the index and statistics from the current store contents.
func (s *Service) rebuild(ctx context.Context) error {
	entries, err := s.repo.AllEntries(ctx)
	if err != nil {
		return err
	}
	s.index.Clear()
	s.stats.Clear()
	for _, entry := range entries {
		s.index.Add(entry.ID, index.EntryTerms(entry))
		s.stats.Add(entry)
	}
	if len(entries) > 0 {
		s.logger.Debug("rebuilt derived structures", "entries", len(entries), "terms", s.index.Len())
	}
	return nil
}

// Put inserts or overwrites an entry by ID. The stored entry gets fresh
// timestamps and a zero view count; overwriting recreates the entry.
// Returns a core.ErrInvalidEntry wrap when validation fails.
func (s *Service) Put(ctx context.Context, entry *core.KnowledgeBaseEntry) error {
	if err := core.ValidateEntry(entry); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.repo.GetEntry(ctx, entry.ID)
	if err != nil {
		return err
	}
	if old != nil {
		s.index.Remove(old.ID, index.EntryTerms(old))
		s.stats.Remove(old)
	}

	stored := entry.Clone()
	now := time.Now().UTC()
	if stored.Metadata.CreatedAt.IsZero() {
		stored.Metadata.CreatedAt = now
	}
	stored.Metadata.UpdatedAt = now
	stored.Metadata.Views = 0

	if err := s.repo.PutEntry(ctx, stored); err != nil {
		// Index and stats already dropped the old version; restore them so
		// derived state keeps matching the store.
		if old != nil {
			s.index.Add(old.ID, index.EntryTerms(old))
			s.stats.Add(old)
		}
		return err
	}

	s.index.Add(stored.ID, index.EntryTerms(stored))
	s.stats.Add(stored)
	return nil
}

// Update applies a partial update to an existing entry. Nil patch fields
// are preserved; set fields overwrite. UpdatedAt is always refreshed and
// the entry is re-indexed. Returns storage.ErrNotFound if the ID is absent.
func (s *Service) Update(ctx context.Context, id string, patch core.EntryPatch) (*core.KnowledgeBaseEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, fmt.Errorf("update %q: %w", id, storage.ErrNotFound)
	}

	updated := old.Clone()
	applyPatch(updated, patch)
	updated.Metadata.UpdatedAt = time.Now().UTC()

	if err := core.ValidateEntry(updated); err != nil {
		return nil, err
	}

	if err := s.repo.PutEntry(ctx, updated); err != nil {
		return nil, err
	}

	// Old postings must go before the new version is indexed, or terms the
	// update removed would keep pointing at the entry.
	s.index.Remove(old.ID, index.EntryTerms(old))
	s.stats.Remove(old)
	s.index.Add(updated.ID, index.EntryTerms(updated))
	s.stats.Add(updated)

	return updated.Clone(), nil
}

// Delete removes an entry and its contributions to the index and the
// statistics. Returns storage.ErrNotFound if the ID is absent.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return fmt.Errorf("delete %q: %w", id, storage.ErrNotFound)
	}

	if err := s.repo.DeleteEntry(ctx, id); err != nil {
		return err
	}

	s.index.Remove(old.ID, index.EntryTerms(old))
	s.stats.Remove(old)
	return nil
}

// Get returns the entry with the given ID and increments its view count.
// Returns (nil, nil) when the ID is unknown: read-by-id is used
// opportunistically, so absence is an expected outcome, not an error.
func (s *Service) Get(ctx context.Context, id string) (*core.KnowledgeBaseEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	entry.Metadata.Views++
	if err := s.repo.PutEntry(ctx, entry); err != nil {
		return nil, err
	}

	return entry.Clone(), nil
}

// Stats returns a copy of the current aggregate counters.
func (s *Service) Stats() core.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats.Snapshot()
}

// Clear wipes the entry store, the inverted index and the statistics back
// to their empty state.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	s.index.Clear()
	s.stats.Clear()
	return nil
}

// Export produces a full-fidelity snapshot of the knowledge base.
func (s *Service) Export(ctx context.Context) (*core.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.repo.AllEntries(ctx)
	if err != nil {
		return nil, err
	}

	return &core.Snapshot{
		Entries:    entries,
		Stats:      s.stats.Snapshot(),
		ExportDate: time.Now().UTC(),
	}, nil
}

// ImportSnapshot replaces the knowledge base contents with a previously
// exported snapshot. Entry timestamps and view counts are restored
// verbatim, so importing an export reproduces the pre-export state.
func (s *Service) ImportSnapshot(ctx context.Context, snapshot *core.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: snapshot is nil", core.ErrInvalidEntry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	s.index.Clear()
	s.stats.Clear()

	for _, entry := range snapshot.Entries {
		if err := core.ValidateEntry(entry); err != nil {
			return err
		}
		if err := s.repo.PutEntry(ctx, entry); err != nil {
			return err
		}
		s.index.Add(entry.ID, index.EntryTerms(entry))
		s.stats.Add(entry)
	}

	s.logger.Info("snapshot restored", "entries", len(snapshot.Entries))
	return nil
}

// Read executes fn under the reader lock. The View passed to fn exposes
// the store, the index and the statistics as one consistent state: no
// writer can run while fn does. Lookups through the View never change view
// counts.
func (s *Service) Read(ctx context.Context, fn func(v View) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(View{svc: s, ctx: ctx})
}

// applyPatch merges patch into entry. ID and Type are immutable and not
// patchable.
func applyPatch(entry *core.KnowledgeBaseEntry, patch core.EntryPatch) {
	if patch.Title != nil {
		entry.Title = *patch.Title
	}
	if patch.Content != nil {
		entry.Content = *patch.Content
	}
	if patch.System != nil {
		entry.Metadata.System = *patch.System
	}
	if patch.Modality != nil {
		entry.Metadata.Modality = append([]string(nil), patch.Modality...)
	}
	if patch.Pathology != nil {
		entry.Metadata.Pathology = append([]string(nil), patch.Pathology...)
	}
	if patch.BodyPart != nil {
		entry.Metadata.BodyPart = *patch.BodyPart
	}
	if patch.Difficulty != nil {
		entry.Metadata.Difficulty = *patch.Difficulty
	}
	if patch.Tags != nil {
		entry.Metadata.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.Source != nil {
		entry.Metadata.Source = *patch.Source
	}
	if patch.SourceID != nil {
		entry.Metadata.SourceID = *patch.SourceID
	}
	if patch.RelevanceScore != nil {
		score := *patch.RelevanceScore
		entry.Metadata.RelevanceScore = &score
	}
	if patch.Images != nil {
		entry.Images = append([]core.EntryImage(nil), patch.Images...)
	}
	if patch.RelatedEntries != nil {
		entry.RelatedEntries = append([]string(nil), patch.RelatedEntries...)
	}
}

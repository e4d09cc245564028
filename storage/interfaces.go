package storage

import (
	"context"

	"github.com/clinref/medkb/core"
)

// EntryRepository provides operations for managing knowledge base entries.
// Implementations must be thread-safe and support concurrent access.
type EntryRepository interface {
	// PutEntry inserts or overwrites an entry by its ID.
	PutEntry(ctx context.Context, entry *core.KnowledgeBaseEntry) error

	// GetEntry retrieves a single entry by ID.
	// Returns (nil, nil) if the entry doesn't exist; absence is not an error.
	GetEntry(ctx context.Context, id string) (*core.KnowledgeBaseEntry, error)

	// GetEntries retrieves multiple entries by their IDs.
	// Returns only the entries that exist (no error for missing entries).
	GetEntries(ctx context.Context, ids ...string) ([]*core.KnowledgeBaseEntry, error)

	// DeleteEntry removes an entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	DeleteEntry(ctx context.Context, id string) error

	// AllEntries returns every stored entry, ordered by ID.
	AllEntries(ctx context.Context) ([]*core.KnowledgeBaseEntry, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Clear removes every stored entry.
	Clear(ctx context.Context) error

	// Close closes the storage backend and releases resources.
	Close() error
}

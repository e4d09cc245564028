package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/clinref/medkb/core"
	"github.com/clinref/medkb/storage"
)

// EntryRepository implements storage.EntryRepository for BadgerDB.
type EntryRepository struct {
	backend *Backend
}

var _ storage.EntryRepository = (*EntryRepository)(nil)

// NewEntryRepository creates a new EntryRepository on the given backend.
//
// Returns storage.EntryRepository interface to enforce abstraction.
func NewEntryRepository(backend *Backend) (storage.EntryRepository, error) {
	return newEntryRepository(backend)
}

func newEntryRepository(backend *Backend) (*EntryRepository, error) {
	return &EntryRepository{backend: backend}, nil
}

// Close releases repository resources. The backend itself is closed by its
// owner, not here.
func (r *EntryRepository) Close() error {
	return nil
}

// PutEntry inserts or overwrites an entry by its ID.
func (r *EntryRepository) PutEntry(ctx context.Context, entry *core.KnowledgeBaseEntry) error {
	value, err := storage.MarshalEntry(entry)
	if err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeEntryKey(entry.ID), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetEntry retrieves a single entry by ID. Returns (nil, nil) when absent.
func (r *EntryRepository) GetEntry(ctx context.Context, id string) (*core.KnowledgeBaseEntry, error) {
	var result *core.KnowledgeBaseEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntry(tx, makeEntryKey(id))
		return err
	}, false)
	return result, err
}

// GetEntries retrieves multiple entries by their IDs, skipping missing ones.
func (r *EntryRepository) GetEntries(ctx context.Context, ids ...string) ([]*core.KnowledgeBaseEntry, error) {
	var result []*core.KnowledgeBaseEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			entry, err := readEntry(tx, makeEntryKey(id))
			if err != nil {
				return err
			}
			if entry != nil {
				result = append(result, entry)
			}
		}
		return nil
	}, false)
	return result, err
}

// DeleteEntry removes an entry by ID.
func (r *EntryRepository) DeleteEntry(ctx context.Context, id string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEntryKey(id)
		entry, err := readEntry(tx, key)
		if err != nil {
			return err
		}
		if entry == nil {
			return storage.ErrNotFound
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AllEntries returns every stored entry. BadgerDB iterates keys in
// lexicographic order, so results come back ordered by ID.
func (r *EntryRepository) AllEntries(ctx context.Context) ([]*core.KnowledgeBaseEntry, error) {
	var results []*core.KnowledgeBaseEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = entryKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.KnowledgeBaseEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry != nil {
				results = append(results, entry)
			}
		}
		return nil
	}, false)
	return results, err
}

// Count returns the number of stored entries.
func (r *EntryRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = entryKeyPrefix()
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Clear removes every stored entry.
func (r *EntryRepository) Clear(ctx context.Context) error {
	return r.backend.DropAll()
}

// readEntry reads an entry from the transaction.
func readEntry(tx *badger.Txn, key []byte) (*core.KnowledgeBaseEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.KnowledgeBaseEntry
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = storage.UnmarshalEntry(val)
		return unmarshalErr
	})
	return entry, err
}

package kb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinref/medkb/core"
	"github.com/clinref/medkb/storage"
	"github.com/clinref/medkb/storage/badger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func articleEntry(id, title string) *core.KnowledgeBaseEntry {
	return &core.KnowledgeBaseEntry{
		ID:    id,
		Type:  core.EntryTypeArticle,
		Title: title,
		Metadata: core.Metadata{
			System:    "respiratory",
			Modality:  []string{"x-ray"},
			Pathology: []string{"pneumothorax"},
			Source:    core.SourceManual,
		},
	}
}

func TestNewService(t *testing.T) {
	t.Run("nil repository", func(t *testing.T) {
		_, err := NewService(nil)
		assert.Equal(t, ErrRepositoryRequired, err)
	})

	t.Run("rebuilds from existing store", func(t *testing.T) {
		repo, backend, err := badger.NewMemoryRepository()
		require.NoError(t, err)
		defer func() {
			repo.Close()
			backend.Close()
		}()

		ctx := context.Background()
		require.NoError(t, repo.PutEntry(ctx, articleEntry("article_01", "Pneumothorax")))

		svc, err := NewService(repo)
		require.NoError(t, err)

		assert.Equal(t, 1, svc.Stats().TotalEntries)
		err = svc.Read(ctx, func(v View) error {
			assert.Equal(t, []string{"article_01"}, v.Postings("pneumothorax"))
			return nil
		})
		require.NoError(t, err)
	})
}

func TestService_Put(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	entry := articleEntry("article_01", "Pneumothorax")
	require.NoError(t, svc.Put(ctx, entry))

	got, err := svc.Get(ctx, "article_01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Pneumothorax", got.Title)
	assert.False(t, got.Metadata.CreatedAt.IsZero())
	assert.False(t, got.Metadata.UpdatedAt.IsZero())
}

func TestService_PutInvalid(t *testing.T) {
	svc := newTestService(t)

	err := svc.Put(context.Background(), &core.KnowledgeBaseEntry{ID: "x", Type: "bogus", Title: "t"})
	assert.ErrorIs(t, err, core.ErrInvalidEntry)
	assert.Equal(t, 0, svc.Stats().TotalEntries)
}

func TestService_PutOverwriteResetsViews(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Put(ctx, articleEntry("article_01", "Pneumothorax")))

	// Bump views, then overwrite.
	_, err := svc.Get(ctx, "article_01")
	require.NoError(t, err)

	replacement := articleEntry("article_01", "Pleural air collection")
	replacement.Metadata.Pathology = []string{"effusion"}
	require.NoError(t, svc.Put(ctx, replacement))

	got, err := svc.Get(ctx, "article_01")
	require.NoError(t, err)
	// The Get above counts as the first view of the recreated entry.
	assert.Equal(t, int64(1), got.Metadata.Views)

	// Index and stats must reflect only the new version.
	err = svc.Read(ctx, func(v View) error {
		assert.Empty(t, v.Postings("pneumothorax"))
		assert.Equal(t, []string{"article_01"}, v.Postings("effusion"))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Stats().TotalEntries)
	assert.Equal(t, 1, svc.Stats().ByPathology["effusion"])
	assert.Zero(t, svc.Stats().ByPathology["pneumothorax"])
}

func TestService_GetIncrementsViews(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Put(ctx, articleEntry("article_01", "Pneumothorax")))

	first, err := svc.Get(ctx, "article_01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Metadata.Views)

	second, err := svc.Get(ctx, "article_01")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Metadata.Views)
}

func TestService_GetUnknown(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_GetReturnsCopy(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Put(ctx, articleEntry("article_01", "Pneumothorax")))

	got, err := svc.Get(ctx, "article_01")
	require.NoError(t, err)
	got.Title = "mutated"
	got.Metadata.Pathology[0] = "mutated"

	again, err := svc.Get(ctx, "article_01")
	require.NoError(t, err)
	assert.Equal(t, "Pneumothorax", again.Title)
	assert.Equal(t, "pneumothorax", again.Metadata.Pathology[0])
}

func TestService_Update(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Put(ctx, articleEntry("article_01", "Pneumothorax")))
	before, err := svc.Get(ctx, "article_01")
	require.NoError(t, err)

	newTitle := "Tension pneumothorax"
	updated, err := svc.Update(ctx, "article_01", core.EntryPatch{Title: &newTitle})
	require.NoError(t, err)

	assert.Equal(t, newTitle, updated.Title)
	// Unpatched fields are preserved.
	assert.Equal(t, before.Metadata.System, updated.Metadata.System)
	assert.Equal(t, before.Metadata.CreatedAt, updated.Metadata.CreatedAt)
	assert.True(t, updated.Metadata.UpdatedAt.After(before.Metadata.UpdatedAt) ||
		updated.Metadata.UpdatedAt.Equal(before.Metadata.UpdatedAt))

	// The new title term is searchable, the entry count unchanged.
	err = svc.Read(ctx, func(v View) error {
		assert.Equal(t, []string{"article_01"}, v.Postings("tension"))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Stats().TotalEntries)
}

func TestService_UpdateReindexes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Put(ctx, articleEntry("article_01", "Pneumothorax")))

	_, err := svc.Update(ctx, "article_01", core.EntryPatch{
		Pathology: []string{"effusion"},
	})
	require.NoError(t, err)

	err = svc.Read(ctx, func(v View) error {
		// Title still mentions pneumothorax, so that term survives, but the
		// dropped pathology tag alone must not keep stale postings.
		assert.Equal(t, []string{"article_01"}, v.Postings("effusion"))
		return nil
	})
	require.NoError(t, err)

	s := svc.Stats()
	assert.Equal(t, 1, s.ByPathology["effusion"])
	assert.Zero(t, s.ByPathology["pneumothorax"])
}

func TestService_UpdateUnknown(t *testing.T) {
	svc := newTestService(t)

	title := "x"
	_, err := svc.Update(context.Background(), "nope", core.EntryPatch{Title: &title})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestService_UpdateInvalidPatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Put(ctx, articleEntry("article_01", "Pneumothorax")))

	empty := ""
	_, err := svc.Update(ctx, "article_01", core.EntryPatch{Title: &empty})
	assert.ErrorIs(t, err, core.ErrInvalidEntry)

	// The stored entry is untouched.
	got, err := svc.Get(ctx, "article_01")
	require.NoError(t, err)
	assert.Equal(t, "Pneumothorax", got.Title)
}

func TestService_Delete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Put(ctx, articleEntry("article_01", "Pneumothorax")))
	require.NoError(t, svc.Delete(ctx, "article_01"))

	got, err := svc.Get(ctx, "article_01")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = svc.Read(ctx, func(v View) error {
		assert.Empty(t, v.Postings("pneumothorax"))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, svc.Stats().TotalEntries)
}

func TestService_DeleteUnknown(t *testing.T) {
	svc := newTestService(t)
	err := svc.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestService_StatsMatchRecount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	caseEntry := &core.KnowledgeBaseEntry{
		ID:    "case_01",
		Type:  core.EntryTypeCase,
		Title: "Appendicitis",
		Metadata: core.Metadata{
			System:    "digestive",
			Modality:  []string{"ct", "ultrasound"},
			Pathology: []string{"appendicitis"},
		},
	}

	require.NoError(t, svc.Put(ctx, articleEntry("article_01", "Pneumothorax")))
	require.NoError(t, svc.Put(ctx, articleEntry("article_02", "Pleural effusion")))
	require.NoError(t, svc.Put(ctx, caseEntry))
	require.NoError(t, svc.Delete(ctx, "article_02"))

	s := svc.Stats()
	assert.Equal(t, 2, s.TotalEntries)
	assert.Equal(t, 1, s.TotalArticles)
	assert.Equal(t, 1, s.TotalCases)
	assert.Equal(t, map[string]int{"respiratory": 1, "digestive": 1}, s.BySystem)
	assert.Equal(t, map[string]int{"x-ray": 1, "ct": 1, "ultrasound": 1}, s.ByModality)
}

func TestService_Clear(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Put(ctx, articleEntry("article_01", "Pneumothorax")))
	require.NoError(t, svc.Clear(ctx))

	assert.Equal(t, 0, svc.Stats().TotalEntries)
	err := svc.Read(ctx, func(v View) error {
		all, err := v.AllEntries()
		require.NoError(t, err)
		assert.Empty(t, all)
		assert.Empty(t, v.Postings("pneumothorax"))
		return nil
	})
	require.NoError(t, err)
}

func TestService_ExportImportRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Put(ctx, articleEntry("article_01", "Pneumothorax")))
	require.NoError(t, svc.Put(ctx, articleEntry("article_02", "Pleural effusion")))

	// Accumulate some view history before the export.
	_, err := svc.Get(ctx, "article_01")
	require.NoError(t, err)
	_, err = svc.Get(ctx, "article_01")
	require.NoError(t, err)

	snapshot, err := svc.Export(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Entries, 2)
	assert.False(t, snapshot.ExportDate.IsZero())

	other := newTestService(t)
	require.NoError(t, other.ImportSnapshot(ctx, snapshot))

	restored, err := other.Get(ctx, "article_01")
	require.NoError(t, err)
	require.NotNil(t, restored)
	// Two views before export, one from this Get.
	assert.Equal(t, int64(3), restored.Metadata.Views)
	assert.Equal(t, snapshot.Entries[0].Metadata.CreatedAt, restored.Metadata.CreatedAt)

	s := other.Stats()
	assert.Equal(t, 2, s.TotalEntries)
	assert.Equal(t, snapshot.Stats.BySystem, s.BySystem)

	// The index is rebuilt from the restored entries.
	err = other.Read(ctx, func(v View) error {
		assert.Equal(t, []string{"article_01", "article_02"}, v.Postings("pneumothorax"))
		return nil
	})
	require.NoError(t, err)
}

func TestService_ImportSnapshotReplaces(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Put(ctx, articleEntry("article_old", "Old content")))

	other := newTestService(t)
	require.NoError(t, other.Put(ctx, articleEntry("article_new", "New content")))
	snapshot, err := other.Export(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.ImportSnapshot(ctx, snapshot))

	old, err := svc.Get(ctx, "article_old")
	require.NoError(t, err)
	assert.Nil(t, old)
	assert.Equal(t, 1, svc.Stats().TotalEntries)
}

func TestService_ImportSnapshotNil(t *testing.T) {
	svc := newTestService(t)
	err := svc.ImportSnapshot(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrInvalidEntry)
}

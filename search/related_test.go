package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinref/medkb/core"
)

func TestRelated_UnknownID(t *testing.T) {
	svc := newTestKB(t)
	seedCorpus(t, svc)
	searcher, err := NewSearcher(svc, nil)
	require.NoError(t, err)

	related, err := searcher.Related(context.Background(), "nope", 5)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestRelated_ExplicitLinksFirst(t *testing.T) {
	svc := newTestKB(t)
	seedCorpus(t, svc)
	ctx := context.Background()

	// Link the neuro article explicitly from the pneumothorax article even
	// though their metadata shares nothing; it must still come first.
	_, err := svc.Update(ctx, "article_pneumo", core.EntryPatch{
		RelatedEntries: []string{"article_gbm", "article_missing"},
	})
	require.NoError(t, err)

	searcher, err := NewSearcher(svc, nil)
	require.NoError(t, err)

	related, err := searcher.Related(ctx, "article_pneumo", 5)
	require.NoError(t, err)
	require.NotEmpty(t, related)
	assert.Equal(t, "article_gbm", related[0].ID)

	// The dangling reference is silently dropped.
	for _, entry := range related {
		assert.NotEqual(t, "article_missing", entry.ID)
	}
}

func TestRelated_MetadataSimilarity(t *testing.T) {
	svc := newTestKB(t)
	seedCorpus(t, svc)
	searcher, err := NewSearcher(svc, nil)
	require.NoError(t, err)

	related, err := searcher.Related(context.Background(), "article_pneumo", 5)
	require.NoError(t, err)
	require.NotEmpty(t, related)

	// The other respiratory chest entry shares system, body part and an
	// x-ray modality; it must outrank everything else.
	assert.Equal(t, "article_effusion", related[0].ID)

	// The neuro article shares no metadata; zero-score entries are excluded.
	for _, entry := range related {
		assert.NotEqual(t, "article_gbm", entry.ID)
		assert.NotEqual(t, "article_pneumo", entry.ID)
	}
}

func TestRelated_Deterministic(t *testing.T) {
	svc := newTestKB(t)
	seedCorpus(t, svc)
	searcher, err := NewSearcher(svc, nil)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := searcher.Related(ctx, "article_pneumo", 5)
	require.NoError(t, err)
	second, err := searcher.Related(ctx, "article_pneumo", 5)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestRelated_LimitAndDefault(t *testing.T) {
	svc := newTestKB(t)
	ctx := context.Background()

	// Seed one root plus eight similar cases.
	seedEntry(t, svc, &core.KnowledgeBaseEntry{
		ID:    "root",
		Type:  core.EntryTypeArticle,
		Title: "Pneumonia",
		Metadata: core.Metadata{
			System: "respiratory",
		},
	})
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"} {
		seedEntry(t, svc, &core.KnowledgeBaseEntry{
			ID:    id,
			Type:  core.EntryTypeCase,
			Title: "Respiratory case " + id,
			Metadata: core.Metadata{
				System: "respiratory",
			},
		})
	}

	searcher, err := NewSearcher(svc, nil)
	require.NoError(t, err)

	t.Run("explicit limit", func(t *testing.T) {
		related, err := searcher.Related(ctx, "root", 3)
		require.NoError(t, err)
		assert.Len(t, related, 3)
	})

	t.Run("zero limit defaults to five", func(t *testing.T) {
		related, err := searcher.Related(ctx, "root", 0)
		require.NoError(t, err)
		assert.Len(t, related, 5)
	})
}

func TestSimilarityScore(t *testing.T) {
	base := &core.KnowledgeBaseEntry{
		Metadata: core.Metadata{
			System:    "respiratory",
			Modality:  []string{"x-ray", "ct"},
			Pathology: []string{"pneumothorax"},
			BodyPart:  "chest",
		},
	}

	tests := []struct {
		name  string
		other core.Metadata
		want  int
	}{
		{
			name: "full overlap",
			other: core.Metadata{
				System:    "respiratory",
				Modality:  []string{"x-ray", "ct"},
				Pathology: []string{"pneumothorax"},
				BodyPart:  "chest",
			},
			want: 3 + 2 + 2 + 2 + 1,
		},
		{
			name:  "system only, case-insensitive",
			other: core.Metadata{System: "Respiratory"},
			want:  3,
		},
		{
			name:  "one shared modality",
			other: core.Metadata{Modality: []string{"ct", "mri"}},
			want:  2,
		},
		{
			name:  "pathology substring overlap",
			other: core.Metadata{Pathology: []string{"tension pneumothorax"}},
			want:  2,
		},
		{
			name:  "body part only",
			other: core.Metadata{BodyPart: "chest"},
			want:  1,
		},
		{
			name:  "nothing shared",
			other: core.Metadata{System: "nervous", BodyPart: "brain"},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := &core.KnowledgeBaseEntry{Metadata: tt.other}
			assert.Equal(t, tt.want, similarityScore(base, other))
		})
	}
}

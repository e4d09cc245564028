package search

import (
	"context"
	"math"
	"slices"

	"github.com/clinref/medkb/core"
)

// rerankSemantic reorders keyword matches by cosine similarity between the
// query embedding and each entry's text embedding. The candidate set is
// unchanged, so semantic results are never a worse set than keyword
// results. On any embedder failure the keyword order is returned as-is;
// semantic mode must degrade, never error.
func (s *Searcher) rerankSemantic(ctx context.Context, query string, entries []*core.KnowledgeBaseEntry) []*core.KnowledgeBaseEntry {
	if len(entries) == 0 {
		return entries
	}

	queryVector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Warn("embedding query failed, keeping keyword order", "err", err)
		return entries
	}

	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Title + " " + entry.Content
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil || len(vectors) != len(entries) {
		s.logger.Warn("embedding candidates failed, keeping keyword order", "err", err)
		return entries
	}

	scores := make(map[string]float64, len(entries))
	for i, entry := range entries {
		scores[entry.ID] = cosineSimilarity(queryVector, vectors[i])
	}

	// Stable: equal scores keep their keyword rank.
	slices.SortStableFunc(entries, func(a, b *core.KnowledgeBaseEntry) int {
		sa, sb := scores[a.ID], scores[b.ID]
		if sa > sb {
			return -1
		}
		if sa < sb {
			return 1
		}
		return 0
	})
	return entries
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for zero-length or zero-norm input.
func cosineSimilarity(a, b []float32) float64 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	if minLen == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

package search

import (
	"context"
	"slices"
	"strings"

	"github.com/clinref/medkb/core"
	"github.com/clinref/medkb/kb"
)

// Similarity weights for metadata overlap.
const (
	systemMatchScore    = 3
	modalityMatchScore  = 2
	pathologyMatchScore = 2
	bodyPartMatchScore  = 1
)

// Related returns up to limit entries related to the given entry. Explicit
// related_entries come first, with dangling references silently filtered.
// When those fall short of limit, the remaining slots are filled by
// metadata-similarity scoring over the rest of the store. An unknown ID
// yields an empty result, not an error.
//
// Ordering is deterministic: equal similarity scores break by entry ID, so
// repeated calls against an unchanged store return identical results.
func (s *Searcher) Related(ctx context.Context, id string, limit int) ([]*core.KnowledgeBaseEntry, error) {
	if limit <= 0 {
		limit = 5
	}

	var related []*core.KnowledgeBaseEntry
	err := s.svc.Read(ctx, func(v kb.View) error {
		root, err := v.Entry(id)
		if err != nil {
			return err
		}
		if root == nil {
			return nil
		}

		// Explicit links first. Entries() drops IDs that no longer exist.
		explicit, err := v.Entries(root.RelatedEntries...)
		if err != nil {
			return err
		}
		included := map[string]struct{}{id: {}}
		for _, entry := range explicit {
			if len(related) >= limit {
				break
			}
			if _, ok := included[entry.ID]; ok {
				continue
			}
			included[entry.ID] = struct{}{}
			related = append(related, entry)
		}
		if len(related) >= limit {
			return nil
		}

		all, err := v.AllEntries()
		if err != nil {
			return err
		}

		type scored struct {
			entry *core.KnowledgeBaseEntry
			score int
		}
		var candidates []scored
		for _, entry := range all {
			if _, ok := included[entry.ID]; ok {
				continue
			}
			if score := similarityScore(root, entry); score > 0 {
				candidates = append(candidates, scored{entry: entry, score: score})
			}
		}

		slices.SortFunc(candidates, func(a, b scored) int {
			if a.score != b.score {
				return b.score - a.score
			}
			return strings.Compare(a.entry.ID, b.entry.ID)
		})

		for _, c := range candidates {
			if len(related) >= limit {
				break
			}
			related = append(related, c.entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return related, nil
}

// similarityScore measures metadata overlap between two entries: +3 for an
// exact system match, +2 per overlapping modality tag, +2 per overlapping
// pathology tag, +1 for an exact body part match. Pathology overlap is
// substring-tolerant in either direction so specificity mismatches like
// "glioma" vs "glioblastoma" still count; modality codes are short
// controlled values and compare exact.
func similarityScore(a, b *core.KnowledgeBaseEntry) int {
	score := 0

	if a.Metadata.System != "" && strings.EqualFold(a.Metadata.System, b.Metadata.System) {
		score += systemMatchScore
	}

	for _, modality := range a.Metadata.Modality {
		if containsFold(b.Metadata.Modality, modality) {
			score += modalityMatchScore
		}
	}

	for _, pathology := range a.Metadata.Pathology {
		if overlapsFuzzy(b.Metadata.Pathology, pathology) {
			score += pathologyMatchScore
		}
	}

	if a.Metadata.BodyPart != "" && strings.EqualFold(a.Metadata.BodyPart, b.Metadata.BodyPart) {
		score += bodyPartMatchScore
	}

	return score
}

// overlapsFuzzy reports whether any tag overlaps target, where overlap
// means either string contains the other (case-insensitive).
func overlapsFuzzy(tags []string, target string) bool {
	t := strings.ToLower(target)
	for _, tag := range tags {
		lc := strings.ToLower(tag)
		if strings.Contains(lc, t) || strings.Contains(t, lc) {
			return true
		}
	}
	return false
}

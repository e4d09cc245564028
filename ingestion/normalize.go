package ingestion

import (
	"fmt"
	"strings"

	"github.com/clinref/medkb/core"
)

// normalizeRecord converts an external record into one or more normalized
// entries. The first entry returned is the record's primary entry; for an
// article with nested cases, the cases follow with back-links to it.
func normalizeRecord(record *Record) ([]*core.KnowledgeBaseEntry, error) {
	switch {
	case record.Article != nil && record.Case != nil:
		return nil, fmt.Errorf("%w: record sets both article and case", ErrMalformedRecord)
	case record.Article != nil:
		return normalizeArticle(record.Article)
	case record.Case != nil:
		entry, err := normalizeCase(record.Case, "")
		if err != nil {
			return nil, err
		}
		return []*core.KnowledgeBaseEntry{entry}, nil
	default:
		return nil, fmt.Errorf("%w: record sets neither article nor case", ErrMalformedRecord)
	}
}

func normalizeArticle(article *ArticleRecord) ([]*core.KnowledgeBaseEntry, error) {
	if strings.TrimSpace(article.Title) == "" {
		return nil, fmt.Errorf("%w: article has no title", ErrMalformedRecord)
	}

	id := article.ID
	if id == "" {
		id = core.DeriveID("article", article.Title)
	}

	entry := &core.KnowledgeBaseEntry{
		ID:      id,
		Type:    core.EntryTypeArticle,
		Title:   article.Title,
		Content: joinText(article.Synopsis, article.Body),
		Metadata: core.Metadata{
			System:    article.System,
			Modality:  append([]string(nil), article.Modality...),
			Pathology: append([]string(nil), article.Pathology...),
			BodyPart:  article.BodyPart,
			Tags:      append([]string(nil), article.Tags...),
			Source:    core.SourceExternal,
			SourceID:  article.ID,
		},
		Images: convertImages(article.Images),
	}

	entries := []*core.KnowledgeBaseEntry{entry}
	for i := range article.Cases {
		caseEntry, err := normalizeCase(&article.Cases[i], id)
		if err != nil {
			return nil, fmt.Errorf("nested case %d: %w", i, err)
		}
		// Inherit classification the case doesn't carry itself.
		if caseEntry.Metadata.System == "" {
			caseEntry.Metadata.System = article.System
		}
		if len(caseEntry.Metadata.Pathology) == 0 {
			caseEntry.Metadata.Pathology = append([]string(nil), article.Pathology...)
		}
		entries = append(entries, caseEntry)
	}

	return entries, nil
}

// normalizeCase converts a case record. parentID, when non-empty, becomes
// a related-entries back-link to the owning article.
func normalizeCase(caseRecord *CaseRecord, parentID string) (*core.KnowledgeBaseEntry, error) {
	if strings.TrimSpace(caseRecord.Title) == "" {
		return nil, fmt.Errorf("%w: case has no title", ErrMalformedRecord)
	}
	if caseRecord.Difficulty != "" {
		switch core.Difficulty(caseRecord.Difficulty) {
		case core.DifficultyBeginner, core.DifficultyIntermediate, core.DifficultyAdvanced:
		default:
			return nil, fmt.Errorf("%w: unknown difficulty %q", ErrMalformedRecord, caseRecord.Difficulty)
		}
	}

	id := caseRecord.ID
	if id == "" {
		id = core.DeriveID("case", parentID+":"+caseRecord.Title)
	}

	modality := append([]string(nil), caseRecord.Modality...)
	var images []core.EntryImage
	for _, study := range caseRecord.Studies {
		if study.Modality != "" && !containsFold(modality, study.Modality) {
			modality = append(modality, study.Modality)
		}
		for _, img := range convertImages(study.Images) {
			if img.Caption == "" {
				img.Caption = study.Caption
			}
			images = append(images, img)
		}
	}

	entry := &core.KnowledgeBaseEntry{
		ID:      id,
		Type:    core.EntryTypeCase,
		Title:   caseRecord.Title,
		Content: joinText(caseRecord.Presentation, caseRecord.Discussion),
		Metadata: core.Metadata{
			System:     caseRecord.System,
			Modality:   modality,
			Pathology:  append([]string(nil), caseRecord.Pathology...),
			BodyPart:   caseRecord.BodyPart,
			Difficulty: core.Difficulty(caseRecord.Difficulty),
			Source:     core.SourceExternal,
			SourceID:   caseRecord.ID,
		},
		Images: images,
	}
	if parentID != "" {
		entry.RelatedEntries = []string{parentID}
	}

	return entry, nil
}

func convertImages(images []ImageRecord) []core.EntryImage {
	if len(images) == 0 {
		return nil
	}
	out := make([]core.EntryImage, len(images))
	for i, img := range images {
		id := img.ID
		if id == "" {
			id = core.DeriveID("img", img.URL)
		}
		out[i] = core.EntryImage{
			ID:           id,
			URL:          img.URL,
			ThumbnailURL: img.ThumbnailURL,
			Caption:      img.Caption,
			Annotations:  append([]string(nil), img.Annotations...),
		}
	}
	return out
}

func joinText(parts ...string) string {
	var nonEmpty []string
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

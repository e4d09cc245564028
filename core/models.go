package core

import "time"

// EntryType identifies the kind of knowledge base entry.
type EntryType string

const (
	// EntryTypeArticle is a reference article.
	EntryTypeArticle EntryType = "article"
	// EntryTypeCase is a teaching case.
	EntryTypeCase EntryType = "case"
	// EntryTypeImage is a standalone annotated image.
	EntryTypeImage EntryType = "image"
)

// Source identifies where an entry originated.
type Source string

const (
	// SourceExternal marks entries imported from an external content provider.
	SourceExternal Source = "external-provider"
	// SourceManual marks entries created by hand.
	SourceManual Source = "manual"
	// SourceGenerated marks entries produced by tooling.
	SourceGenerated Source = "generated"
)

// Difficulty grades an entry for teaching purposes.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Metadata holds the structured clinical attributes of an entry.
type Metadata struct {
	System         string     `json:"system,omitempty"`    // anatomical/organ system
	Modality       []string   `json:"modality,omitempty"`  // imaging modality tags, e.g. CT, MR, X-ray
	Pathology      []string   `json:"pathology,omitempty"` // condition tags
	BodyPart       string     `json:"body_part,omitempty"`
	Difficulty     Difficulty `json:"difficulty,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	Source         Source     `json:"source,omitempty"`
	SourceID       string     `json:"source_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Views          int64      `json:"views"`
	RelevanceScore *float64   `json:"relevance_score,omitempty"` // externally assigned ranking weight; nil means unset
}

// EntryImage is an image owned by an entry. It has no independent lifecycle.
type EntryImage struct {
	ID           string   `json:"id"`
	URL          string   `json:"url"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Caption      string   `json:"caption,omitempty"`
	Annotations  []string `json:"annotations,omitempty"`
}

// KnowledgeBaseEntry is the unit of storage: one article, case, or image.
//
// RelatedEntries is a weak reference set. Readers must tolerate IDs that
// point at deleted entries and filter them out rather than fail.
type KnowledgeBaseEntry struct {
	ID             string       `json:"id"`
	Type           EntryType    `json:"type"`
	Title          string       `json:"title"`
	Content        string       `json:"content,omitempty"`
	Metadata       Metadata     `json:"metadata"`
	Images         []EntryImage `json:"images,omitempty"`
	RelatedEntries []string     `json:"related_entries,omitempty"`
}

// Clone returns a deep copy of the entry. Service readers hand out clones
// so callers can never mutate the stored value through a shared slice.
func (e *KnowledgeBaseEntry) Clone() *KnowledgeBaseEntry {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Metadata.Modality = append([]string(nil), e.Metadata.Modality...)
	clone.Metadata.Pathology = append([]string(nil), e.Metadata.Pathology...)
	clone.Metadata.Tags = append([]string(nil), e.Metadata.Tags...)
	if e.Metadata.RelevanceScore != nil {
		score := *e.Metadata.RelevanceScore
		clone.Metadata.RelevanceScore = &score
	}
	if e.Images != nil {
		clone.Images = make([]EntryImage, len(e.Images))
		for i, img := range e.Images {
			clone.Images[i] = img
			clone.Images[i].Annotations = append([]string(nil), img.Annotations...)
		}
	}
	clone.RelatedEntries = append([]string(nil), e.RelatedEntries...)
	return &clone
}

// EntryPatch describes a partial update. Nil fields are preserved on the
// stored entry; set fields overwrite.
type EntryPatch struct {
	Title          *string
	Content        *string
	System         *string
	Modality       []string
	Pathology      []string
	BodyPart       *string
	Difficulty     *Difficulty
	Tags           []string
	Source         *Source
	SourceID       *string
	RelevanceScore *float64
	Images         []EntryImage
	RelatedEntries []string
}

// Stats holds the running aggregate counters over all stored entries.
type Stats struct {
	TotalEntries  int            `json:"total_entries"`
	TotalArticles int            `json:"total_articles"`
	TotalCases    int            `json:"total_cases"`
	TotalImages   int            `json:"total_images"`
	BySystem      map[string]int `json:"by_system"`
	ByModality    map[string]int `json:"by_modality"`
	ByPathology   map[string]int `json:"by_pathology"`
	LastUpdated   time.Time      `json:"last_updated"`
}

// Snapshot is a full-fidelity export of the knowledge base. Restoring a
// snapshot reproduces the entries and statistics exactly.
type Snapshot struct {
	Entries    []*KnowledgeBaseEntry `json:"entries"`
	Stats      Stats                 `json:"stats"`
	ExportDate time.Time             `json:"export_date"`
}

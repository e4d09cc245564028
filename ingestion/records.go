package ingestion

// Record is one externally supplied item: an article or a teaching case.
// Exactly one of the fields should be set; a record with neither is a
// per-record error, not a batch failure.
type Record struct {
	Article *ArticleRecord `json:"article,omitempty"`
	Case    *CaseRecord    `json:"case,omitempty"`
}

// ArticleRecord is the article shape produced by the external
// content-fetching service. Nested cases become their own entries with a
// back-link to the parent article.
type ArticleRecord struct {
	ID        string        `json:"id,omitempty"`
	Title     string        `json:"title"`
	Synopsis  string        `json:"synopsis,omitempty"`
	Body      string        `json:"body,omitempty"`
	System    string        `json:"system,omitempty"`
	Modality  []string      `json:"modality,omitempty"`
	Pathology []string      `json:"pathology,omitempty"`
	BodyPart  string        `json:"body_part,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
	Images    []ImageRecord `json:"images,omitempty"`
	Cases     []CaseRecord  `json:"cases,omitempty"`
}

// CaseRecord is the teaching-case shape. Sub-studies carry the imaging;
// their images are flattened into the resulting entry.
type CaseRecord struct {
	ID           string        `json:"id,omitempty"`
	Title        string        `json:"title"`
	Presentation string        `json:"presentation,omitempty"`
	Discussion   string        `json:"discussion,omitempty"`
	System       string        `json:"system,omitempty"`
	Modality     []string      `json:"modality,omitempty"`
	Pathology    []string      `json:"pathology,omitempty"`
	BodyPart     string        `json:"body_part,omitempty"`
	Difficulty   string        `json:"difficulty,omitempty"`
	Studies      []StudyRecord `json:"studies,omitempty"`
}

// StudyRecord is one imaging study within a case.
type StudyRecord struct {
	Modality string        `json:"modality,omitempty"`
	Caption  string        `json:"caption,omitempty"`
	Images   []ImageRecord `json:"images,omitempty"`
}

// ImageRecord is an image reference within an article, case or study.
type ImageRecord struct {
	ID           string   `json:"id,omitempty"`
	URL          string   `json:"url"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Caption      string   `json:"caption,omitempty"`
	Annotations  []string `json:"annotations,omitempty"`
}

// sourceID returns the best identifier available for error reporting.
func (r *Record) sourceID() string {
	switch {
	case r.Article != nil && r.Article.ID != "":
		return r.Article.ID
	case r.Article != nil:
		return r.Article.Title
	case r.Case != nil && r.Case.ID != "":
		return r.Case.ID
	case r.Case != nil:
		return r.Case.Title
	default:
		return ""
	}
}

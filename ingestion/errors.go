package ingestion

import "errors"

var (
	// ErrServiceRequired is returned when a knowledge base service is not provided.
	ErrServiceRequired = errors.New("knowledge base service required")

	// ErrMalformedRecord indicates an external record that cannot be
	// normalized. It is collected per record inside a batch, never
	// returned as a batch failure.
	ErrMalformedRecord = errors.New("malformed record")
)

// RecordError describes one failed record inside a batch.
type RecordError struct {
	// Index is the record's position in the submitted batch.
	Index int `json:"index"`

	// SourceID identifies the record when it carried an ID or title.
	SourceID string `json:"source_id,omitempty"`

	// Message is the failure description.
	Message string `json:"message"`
}

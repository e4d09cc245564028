// Package ingestion converts externally fetched article and case records
// into normalized knowledge base entries, isolating per-record failures so
// one malformed record never aborts a batch.
package ingestion

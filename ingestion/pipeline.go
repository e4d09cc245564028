package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/clinref/medkb/core"
	"github.com/clinref/medkb/kb"
)

// Pipeline converts externally supplied article/case records into
// normalized entries and upserts them into the knowledge base.
// Normalization runs on a worker pool; the store mutations are applied
// sequentially in batch order so imports are deterministic.
type Pipeline struct {
	svc    *kb.Service
	pool   *ants.Pool
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for record normalization.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new import pipeline over the given service.
func NewPipeline(svc *kb.Service, opts ...Option) (*Pipeline, error) {
	if svc == nil {
		return nil, ErrServiceRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		svc:    svc,
		pool:   pool,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Report summarizes an import batch. Imported and Updated count only
// records whose every entry landed; failed records appear in Errors.
type Report struct {
	Imported int           `json:"imported"`
	Updated  int           `json:"updated"`
	Errors   []RecordError `json:"errors,omitempty"`
}

// ImportBatch normalizes and upserts a batch of records. Per-record
// failures are isolated: a malformed record is collected in the report's
// error list and never aborts the batch. Records whose derived primary ID
// already exists are routed to update, the rest to insert.
func (p *Pipeline) ImportBatch(ctx context.Context, records []Record) (*Report, error) {
	report := &Report{}
	if len(records) == 0 {
		return report, nil
	}

	type outcome struct {
		entries []*core.KnowledgeBaseEntry
		err     error
	}
	outcomes := make([]outcome, len(records))

	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		record := &records[i]
		slot := &outcomes[i]
		if err := p.pool.Submit(func() {
			defer wg.Done()
			slot.entries, slot.err = normalizeRecord(record)
		}); err != nil {
			// Pool rejected the task (released or overloaded); fail just
			// this record, not the batch.
			slot.err = err
			wg.Done()
		}
	}
	wg.Wait()

	for i := range outcomes {
		if err := p.importRecord(ctx, &records[i], &outcomes[i].entries, outcomes[i].err, report); err != nil {
			report.Errors = append(report.Errors, RecordError{
				Index:    i,
				SourceID: records[i].sourceID(),
				Message:  err.Error(),
			})
		}
	}

	p.logger.Info("import batch finished",
		"records", len(records),
		"imported", report.Imported,
		"updated", report.Updated,
		"failed", len(report.Errors))
	return report, nil
}

// importRecord applies one record's entries. The record counts as updated
// when its primary entry already existed, imported otherwise.
func (p *Pipeline) importRecord(ctx context.Context, record *Record, entries *[]*core.KnowledgeBaseEntry, normErr error, report *Report) error {
	if normErr != nil {
		return normErr
	}

	primaryExisted := false
	for i, entry := range *entries {
		exists, err := p.entryExists(ctx, entry.ID)
		if err != nil {
			return err
		}
		if i == 0 {
			primaryExisted = exists
		}

		if exists {
			if _, err := p.svc.Update(ctx, entry.ID, patchFromEntry(entry)); err != nil {
				return err
			}
		} else {
			if err := p.svc.Put(ctx, entry); err != nil {
				return err
			}
		}
	}

	if primaryExisted {
		report.Updated++
	} else {
		report.Imported++
	}
	return nil
}

func (p *Pipeline) entryExists(ctx context.Context, id string) (bool, error) {
	exists := false
	err := p.svc.Read(ctx, func(v kb.View) error {
		entry, err := v.Entry(id)
		if err != nil {
			return err
		}
		exists = entry != nil
		return nil
	})
	return exists, err
}

// patchFromEntry converts a normalized entry into the partial update
// applied when the entry already exists. Timestamps and view counts are
// left to the service; everything the external record carries overwrites.
func patchFromEntry(entry *core.KnowledgeBaseEntry) core.EntryPatch {
	patch := core.EntryPatch{
		Title:     &entry.Title,
		Content:   &entry.Content,
		System:    &entry.Metadata.System,
		Modality:  entry.Metadata.Modality,
		Pathology: entry.Metadata.Pathology,
		BodyPart:  &entry.Metadata.BodyPart,
		Tags:      entry.Metadata.Tags,
		Source:    &entry.Metadata.Source,
		SourceID:  &entry.Metadata.SourceID,
		Images:    entry.Images,
	}
	if entry.Metadata.Difficulty != "" {
		patch.Difficulty = &entry.Metadata.Difficulty
	}
	if len(entry.RelatedEntries) > 0 {
		patch.RelatedEntries = entry.RelatedEntries
	}
	return patch
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

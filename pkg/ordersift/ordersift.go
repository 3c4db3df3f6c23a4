// Package ordersift wires a mail source, the extraction engine, and the
// SQLite store into one batch processor.
//
// Extraction is pure and stateless per document, so documents run through
// a bounded worker pool. The store is the one shared resource: all writes
// flow through a single goroutine, serializing keyed upserts so concurrent
// extractions of the same natural key cannot lose updates.
package ordersift

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ordersift/ordersift/internal/logger"
	"github.com/ordersift/ordersift/internal/mailbox"
	"github.com/ordersift/ordersift/pkg/extract"
	"github.com/ordersift/ordersift/pkg/htmltable"
	"github.com/ordersift/ordersift/pkg/profile"
	"github.com/ordersift/ordersift/pkg/store"
)

// Result is the outcome of processing one message.
type Result struct {
	MessageID       string
	Record          *extract.Record
	ExtractDuration time.Duration
	Err             error
}

// Summary totals one ProcessAll run.
type Summary struct {
	Listed    int // envelopes reported by the source
	Skipped   int // already processed on a previous run
	Processed int // extracted, persisted, and marked this run
	Failed    int // failed; left unmarked so the next run retries them
}

// Ordersift processes batches of notification messages.
type Ordersift struct {
	source    mailbox.Source
	extractor *extract.Extractor
	store     *store.Store
	archiver  *mailbox.Archiver
	config    Config
}

// New assembles a processor. A source and a store are required.
func New(opts ...Option) (*Ordersift, error) {
	o := &Ordersift{config: DefaultConfig()}
	for _, opt := range opts {
		opt(o)
	}

	if o.source == nil {
		return nil, errors.New("ordersift: a message source is required")
	}
	if o.store == nil {
		return nil, errors.New("ordersift: a store is required")
	}
	if o.extractor == nil {
		ext, err := extract.New(profile.Default())
		if err != nil {
			return nil, fmt.Errorf("ordersift: default extractor: %w", err)
		}
		o.extractor = ext
	}
	return o, nil
}

// ProcessAll lists the source, drops already-processed messages, and runs
// the rest through extraction and the store.
//
// One document's failure never aborts the batch: the failure is logged
// with its message id and kind, the message stays unmarked, and the next
// run picks it up again. Cancellation is at message granularity; documents
// already in flight finish.
func (o *Ordersift) ProcessAll(ctx context.Context) (Summary, error) {
	envelopes, err := o.source.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("ordersift: list messages: %w", err)
	}

	ids := make([]string, len(envelopes))
	byID := make(map[string]mailbox.Envelope, len(envelopes))
	for i, env := range envelopes {
		ids[i] = env.ID
		byID[env.ID] = env
	}

	pending, err := o.store.Unprocessed(ctx, ids)
	if err != nil {
		return Summary{}, fmt.Errorf("ordersift: compute delta: %w", err)
	}

	summary := Summary{
		Listed:  len(envelopes),
		Skipped: len(envelopes) - len(pending),
	}
	logger.Info("run starting",
		"listed", summary.Listed,
		"pending", len(pending),
		"concurrency", o.config.Concurrency)

	// The run row is opened even for an all-skipped delta, so every
	// invocation leaves an audit trail.
	runID, err := o.store.StartRun(ctx)
	if err != nil {
		return Summary{}, err
	}

	if len(pending) == 0 {
		if err := o.store.FinishRun(ctx, runID, 0, 0); err != nil {
			return summary, err
		}
		return summary, nil
	}

	// Writer loop below is the only consumer of the store during the run.
	for result := range o.extractAll(ctx, pending) {
		if result.Err != nil {
			summary.Failed++
			logger.Error("message failed",
				"message_id", result.MessageID,
				"kind", failureKind(result.Err),
				"error", result.Err)
			continue
		}

		if err := o.store.SaveRecord(ctx, result.Record); err != nil {
			summary.Failed++
			logger.Error("message failed",
				"message_id", result.MessageID,
				"kind", "store",
				"error", err)
			continue
		}
		if err := o.store.MarkProcessed(ctx, result.MessageID); err != nil {
			// The record is persisted but unmarked; the next run
			// re-extracts it and the keyed upserts absorb the repeat.
			summary.Failed++
			logger.Error("message failed",
				"message_id", result.MessageID,
				"kind", "store",
				"error", err)
			continue
		}

		summary.Processed++
		logger.Info("message processed",
			"message_id", result.MessageID,
			"po_number", result.Record.Order.PONumber,
			"duration", result.ExtractDuration)
	}

	if err := o.store.FinishRun(ctx, runID, summary.Processed, summary.Failed); err != nil {
		return summary, err
	}

	logger.Info("run complete",
		"processed", summary.Processed,
		"failed", summary.Failed,
		"skipped", summary.Skipped)
	return summary, nil
}

// extractAll fetches and extracts the given messages on a bounded worker
// pool and streams results.
func (o *Ordersift) extractAll(ctx context.Context, ids []string) <-chan Result {
	concurrency := o.config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	// Buffered for the whole batch: producers can always deliver, so an
	// early return from the consumer never strands a worker goroutine.
	results := make(chan Result, len(ids))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	go func() {
		for _, id := range ids {
			if ctx.Err() != nil {
				break
			}
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				results <- o.processOne(ctx, id)
			}(id)
		}
		wg.Wait()
		close(results)
	}()

	return results
}

// processOne fetches, archives, and extracts a single message.
func (o *Ordersift) processOne(ctx context.Context, id string) Result {
	res := Result{MessageID: id}

	msg, err := o.source.Fetch(ctx, id)
	if err != nil {
		res.Err = fmt.Errorf("fetch: %w", err)
		return res
	}
	if o.config.MaxBodySize > 0 && len(msg.HTML) > o.config.MaxBodySize {
		res.Err = fmt.Errorf("body size %d exceeds limit %d",
			len(msg.HTML), o.config.MaxBodySize)
		return res
	}

	if o.archiver != nil {
		path, err := o.archiver.Save(msg)
		if err != nil {
			res.Err = fmt.Errorf("archive: %w", err)
			return res
		}
		logger.Debug("message archived", "message_id", id, "path", path)
	}

	start := time.Now()
	rec, err := o.extractor.Extract(strings.NewReader(msg.HTML))
	res.ExtractDuration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}

	res.Record = rec
	return res
}

// failureKind buckets an error into the log taxonomy.
func failureKind(err error) string {
	var alignErr *htmltable.AlignmentError
	var valueErr *extract.MalformedValueError
	switch {
	case errors.Is(err, htmltable.ErrSectionNotFound):
		return "missing_section"
	case errors.As(err, &alignErr):
		return "alignment"
	case errors.As(err, &valueErr):
		return "malformed_value"
	default:
		return "error"
	}
}

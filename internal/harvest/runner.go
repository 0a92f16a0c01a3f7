// Package harvest drives one run: the enumerator dispatches identifiers in
// increasing order, a small worker pool fetches, extracts and upserts, and
// a halting extraction error cancels the whole run.
package harvest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"
	"github.com/lepinkainen/bibcat/internal/enumerate"
	bibcaterrors "github.com/lepinkainen/bibcat/internal/errors"
	"github.com/lepinkainen/bibcat/internal/extract"
	"github.com/lepinkainen/bibcat/internal/fetch"
	"github.com/lepinkainen/bibcat/internal/record"
)

// Fetcher retrieves the record page for one identifier.
type Fetcher interface {
	Fetch(ctx context.Context, oclcID int64) (*goquery.Document, error)
}

// Storer persists assembled records.
type Storer interface {
	Upsert(ctx context.Context, rec *record.Record) error
}

// CoverDownloader optionally mirrors cover images locally.
type CoverDownloader interface {
	Download(ctx context.Context, oclcID int64, coverURL string) (string, bool, error)
}

// Stats counts the outcomes of one run.
type Stats struct {
	Found    int64
	NotFound int64
	Failed   int64
}

// Runner wires the enumerator to the fetch/extract/store pipeline.
type Runner struct {
	enum    *enumerate.Enumerator
	fetcher Fetcher
	store   Storer
	covers  CoverDownloader // nil disables cover downloads
	workers int

	mu      sync.Mutex
	haltErr error

	found    atomic.Int64
	notFound atomic.Int64
	failed   atomic.Int64
}

// New creates a Runner. workers < 1 is treated as 1.
func New(enum *enumerate.Enumerator, fetcher Fetcher, store Storer, covers CoverDownloader, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		enum:    enum,
		fetcher: fetcher,
		store:   store,
		covers:  covers,
		workers: workers,
	}
}

// Run processes identifiers until the enumerator is exhausted, ctx is
// cancelled, or a halting error stops the run. Transport failures are
// logged and counted, never fatal; the identifier stays absent from the
// store and is retried by the next run.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ids := make(chan int64)

	var enumErr error
	go func() {
		defer close(ids)
		enumErr = r.enum.ForEach(ctx, func(id int64) error {
			select {
			case ids <- id:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	var wg sync.WaitGroup
	for range r.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, cancel, ids)
		}()
	}
	wg.Wait()

	stats := Stats{
		Found:    r.found.Load(),
		NotFound: r.notFound.Load(),
		Failed:   r.failed.Load(),
	}

	if r.haltErr != nil {
		return stats, r.haltErr
	}
	if enumErr != nil && !errors.Is(enumErr, context.Canceled) {
		return stats, enumErr
	}
	return stats, ctx.Err()
}

func (r *Runner) worker(ctx context.Context, cancel context.CancelFunc, ids <-chan int64) {
	for id := range ids {
		if ctx.Err() != nil {
			return
		}
		rec, err := r.process(ctx, id)
		if err != nil {
			slog.Warn("Fetch failed, identifier will be retried next run", "oclc_id", id, "error", err)
			r.failed.Add(1)
			continue
		}
		if rec == nil {
			// halting error already recorded; stop this worker
			cancel()
			return
		}

		if rec.Status == record.StatusFound {
			r.found.Add(1)
			r.downloadCover(ctx, rec)
		} else {
			r.notFound.Add(1)
		}
	}
}

// process fetches, extracts and upserts one identifier. A nil record with
// nil error means a halting error was recorded and the run must stop.
func (r *Runner) process(ctx context.Context, id int64) (*record.Record, error) {
	doc, err := r.fetcher.Fetch(ctx, id)

	var rec *record.Record
	switch {
	case errors.Is(err, fetch.ErrNotFound):
		rec = record.NewNotFound(id)
	case err != nil:
		return nil, err
	default:
		rec, err = extract.Extract(doc, id)
		if err != nil {
			r.halt(err)
			return nil, nil
		}
	}

	if err := r.store.Upsert(ctx, rec); err != nil {
		// a broken store would fail every remaining identifier too
		r.halt(err)
		return nil, nil
	}

	slog.Debug("Stored record", "oclc_id", id, "status", int(rec.Status))
	return rec, nil
}

func (r *Runner) downloadCover(ctx context.Context, rec *record.Record) {
	if r.covers == nil || rec.Payload == nil || rec.Payload.Cover == nil {
		return
	}
	if _, _, err := r.covers.Download(ctx, rec.OCLCID, *rec.Payload.Cover); err != nil {
		slog.Warn("Cover download failed", "oclc_id", rec.OCLCID, "error", err)
	}
}

// halt records the first run-stopping error.
func (r *Runner) halt(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.haltErr == nil {
		r.haltErr = err
		if bibcaterrors.IsHaltError(err) {
			slog.Error("Halting run: extraction rules are stale", "error", err)
		} else {
			slog.Error("Halting run", "error", err)
		}
	}
}

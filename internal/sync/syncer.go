package sync

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/anshulchahar/gita"
)

// Options configures a Synchronizer.
type Options struct {
	// UnlockedUnits is the highest unit number published unlocked.
	UnlockedUnits int
	Logger        *gita.Logger
	// Recorder, if set, receives every finished summary.
	Recorder Recorder
	// Now defaults to time.Now.
	Now func() time.Time
}

// Synchronizer writes reconciled content to the remote store one document
// at a time, collection by collection.
type Synchronizer struct {
	store    DocumentStore
	tokens   TokenSource
	log      *gita.Logger
	recorder Recorder
	now      func() time.Time
	project  Projector
}

// NewSynchronizer creates a synchronizer with injected dependencies.
func NewSynchronizer(store DocumentStore, tokens TokenSource, opts Options) *Synchronizer {
	s := &Synchronizer{
		store:    store,
		tokens:   tokens,
		log:      opts.Logger,
		recorder: opts.Recorder,
		now:      opts.Now,
	}
	if s.log == nil {
		s.log = gita.NopLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	unlocked := opts.UnlockedUnits
	s.project = Projector{Unlocked: func(n int) bool { return n <= unlocked }}
	return s
}

// NewRunID returns a sortable unique run identifier.
func NewRunID(at time.Time) string {
	return ulid.MustNew(ulid.Timestamp(at), rand.Reader).String()
}

// Plan validates docs and returns the writes Sync would issue, without
// touching the network.
func (s *Synchronizer) Plan(journeys []gita.Journey, docs []*gita.Document) ([]Write, error) {
	var errs []error
	for _, d := range docs {
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s.project.Plan(journeys, docs)
}

// Sync upserts journeys and every document of docs in dependency order.
//
// Invalid content fails before any write. A token is obtained before each
// collection; failing to obtain one aborts the run with *gita.AuthError. A
// failed document write is recorded in the summary and the run continues.
func (s *Synchronizer) Sync(ctx context.Context, journeys []gita.Journey, docs []*gita.Document) (*Summary, error) {
	writes, err := s.Plan(journeys, docs)
	if err != nil {
		return nil, err
	}

	start := s.now()
	sum := &Summary{RunID: NewRunID(start), Kind: KindSync, StartedAt: start}
	for _, d := range docs {
		sum.Units = append(sum.Units, d.Unit.UnitNumber)
	}
	log := s.log.With("run_id", sum.RunID)
	log.Info("sync started", "units", sum.Units, "writes", len(writes))

	runErr := s.apply(ctx, log, writes, sum)
	return s.finish(ctx, log, sum, runErr)
}

func (s *Synchronizer) apply(ctx context.Context, log *gita.Logger, writes []Write, sum *Summary) error {
	var (
		token      string
		collection string
	)
	for _, w := range writes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.Collection != collection {
			collection = w.Collection
			t, err := s.tokens.Token(ctx)
			if err != nil {
				var ae *gita.AuthError
				if !errors.As(err, &ae) {
					err = &gita.AuthError{Err: err}
				}
				return err
			}
			token = t
			log.Debug("collection started", "collection", collection)
		}

		err := s.store.Upsert(ctx, token, w.Collection, w.ID, w.Fields)
		sum.add(resultFor(w.Collection, w.ID, err))
		if err != nil {
			log.Warn("write failed", "collection", w.Collection, "id", w.ID, "error", err)
			continue
		}
		log.Debug("write ok", "collection", w.Collection, "id", w.ID)
	}
	return nil
}

func (s *Synchronizer) finish(ctx context.Context, log *gita.Logger, sum *Summary, runErr error) (*Summary, error) {
	sum.FinishedAt = s.now()
	if runErr != nil {
		sum.Aborted = runErr.Error()
		log.Error("run aborted", "error", runErr)
	}
	log.Info("run finished", "kind", sum.Kind, "succeeded", sum.Succeeded, "failed", sum.Failed)
	if s.recorder != nil {
		if err := s.recorder.RecordSummary(context.WithoutCancel(ctx), sum); err != nil {
			log.Warn("record run failed", "error", err)
		}
	}
	return sum, runErr
}

func resultFor(collection, id string, err error) Result {
	r := Result{Collection: collection, ID: id, Outcome: OutcomeSuccess}
	if err == nil {
		return r
	}
	r.Outcome = OutcomeFailure
	r.Reason = err.Error()
	var se *gita.SyncError
	if errors.As(err, &se) {
		r.StatusCode = se.StatusCode
		if se.Err != nil {
			r.Reason = se.Err.Error()
		}
	}
	return r
}

// String renders a one-line description of r.
func (r Result) String() string {
	if r.Outcome == OutcomeSuccess {
		return fmt.Sprintf("%s/%s ok", r.Collection, r.ID)
	}
	return fmt.Sprintf("%s/%s failed: %s", r.Collection, r.ID, r.Reason)
}

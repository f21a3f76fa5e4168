package sync

import (
	"context"
	"errors"
	"time"

	"github.com/anshulchahar/gita"
)

// Wiper deletes every document of the given collections. It is destructive
// and never part of synchronization.
type Wiper struct {
	store    RemoteStore
	tokens   TokenSource
	log      *gita.Logger
	recorder Recorder
	now      func() time.Time
}

// NewWiper creates a wiper. Only Logger, Recorder and Now of opts are used.
func NewWiper(store RemoteStore, tokens TokenSource, opts Options) *Wiper {
	w := &Wiper{store: store, tokens: tokens, log: opts.Logger, recorder: opts.Recorder, now: opts.Now}
	if w.log == nil {
		w.log = gita.NopLogger()
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

// Wipe lists and deletes each collection in turn, defaulting to WipeOrder.
// A failed listing or deletion is recorded and the wipe moves on.
func (w *Wiper) Wipe(ctx context.Context, collections []string) (*Summary, error) {
	if len(collections) == 0 {
		collections = WipeOrder
	}
	start := w.now()
	sum := &Summary{RunID: NewRunID(start), Kind: KindWipe, StartedAt: start}
	log := w.log.With("run_id", sum.RunID)
	log.Info("wipe started", "collections", collections)

	s := &Synchronizer{log: w.log, recorder: w.recorder, now: w.now}
	for _, c := range collections {
		if err := ctx.Err(); err != nil {
			return s.finish(ctx, log, sum, err)
		}
		token, err := w.tokens.Token(ctx)
		if err != nil {
			var ae *gita.AuthError
			if !errors.As(err, &ae) {
				err = &gita.AuthError{Err: err}
			}
			return s.finish(ctx, log, sum, err)
		}

		docs, err := w.store.List(ctx, token, c)
		if err != nil {
			sum.add(resultFor(c, "*", err))
			log.Warn("list failed", "collection", c, "error", err)
			continue
		}
		log.Info("deleting collection", "collection", c, "documents", len(docs))
		for _, d := range docs {
			err := w.store.Delete(ctx, token, c, d.ID())
			sum.add(resultFor(c, d.ID(), err))
			if err != nil {
				log.Warn("delete failed", "collection", c, "id", d.ID(), "error", err)
			}
		}
	}
	return s.finish(ctx, log, sum, nil)
}

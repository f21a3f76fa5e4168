// Package app wires configuration, content, the remote store and the run
// ledger into the operations exposed by the CLI and the MCP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/anshulchahar/gita"
	"github.com/anshulchahar/gita/internal/auth"
	"github.com/anshulchahar/gita/internal/firestore"
	"github.com/anshulchahar/gita/internal/ledger"
	"github.com/anshulchahar/gita/internal/store"
	gsync "github.com/anshulchahar/gita/internal/sync"
	"github.com/anshulchahar/gita/internal/watch"
)

// App is the main entry point for content and sync operations.
type App struct {
	cfg   gita.Config
	log   *gita.Logger
	debug *gita.DebugLogger

	mu     sync.Mutex
	ledger *ledger.Ledger
	remote *remote
}

type remote struct {
	store  *firestore.HTTPClient
	tokens *auth.Cache
}

// New creates an App. cfg is completed with defaults and validated; the
// remote store and ledger are opened on first use.
func New(cfg gita.Config, log *gita.Logger) (*App, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = gita.NopLogger()
	}
	return &App{
		cfg:   cfg,
		log:   log,
		debug: gita.NewDebugLogger(cfg.Debug, log),
	}, nil
}

// Config returns the effective configuration.
func (a *App) Config() gita.Config { return a.cfg }

// Close releases the ledger if it was opened.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ledger != nil {
		err := a.ledger.Close()
		a.ledger = nil
		return err
	}
	return nil
}

// ContentDir resolves the content directory, which must exist.
func (a *App) ContentDir() (string, error) {
	return store.ResolveContentDir(a.cfg.ContentDir)
}

// writableContentDir returns the configured content directory, creating it
// if needed.
func (a *App) writableContentDir() (string, error) {
	dir := a.cfg.ContentDir
	if dir == "" {
		if env := os.Getenv("GITA_CONTENT_DIR"); env != "" {
			dir = store.ExpandHome(env)
		} else {
			dir = store.DefaultContentDir
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create content dir: %w", err)
	}
	return dir, nil
}

// Ledger opens the run ledger.
func (a *App) Ledger() (*ledger.Ledger, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ledger != nil {
		return a.ledger, nil
	}
	l, err := ledger.Open(a.cfg.LedgerPath)
	if err != nil {
		return nil, err
	}
	a.ledger = l
	return l, nil
}

func (a *App) remoteClient() (*remote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.remote != nil {
		return a.remote, nil
	}
	if err := a.cfg.ValidateRemote(); err != nil {
		return nil, err
	}
	tokens, err := auth.LoadCredentials(a.cfg.CredentialsPath)
	if err != nil {
		return nil, &gita.AuthError{Err: err}
	}
	a.remote = &remote{
		store: firestore.NewHTTPClient(a.cfg.StoreBaseURL).
			WithHTTPClient(&http.Client{Timeout: a.cfg.HTTPTimeout}).
			WithDebug(a.debug),
		tokens: auth.NewCache(tokens, auth.Options{
			ClientID:      a.cfg.ClientID,
			ClientSecret:  a.cfg.ClientSecret,
			TokenEndpoint: a.cfg.TokenEndpoint,
			HTTPClient: &http.Client{
				Timeout:   a.cfg.HTTPTimeout,
				Transport: a.debug.Transport(nil),
			},
			Logger:        a.log.With("component", "auth"),
		}),
	}
	return a.remote, nil
}

// Content is a loaded set of unit documents plus the journey list.
type Content struct {
	Dir      string
	Journeys []gita.Journey
	Docs     []*gita.Document
	// Missing lists requested units that have no file.
	Missing []int
}

// Load reads journeys and the given units, or all units when none are given.
func (a *App) Load(units []int) (*Content, error) {
	dir, err := a.ContentDir()
	if err != nil {
		return nil, err
	}
	journeys, err := gita.LoadJourneys(dir)
	if err != nil {
		return nil, err
	}
	docs, missing, err := gita.LoadDocuments(dir, units)
	if err != nil {
		return nil, err
	}
	for _, n := range missing {
		a.log.Warn("unit has no content file, skipping", "unit", n)
	}
	return &Content{Dir: dir, Journeys: journeys, Docs: docs, Missing: missing}, nil
}

// UnitReport is the validation outcome for one unit.
type UnitReport struct {
	Unit       int      `json:"unit"`
	Valid      bool     `json:"valid"`
	Lessons    int      `json:"lessons"`
	Questions  int      `json:"questions"`
	Violations []string `json:"violations,omitempty"`
}

// Validate checks each unit and reports every violation found.
func (a *App) Validate(units []int) ([]UnitReport, error) {
	c, err := a.Load(units)
	if err != nil {
		return nil, err
	}
	reports := make([]UnitReport, 0, len(c.Docs))
	for _, d := range c.Docs {
		r := UnitReport{Unit: d.Unit.UnitNumber, Valid: true, Lessons: len(d.Lessons), Questions: len(d.Questions)}
		if err := d.Validate(); err != nil {
			r.Valid = false
			var ce *gita.ContentError
			if errors.As(err, &ce) {
				r.Violations = ce.Violations
			} else {
				r.Violations = []string{err.Error()}
			}
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (a *App) synchronizer(r *remote) (*gsync.Synchronizer, error) {
	l, err := a.Ledger()
	if err != nil {
		return nil, err
	}
	return gsync.NewSynchronizer(r.store, r.tokens, gsync.Options{
		UnlockedUnits: a.cfg.UnlockedUnits,
		Logger:        a.log.With("component", "sync"),
		Recorder:      l,
	}), nil
}

// Plan returns the writes a sync of units would issue without sending them.
func (a *App) Plan(units []int) ([]gsync.Write, error) {
	c, err := a.Load(units)
	if err != nil {
		return nil, err
	}
	s := gsync.NewSynchronizer(nil, nil, gsync.Options{UnlockedUnits: a.cfg.UnlockedUnits, Logger: a.log})
	return s.Plan(c.Journeys, c.Docs)
}

// Sync uploads journeys and the given units to the remote store and records
// the run in the ledger. Requested units without a content file are listed
// in the summary as skipped; journeys are still uploaded.
func (a *App) Sync(ctx context.Context, units []int) (*gsync.Summary, error) {
	c, err := a.Load(units)
	if err != nil {
		return nil, err
	}
	r, err := a.remoteClient()
	if err != nil {
		return nil, err
	}
	s, err := a.synchronizer(r)
	if err != nil {
		return nil, err
	}
	sum, err := s.Sync(ctx, c.Journeys, c.Docs)
	if sum != nil {
		sum.Skipped = c.Missing
	}
	return sum, err
}

// Wipe deletes every document of collections from the remote store.
func (a *App) Wipe(ctx context.Context, collections []string) (*gsync.Summary, error) {
	for _, c := range collections {
		if err := store.ValidateCollection(c); err != nil {
			return nil, fmt.Errorf("%w: %q", err, c)
		}
	}
	r, err := a.remoteClient()
	if err != nil {
		return nil, err
	}
	l, err := a.Ledger()
	if err != nil {
		return nil, err
	}
	w := gsync.NewWiper(r.store, r.tokens, gsync.Options{Logger: a.log.With("component", "wipe"), Recorder: l})
	return w.Wipe(ctx, collections)
}

// Watch syncs units whenever their content files change until ctx is done.
// onRun, if set, receives every finished summary.
func (a *App) Watch(ctx context.Context, onRun func(*gsync.Summary, error)) error {
	dir, err := a.ContentDir()
	if err != nil {
		return err
	}
	w, err := watch.New(dir, watch.DefaultDebounce, a.log.With("component", "watch"))
	if err != nil {
		return err
	}
	defer w.Close()

	a.log.Info("watching content", "dir", dir)
	return w.Run(ctx, func(ctx context.Context, units []int) error {
		sum, err := a.Sync(ctx, units)
		if onRun != nil {
			onRun(sum, err)
		}
		var ae *gita.AuthError
		if errors.As(err, &ae) {
			return err
		}
		if err != nil {
			a.log.Warn("sync after change failed", "units", units, "error", err)
		}
		return nil
	})
}

// RunReport is a ledger run with its failures.
type RunReport struct {
	ledger.Run
	Failures []gsync.Result `json:"failures,omitempty"`
}

// LastRun returns the latest recorded run of kind, or of any kind.
func (a *App) LastRun(ctx context.Context, kind string) (*RunReport, error) {
	l, err := a.Ledger()
	if err != nil {
		return nil, err
	}
	run, err := l.LastRun(ctx, kind)
	if err != nil {
		return nil, err
	}
	failures, err := l.Failures(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	return &RunReport{Run: *run, Failures: failures}, nil
}

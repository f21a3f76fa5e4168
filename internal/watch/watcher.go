// Package watch reports which unit content files change on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/anshulchahar/gita"
)

// DefaultDebounce batches the burst of events an editor produces on save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a content directory for unit<N>.json writes.
type Watcher struct {
	dir      string
	debounce time.Duration
	log      *gita.Logger
	fs       *fsnotify.Watcher
}

// New starts watching dir. Close releases the underlying watcher.
func New(dir string, debounce time.Duration, log *gita.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = gita.NopLogger()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch content directory %s: %w", dir, err)
	}
	return &Watcher{dir: dir, debounce: debounce, log: log, fs: fw}, nil
}

// Close stops watching.
func (w *Watcher) Close() error { return w.fs.Close() }

// Run calls onChange with the sorted unit numbers written since the last
// call, once no further event has arrived for the debounce interval. It
// returns when ctx is done or the watcher is closed. Errors from onChange
// are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, units []int) error) error {
	pending := map[int]bool{}
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			n, ok := unitFor(ev)
			if !ok {
				continue
			}
			w.log.Debug("content changed", "unit", n, "op", ev.Op.String())
			pending[n] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "dir", w.dir, "error", err)

		case <-timer.C:
			units := drain(pending)
			if len(units) == 0 {
				continue
			}
			if err := onChange(ctx, units); err != nil {
				w.log.Error("change handler failed", "units", units, "error", err)
			}
		}
	}
}

// unitFor reports the unit number of a create or write on a unit file.
// Removals and renames away are ignored.
func unitFor(ev fsnotify.Event) (int, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return 0, false
	}
	n := gita.UnitNumberFromPath(filepath.Base(ev.Name))
	return n, n > 0
}

func drain(pending map[int]bool) []int {
	out := make([]int, 0, len(pending))
	for n := range pending {
		out = append(out, n)
		delete(pending, n)
	}
	sort.Ints(out)
	return out
}

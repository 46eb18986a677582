package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/dailynotes/pkg/core"
)

// DebounceDelay coalesces bursts of events on the same day file.
const DebounceDelay = 50 * time.Millisecond

// Watch reports changes to day files made by any writer until ctx is done.
// The returned channel is closed when the watcher stops.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(r.Path); err != nil {
		_ = watcher.Close()
		return nil, storageErr("watch "+r.Path, err)
	}

	events := make(chan core.Event, 16)
	w := &watchWorker{
		repo:      r,
		events:    events,
		watcher:   watcher,
		debouncer: newDebouncer(DebounceDelay),
	}
	r.setWatcherActive(true)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		r.config.Logger.Error("watcher stopped", "error", err)
		if r.config.ErrorHandler != nil {
			r.config.ErrorHandler(err)
		}
	}))
	return events, nil
}

type watchWorker struct {
	repo      *Repository
	events    chan core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
}

// run is the main event loop for the watcher worker.
func (w *watchWorker) run(ctx context.Context) error {
	defer close(w.events)
	defer w.repo.setWatcherActive(false)
	defer w.watcher.Close()
	defer w.debouncer.stopAndWait(5 * time.Second)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.process(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.repo.config.Logger.Error("fsnotify error", "error", err)
			if w.repo.config.ErrorHandler != nil {
				w.repo.config.ErrorHandler(err)
			}
		}
	}
}

func (w *watchWorker) process(ctx context.Context, event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, TempFilePrefix) {
		return
	}
	if ok, _ := doublestar.Match(DayFilePattern, name); !ok {
		return
	}

	eType := mapEventType(event)
	if eType == "" {
		return
	}
	day, err := core.ParseDay(strings.TrimSuffix(name, FileExt))
	if err != nil {
		return
	}

	w.repo.index.Delete(name)
	w.repo.config.Logger.Debug("day file changed", "day", day.String(), "op", event.Op.String())

	w.debouncer.add(core.Event{Type: eType, Day: day, Timestamp: time.Now().Unix()}, func(e core.Event) {
		defer func() {
			// The channel may already be closed if the wait timed out during shutdown.
			_ = recover()
		}()
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	default:
		return ""
	}
}

// debouncer keeps the latest event per day and fires it once the day has
// been quiet for the configured delay.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timers  map[core.Day]*time.Timer
	pending map[core.Day]core.Event
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		timers:  make(map[core.Day]*time.Timer),
		pending: make(map[core.Day]core.Event),
	}
}

func (d *debouncer) add(e core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending[e.Day] = e
	if t, ok := d.timers[e.Day]; ok && t.Stop() {
		t.Reset(d.delay)
		return
	}

	key := e.Day
	d.wg.Add(1)
	d.timers[key] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		ev, ok := d.pending[key]
		delete(d.pending, key)
		delete(d.timers, key)
		d.mu.Unlock()
		if ok {
			fire(ev)
		}
	})
}

// stopAndWait drops pending events and waits for in-flight callbacks.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.pending = make(map[core.Day]core.Event)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

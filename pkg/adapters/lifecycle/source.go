// Package lifecycle exposes backend change streams as lifecycle sources.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/dailynotes/pkg/core"
)

type noteSource struct {
	events <-chan core.Event
	today  func() core.Day
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source over the day-file changes read from
// events. Only changes to the day reported by today are emitted, so edits
// to older notes never reach the store. A nil today emits every change.
func NewSource(events <-chan core.Event, today func() core.Day) lifecycle.Source {
	return &noteSource{
		events: events,
		today:  today,
		out:    make(chan lifecycle.Event),
	}
}

func (s *noteSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start runs the relay in the background and returns immediately. Events
// stops once ctx is done or the watcher closes its channel.
func (s *noteSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		return s.relay(ctx)
	})
	return nil
}

func (s *noteSource) relay(ctx context.Context) error {
	for {
		var e core.Event
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-s.events:
			if !ok {
				return nil
			}
			e = ev
		}
		if s.today != nil && e.Day != s.today() {
			continue
		}
		select {
		case s.out <- e:
		case <-ctx.Done():
			return nil
		}
	}
}

// NoteEvents narrows a source back to note changes, skipping events of any
// other type. The returned channel closes with the source.
func NoteEvents(ctx context.Context, src lifecycle.Source) <-chan core.Event {
	out := make(chan core.Event)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for ev := range src.Events() {
			e, ok := ev.(core.Event)
			if !ok {
				continue
			}
			select {
			case out <- e:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})
	return out
}

// Package broadcast fans note updates out to window surfaces over an
// in-process watermill pub/sub, one topic per window id.
package broadcast

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/aretw0/dailynotes/pkg/core"
)

// EventNoteUpdated names the event carried by every message.
const EventNoteUpdated = "note-updated"

// DefaultBuffer is the per-window queue length.
const DefaultBuffer = 16

// Topic returns the topic serving window.
func Topic(window string) string {
	return EventNoteUpdated + "." + window
}

// Config holds the hub settings.
type Config struct {
	// Buffer is the number of undelivered payloads kept per subscriber. Zero means DefaultBuffer.
	Buffer int
	Logger *slog.Logger
}

// Hub implements core.Notifier. A window only receives payloads while it
// holds a subscription; publishing to an absent window is a no-op.
type Hub struct {
	pubsub *gochannel.GoChannel
	buffer int
	logger *slog.Logger

	mu      sync.Mutex
	windows map[string]int
}

// NewHub creates a hub.
func NewHub(cfg Config) *Hub {
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultBuffer
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            int64(cfg.Buffer),
			BlockPublishUntilSubscriberAck: true,
		},
		watermill.NewStdLogger(false, false),
	)
	return &Hub{
		pubsub:  pubsub,
		buffer:  cfg.Buffer,
		logger:  cfg.Logger,
		windows: make(map[string]int),
	}
}

// Notify publishes payload to every target window that is currently subscribed.
func (h *Hub) Notify(ctx context.Context, targets []string, payload string) {
	for _, window := range targets {
		if !h.present(window) {
			h.logger.Debug("window absent, notification dropped", "window", window)
			continue
		}

		msg := message.NewMessage(watermill.NewUUID(), message.Payload(payload))
		msg.Metadata.Set("event", EventNoteUpdated)
		msg.Metadata.Set("window", window)
		if err := h.pubsub.Publish(Topic(window), msg); err != nil {
			h.logger.Warn("notification failed", "window", window, "error", err)
		}
	}
}

// Subscribe registers window and returns its payload stream. The stream is
// closed when ctx is done or the hub is closed. A subscriber that falls
// more than the buffer behind loses the oldest undelivered payloads.
func (h *Hub) Subscribe(ctx context.Context, window string) (<-chan string, error) {
	messages, err := h.pubsub.Subscribe(ctx, Topic(window))
	if err != nil {
		return nil, err
	}

	out := make(chan string, h.buffer)
	h.register(window, 1)

	go func() {
		defer close(out)
		defer h.register(window, -1)

		for msg := range messages {
			payload := string(msg.Payload)
			select {
			case out <- payload:
			default:
				// Window is not draining; keep only the newest state.
				select {
				case <-out:
				default:
				}
				select {
				case out <- payload:
				default:
				}
			}
			msg.Ack()
		}
	}()
	return out, nil
}

// Windows lists the window ids with at least one subscription.
func (h *Hub) Windows() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.windows))
	for w := range h.windows {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Close stops the hub and closes all subscription streams.
func (h *Hub) Close() error {
	return h.pubsub.Close()
}

func (h *Hub) present(window string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.windows[window] > 0
}

func (h *Hub) register(window string, delta int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.windows[window] += delta
	if h.windows[window] <= 0 {
		delete(h.windows, window)
	}
}

var _ core.Notifier = (*Hub)(nil)

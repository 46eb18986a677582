package core

import "context"

// Notifier is the host-provided fan-out for pushing the updated Aggregate to
// window surfaces. Delivery is fire-and-forget: an absent target is dropped
// and never reported back.
type Notifier interface {
	Notify(ctx context.Context, targets []string, payload string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, targets []string, payload string)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, targets []string, payload string) {
	f(ctx, targets, payload)
}

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(context.Context, []string, string) {})

// Window identifiers known to the host.
const (
	WindowMain         = "main"
	WindowQuickCapture = "quick-capture"
)

// DefaultTargets lists the windows notified after every mutation.
func DefaultTargets() []string {
	return []string{WindowMain, WindowQuickCapture}
}

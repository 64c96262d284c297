package health

import (
	"context"
	"time"
)

// Prober is one independent health check against the mount.
// Implementations convert every underlying fault into a failed result;
// Check never returns an error and never panics past its caller.
type Prober interface {
	Name() string
	Check(ctx context.Context) ProbeResult
}

// Notifier delivers one composed notification. Delivery failure is the
// caller's problem to log; it does not affect gating.
type Notifier interface {
	Send(ctx context.Context, subject, body string, isTest bool) error
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return realClock{} }

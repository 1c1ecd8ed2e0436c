// Package notify defines the DetectedActivity notification payload and the
// abstract Notifier capability the scanner coordinator dispatches to, plus
// a composite fan-out implementation.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DetectedActivity is the notification payload created exactly once per
// accepted callsign and delivered best-effort to the notifier.
type DetectedActivity struct {
	Callsign       string
	FrequencyHz    uint64
	Timestamp      time.Time
	Duration       time.Duration
	Transcript     string
	CallsignMethod string
	Confidence     float64
}

// Notifier sends a DetectedActivity to some external system. Implementations
// must never return an error across this boundary; transport failures are
// logged and swallowed internally.
type Notifier interface {
	SendActivity(ctx context.Context, activity DetectedActivity)
}

// Composite fans a DetectedActivity out to every configured transport
// concurrently. One transport's failure never blocks or affects another.
type Composite struct {
	transports []Notifier
	log        *zap.SugaredLogger
}

// NewComposite builds a Composite over transports, skipping nil entries so
// callers can build the list conditionally (e.g. webhook configured,
// discord not).
func NewComposite(log *zap.SugaredLogger, transports ...Notifier) *Composite {
	c := &Composite{log: log}
	for _, t := range transports {
		if t != nil {
			c.transports = append(c.transports, t)
		}
	}
	return c
}

func (c *Composite) SendActivity(ctx context.Context, activity DetectedActivity) {
	for _, t := range c.transports {
		go func(t Notifier) {
			defer func() {
				if r := recover(); r != nil {
					c.log.Errorw("notification transport panicked", "panic", r)
				}
			}()
			t.SendActivity(ctx, activity)
		}(t)
	}
}

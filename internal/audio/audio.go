// Package audio defines the capture abstraction the core pipeline depends
// on. Concrete OS-specific backends live in capture_unix.go and
// capture_windows.go, selected at compile time by build tags; callers never
// import those files directly.
package audio

import (
	"strings"
	"time"
)

// Chunk is a contiguous block of mono float samples delivered by a capture
// backend. Immutable once handed to a receiver.
type Chunk struct {
	Samples    []float32
	SampleRate int
	CapturedAt time.Time
}

// Capture is the abstract capability the scanner coordinator depends on. A
// concrete implementation owns an OS audio callback; Chunks must never block
// its producer (the callback thread), so backpressure is handled entirely
// by the caller's own bounded queue.
type Capture interface {
	// Start begins delivering chunks on the channel returned by Chunks.
	Start() error

	// Stop halts capture and releases OS audio resources. Safe to call more
	// than once.
	Stop() error

	// Chunks returns the channel chunks are delivered on. Valid for the
	// lifetime of the Capture value; closed by the backend's delivery
	// goroutine once it observes Stop, which may be after Stop returns.
	Chunks() <-chan Chunk

	// Capturing reports whether the backend is currently running.
	Capturing() bool
}

// deviceNameMatchers lists the case-insensitive substrings that identify an
// IC-705 USB audio interface among a host's input devices.
var deviceNameMatchers = []string{"ic-705", "icom", "usb audio codec"}

// MatchesIC705 reports whether deviceName plausibly names the IC-705's USB
// audio interface, per the auto-detection rule in the external interfaces
// design.
func MatchesIC705(deviceName string) bool {
	lower := strings.ToLower(deviceName)
	for _, m := range deviceNameMatchers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

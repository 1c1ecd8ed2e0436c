// Package asr defines the abstract offline speech recognizer contract the
// scanner coordinator depends on; concrete backends live in subpackages
// (whisper, for the whisper.cpp HTTP inference server).
package asr

import "context"

// Recognizer transcribes a block of 16kHz mono float32 samples into text.
// Implementations must be safe to call from a single goroutine at a time;
// the coordinator serializes recognition calls itself rather than relying
// on internal locking.
type Recognizer interface {
	// Initialize prepares the backend for use (fetching a model, warming up
	// a connection). Must be called once before Transcribe.
	Initialize(ctx context.Context) error

	// IsReady reports whether Initialize has completed successfully.
	IsReady() bool

	// Transcribe returns the recognized text and the backend's own
	// confidence estimate in [0.0, 1.0], where available. An empty result
	// with a nil error means the backend recognized silence or noise.
	Transcribe(ctx context.Context, samples []float32, sampleRate int) (text string, confidence float64, err error)

	// TranscribeFile decodes a RIFF/WAVE PCM16 file at path and transcribes
	// it as if it were a live-captured transmission. Used by offline tools
	// (replaying a saved recording) rather than the live pipeline, which
	// always calls Transcribe with in-memory samples.
	TranscribeFile(ctx context.Context, path string) (text string, confidence float64, err error)

	// Close releases backend resources.
	Close() error
}

package scanner

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/sblanchard/vhf-scanner/internal/audio"
	"github.com/sblanchard/vhf-scanner/internal/notify"
	"github.com/sblanchard/vhf-scanner/internal/segment"
)

type fakeRadio struct{}

func (fakeRadio) ReadFrequency() (uint64, error) { return 146520000, nil }
func (fakeRadio) IsSquelchOpen() (bool, error)    { return true, nil }

type fakeCapture struct {
	ch chan audio.Chunk
}

func newFakeCapture() *fakeCapture { return &fakeCapture{ch: make(chan audio.Chunk, 4)} }

func (f *fakeCapture) Start() error                { return nil }
func (f *fakeCapture) Stop() error                  { return nil }
func (f *fakeCapture) Chunks() <-chan audio.Chunk   { return f.ch }
func (f *fakeCapture) Capturing() bool              { return true }

type fakeRecognizer struct {
	ready bool
	text  string
	err   error
}

func (r *fakeRecognizer) Initialize(ctx context.Context) error { return nil }
func (r *fakeRecognizer) IsReady() bool                        { return r.ready }
func (r *fakeRecognizer) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, float64, error) {
	return r.text, 1.0, r.err
}
func (r *fakeRecognizer) TranscribeFile(ctx context.Context, path string) (string, float64, error) {
	return r.text, 1.0, r.err
}
func (r *fakeRecognizer) Close() error { return nil }

type fakeNotifier struct {
	sent []notify.DetectedActivity
}

func (f *fakeNotifier) SendActivity(ctx context.Context, activity notify.DetectedActivity) {
	f.sent = append(f.sent, activity)
}

func newTestCoordinator(recognizer *fakeRecognizer, notifier *fakeNotifier) *Coordinator {
	return New(
		Config{
			PollInterval:          0,
			MinCallsignConfidence: 0.5,
			SegmentConfig:         segment.DefaultConfig(),
			SampleRate:            16000,
		},
		fakeRadio{},
		newFakeCapture(),
		recognizer,
		notifier,
		nil,
		zap.NewNop().Sugar(),
	)
}

func TestProcessTransmissionDispatchesConfidentCallsign(t *testing.T) {
	recognizer := &fakeRecognizer{ready: true, text: "this is W1ABC over"}
	notifier := &fakeNotifier{}
	c := newTestCoordinator(recognizer, notifier)

	c.processTransmission(context.Background(), taggedTransmission{
		tx:          segment.Transmission{Samples: make([]float32, 1600), SampleRate: 16000},
		frequencyHz: 146520000,
	})

	if len(notifier.sent) != 1 {
		t.Fatalf("len(notifier.sent) = %d, want 1", len(notifier.sent))
	}
	if notifier.sent[0].Callsign != "W1ABC" {
		t.Errorf("Callsign = %q, want W1ABC", notifier.sent[0].Callsign)
	}
	if notifier.sent[0].FrequencyHz != 146520000 {
		t.Errorf("FrequencyHz = %d, want 146520000", notifier.sent[0].FrequencyHz)
	}
}

func TestProcessTransmissionSkipsWhenRecognizerNotReady(t *testing.T) {
	recognizer := &fakeRecognizer{ready: false}
	notifier := &fakeNotifier{}
	c := newTestCoordinator(recognizer, notifier)

	c.processTransmission(context.Background(), taggedTransmission{
		tx: segment.Transmission{Samples: make([]float32, 1600), SampleRate: 16000},
	})

	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notifications when recognizer not ready, got %d", len(notifier.sent))
	}
}

func TestProcessTransmissionSkipsOnEmptyTranscript(t *testing.T) {
	recognizer := &fakeRecognizer{ready: true, text: ""}
	notifier := &fakeNotifier{}
	c := newTestCoordinator(recognizer, notifier)

	c.processTransmission(context.Background(), taggedTransmission{
		tx: segment.Transmission{Samples: make([]float32, 1600), SampleRate: 16000},
	})

	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notifications for an empty transcript, got %d", len(notifier.sent))
	}
}

func TestProcessTransmissionSkipsTranscriptionError(t *testing.T) {
	recognizer := &fakeRecognizer{ready: true, err: errors.New("server unreachable")}
	notifier := &fakeNotifier{}
	c := newTestCoordinator(recognizer, notifier)

	c.processTransmission(context.Background(), taggedTransmission{
		tx: segment.Transmission{Samples: make([]float32, 1600), SampleRate: 16000},
	})

	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notifications on transcription error, got %d", len(notifier.sent))
	}
}

func TestShutdownAggregatesErrors(t *testing.T) {
	recognizer := &erroringRecognizer{closeErr: errors.New("recognizer close failed")}
	notifier := &fakeNotifier{}
	c := newTestCoordinator(&fakeRecognizer{}, notifier)
	c.recognizer = recognizer

	captureErr := errors.New("capture stop failed")
	c.capture = &erroringCapture{fakeCapture: newFakeCapture(), stopErr: captureErr}

	err := c.shutdown()
	if err == nil {
		t.Fatal("expected an aggregated error")
	}
}

type erroringCapture struct {
	*fakeCapture
	stopErr error
}

func (e *erroringCapture) Stop() error { return e.stopErr }

type erroringRecognizer struct {
	closeErr error
}

func (r *erroringRecognizer) Initialize(ctx context.Context) error { return nil }
func (r *erroringRecognizer) IsReady() bool                        { return true }
func (r *erroringRecognizer) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, float64, error) {
	return "", 0, nil
}
func (r *erroringRecognizer) TranscribeFile(ctx context.Context, path string) (string, float64, error) {
	return "", 0, nil
}
func (r *erroringRecognizer) Close() error { return r.closeErr }

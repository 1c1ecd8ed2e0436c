// Package scanner implements the coordinator (C5): the control loop that
// watches squelch state and tags frequencies, the recognition loop that
// drains recorded transmissions through the recognizer and callsign
// extractor, and the bounded drop-oldest queues that join every stage.
package scanner

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sblanchard/vhf-scanner/internal/asr"
	"github.com/sblanchard/vhf-scanner/internal/audio"
	"github.com/sblanchard/vhf-scanner/internal/callsign"
	"github.com/sblanchard/vhf-scanner/internal/logging"
	"github.com/sblanchard/vhf-scanner/internal/notify"
	"github.com/sblanchard/vhf-scanner/internal/segment"
)

const (
	audioQueueCapacity = 100
	recogQueueCapacity = 10

	errorBackoff = time.Second
)

// Radio is the subset of internal/radio.Client the coordinator depends on.
type Radio interface {
	ReadFrequency() (uint64, error)
	IsSquelchOpen() (bool, error)
}

// Config holds the coordinator's tunable parameters.
type Config struct {
	PollInterval          time.Duration
	MinCallsignConfidence float64
	SegmentConfig         segment.Config
	SampleRate            int // capture sample rate the segmenter buffers at
}

// taggedTransmission pairs a completed Transmission with the frequency it
// was recorded on.
type taggedTransmission struct {
	tx          segment.Transmission
	frequencyHz uint64
}

// Coordinator runs C5: the control loop and recognition loop described in
// the external interfaces design, joined by two bounded drop-oldest queues.
type Coordinator struct {
	cfg Config

	radio      Radio
	capture    audio.Capture
	recognizer asr.Recognizer
	notifier   notify.Notifier
	status     *logging.StatusLine

	log *zap.SugaredLogger

	segmenter *segment.Segmenter

	audioQueue chan audio.Chunk
	recogQueue chan taggedTransmission

	wg sync.WaitGroup
}

// New builds a Coordinator. Call Run to start both loops; Run blocks until
// ctx is canceled.
func New(cfg Config, radio Radio, capture audio.Capture, recognizer asr.Recognizer, notifier notify.Notifier, status *logging.StatusLine, log *zap.SugaredLogger) *Coordinator {
	return &Coordinator{
		cfg:        cfg,
		radio:      radio,
		capture:    capture,
		recognizer: recognizer,
		notifier:   notifier,
		status:     status,
		log:        log,
		segmenter:  segment.New(cfg.SegmentConfig, cfg.SampleRate),
		audioQueue: make(chan audio.Chunk, audioQueueCapacity),
		recogQueue: make(chan taggedTransmission, recogQueueCapacity),
	}
}

// Run starts the capture backend and both loops, blocking until ctx is
// canceled. It returns the aggregated error from the shutdown sequence.
func (c *Coordinator) Run(ctx context.Context) error {
	if err := c.capture.Start(); err != nil {
		return err
	}

	var wasGateOpen bool

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.recognitionLoop(ctx)
	}()

	// The capture backend's own channel must never block its producer (the
	// OS audio callback); this pump is the single reader that drains it into
	// the coordinator's own bounded, drop-oldest audio queue (cap 100), which
	// is what the control loop actually drains one chunk at a time from.
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.pumpAudio(ctx)
	}()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return c.shutdown()

		case <-ticker.C:
			gateOpen, freq, err := c.pollRadio()
			if err != nil {
				c.log.Warnw("control loop: radio poll failed", "error", err)
				time.Sleep(errorBackoff)
				continue
			}

			if gateOpen && !wasGateOpen {
				c.segmenter.Reset()
			}
			wasGateOpen = gateOpen

			if c.status != nil {
				c.status.ReportFrequency(freq)
				c.status.ReportGate(gateOpen)
			}

			select {
			case chunk, ok := <-c.audioQueue:
				if !ok {
					continue
				}
				c.handleChunk(chunk, gateOpen, freq)
			default:
			}
		}
	}
}

// pumpAudio is the audio queue's single writer: it relays chunks from the
// capture backend's own channel into the bounded drop-oldest audio queue,
// never blocking on either side.
func (c *Coordinator) pumpAudio(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-c.capture.Chunks():
			if !ok {
				return
			}
			select {
			case c.audioQueue <- chunk:
			default:
				select {
				case <-c.audioQueue:
				default:
				}
				select {
				case c.audioQueue <- chunk:
				default:
				}
			}
		}
	}
}

func (c *Coordinator) pollRadio() (gateOpen bool, freq uint64, err error) {
	freq, err = c.radio.ReadFrequency()
	if err != nil {
		return false, 0, err
	}
	gateOpen, err = c.radio.IsSquelchOpen()
	if err != nil {
		return false, 0, err
	}
	return gateOpen, freq, nil
}

// handleChunk feeds one audio chunk through the segmenter on the control
// loop goroutine (cheap, no blocking I/O) and pushes any completed
// transmission onto the bounded recognition queue, dropping the oldest
// pending transmission if the queue is full.
func (c *Coordinator) handleChunk(chunk audio.Chunk, gateOpen bool, frequencyHz uint64) {
	if c.status != nil {
		c.status.ReportQueueDepths(len(c.audioQueue), len(c.recogQueue))
	}

	tx, ok := c.segmenter.Feed(chunk.Samples, gateOpen)
	if !ok {
		return
	}

	tx.FrequencyHz = frequencyHz
	tagged := taggedTransmission{tx: tx, frequencyHz: frequencyHz}

	select {
	case c.recogQueue <- tagged:
	default:
		select {
		case <-c.recogQueue:
		default:
		}
		select {
		case c.recogQueue <- tagged:
		default:
		}
	}
}

// recognitionLoop drains completed transmissions, resamples to the
// recognizer's expected rate, serializes recognizer access, extracts
// callsigns, and dispatches notifications above the confidence threshold.
func (c *Coordinator) recognitionLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case tagged, ok := <-c.recogQueue:
			if !ok {
				return
			}
			c.processTransmission(ctx, tagged)
		}
	}
}

func (c *Coordinator) processTransmission(ctx context.Context, tagged taggedTransmission) {
	resampled := segment.Resample(tagged.tx.Samples, tagged.tx.SampleRate, segment.TargetSampleRate)

	if !c.recognizer.IsReady() {
		c.log.Debugw("recognizer not ready, skipping transcription", "frequency_hz", tagged.frequencyHz)
		return
	}

	text, _, err := c.recognizer.Transcribe(ctx, resampled, segment.TargetSampleRate)
	if err != nil {
		c.log.Warnw("transcription failed", "error", err)
		return
	}
	if text == "" {
		return
	}

	for _, extracted := range callsign.Extract(text) {
		if extracted.Confidence < c.cfg.MinCallsignConfidence {
			c.log.Debugw("callsign below confidence threshold", "callsign", extracted.Text, "confidence", extracted.Confidence)
			continue
		}

		activity := notify.DetectedActivity{
			Callsign:       extracted.Text,
			FrequencyHz:    tagged.frequencyHz,
			Timestamp:      tagged.tx.StartedAt,
			Duration:       tagged.tx.Duration,
			Transcript:     text,
			CallsignMethod: string(extracted.Method),
			Confidence:     extracted.Confidence,
		}

		if c.status != nil {
			c.status.ReportCallsign(activity.Callsign, activity.Confidence)
		}

		c.notifier.SendActivity(ctx, activity)
	}
}

// shutdown stops capture, drains the recognition loop, and releases the
// recognizer, collecting every error from the sequence via multierr.
func (c *Coordinator) shutdown() error {
	var errs error

	if err := c.capture.Stop(); err != nil {
		errs = multierr.Append(errs, err)
	}

	close(c.recogQueue)
	c.wg.Wait()

	if err := c.recognizer.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}

	return errs
}

// Package segment implements the squelch-gated audio segmenter: pre-roll
// look-behind, silence-tail hang time, and min/max duration trimming over a
// continuously streaming mono audio source.
package segment

import "time"

const (
	DefaultPreRoll     = 500 * time.Millisecond
	DefaultSilenceTail = time.Second
	DefaultMinDuration = time.Second
	DefaultMaxDuration = 60 * time.Second
)

// Config holds the segmenter's timing parameters.
type Config struct {
	PreRoll     time.Duration
	SilenceTail time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration
}

// DefaultConfig returns the spec-documented defaults.
func DefaultConfig() Config {
	return Config{
		PreRoll:     DefaultPreRoll,
		SilenceTail: DefaultSilenceTail,
		MinDuration: DefaultMinDuration,
		MaxDuration: DefaultMaxDuration,
	}
}

// Transmission is an owned buffer of mono float samples captured across one
// squelch-open-to-quiet cycle.
type Transmission struct {
	Samples    []float32
	SampleRate int
	Duration   time.Duration
	StartedAt  time.Time
	// FrequencyHz is filled in by the caller (the scanner coordinator) once
	// the transmission is emitted; the segmenter itself is frequency-agnostic.
	FrequencyHz uint64
}

type state int

const (
	stateIdle state = iota
	stateRecording
)

// Segmenter is stateful: it consumes batches of (samples, gateOpen) and
// emits at most one completed Transmission per open-to-quiet cycle.
//
// min_duration and max_duration bound the gate-open span T (the samples
// actually delivered with gateOpen==true since the rising edge), not the
// full recorded buffer — the buffer additionally carries the pre-roll and
// whatever closed-gate tail is retained, so its length legitimately exceeds
// T even for a transmission that is exactly at the min_duration boundary.
type Segmenter struct {
	cfg        Config
	sampleRate int

	st state

	preRoll     []float32 // ring buffer, retained while gate is closed
	recording   []float32
	openSamples int // samples delivered with gateOpen==true since the rising edge
	silenceRun  int // consecutive gateOpen==false samples since the last open sample
	startedAt   time.Time
	now         func() time.Time
}

// New builds a Segmenter for a fixed capture sample rate.
func New(cfg Config, sampleRate int) *Segmenter {
	return &Segmenter{
		cfg:        cfg,
		sampleRate: sampleRate,
		now:        time.Now,
	}
}

func (s *Segmenter) preRollCapacity() int {
	return durationToSamples(s.cfg.PreRoll, s.sampleRate)
}

// Reset returns the segmenter to Idle with empty buffers. The coordinator
// invokes this whenever a fresh squelch-open edge is observed, so pre-roll
// from a previous channel does not leak into the next transmission.
func (s *Segmenter) Reset() {
	s.st = stateIdle
	s.preRoll = nil
	s.recording = nil
	s.openSamples = 0
	s.silenceRun = 0
}

// Feed advances the state machine with one batch of samples and the current
// gate (squelch-open) signal. It returns a completed Transmission and
// ok=true at most once per open-to-quiet cycle.
func (s *Segmenter) Feed(samples []float32, gateOpen bool) (Transmission, bool) {
	switch s.st {
	case stateIdle:
		if !gateOpen {
			s.appendPreRoll(samples)
			return Transmission{}, false
		}
		// Rising edge: flush pre-roll into the recording, then append.
		s.startedAt = s.now()
		s.recording = append(s.recording[:0], s.preRoll...)
		s.recording = append(s.recording, samples...)
		s.openSamples = len(samples)
		s.silenceRun = 0
		s.st = stateRecording
		return s.maybeForceEmit()

	case stateRecording:
		s.recording = append(s.recording, samples...)
		if gateOpen {
			s.openSamples += len(samples)
			s.silenceRun = 0
		} else {
			s.silenceRun += len(samples)
		}

		if f, ok := s.maybeForceEmit(); ok {
			return f, true
		}
		if s.silenceRun >= s.silenceTailSamples() {
			return s.finish(true)
		}
		return Transmission{}, false
	}
	return Transmission{}, false
}

// maybeForceEmit force-terminates a transmission whose gate-open span has
// reached max_duration, regardless of current gate state.
func (s *Segmenter) maybeForceEmit() (Transmission, bool) {
	if s.openSamples >= s.maxDurationSamples() {
		return s.finish(false)
	}
	return Transmission{}, false
}

// finish ends the Recording cycle. naturalCompletion indicates the finish was
// triggered by the silence-tail hang timer (natural completion) rather than
// by the max_duration force-terminate path, which clamps the emitted buffer
// to pre_roll+max_duration instead of retaining the still-accumulating tail.
func (s *Segmenter) finish(naturalCompletion bool) (Transmission, bool) {
	recording := s.recording
	startedAt := s.startedAt
	openSamples := s.openSamples
	forced := !naturalCompletion

	s.st = stateIdle
	s.recording = nil
	s.openSamples = 0
	s.silenceRun = 0

	if !forced && openSamples < s.minDurationSamples() {
		return Transmission{}, false
	}

	if forced {
		if max := s.preRollCapacity() + s.maxDurationSamples(); len(recording) > max {
			recording = recording[:max]
		}
	}

	return Transmission{
		Samples:    recording,
		SampleRate: s.sampleRate,
		Duration:   samplesToDuration(len(recording), s.sampleRate),
		StartedAt:  startedAt,
	}, true
}

func (s *Segmenter) appendPreRoll(samples []float32) {
	s.preRoll = append(s.preRoll, samples...)
	if cap := s.preRollCapacity(); len(s.preRoll) > cap {
		s.preRoll = s.preRoll[len(s.preRoll)-cap:]
	}
}

func (s *Segmenter) silenceTailSamples() int {
	return durationToSamples(s.cfg.SilenceTail, s.sampleRate)
}

func (s *Segmenter) minDurationSamples() int {
	return durationToSamples(s.cfg.MinDuration, s.sampleRate)
}

func (s *Segmenter) maxDurationSamples() int {
	return durationToSamples(s.cfg.MaxDuration, s.sampleRate)
}

func durationToSamples(d time.Duration, sampleRate int) int {
	return int(d.Seconds() * float64(sampleRate))
}

func samplesToDuration(n, sampleRate int) time.Duration {
	return time.Duration(float64(n) / float64(sampleRate) * float64(time.Second))
}

//go:build !windows

package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/mesilliac/pulse-simple"
)

// PulseCapture captures mono float32 audio from PulseAudio's simple API. It
// is the capture path exercised on Linux and other non-Windows hosts.
type PulseCapture struct {
	sampleRate int
	deviceName string // PulseAudio source name; empty uses the server default

	mu       sync.Mutex
	stream   *pulse.Stream
	running  bool
	chunks   chan Chunk
	stopOnce sync.Once
}

// NewPulseCapture returns a Capture reading from deviceName (a PulseAudio
// source name), or the server's default source when deviceName is empty.
// Device auto-detection by name (MatchesIC705) happens one layer up, where
// the caller enumerates sources with "pactl list sources" output or an
// equivalent; the simple API this package wraps has no enumeration call of
// its own.
func NewPulseCapture(deviceName string, sampleRate int) *PulseCapture {
	return &PulseCapture{
		deviceName: deviceName,
		sampleRate: sampleRate,
		chunks:     make(chan Chunk, 8),
	}
}

const pulseFramesPerRead = 1024

func (c *PulseCapture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// pulse-simple's Capture takes no device argument; PULSE_SOURCE is the
	// documented PulseAudio client override for picking a source by name.
	if c.deviceName != "" {
		os.Setenv("PULSE_SOURCE", c.deviceName)
		defer os.Unsetenv("PULSE_SOURCE")
	}

	spec := &pulse.SampleSpec{
		Format:   pulse.SAMPLE_FLOAT32LE,
		Rate:     uint32(c.sampleRate),
		Channels: 1,
	}

	stream, err := pulse.Capture("ic705mon", "squelch monitor", spec)
	if err != nil {
		return fmt.Errorf("audio: pulse capture: %w", err)
	}

	c.stream = stream
	c.running = true

	go c.readLoop()

	return nil
}

func (c *PulseCapture) readLoop() {
	buf := make([]byte, pulseFramesPerRead*4)

	for {
		c.mu.Lock()
		stream := c.stream
		c.mu.Unlock()
		if stream == nil {
			close(c.chunks)
			return
		}

		n, err := stream.Read(buf)
		if err != nil || n == 0 {
			close(c.chunks)
			return
		}

		samples := make([]float32, n/4)
		for i := range samples {
			bits := binary.LittleEndian.Uint32(buf[i*4 : i*4+4])
			samples[i] = math.Float32frombits(bits)
		}

		chunk := Chunk{Samples: samples, SampleRate: c.sampleRate, CapturedAt: time.Now()}
		select {
		case c.chunks <- chunk:
		default:
		}
	}
}

func (c *PulseCapture) Stop() error {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		stream := c.stream
		c.running = false
		c.stream = nil
		c.mu.Unlock()

		if stream != nil {
			stream.Drain()
			stream.Free()
		}
	})
	return nil
}

func (c *PulseCapture) Chunks() <-chan Chunk { return c.chunks }

func (c *PulseCapture) Capturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

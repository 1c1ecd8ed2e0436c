package audio

import (
	"sync"
	"time"
)

// DryRunCapture replays a decoded WAV file as a Capture, paced to wall-clock
// time so downstream buffering (silence detection, queue depths) behaves the
// way it would against a live backend. Used in place of PulseCapture or
// PortAudioCapture when ic705mon runs with --dry-run.
type DryRunCapture struct {
	samples    []float32
	sampleRate int
	chunkSize  int

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	chunks  chan Chunk
}

// NewDryRunCapture builds a DryRunCapture over samples captured at
// sampleRate, delivered in chunkSize-sample increments.
func NewDryRunCapture(samples []float32, sampleRate, chunkSize int) *DryRunCapture {
	return &DryRunCapture{
		samples:    samples,
		sampleRate: sampleRate,
		chunkSize:  chunkSize,
		chunks:     make(chan Chunk, 8),
		stop:       make(chan struct{}),
	}
}

func (c *DryRunCapture) Start() error {
	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	go c.feed()
	return nil
}

func (c *DryRunCapture) feed() {
	defer close(c.chunks)

	period := time.Duration(c.chunkSize) * time.Second / time.Duration(c.sampleRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	pos := 0
	for pos < len(c.samples) {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			end := pos + c.chunkSize
			if end > len(c.samples) {
				end = len(c.samples)
			}
			chunk := Chunk{
				Samples:    append([]float32(nil), c.samples[pos:end]...),
				SampleRate: c.sampleRate,
				CapturedAt: time.Now(),
			}
			select {
			case c.chunks <- chunk:
			case <-c.stop:
				return
			}
			pos = end
		}
	}
}

func (c *DryRunCapture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}
	c.running = false
	close(c.stop)
	return nil
}

func (c *DryRunCapture) Chunks() <-chan Chunk { return c.chunks }

func (c *DryRunCapture) Capturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

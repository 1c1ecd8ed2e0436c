//go:build windows

package audio

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// PortAudioCapture captures mono float32 audio via PortAudio, the only
// capture path exercised on Windows. A zero value is not usable; construct
// with NewPortAudioCapture.
type PortAudioCapture struct {
	sampleRate int
	deviceName string // explicit device name; empty triggers auto-detection

	mu       sync.Mutex
	stream   *portaudio.Stream
	running  bool
	chunks   chan Chunk
	stopOnce sync.Once
}

// NewPortAudioCapture returns a Capture that reads from deviceName, or from
// the first input device matching MatchesIC705 when deviceName is empty.
func NewPortAudioCapture(deviceName string, sampleRate int) *PortAudioCapture {
	return &PortAudioCapture{
		deviceName: deviceName,
		sampleRate: sampleRate,
		chunks:     make(chan Chunk, 8),
	}
}

func (c *PortAudioCapture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio: portaudio init: %w", err)
	}

	dev, err := c.resolveDevice()
	if err != nil {
		portaudio.Terminate()
		return err
	}

	const framesPerBuffer = 1024
	in := make([]float32, framesPerBuffer)

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: 1,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(c.sampleRate),
		FramesPerBuffer: framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, in)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audio: open stream on %q: %w", dev.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audio: start stream: %w", err)
	}

	c.stream = stream
	c.running = true

	go c.readLoop(in)

	return nil
}

func (c *PortAudioCapture) resolveDevice() (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("audio: enumerate devices: %w", err)
	}

	if c.deviceName != "" {
		for _, d := range devices {
			if strings.EqualFold(d.Name, c.deviceName) {
				return d, nil
			}
		}
		return nil, fmt.Errorf("audio: device %q not found", c.deviceName)
	}

	for _, d := range devices {
		if d.MaxInputChannels > 0 && MatchesIC705(d.Name) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("audio: no input device matched IC-705 auto-detection")
}

func (c *PortAudioCapture) readLoop(in []float32) {
	for {
		c.mu.Lock()
		stream := c.stream
		c.mu.Unlock()
		if stream == nil {
			close(c.chunks)
			return
		}

		if err := stream.Read(); err != nil {
			close(c.chunks)
			return
		}

		samples := make([]float32, len(in))
		copy(samples, in)

		chunk := Chunk{Samples: samples, SampleRate: c.sampleRate, CapturedAt: time.Now()}
		select {
		case c.chunks <- chunk:
		default: // drop-oldest belongs to the caller's queue, not here
		}
	}
}

func (c *PortAudioCapture) Stop() error {
	var err error
	c.stopOnce.Do(func() {
		c.mu.Lock()
		stream := c.stream
		c.running = false
		c.stream = nil
		c.mu.Unlock()

		if stream != nil {
			if e := stream.Stop(); e != nil {
				err = e
			}
			stream.Close()
		}
		portaudio.Terminate()
	})
	return err
}

func (c *PortAudioCapture) Chunks() <-chan Chunk { return c.chunks }

func (c *PortAudioCapture) Capturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

//go:build !windows

package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/akosmarton/papipes"
)

// MonitorSource mirrors captured audio out to a PulseAudio pipe source so an
// operator can listen in with pavucontrol or parec while ic705mon is
// running, without the scanner itself depending on anything but Capture.
type MonitorSource struct {
	src  *papipes.Source
	file *os.File
}

// NewMonitorSource loads a module-pipe-source named name exposing
// sampleRate mono float32 audio, and opens its backing FIFO for writing.
func NewMonitorSource(name string, sampleRate int) (*MonitorSource, error) {
	src := &papipes.Source{
		Name:     name,
		Filename: fmt.Sprintf("/tmp/%s.fifo", name),
		Format:   "float32le",
		Rate:     sampleRate,
		Channels: 1,
	}
	if err := src.Init(); err != nil {
		return nil, fmt.Errorf("audio: init monitor source %q: %w", name, err)
	}

	f, err := os.OpenFile(src.Filename, os.O_WRONLY, 0)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("audio: open monitor fifo %q: %w", src.Filename, err)
	}

	return &MonitorSource{src: src, file: f}, nil
}

// Write mirrors a chunk of samples out to the pipe source. Best-effort: a
// write error only breaks the debug mirror, never the capture path it
// shadows, so callers are expected to ignore it.
func (m *MonitorSource) Write(samples []float32) error {
	buf := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(s))
	}
	_, err := m.file.Write(buf)
	return err
}

func (m *MonitorSource) Close() error {
	m.file.Close()
	return m.src.Close()
}

// MonitoredCapture wraps a Capture and mirrors every chunk it produces to a
// MonitorSource before forwarding it on, so an operator can listen to the
// exact audio the scanner is segmenting without altering its own logic.
type MonitoredCapture struct {
	inner   Capture
	monitor *MonitorSource
	out     chan Chunk
}

// NewMonitoredCapture wraps inner, mirroring its chunks to monitor.
func NewMonitoredCapture(inner Capture, monitor *MonitorSource) *MonitoredCapture {
	return &MonitoredCapture{inner: inner, monitor: monitor, out: make(chan Chunk, 8)}
}

func (m *MonitoredCapture) Start() error {
	if err := m.inner.Start(); err != nil {
		return err
	}
	go m.pump()
	return nil
}

func (m *MonitoredCapture) pump() {
	defer close(m.out)
	for chunk := range m.inner.Chunks() {
		_ = m.monitor.Write(chunk.Samples) // best-effort mirror; never break capture
		m.out <- chunk
	}
}

func (m *MonitoredCapture) Stop() error {
	err := m.inner.Stop()
	if closeErr := m.monitor.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func (m *MonitoredCapture) Chunks() <-chan Chunk { return m.out }

func (m *MonitoredCapture) Capturing() bool { return m.inner.Capturing() }

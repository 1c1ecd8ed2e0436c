package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// StatusLine renders a single, continuously-updated terminal line summarizing
// the coordinator's live state: tuned frequency, squelch gate, queue depths,
// and the most recently detected callsign. It is a no-op when stdout is not
// a terminal, so piping logs to a file never sees status-line noise.
type StatusLine struct {
	mu     sync.Mutex
	ticker *time.Ticker
	stop   chan struct{}
	done   chan struct{}

	data statusData

	openColor   *color.Color
	closedColor *color.Color
}

type statusData struct {
	frequencyHz     uint64
	gateOpen        bool
	audioQueueLen   int
	recogQueueLen   int
	lastCallsign    string
	lastConfidence  float64
}

// NewStatusLine builds a StatusLine. Call Start to begin periodic rendering.
func NewStatusLine() *StatusLine {
	return &StatusLine{
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		openColor:   color.New(color.FgHiWhite, color.BgGreen),
		closedColor: color.New(color.FgHiWhite, color.BgBlue),
	}
}

// enabled reports whether status rendering should do anything at all.
func (s *StatusLine) enabled() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// Start begins the periodic render loop at the given interval. If stdout is
// not a terminal, Start is a no-op (the caller still calls Stop safely).
func (s *StatusLine) Start(interval time.Duration) {
	if !s.enabled() {
		close(s.done)
		return
	}
	s.ticker = time.NewTicker(interval)
	go s.loop()
}

// Stop halts the render loop and clears the status line.
func (s *StatusLine) Stop() {
	if s.ticker == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.ticker.Stop()
	fmt.Print("\r", strings.Repeat(" ", 100), "\r")
}

func (s *StatusLine) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ticker.C:
			s.print()
		case <-s.stop:
			return
		}
	}
}

func (s *StatusLine) print() {
	s.mu.Lock()
	defer s.mu.Unlock()

	gate := s.closedColor.Sprint(" SQL CLOSED ")
	if s.data.gateOpen {
		gate = s.openColor.Sprint(" SQL OPEN ")
	}

	callsign := "-"
	if s.data.lastCallsign != "" {
		callsign = fmt.Sprintf("%s (%.2f)", s.data.lastCallsign, s.data.lastConfidence)
	}

	fmt.Printf("\r%s %10.6f MHz  audioQ=%-3d recogQ=%-3d last=%s\r",
		gate,
		float64(s.data.frequencyHz)/1_000_000,
		s.data.audioQueueLen,
		s.data.recogQueueLen,
		callsign,
	)
}

// ReportFrequency updates the displayed tuned frequency.
func (s *StatusLine) ReportFrequency(hz uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.frequencyHz = hz
}

// ReportGate updates the displayed squelch gate state.
func (s *StatusLine) ReportGate(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.gateOpen = open
}

// ReportQueueDepths updates the displayed audio and recognition queue depths.
func (s *StatusLine) ReportQueueDepths(audioLen, recogLen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.audioQueueLen = audioLen
	s.data.recogQueueLen = recogLen
}

// ReportCallsign updates the most recently detected callsign.
func (s *StatusLine) ReportCallsign(text string, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.lastCallsign = text
	s.data.lastConfidence = confidence
}

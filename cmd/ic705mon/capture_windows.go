//go:build windows

package main

import (
	"github.com/sblanchard/vhf-scanner/internal/audio"
	"github.com/sblanchard/vhf-scanner/internal/config"
)

// newLiveCapture builds the Windows capture backend: PortAudio, which
// resolves IC-705 auto-detection internally when no explicit device name is
// given. device_index has no direct PortAudio equivalent exercised here
// (PortAudio enumerates by name, not a stable index across host APIs), so
// only -1 (auto-detect) is honored on this platform.
func newLiveCapture(cfg config.AudioConfig) (audio.Capture, error) {
	return audio.NewPortAudioCapture("", cfg.SampleRate), nil
}

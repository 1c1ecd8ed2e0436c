//go:build !windows

package main

import (
	"github.com/sblanchard/vhf-scanner/internal/audio"
	"github.com/sblanchard/vhf-scanner/internal/config"
)

// newLiveCapture builds the Unix capture backend: PulseAudio via
// pulse-simple, with the source resolved by device_index or IC-705 name
// auto-detection, optionally wrapped to mirror captured audio out to a
// debug monitor source.
func newLiveCapture(cfg config.AudioConfig) (audio.Capture, error) {
	name, err := audio.ResolveSourceName(cfg.DeviceIndex)
	if err != nil {
		return nil, err
	}
	capture := audio.NewPulseCapture(name, cfg.SampleRate)

	if cfg.MonitorSourceName == "" {
		return capture, nil
	}
	monitor, err := audio.NewMonitorSource(cfg.MonitorSourceName, cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	return audio.NewMonitoredCapture(capture, monitor), nil
}

package config_test

import (
	"testing"

	"github.com/sblanchard/vhf-scanner/internal/config"
)

func TestDefaultMatchesDocumentedDefaults(t *testing.T) {
	cfg := config.Default()

	if cfg.Radio.BaudRate != 19200 {
		t.Errorf("default baud rate = %d, want 19200", cfg.Radio.BaudRate)
	}
	if cfg.Radio.Address != 0xa4 {
		t.Errorf("default radio address = %#x, want 0xa4", cfg.Radio.Address)
	}
	if cfg.Radio.ControllerAddress != 0xe0 {
		t.Errorf("default controller address = %#x, want 0xe0", cfg.Radio.ControllerAddress)
	}
	if cfg.Audio.DeviceIndex != -1 {
		t.Errorf("default audio device index = %d, want -1", cfg.Audio.DeviceIndex)
	}
	if cfg.Scanner.PollIntervalMs != 50 {
		t.Errorf("default poll interval = %d, want 50", cfg.Scanner.PollIntervalMs)
	}
	if cfg.Scanner.MinCallsignConfidence != 0.5 {
		t.Errorf("default min callsign confidence = %v, want 0.5", cfg.Scanner.MinCallsignConfidence)
	}
}

func TestValidateRejectsMissingSerialPort(t *testing.T) {
	cfg := config.Default()
	if err := config.Validate(cfg); err != config.ErrMissingSerialPort {
		t.Fatalf("got %v, want ErrMissingSerialPort", err)
	}
}

func TestValidateAllowsMissingSerialPortInDryRun(t *testing.T) {
	cfg := config.Default()
	cfg.DryRun = true
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("unexpected error in dry-run mode: %v", err)
	}
}

func TestValidateAcceptsConfiguredPort(t *testing.T) {
	cfg := config.Default()
	cfg.Radio.PortName = "/dev/ttyUSB0"
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

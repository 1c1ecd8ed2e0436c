// Package config defines the configuration schema for ic705mon and the
// layered loader (YAML file overridden by command-line flags).
package config

import "time"

// RadioConfig configures the CI-V serial link to the transceiver.
type RadioConfig struct {
	// PortName is the OS device path for the USB-to-serial adapter
	// (e.g., "/dev/ttyUSB0" or "COM3"). Required; a missing port is a fatal
	// configuration error.
	PortName string `yaml:"port_name"`

	// BaudRate is the CI-V link speed. Defaults to 19200.
	BaudRate int `yaml:"baud_rate"`

	// Address is the radio's CI-V bus address. Defaults to 0xA4 (IC-705).
	Address byte `yaml:"address"`

	// ControllerAddress is this process's CI-V bus address. Defaults to 0xE0.
	ControllerAddress byte `yaml:"controller_address"`
}

// AudioConfig configures the capture backend.
type AudioConfig struct {
	// DeviceIndex selects an input device explicitly; -1 (default) requests
	// auto-detection of a device whose name contains "IC-705", "ICOM", or
	// "USB Audio CODEC" (case-insensitive).
	DeviceIndex int `yaml:"device_index"`

	// SampleRate is the capture sample rate in Hz. Defaults to 48000.
	SampleRate int `yaml:"sample_rate"`

	// MonitorSourceName, if non-empty, mirrors captured audio out to a
	// PulseAudio pipe source of this name so an operator can listen in with
	// pavucontrol or parec. Empty disables the mirror. Unix only; ignored on
	// Windows builds.
	MonitorSourceName string `yaml:"monitor_source_name"`
}

// ASRConfig configures the offline speech recognizer.
type ASRConfig struct {
	// Model names the whisper.cpp model to request from the inference
	// server (e.g., "base.en").
	Model string `yaml:"model"`

	// ModelsDirectory is where fetched model archives are cached on disk.
	ModelsDirectory string `yaml:"models_directory"`

	// ModelURL is the HTTPS location to fetch Model's archive from, if it
	// is not already present under ModelsDirectory. Empty skips the fetch
	// (the server is assumed to already have the model loaded).
	ModelURL string `yaml:"model_url"`

	// ModelSHA256 is the expected hex-encoded SHA-256 digest of the fetched
	// archive, verified before it is trusted.
	ModelSHA256 string `yaml:"model_sha256"`

	// ServerURL is the whisper.cpp inference server's base URL.
	ServerURL string `yaml:"server_url"`

	// UseGPU is carried into the whisper client's configuration. The
	// whisper.cpp HTTP client does not send it to the server, so it has no
	// effect on inference.
	UseGPU bool `yaml:"use_gpu"`

	// Threads bounds CPU thread usage for inference. Zero lets the server
	// pick its own default.
	Threads int `yaml:"threads"`
}

// ScannerConfig configures the coordinator's control loop.
type ScannerConfig struct {
	// PollIntervalMs is the control loop period. Defaults to 50.
	PollIntervalMs int `yaml:"poll_interval_ms"`

	// MinCallsignConfidence is the minimum confidence an extracted callsign
	// must carry before it is dispatched to the notifier. Defaults to 0.5.
	MinCallsignConfidence float64 `yaml:"min_callsign_confidence"`
}

// PollInterval returns ScannerConfig.PollIntervalMs as a time.Duration.
func (s ScannerConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

// WebhookConfig configures the generic JSON webhook notification transport.
type WebhookConfig struct {
	// URL is the endpoint the coordinator POSTs DetectedActivity JSON to.
	// Empty disables the webhook transport.
	URL string `yaml:"url"`
}

// DiscordConfig configures the Discord notification transport.
type DiscordConfig struct {
	// Token is the bot token ("Bot <token>" is built internally). Empty
	// disables the Discord transport.
	Token string `yaml:"token"`

	// ChannelID is the channel detections are posted to.
	ChannelID string `yaml:"channel_id"`
}

// NotificationsConfig configures the composite notifier's transports.
type NotificationsConfig struct {
	Webhook WebhookConfig `yaml:"webhook"`
	Discord DiscordConfig `yaml:"discord"`
}

// Config is the root configuration structure for ic705mon.
type Config struct {
	Radio         RadioConfig         `yaml:"radio"`
	Audio         AudioConfig         `yaml:"audio"`
	ASR           ASRConfig           `yaml:"asr"`
	Scanner       ScannerConfig       `yaml:"scanner"`
	Notifications NotificationsConfig `yaml:"notifications"`

	// DebugPackets and DryRun are CLI-only switches (never read from YAML):
	// dumping every CI-V frame at debug level, and running the pipeline
	// against a recorded WAV file and a canned squelch trace instead of live
	// hardware.
	DebugPackets bool `yaml:"-"`
	DryRun       bool `yaml:"-"`

	// Verbose and Quiet are CLI-only logging-level switches, mutually
	// exclusive in effect (Quiet wins if both are set).
	Verbose bool `yaml:"-"`
	Quiet   bool `yaml:"-"`

	// DryRunWAV and DryRunSquelch name the recorded WAV file and the canned
	// squelch trace file --dry-run replays instead of live hardware.
	DryRunWAV     string `yaml:"-"`
	DryRunSquelch string `yaml:"-"`

	// TranscribeFile, if non-empty, short-circuits the live pipeline: the
	// process transcribes this one WAV file via the recognizer's
	// TranscribeFile entry point, prints the result, and exits, without
	// opening the radio or audio capture.
	TranscribeFile string `yaml:"-"`
}

// Default returns a Config populated with every spec-documented default.
func Default() Config {
	return Config{
		Radio: RadioConfig{
			BaudRate:          19200,
			Address:           0xa4,
			ControllerAddress: 0xe0,
		},
		Audio: AudioConfig{
			DeviceIndex: -1,
			SampleRate:  48000,
		},
		ASR: ASRConfig{
			Model:           "base.en",
			ModelsDirectory: "./models",
			ServerURL:       "http://localhost:8080",
		},
		Scanner: ScannerConfig{
			PollIntervalMs:        50,
			MinCallsignConfidence: 0.5,
		},
	}
}

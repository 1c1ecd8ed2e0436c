package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pborman/getopt"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnvVar is the environment variable fallback for the config file
// path, consulted when --config is not given on the command line.
const ConfigPathEnvVar = "IC705MON_CONFIG"

// ResolveConfigPath scans args (typically os.Args[1:]) for "--config path"
// or "--config=path", falling back to $IC705MON_CONFIG. It must run before
// Load, since the YAML file has to be read before Load's own flag defaults
// (which are seeded from the post-YAML Config) are established.
func ResolveConfigPath(args []string) string {
	for i, a := range args {
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv(ConfigPathEnvVar)
}

// ErrMissingSerialPort names the fatal configuration error raised when no
// serial port is configured and neither dry-run nor transcribe-file mode is
// requested: the coordinator must never start without a reachable radio.
var ErrMissingSerialPort = fmt.Errorf("config: radio.port_name is required")

// Load builds a Config by reading the YAML file at path (if non-empty),
// layering it over Default, then applying command-line flag overrides.
// Flags are parsed from os.Args, matching getopt's own CommandLine idiom.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: open %q: %w", path, err)
		}
		defer f.Close()

		if err := decodeInto(&cfg, f); err != nil {
			return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	applyFlags(&cfg)

	return cfg, Validate(cfg)
}

func decodeInto(cfg *Config, r io.Reader) error {
	dec := yaml.NewDecoder(r)
	return dec.Decode(cfg)
}

// applyFlags registers command-line overrides for the configuration surface
// and parses them from the process's own argument list.
func applyFlags(cfg *Config) {
	port := getopt.StringLong("serial-port", 0, cfg.Radio.PortName, "radio serial port device")
	baud := getopt.IntLong("baud-rate", 0, cfg.Radio.BaudRate, "radio serial baud rate")
	device := getopt.IntLong("audio-device", 0, cfg.Audio.DeviceIndex, "capture device index, -1 to auto-detect")
	monitorSource := getopt.StringLong("audio-monitor-source", 0, cfg.Audio.MonitorSourceName, "mirror captured audio to this PulseAudio pipe source name, empty to disable")
	asrServer := getopt.StringLong("asr-server", 0, cfg.ASR.ServerURL, "whisper.cpp inference server URL")
	webhook := getopt.StringLong("webhook-url", 0, cfg.Notifications.Webhook.URL, "generic JSON webhook URL")
	poll := getopt.IntLong("poll-interval-ms", 0, cfg.Scanner.PollIntervalMs, "control loop poll interval in milliseconds")
	debugPackets := getopt.BoolLong("debug-packets", 'D', "dump every CI-V frame sent/received")
	dryRun := getopt.BoolLong("dry-run", 0, "run the pipeline against a recorded WAV file instead of live hardware")
	dryRunWAV := getopt.StringLong("dry-run-wav", 0, "", "WAV file to replay under --dry-run")
	dryRunSquelch := getopt.StringLong("dry-run-squelch", 0, "", "squelch trace file to replay under --dry-run")
	transcribeFile := getopt.StringLong("transcribe-file", 0, "", "transcribe this WAV file and exit, bypassing the live pipeline")
	verbose := getopt.BoolLong("verbose", 'v', "enable debug logging")
	quiet := getopt.BoolLong("quiet", 'q', "disable all but warning/error logging")
	help := getopt.BoolLong("help", 'h', "display help")
	// config is consumed here only so getopt recognizes it on the command
	// line; the path itself is resolved by the caller (main, via
	// ResolveConfigPath) before Load is invoked, since the YAML file must be
	// read before these very flag defaults are established.
	_ = getopt.StringLong("config", 0, "", "path to YAML config file")

	getopt.Parse()

	if *help {
		getopt.Usage()
		os.Exit(0)
	}

	cfg.Radio.PortName = *port
	cfg.Radio.BaudRate = *baud
	cfg.Audio.DeviceIndex = *device
	cfg.Audio.MonitorSourceName = *monitorSource
	cfg.ASR.ServerURL = *asrServer
	cfg.Notifications.Webhook.URL = *webhook
	cfg.Scanner.PollIntervalMs = *poll
	cfg.DebugPackets = *debugPackets
	cfg.DryRun = *dryRun
	cfg.DryRunWAV = *dryRunWAV
	cfg.DryRunSquelch = *dryRunSquelch
	cfg.TranscribeFile = *transcribeFile
	cfg.Verbose = *verbose
	cfg.Quiet = *quiet
}

// Validate enforces the fatal-configuration-error rule from the error
// handling design: the coordinator refuses to start without a serial port
// unless running in dry-run mode or transcribe-file mode (which never opens
// the radio).
func Validate(cfg Config) error {
	if cfg.DryRun || cfg.TranscribeFile != "" {
		return nil
	}
	if cfg.Radio.PortName == "" {
		return ErrMissingSerialPort
	}
	return nil
}

// Command ic705mon watches an Icom IC-705's squelch state over its CI-V
// serial link, records the audio of each transmission, transcribes it with
// an offline speech recognizer, extracts amateur-radio callsigns, and
// dispatches notifications for the ones it is confident about.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sblanchard/vhf-scanner/internal/asr"
	"github.com/sblanchard/vhf-scanner/internal/asr/whisper"
	"github.com/sblanchard/vhf-scanner/internal/audio"
	"github.com/sblanchard/vhf-scanner/internal/callsign"
	"github.com/sblanchard/vhf-scanner/internal/config"
	"github.com/sblanchard/vhf-scanner/internal/logging"
	"github.com/sblanchard/vhf-scanner/internal/notify"
	"github.com/sblanchard/vhf-scanner/internal/radio"
	"github.com/sblanchard/vhf-scanner/internal/scanner"
	"github.com/sblanchard/vhf-scanner/internal/segment"
)

const statusLineInterval = 200 * time.Millisecond

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ic705mon:", err)
		os.Exit(1)
	}
}

func run() error {
	path := config.ResolveConfigPath(os.Args[1:])
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	zapLogger, err := logging.New(cfg.Verbose || cfg.DebugPackets, cfg.Quiet)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	recognizer := whisper.New(whisper.Config{
		ServerURL:       cfg.ASR.ServerURL,
		Model:           cfg.ASR.Model,
		UseGPU:          cfg.ASR.UseGPU,
		Threads:         cfg.ASR.Threads,
		ModelsDirectory: cfg.ASR.ModelsDirectory,
		ModelURL:        cfg.ASR.ModelURL,
		ModelSHA256:     cfg.ASR.ModelSHA256,
	}, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := recognizer.Initialize(ctx); err != nil {
		log.Warnw("recognizer unreachable at startup; transmissions will be recorded but not transcribed", "error", err)
	}

	if cfg.TranscribeFile != "" {
		return transcribeFileAndExit(ctx, recognizer, cfg.TranscribeFile)
	}

	radioClient, capture, sampleRate, closeInputs, err := buildInputs(cfg, log)
	if err != nil {
		return err
	}
	defer closeInputs()

	notifier := buildNotifier(cfg, log)

	status := logging.NewStatusLine()
	status.Start(statusLineInterval)
	defer status.Stop()

	coord := scanner.New(
		scanner.Config{
			PollInterval:          cfg.Scanner.PollInterval(),
			MinCallsignConfidence: cfg.Scanner.MinCallsignConfidence,
			SegmentConfig:         segment.DefaultConfig(),
			SampleRate:            sampleRate,
		},
		radioClient,
		capture,
		recognizer,
		notifier,
		status,
		log,
	)

	log.Infow("ic705mon starting",
		"serial_port", cfg.Radio.PortName,
		"dry_run", cfg.DryRun,
		"asr_server", cfg.ASR.ServerURL,
	)

	return coord.Run(ctx)
}

// transcribeFileAndExit runs the recognizer's TranscribeFile entry point
// against a single saved WAV recording, prints the transcript and any
// callsigns extracted from it, and returns nil on success. Used by
// --transcribe-file to exercise the recognizer and extractor without a
// radio or live audio capture.
func transcribeFileAndExit(ctx context.Context, recognizer asr.Recognizer, path string) error {
	text, confidence, err := recognizer.TranscribeFile(ctx, path)
	if err != nil {
		return fmt.Errorf("transcribe %q: %w", path, err)
	}

	fmt.Printf("transcript: %q (confidence %.2f)\n", text, confidence)
	for _, c := range callsign.Extract(text) {
		fmt.Printf("callsign: %s (%.2f, %s)\n", c.Text, c.Confidence, c.Method)
	}
	return nil
}

// buildInputs wires the radio client and capture backend, live or
// dry-run, per cfg, and reports the sample rate the segmenter should be
// configured for. The returned closer releases whichever resources the
// chosen mode opened; it is always safe to call.
func buildInputs(cfg config.Config, log *zap.SugaredLogger) (scanner.Radio, audio.Capture, int, func(), error) {
	if cfg.DryRun {
		return buildDryRunInputs(cfg, log)
	}
	return buildLiveInputs(cfg, log)
}

func buildLiveInputs(cfg config.Config, log *zap.SugaredLogger) (scanner.Radio, audio.Capture, int, func(), error) {
	client := radio.New(cfg.Radio.PortName, cfg.Radio.BaudRate, cfg.Radio.Address, cfg.Radio.ControllerAddress, log)
	client.SetDebugPackets(cfg.DebugPackets)
	if err := client.Connect(); err != nil {
		return nil, nil, 0, func() {}, fmt.Errorf("connect radio: %w", err)
	}

	capture, err := newLiveCapture(cfg.Audio)
	if err != nil {
		_ = client.Close()
		return nil, nil, 0, func() {}, fmt.Errorf("open audio capture: %w", err)
	}

	closer := func() {
		var errs error
		errs = multierr.Append(errs, client.Close())
		if errs != nil {
			log.Warnw("error releasing radio client", "error", errs)
		}
	}
	return client, capture, cfg.Audio.SampleRate, closer, nil
}

// buildDryRunInputs replays a recorded WAV file and a canned squelch trace
// instead of talking to live hardware, for exercising the segmenter,
// extractor, and coordinator without a radio attached. The segmenter is
// configured at the WAV file's own sample rate rather than cfg.Audio's,
// since a recorded capture may not match the live device's configured rate.
func buildDryRunInputs(cfg config.Config, log *zap.SugaredLogger) (scanner.Radio, audio.Capture, int, func(), error) {
	if cfg.DryRunWAV == "" || cfg.DryRunSquelch == "" {
		return nil, nil, 0, func() {}, fmt.Errorf("dry-run requires --dry-run-wav and --dry-run-squelch")
	}

	samples, sampleRate, err := audio.DecodeWAVFile(cfg.DryRunWAV)
	if err != nil {
		return nil, nil, 0, func() {}, fmt.Errorf("dry-run: decode wav: %w", err)
	}
	if sampleRate <= 0 {
		sampleRate = cfg.Audio.SampleRate
	}

	events, err := loadSquelchTrace(cfg.DryRunSquelch)
	if err != nil {
		return nil, nil, 0, func() {}, err
	}

	const dryRunChunkSize = 1024
	capture := audio.NewDryRunCapture(samples, sampleRate, dryRunChunkSize)
	radioFake := newTraceRadio(events)

	log.Infow("dry-run mode", "wav", cfg.DryRunWAV, "squelch_trace", cfg.DryRunSquelch, "sample_rate", sampleRate)

	return radioFake, capture, sampleRate, func() {}, nil
}

// buildNotifier assembles the composite fan-out notifier from whichever
// transports are configured; an empty composite silently drops every
// activity, matching the notifier contract's best-effort delivery.
func buildNotifier(cfg config.Config, log *zap.SugaredLogger) notify.Notifier {
	var transports []notify.Notifier

	if cfg.Notifications.Webhook.URL != "" {
		transports = append(transports, notify.NewWebhook(cfg.Notifications.Webhook.URL, log))
	}

	if cfg.Notifications.Discord.Token != "" && cfg.Notifications.Discord.ChannelID != "" {
		discordNotifier, err := notify.NewDiscord(cfg.Notifications.Discord.Token, cfg.Notifications.Discord.ChannelID, log)
		if err != nil {
			log.Warnw("discord notifier unavailable", "error", err)
		} else {
			transports = append(transports, discordNotifier)
		}
	}

	return notify.NewComposite(log, transports...)
}

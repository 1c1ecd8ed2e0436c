// Package whisper implements asr.Recognizer against a whisper.cpp
// inference server's HTTP API: POST a WAV file to /inference, read back the
// recognized text as JSON.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sblanchard/vhf-scanner/internal/audio"
)

// Config configures a Client.
type Config struct {
	ServerURL string
	Model     string
	UseGPU    bool
	Threads   int

	// ModelsDirectory, ModelURL, and ModelSHA256 drive EnsureModel: if
	// ModelURL is non-empty, Initialize fetches and caches the model
	// archive under ModelsDirectory before probing the server. Empty
	// ModelURL skips the fetch (the server is assumed to already have the
	// model loaded, whisper.cpp's usual deployment).
	ModelsDirectory string
	ModelURL        string
	ModelSHA256     string
}

// Client talks to a whisper.cpp server's /inference endpoint. Transcribe
// calls are safe to invoke one at a time; the scanner coordinator already
// serializes recognition, so no internal lock guards concurrent calls.
// Readiness is tracked with an atomic flag.
type Client struct {
	cfg Config
	log *zap.SugaredLogger

	httpClient *http.Client

	mu    sync.Mutex
	ready atomic.Bool
}

// New builds a Client. Call Initialize before Transcribe.
func New(cfg Config, log *zap.SugaredLogger) *Client {
	return &Client{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Initialize fetches and caches the model archive (if ModelURL is
// configured) and probes the server's root endpoint for reachability.
// whisper.cpp's server loads whatever model is on disk at its own process
// start, so the fetch only needs to land the file before the server (or an
// operator restarting it) needs it; Initialize does not itself restart the
// server.
func (c *Client) Initialize(ctx context.Context) error {
	if c.cfg.ModelURL != "" {
		if _, err := EnsureModel(c.cfg.ModelsDirectory, c.cfg.Model, c.cfg.ModelURL, c.cfg.ModelSHA256); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.ServerURL+"/", nil)
	if err != nil {
		return fmt.Errorf("whisper: build probe request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whisper: server unreachable at %s: %w", c.cfg.ServerURL, err)
	}
	resp.Body.Close()

	c.ready.Store(true)
	return nil
}

func (c *Client) IsReady() bool { return c.ready.Load() }

type inferenceResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads samples as a WAV file and returns the server's
// recognized text. whisper.cpp's /inference endpoint does not report a
// confidence score, so Transcribe always returns 1.0 for non-empty text and
// leaves downstream confidence weighting to the callsign extractor.
func (c *Client) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, float64, error) {
	if !c.IsReady() {
		return "", 0, fmt.Errorf("whisper: client not initialized")
	}

	wav := encodeWAV(samples, sampleRate)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", 0, fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return "", 0, fmt.Errorf("whisper: write wav body: %w", err)
	}

	writeField(mw, "response_format", "json")
	if c.cfg.Model != "" {
		writeField(mw, "model", c.cfg.Model)
	}
	if c.cfg.Threads > 0 {
		writeField(mw, "threads", fmt.Sprintf("%d", c.cfg.Threads))
	}

	if err := mw.Close(); err != nil {
		return "", 0, fmt.Errorf("whisper: close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ServerURL+"/inference", &body)
	if err != nil {
		return "", 0, fmt.Errorf("whisper: build inference request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("whisper: inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("whisper: server returned %d: %s", resp.StatusCode, respBody)
	}

	var out inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", 0, fmt.Errorf("whisper: decode response: %w", err)
	}

	text := out.Text
	if text == "" {
		return "", 0, nil
	}
	return text, 1.0, nil
}

// TranscribeFile decodes the RIFF/WAVE PCM16 file at path (the same layout
// encodeWAV writes, read in reverse) and transcribes it the same way a
// live-captured transmission would be. Intended for offline replay of a
// saved recording, not the live pipeline.
func (c *Client) TranscribeFile(ctx context.Context, path string) (string, float64, error) {
	samples, sampleRate, err := audio.DecodeWAVFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("whisper: transcribe file: %w", err)
	}
	return c.Transcribe(ctx, samples, sampleRate)
}

func writeField(mw *multipart.Writer, key, value string) {
	w, err := mw.CreateFormField(key)
	if err != nil {
		return
	}
	w.Write([]byte(value))
}

func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

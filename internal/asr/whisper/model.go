package whisper

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// EnsureModel fetches the model archive at url into dir/name if it is not
// already present, verifying it against the expected SHA-256 hex digest.
// No example in the retrieval pack performs a signed model download; this
// is a standard-library addition (net/http, crypto/sha256) since the
// verification step has no third-party equivalent among the pack's
// dependencies.
func EnsureModel(dir, name, url, expectedSHA256 string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("whisper: create models directory %q: %w", dir, err)
	}

	path := filepath.Join(dir, name)

	if sum, err := sha256OfFile(path); err == nil && sum == expectedSHA256 {
		return path, nil
	}

	if err := downloadFile(path, url); err != nil {
		return "", err
	}

	sum, err := sha256OfFile(path)
	if err != nil {
		return "", fmt.Errorf("whisper: hash downloaded model: %w", err)
	}
	if sum != expectedSHA256 {
		os.Remove(path)
		return "", fmt.Errorf("whisper: model %q hash mismatch: got %s, want %s", name, sum, expectedSHA256)
	}

	return path, nil
}

func downloadFile(path, url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("whisper: fetch %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whisper: fetch %q: server returned %d", url, resp.StatusCode)
	}

	tmp := path + ".download"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("whisper: create %q: %w", tmp, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("whisper: write %q: %w", tmp, err)
	}
	f.Close()

	return os.Rename(tmp, path)
}

func sha256OfFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

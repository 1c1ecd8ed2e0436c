// Package callsign extracts and validates amateur-radio callsigns from a
// speech-to-text transcript, including callsigns spoken letter-by-letter in
// the ITU phonetic alphabet.
package callsign

import (
	"regexp"
	"strings"
)

// directPattern matches a bare callsign: 1-2 letters, 1-2 digits, 1-4
// letters.
var directPattern = regexp.MustCompile(`(?i)\b[A-Z]{1,2}\d{1,2}[A-Z]{1,4}\b`)

// Method names how a callsign was produced.
type Method string

const (
	Direct   Method = "Direct"
	Phonetic Method = "Phonetic"
)

// Extracted is a validated candidate callsign pulled from a transcript.
type Extracted struct {
	Text       string
	Confidence float64
	Method     Method
}

const (
	directConfidence   = 0.90
	phoneticConfidence = 0.70
)

var bannedSubstrings = []string{"HELLO", "OVER", "ROGER", "COPY", "BREAK"}

// IsValid reports whether text passes the callsign validation heuristics:
// length 4-7, at least one digit, first and last characters letters, and no
// banned substring (case-insensitive).
func IsValid(text string) bool {
	if len(text) < 4 || len(text) > 7 {
		return false
	}
	first, last := text[0], text[len(text)-1]
	if !isLetter(first) || !isLetter(last) {
		return false
	}
	hasDigit := false
	for i := 0; i < len(text); i++ {
		if text[i] >= '0' && text[i] <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return false
	}
	upper := strings.ToUpper(text)
	for _, banned := range bannedSubstrings {
		if strings.Contains(upper, banned) {
			return false
		}
	}
	return true
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// Extract applies the direct-match and phonetic-decoding heuristics to a raw
// transcript and returns validated, deduplicated callsigns: all Direct
// matches in transcript order, then all new Phonetic matches in
// rewritten-text order.
func Extract(transcript string) []Extracted {
	var results []Extracted
	seen := make(map[string]bool)

	for _, m := range directPattern.FindAllString(transcript, -1) {
		text := strings.ToUpper(m)
		if !IsValid(text) || seen[text] {
			continue
		}
		seen[text] = true
		results = append(results, Extracted{Text: text, Confidence: directConfidence, Method: Direct})
	}

	rewritten := phoneticRewrite(transcript)
	for _, m := range directPattern.FindAllString(rewritten, -1) {
		text := strings.ToUpper(m)
		if !IsValid(text) || seen[text] {
			continue
		}
		seen[text] = true
		results = append(results, Extracted{Text: text, Confidence: phoneticConfidence, Method: Phonetic})
	}

	return results
}

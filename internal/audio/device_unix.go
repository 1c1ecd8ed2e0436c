//go:build !windows

package audio

import (
	"bufio"
	"fmt"
	"os/exec"
	"strings"
)

// ResolveSourceName enumerates PulseAudio sources via "pactl list short
// sources" and returns the source name to hand to NewPulseCapture.
//
// index >= 0 selects that source by its position in pactl's listing
// (matching the config surface's device_index field). index == -1 requests
// auto-detection: the first source whose name contains one of the IC-705
// markers checked by MatchesIC705. pulse-simple's own Capture call has no
// enumeration of its own, so this lookup lives one layer up, in the
// process that wires the capture backend together.
func ResolveSourceName(index int) (string, error) {
	out, err := exec.Command("pactl", "list", "short", "sources").Output()
	if err != nil {
		return "", fmt.Errorf("audio: enumerate pulse sources: %w", err)
	}

	var names []string
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		names = append(names, fields[1])
	}

	if index >= 0 {
		if index >= len(names) {
			return "", fmt.Errorf("audio: device index %d out of range (%d sources)", index, len(names))
		}
		return names[index], nil
	}

	for _, name := range names {
		if MatchesIC705(name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("audio: no pulse source matched IC-705 auto-detection")
}

package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// DecodeWAVFile reads a PCM16LE mono or multi-channel WAV file and returns
// its samples as mono float32 in [-1.0, 1.0], downmixed by averaging
// channels. Used by dry-run mode to replay a recorded capture through the
// same pipeline a live backend would feed.
func DecodeWAVFile(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("audio: open %q: %w", path, err)
	}
	defer f.Close()

	var riffHdr [12]byte
	if _, err := io.ReadFull(f, riffHdr[:]); err != nil {
		return nil, 0, fmt.Errorf("audio: read RIFF header: %w", err)
	}
	if string(riffHdr[0:4]) != "RIFF" || string(riffHdr[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("audio: %q is not a RIFF/WAVE file", path)
	}

	var (
		channels   uint16
		sampleRate uint32
		bitsPerSmp uint16
		pcm        []byte
	)

	for {
		var chunkHdr [8]byte
		if _, err := io.ReadFull(f, chunkHdr[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, 0, fmt.Errorf("audio: read chunk header: %w", err)
		}
		id := string(chunkHdr[0:4])
		size := binary.LittleEndian.Uint32(chunkHdr[4:8])

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(f, body); err != nil {
				return nil, 0, fmt.Errorf("audio: read fmt chunk: %w", err)
			}
			channels = binary.LittleEndian.Uint16(body[2:4])
			sampleRate = binary.LittleEndian.Uint32(body[4:8])
			bitsPerSmp = binary.LittleEndian.Uint16(body[14:16])
		case "data":
			pcm = make([]byte, size)
			if _, err := io.ReadFull(f, pcm); err != nil {
				return nil, 0, fmt.Errorf("audio: read data chunk: %w", err)
			}
		default:
			if _, err := io.CopyN(io.Discard, f, int64(size)); err != nil {
				return nil, 0, fmt.Errorf("audio: skip chunk %q: %w", id, err)
			}
		}
		if size%2 == 1 { // chunks are word-aligned
			f.Seek(1, io.SeekCurrent)
		}
	}

	if bitsPerSmp != 16 {
		return nil, 0, fmt.Errorf("audio: unsupported bit depth %d, want 16", bitsPerSmp)
	}
	if channels == 0 {
		return nil, 0, fmt.Errorf("audio: %q has no fmt chunk", path)
	}

	frameCount := len(pcm) / 2 / int(channels)
	samples := make([]float32, frameCount)
	for i := 0; i < frameCount; i++ {
		var sum int32
		for ch := 0; ch < int(channels); ch++ {
			off := (i*int(channels) + ch) * 2
			sum += int32(int16(binary.LittleEndian.Uint16(pcm[off : off+2])))
		}
		samples[i] = float32(sum/int32(channels)) / 32768.0
	}

	return samples, int(sampleRate), nil
}

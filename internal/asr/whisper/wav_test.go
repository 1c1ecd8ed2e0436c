package whisper

import (
	"encoding/binary"
	"testing"
)

func TestEncodeWAVHeaderFields(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1}
	buf := encodeWAV(samples, 16000)

	if string(buf[0:4]) != "RIFF" || string(buf[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE markers")
	}
	if string(buf[12:16]) != "fmt " {
		t.Fatalf("missing fmt chunk")
	}
	channels := binary.LittleEndian.Uint16(buf[22:24])
	if channels != 1 {
		t.Errorf("channels = %d, want 1", channels)
	}
	rate := binary.LittleEndian.Uint32(buf[24:28])
	if rate != 16000 {
		t.Errorf("sample rate = %d, want 16000", rate)
	}
	bits := binary.LittleEndian.Uint16(buf[34:36])
	if bits != 16 {
		t.Errorf("bits per sample = %d, want 16", bits)
	}
	if string(buf[36:40]) != "data" {
		t.Fatalf("missing data chunk")
	}
	dataSize := binary.LittleEndian.Uint32(buf[40:44])
	if int(dataSize) != len(samples)*2 {
		t.Errorf("data size = %d, want %d", dataSize, len(samples)*2)
	}
}

func TestEncodeWAVClampsOutOfRangeSamples(t *testing.T) {
	buf := encodeWAV([]float32{2.0, -2.0}, 8000)
	first := int16(binary.LittleEndian.Uint16(buf[44:46]))
	second := int16(binary.LittleEndian.Uint16(buf[46:48]))
	if first != 32767 {
		t.Errorf("clamped positive sample = %d, want 32767", first)
	}
	if second != -32767 {
		t.Errorf("clamped negative sample = %d, want -32767", second)
	}
}

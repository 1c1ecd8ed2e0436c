package radio

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// fakePort is a minimal serial port stand-in: each Write enqueues a canned
// reply to be handed back on the next Read.
type fakePort struct {
	mu      sync.Mutex
	writes  [][]byte
	replies [][]byte
	err     error
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, append([]byte{}, p...))
	return len(p), f.err
}

func (f *fakePort) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if len(f.replies) == 0 {
		return 0, nil // no bytes available: interpreted as timeout
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	n := copy(p, reply)
	return n, nil
}

func (f *fakePort) Close() error { return nil }

func newTestClient(fp *fakePort) *Client {
	c := New("/dev/fake", 19200, 0, 0, zap.NewNop().Sugar())
	c.port = fp
	return c
}

func TestIsSquelchOpen(t *testing.T) {
	fp := &fakePort{replies: [][]byte{{0xfe, 0xfe, 0xe0, 0xa4, 0x15, 0x01, 0x01, 0xfd}}}
	c := newTestClient(fp)

	open, err := c.IsSquelchOpen()
	if err != nil || !open {
		t.Fatalf("IsSquelchOpen() = %v, %v; want true, nil", open, err)
	}

	fp.replies = [][]byte{{0xfe, 0xfe, 0xe0, 0xa4, 0x15, 0x01, 0x00, 0xfd}}
	open, err = c.IsSquelchOpen()
	if err != nil || open {
		t.Fatalf("IsSquelchOpen() = %v, %v; want false, nil", open, err)
	}
}

func TestIsSquelchOpenTimeout(t *testing.T) {
	fp := &fakePort{} // no replies queued
	c := newTestClient(fp)

	open, err := c.IsSquelchOpen()
	if err != nil {
		t.Fatalf("expected a nil error on timeout, got %v", err)
	}
	if open {
		t.Fatal("expected false (assume closed) on timeout")
	}
}

func TestReadFrequency(t *testing.T) {
	fp := &fakePort{replies: [][]byte{{0xfe, 0xfe, 0xe0, 0xa4, 0x03, 0x00, 0x40, 0x07, 0x14, 0x00, 0xfd}}}
	c := newTestClient(fp)

	hz, err := c.ReadFrequency()
	if err != nil {
		t.Fatalf("ReadFrequency: %v", err)
	}
	if hz != 14074000 {
		t.Fatalf("ReadFrequency() = %d, want 14074000", hz)
	}
}

func TestReadFrequencyToleratesEcho(t *testing.T) {
	// Half-duplex echo of our own request followed by the real reply.
	echoed := append([]byte{0xfe, 0xfe, 0xa4, 0xe0, 0x03, 0xfd},
		[]byte{0xfe, 0xfe, 0xe0, 0xa4, 0x03, 0x00, 0x40, 0x07, 0x14, 0x00, 0xfd}...)
	fp := &fakePort{replies: [][]byte{echoed}}
	c := newTestClient(fp)

	hz, err := c.ReadFrequency()
	if err != nil {
		t.Fatalf("ReadFrequency: %v", err)
	}
	if hz != 14074000 {
		t.Fatalf("ReadFrequency() = %d, want 14074000 (should prefer the real reply over the echo)", hz)
	}
}

func TestExchangeIoErrorSurfaces(t *testing.T) {
	fp := &fakePort{err: errors.New("usb disconnected")}
	c := newTestClient(fp)

	if _, err := c.IsSquelchOpen(); err == nil {
		t.Fatal("expected I/O error to surface, got nil")
	}
}

func TestSetFrequencySendsCorrectFrame(t *testing.T) {
	fp := &fakePort{replies: [][]byte{{0xfe, 0xfe, 0xe0, 0xa4, 0xfb, 0xfd}}}
	c := newTestClient(fp)

	if _, err := c.SetFrequency(144500000); err != nil {
		t.Fatalf("SetFrequency: %v", err)
	}
	if len(fp.writes) != 1 {
		t.Fatalf("expected exactly one write, got %d", len(fp.writes))
	}
	got := fp.writes[0]
	if got[0] != 0xfe || got[1] != 0xfe || got[2] != 0xa4 || got[3] != 0xe0 || got[4] != 0x05 {
		t.Fatalf("unexpected setFrequency frame header: % x", got)
	}
	if !bytes.HasSuffix(got, []byte{0xfd}) {
		t.Fatalf("frame missing EOM: % x", got)
	}
}

func TestSerializationHoldsAcrossExchange(t *testing.T) {
	// Two goroutines issuing commands concurrently must never interleave
	// writes: verified indirectly by checking exactly one write lands per
	// call even when invoked from multiple goroutines.
	fp := &fakePort{}
	for i := 0; i < 20; i++ {
		fp.replies = append(fp.replies, []byte{0xfe, 0xfe, 0xe0, 0xa4, 0x15, 0x01, 0x00, 0xfd})
	}
	c := newTestClient(fp)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.IsSquelchOpen()
		}()
	}
	wg.Wait()

	if len(fp.writes) != 20 {
		t.Fatalf("expected 20 serialized writes, got %d", len(fp.writes))
	}
}

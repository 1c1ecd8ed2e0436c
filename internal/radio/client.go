// Package radio implements a serialized CI-V command/response client over a
// serial link to an Icom IC-705. It presents a small surface
// (read_frequency, set_frequency, set_mode, read_s_meter, is_squelch_open)
// and owns the mutual-exclusion discipline that keeps at most one
// in-flight command on the half-duplex bus at any time.
//
// Commands reference: https://www.icomeurope.com/wp-content/uploads/2020/08/IC-705_ENG_CI-V_1_20200721.pdf
package radio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/sblanchard/vhf-scanner/internal/civ"
)

// ErrIoUnavailable is returned by Connect when the serial port cannot be
// opened.
var ErrIoUnavailable = errors.New("radio: serial port unavailable")

const (
	readBufSize = 256

	// turnaroundDelay is the minimum time to wait after writing a command
	// before the radio can be expected to have a reply on the wire.
	turnaroundDelay = 50 * time.Millisecond

	readWriteTimeout = time.Second
	backoffOnIoError = time.Second
)

// Mode names a CI-V operating mode, e.g. FM for a 2m/70cm repeater.
type Mode byte

const (
	ModeLSB  Mode = 0x00
	ModeUSB  Mode = 0x01
	ModeAM   Mode = 0x02
	ModeCW   Mode = 0x03
	ModeRTTY Mode = 0x04
	ModeFM   Mode = 0x05
	ModeWFM  Mode = 0x06
	ModeDV   Mode = 0x17
)

const defaultFilter byte = 0x01

// port is the minimal surface Client needs from a serial connection; the
// real implementation is go.bug.st/serial.Port, satisfied structurally. A
// fake satisfying just this interface drives the unit tests without a real
// serial device.
type port interface {
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	Close() error
}

// Client owns the serial port and serializes all CI-V exchanges across it.
type Client struct {
	portName       string
	baudRate       int
	radioAddr      byte
	controllerAddr byte

	log *zap.SugaredLogger

	mu   sync.Mutex // held across each full command/response exchange
	port port

	debugPackets bool
}

// New builds a Client bound to portName at baudRate, addressing the radio at
// radioAddr (default 0xA4) and identifying itself on the bus as
// controllerAddr (default 0xE0). It does not open the port; call Connect.
func New(portName string, baudRate int, radioAddr, controllerAddr byte, log *zap.SugaredLogger) *Client {
	if radioAddr == 0 {
		radioAddr = civ.DefaultRadioAddress
	}
	if controllerAddr == 0 {
		controllerAddr = civ.ControllerAddress
	}
	return &Client{
		portName:       portName,
		baudRate:       baudRate,
		radioAddr:      radioAddr,
		controllerAddr: controllerAddr,
		log:            log,
	}
}

// SetDebugPackets enables or disables per-frame debug logging of every CI-V
// frame written to and read from the serial port.
func (c *Client) SetDebugPackets(on bool) {
	c.debugPackets = on
}

// Connect opens the serial port at 8-N-1, no handshake, with a 1s read
// timeout, then issues a read_frequency liveness probe. No write timeout is
// set.
func (c *Client) Connect() error {
	mode := &serial.Mode{
		BaudRate: c.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	sp, err := serial.Open(c.portName, mode)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoUnavailable, err)
	}
	if err := sp.SetReadTimeout(readWriteTimeout); err != nil {
		sp.Close()
		return fmt.Errorf("%w: %v", ErrIoUnavailable, err)
	}

	c.mu.Lock()
	c.port = sp
	c.mu.Unlock()

	if _, err := c.ReadFrequency(); err != nil {
		c.log.Warnw("liveness probe failed after connect", "error", err)
	}
	return nil
}

// Close releases the serial port.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port == nil {
		return nil
	}
	err := c.port.Close()
	c.port = nil
	return err
}

// exchange sends a command and waits for a frame to come back, holding mu
// across the whole round trip so no two commands are ever in flight at once.
// A timeout is non-fatal: it returns ok=false and a nil error. I/O errors on
// the open port are returned to the caller.
func (c *Client) exchange(cmd, subcmd byte, data []byte) (resp civ.Response, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		return civ.Response{}, false, ErrIoUnavailable
	}

	pkt := civ.Build(cmd, subcmd, data, c.radioAddr, c.controllerAddr)
	if c.debugPackets {
		c.log.Debugw("civ: tx frame", "bytes", fmt.Sprintf("% x", pkt))
	}
	if _, err := c.port.Write(pkt); err != nil {
		return civ.Response{}, false, err
	}

	time.Sleep(turnaroundDelay)

	buf := make([]byte, 0, readBufSize)
	for {
		chunk := make([]byte, readBufSize)
		n, err := c.port.Read(chunk)
		if err != nil {
			return civ.Response{}, false, err
		}
		if n == 0 {
			// Bytes-to-read reached zero: interpreted as timeout.
			return civ.Response{}, false, nil
		}
		buf = append(buf, chunk[:n]...)
		if len(buf) >= 6 && buf[len(buf)-1] == civ.EOM {
			break
		}
	}

	if c.debugPackets {
		c.log.Debugw("civ: rx bytes", "bytes", fmt.Sprintf("% x", buf))
	}

	return lastFrame(buf)
}

// lastFrame prefers the last complete frame in buf, so that an echoed
// outgoing command followed by the radio's real reply resolves to the reply.
func lastFrame(buf []byte) (resp civ.Response, ok bool, err error) {
	rest := buf
	for {
		next, nextOK := civ.Parse(rest)
		if !nextOK {
			break
		}
		resp, ok = next, true
		consumed := len(rest) - len(trailingAfterFrame(rest))
		if consumed <= 0 || consumed >= len(rest) {
			break
		}
		rest = rest[consumed:]
	}
	return resp, ok, nil
}

// trailingAfterFrame returns the bytes of buf that follow the first
// complete CI-V frame found in it (empty if none, or if the frame runs to
// the end of buf).
func trailingAfterFrame(buf []byte) []byte {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == civ.Preamble && buf[i+1] == civ.Preamble {
			for j := i + 4; j < len(buf); j++ {
				if buf[j] == civ.EOM {
					if j+1 < len(buf) {
						return buf[j+1:]
					}
					return nil
				}
			}
			return nil
		}
	}
	return nil
}

// ReadFrequency issues command 0x03 and expects a 5-byte BCD payload.
func (c *Client) ReadFrequency() (uint64, error) {
	resp, ok, err := c.exchange(0x03, 0x00, nil)
	if err != nil {
		return 0, err
	}
	if !ok || resp.IsNAK() {
		return 0, nil
	}
	return civ.DecodeFreq(resp.Data), nil
}

// SetFrequency issues command 0x05 with a BCD payload and acknowledges on
// 0xFB.
func (c *Client) SetFrequency(hz uint64) (uint64, error) {
	enc := civ.EncodeFreq(hz)
	resp, ok, err := c.exchange(0x05, 0x00, enc[:])
	if err != nil {
		return 0, err
	}
	if !ok || !resp.IsACK() {
		return 0, nil
	}
	return hz, nil
}

// SetMode issues command 0x06 with {modeByte, filter}.
func (c *Client) SetMode(m Mode) (bool, error) {
	resp, ok, err := c.exchange(0x06, 0x00, []byte{byte(m), defaultFilter})
	if err != nil {
		return false, err
	}
	return ok && resp.IsACK(), nil
}

// ReadSMeter issues command 0x15/0x02 and returns the big-endian BCD
// high/low composition of the S-meter reading.
func (c *Client) ReadSMeter() (uint, error) {
	resp, ok, err := c.exchange(0x15, 0x02, nil)
	if err != nil {
		return 0, err
	}
	if !ok || len(resp.Data) < 3 {
		return 0, nil
	}
	// resp.Data = [subcmd, hi, lo], each byte itself a 2-digit BCD pair.
	return uint(bcdByte(resp.Data[1]))*100 + uint(bcdByte(resp.Data[2])), nil
}

// bcdByte decodes a single byte holding two packed BCD decimal digits (high
// nibble tens, low nibble units) into its decimal value.
func bcdByte(b byte) byte {
	return (b>>4)*10 + (b & 0x0f)
}

// IsSquelchOpen issues command 0x15/0x01; data[1]==0x01 means open, anything
// else means closed.
func (c *Client) IsSquelchOpen() (bool, error) {
	resp, ok, err := c.exchange(0x15, 0x01, nil)
	if err != nil {
		return false, err
	}
	if !ok || len(resp.Data) < 2 {
		return false, nil
	}
	return resp.Data[1] == 0x01, nil
}

package civ

// bcdLen is the number of bytes used to encode a CI-V frequency: five bytes,
// least-significant nibble first, each nibble a decimal digit.
const bcdLen = 5

// EncodeFreq encodes hz as five BCD bytes, least-significant nibble first.
// Values above 9,999,999,999 overflow silently (the wire format has no
// representation for them); callers are expected to validate range.
func EncodeFreq(hz uint64) [bcdLen]byte {
	var b [bcdLen]byte
	digits := [10]byte{}
	for i := range digits {
		digits[i] = byte(hz % 10)
		hz /= 10
	}
	for i := 0; i < bcdLen; i++ {
		lo := digits[i*2]
		hi := digits[i*2+1]
		b[i] = hi<<4 | lo
	}
	return b
}

// DecodeFreq decodes a BCD-encoded frequency. Fewer than five bytes yields 0,
// per the CI-V codec's documented failure mode.
func DecodeFreq(b []byte) uint64 {
	if len(b) < bcdLen {
		return 0
	}
	var hz uint64
	var pos uint64 = 1
	for i := 0; i < bcdLen; i++ {
		lo := b[i] & 0x0f
		hi := b[i] >> 4
		hz += uint64(lo) * pos
		pos *= 10
		hz += uint64(hi) * pos
		pos *= 10
	}
	return hz
}

package wire

import "github.com/kcheng/pbstream/pberr"

// FixedOp decodes a little-endian fixed-width integer (4 or 8 bytes)
// incrementally, resuming across short reads. Grounded on
// codec.Buffer.DecodeFixed32/DecodeFixed64, generalized to a width
// parameter and incremental consumption.
type FixedOp struct {
	width int // 4 or 8
	buf   [8]byte
	n     int
	done  bool
}

// NewFixed32Op prepares to decode a 4-byte little-endian value.
func NewFixed32Op() *FixedOp { return &FixedOp{width: 4} }

// NewFixed64Op prepares to decode an 8-byte little-endian value.
func NewFixed64Op() *FixedOp { return &FixedOp{width: 8} }

func (op *FixedOp) Poll(avail []byte, eof bool) (consumed int, done bool, err error) {
	need := op.width - op.n
	n := len(avail)
	if n > need {
		n = need
	}
	copy(op.buf[op.n:], avail[:n])
	op.n += n
	if op.n == op.width {
		op.done = true
		return n, true, nil
	}
	if eof {
		return n, false, pberr.Newf(pberr.UnexpectedEos, "fixed%d: end of stream after %d/%d bytes", op.width*8, op.n, op.width)
	}
	return n, false, nil
}

// Uint32 returns the decoded value reinterpreted as a uint32 (width
// must be 4).
func (op *FixedOp) Uint32() uint32 {
	return uint32(op.buf[0]) | uint32(op.buf[1])<<8 | uint32(op.buf[2])<<16 | uint32(op.buf[3])<<24
}

// Uint64 returns the decoded value reinterpreted as a uint64 (width
// must be 8).
func (op *FixedOp) Uint64() uint64 {
	var x uint64
	for i := 7; i >= 0; i-- {
		x = x<<8 | uint64(op.buf[i])
	}
	return x
}

// AppendFixed32 appends the little-endian encoding of v to dst.
func AppendFixed32(dst []byte, v uint32) []byte {
	return append(dst, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// AppendFixed64 appends the little-endian encoding of v to dst.
func AppendFixed64(dst []byte, v uint64) []byte {
	return append(dst,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

// ZigZagEncode32 maps a signed 32-bit value to its zigzag unsigned
// encoding: small-magnitude values (positive or negative) become short
// varints.
func ZigZagEncode32(v int32) uint32 { return (uint32(v) << 1) ^ uint32(v>>31) }

// ZigZagDecode32 is the inverse of ZigZagEncode32.
func ZigZagDecode32(v uint32) int32 { return int32(v>>1) ^ -int32(v&1) }

// ZigZagEncode64 maps a signed 64-bit value to its zigzag unsigned
// encoding.
func ZigZagEncode64(v int64) uint64 { return (uint64(v) << 1) ^ uint64(v>>63) }

// ZigZagDecode64 is the inverse of ZigZagEncode64.
func ZigZagDecode64(v uint64) int64 { return int64(v>>1) ^ -int64(v&1) }

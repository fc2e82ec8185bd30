package wire

import "github.com/kcheng/pbstream/pberr"

// maxVarintBytes is the longest a LEB128 varint encoding 64 data bits
// can be: ceil(64/7) = 10 bytes (spec.md section 4.2).
const maxVarintBytes = 10

// VarintOp decodes one LEB128 varint incrementally. It is grounded on
// codec.Buffer.decodeVarintSlow in the teacher, generalized from "scan
// a byte slice to completion" into "scan whatever prefix is currently
// available, and resume on the next Poll with more".
type VarintOp struct {
	value  uint64
	shift  uint
	nbytes int
	done   bool
	sawAny bool
}

// Poll consumes as much of avail as it can. consumed is always the
// number of bytes used from avail in this call; once done is true,
// Value returns the decoded varint.
func (op *VarintOp) Poll(avail []byte, eof bool) (consumed int, done bool, err error) {
	for i, b := range avail {
		op.sawAny = true
		if op.nbytes == maxVarintBytes {
			return i + 1, false, pberr.New(pberr.Invalid, "varint: more than 10 bytes")
		}
		op.value |= uint64(b&0x7f) << op.shift
		op.nbytes++
		consumed = i + 1
		if b&0x80 == 0 {
			op.done = true
			return consumed, true, nil
		}
		op.shift += 7
	}
	if eof {
		if !op.sawAny {
			return consumed, false, pberr.New(pberr.UnexpectedEos, "varint: end of stream before any bytes")
		}
		return consumed, false, pberr.New(pberr.UnexpectedEos, "varint: end of stream mid-varint")
	}
	return consumed, false, nil
}

// Value returns the decoded value. Only meaningful once Poll has
// returned done == true.
func (op *VarintOp) Value() uint64 { return op.value }

// Done reports whether this op has finished.
func (op *VarintOp) Done() bool { return op.done }

// MaybeVarintOp is VarintOp's sibling used at message-boundary
// positions (the dispatcher's ReadKey state, spec.md section 4.5): a
// clean end-of-stream before any byte has been read is not an error --
// it signals "no more fields, message is complete" -- while an
// end-of-stream after a partial varint has started is still
// UnexpectedEos. VarintOp's own Poll already happens to implement the
// "mid-varint EOS is always an error" half; MaybeVarintOp adds the
// "clean EOS at the boundary yields none" half via the CleanEOS method.
type MaybeVarintOp struct {
	inner VarintOp
}

// Poll behaves like VarintOp.Poll except that reaching eof with zero
// bytes consumed so far (across the whole op's lifetime, not just this
// call) is reported as (0, true, nil) with CleanEOS()==true instead of
// an UnexpectedEos error.
func (op *MaybeVarintOp) Poll(avail []byte, eof bool) (consumed int, done bool, err error) {
	if len(avail) == 0 && eof && !op.inner.sawAny {
		return 0, true, nil
	}
	return op.inner.Poll(avail, eof)
}

// CleanEOS reports whether the stream ended cleanly before any byte of
// a new varint was read.
func (op *MaybeVarintOp) CleanEOS() bool { return !op.inner.sawAny && op.inner.done == false }

// Value returns the decoded value once Poll reports done with
// CleanEOS() false.
func (op *MaybeVarintOp) Value() uint64 { return op.inner.value }

// AppendVarint appends the LEB128 encoding of v to dst and returns the
// extended slice, mirroring codec.Buffer.EncodeVarint.
func AppendVarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// SizeVarint returns the number of bytes AppendVarint would emit for
// v: ceil(effective-bit-width/7), minimum 1.
func SizeVarint(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// VarintEncodeOp streams a precomputed varint encoding a few bytes at a
// time, so a caller with a small fixed output buffer can drain it over
// several Poll calls instead of needing the whole encoding to fit at
// once.
type VarintEncodeOp struct {
	enc []byte
	pos int
}

// NewVarintEncodeOp prepares to emit the LEB128 encoding of v.
func NewVarintEncodeOp(v uint64) *VarintEncodeOp {
	return &VarintEncodeOp{enc: AppendVarint(nil, v)}
}

// Poll writes as much of the remaining encoding as fits in sink and
// reports done once everything has been written.
func (op *VarintEncodeOp) Poll(sink Sink) (done bool) {
	for op.pos < len(op.enc) {
		n := sink.Write(op.enc[op.pos:])
		if n == 0 {
			return false
		}
		op.pos += n
	}
	return true
}

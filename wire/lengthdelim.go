package wire

import "github.com/kcheng/pbstream/pberr"

// maxPreallocLengthDelimited bounds the up-front capacity reserved for
// a length-delimited payload's backing slice, regardless of the length
// prefix the wire claims -- a malicious or corrupt length prefix must
// not be able to force a multi-gigabyte allocation before a single
// payload byte has actually arrived.
const maxPreallocLengthDelimited = 64 * 1024

// LengthDelimitedOp decodes a varint length prefix followed by exactly
// that many bytes, the framing used for string, bytes, embedded
// messages, packed repeated fields, and map entries (spec.md section
// 4.2). It is grounded on codec.Buffer.DecodeRawBytes, generalized from
// "slice out of an in-memory buffer" to "accumulate incrementally
// across Poll calls".
type LengthDelimitedOp struct {
	length VarintOp
	phase  int // 0: reading the length varint, 1: reading the payload
	want   int
	data   []byte
	done   bool
}

// NewLengthDelimitedOp prepares to decode a length-prefixed payload.
func NewLengthDelimitedOp() *LengthDelimitedOp { return &LengthDelimitedOp{} }

func (op *LengthDelimitedOp) Poll(avail []byte, eof bool) (consumed int, done bool, err error) {
	if op.phase == 0 {
		c, d, err := op.length.Poll(avail, eof)
		consumed += c
		if err != nil {
			return consumed, false, err
		}
		if !d {
			return consumed, false, nil
		}
		n := op.length.Value()
		if n > MaxTagNumber { // generous sanity bound on the claimed length
			return consumed, false, pberr.Newf(pberr.Invalid, "length-delimited: length %d too large", n)
		}
		op.want = int(n)
		cap0 := op.want
		if cap0 > maxPreallocLengthDelimited {
			cap0 = maxPreallocLengthDelimited
		}
		op.data = make([]byte, 0, cap0)
		op.phase = 1
		avail = avail[c:]
	}

	need := op.want - len(op.data)
	n := len(avail)
	if n > need {
		n = need
	}
	op.data = append(op.data, avail[:n]...)
	consumed += n
	if len(op.data) == op.want {
		op.done = true
		return consumed, true, nil
	}
	if eof {
		return consumed, false, pberr.Newf(pberr.UnexpectedEos,
			"length-delimited: end of stream after %d/%d payload bytes", len(op.data), op.want)
	}
	return consumed, false, nil
}

// Bytes returns the decoded payload once Poll reports done.
func (op *LengthDelimitedOp) Bytes() []byte { return op.data }

// Length returns the decoded length prefix, available as soon as the
// length varint itself finishes (phase 1 begins), even before the
// payload is fully read.
func (op *LengthDelimitedOp) Length() int { return op.want }

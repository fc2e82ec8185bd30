package wire

import "github.com/kcheng/pbstream/pberr"

// SkipNOp discards exactly n bytes without storing them, giving O(1)
// additional memory regardless of n -- the property spec.md section
// 4.3 requires of unknown-field skipping.
type SkipNOp struct {
	remaining int
}

// NewSkipNOp prepares to discard n bytes.
func NewSkipNOp(n int) *SkipNOp { return &SkipNOp{remaining: n} }

func (op *SkipNOp) Poll(avail []byte, eof bool) (consumed int, done bool, err error) {
	n := len(avail)
	if n > op.remaining {
		n = op.remaining
	}
	op.remaining -= n
	if op.remaining == 0 {
		return n, true, nil
	}
	if eof {
		return n, false, pberr.New(pberr.UnexpectedEos, "skip: end of stream while discarding unknown field")
	}
	return n, false, nil
}

// SkipOp discards the value following a tag whose field number has no
// matching schema entry, dispatching on wire type per spec.md section
// 4.3: a varint is decoded and thrown away (so the discard correctly
// stops at the varint's natural end), a fixed32/fixed64 discards 4/8
// bytes, and a length-delimited value discards its length prefix's
// worth of payload -- in every case without materializing the
// discarded bytes.
type SkipOp struct {
	wt     Type
	phase  int
	varint VarintOp
	skipN  *SkipNOp
}

// NewSkipOp prepares to discard one value of wire type wt.
func NewSkipOp(wt Type) *SkipOp { return &SkipOp{wt: wt} }

func (op *SkipOp) Poll(avail []byte, eof bool) (consumed int, done bool, err error) {
	switch op.wt {
	case Varint:
		return op.varint.Poll(avail, eof)
	case Bit32:
		if op.skipN == nil {
			op.skipN = NewSkipNOp(4)
		}
		return op.skipN.Poll(avail, eof)
	case Bit64:
		if op.skipN == nil {
			op.skipN = NewSkipNOp(8)
		}
		return op.skipN.Poll(avail, eof)
	case LengthDelimited:
		if op.phase == 0 {
			c, d, err := op.varint.Poll(avail, eof)
			if err != nil {
				return c, false, err
			}
			if !d {
				return c, false, nil
			}
			n := op.varint.Value()
			if n > MaxTagNumber {
				return c, false, pberr.Newf(pberr.Invalid, "skip: length-delimited length %d too large", n)
			}
			op.skipN = NewSkipNOp(int(n))
			op.phase = 1
			rest := avail[c:]
			c2, d2, err2 := op.skipN.Poll(rest, eof)
			return c + c2, d2, err2
		}
		return op.skipN.Poll(avail, eof)
	default:
		return 0, false, pberr.Newf(pberr.Unsupported, "skip: wire type %d is not supported (start/end group)", op.wt)
	}
}

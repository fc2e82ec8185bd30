package wire

// Status is the outcome of a single Poll call on a decode primitive.
type Status uint8

const (
	// Pending means the primitive made whatever progress it could with
	// the bytes it was given but needs more input to finish.
	Pending Status = iota
	// Done means the primitive has produced its final value.
	Done
)

// Source is the pull side of the suspendable I/O model (spec.md
// section 4.1): a decoder asks for whatever bytes are currently
// buffered via Peek, and reports back how many of them it consumed via
// Advance. A Source never blocks; if no bytes are currently available
// it reports an empty Peek, and callers distinguish "blocked, try
// again later" from "stream is over" via the eof flag.
//
// This is the same two-method shape as bufio.Reader's Peek/Discard,
// chosen because it lets every primitive in this package stay a pure
// function of (available bytes, eof) without owning any I/O itself.
type Source interface {
	// Peek returns the unread bytes currently buffered, without
	// consuming them, and whether the source is at end-of-stream (no
	// further bytes will ever be fed). The returned slice must not be
	// retained past the next call to Advance.
	Peek() (chunk []byte, eof bool)
	// Advance marks the first n bytes returned by the last Peek as
	// consumed.
	Advance(n int)
}

// ByteSource is a growable in-memory Source fed by repeated calls to
// Feed, matching the "feed bytes then finish decoding" lifecycle from
// spec.md section 3. It is the concrete Source used by both the
// incremental and one-shot public entry points.
type ByteSource struct {
	buf []byte
	pos int
	eof bool
}

// NewByteSource returns an empty ByteSource ready for Feed calls.
func NewByteSource() *ByteSource { return &ByteSource{} }

// FromBytes returns a ByteSource already populated with b and marked
// end-of-stream, for one-shot whole-buffer decodes (decode_all).
func FromBytes(b []byte) *ByteSource {
	s := &ByteSource{buf: b}
	s.eof = true
	return s
}

// Feed appends more bytes to the source. It panics if called after
// CloseSend, since a closed source has promised no more bytes are
// coming.
func (s *ByteSource) Feed(data []byte) {
	if s.eof {
		panic("pbstream: Feed called after CloseSend")
	}
	if len(data) == 0 {
		return
	}
	s.buf = append(s.buf, data...)
}

// CloseSend marks the source as end-of-stream: no further Feed calls
// are permitted, and any primitive still awaiting more bytes will now
// fail with pberr.UnexpectedEos instead of returning Pending forever.
func (s *ByteSource) CloseSend() { s.eof = true }

// Peek implements Source.
func (s *ByteSource) Peek() ([]byte, bool) {
	s.compact()
	return s.buf[s.pos:], s.eof
}

// Advance implements Source.
func (s *ByteSource) Advance(n int) {
	s.pos += n
	if s.pos > len(s.buf) {
		panic("pbstream: Advance past end of buffered bytes")
	}
}

// Len reports the number of unread, buffered bytes.
func (s *ByteSource) Len() int { return len(s.buf) - s.pos }

// EOF reports whether CloseSend has been called.
func (s *ByteSource) EOF() bool { return s.eof }

// compact drops already-consumed bytes from the front of buf once they
// grow past a small threshold, so a long-lived incremental decode over
// many small Feed calls doesn't retain every byte it has ever seen.
func (s *ByteSource) compact() {
	if s.pos == 0 || s.pos < 4096 {
		return
	}
	remaining := len(s.buf) - s.pos
	copy(s.buf, s.buf[s.pos:])
	s.buf = s.buf[:remaining]
	s.pos = 0
}

// Sink is the push side of the suspendable output model: an encoder
// writes as many bytes as fit into the space the caller currently has
// available, and reports back how many it wrote.
type Sink interface {
	// Avail reports how much space is currently available to write
	// into, or -1 if unbounded.
	Avail() int
	// Write appends p, or as much of p as fits if space is bounded,
	// and returns how many bytes were actually written.
	Write(p []byte) int
}

// ByteSink is an unbounded, growable in-memory Sink, used by the
// one-shot encode_all surface.
type ByteSink struct {
	buf []byte
}

// NewByteSink returns an empty ByteSink.
func NewByteSink() *ByteSink { return &ByteSink{} }

func (s *ByteSink) Avail() int { return -1 }

func (s *ByteSink) Write(p []byte) int {
	s.buf = append(s.buf, p...)
	return len(p)
}

// Bytes returns the bytes written so far. The caller must not modify
// the returned slice.
func (s *ByteSink) Bytes() []byte { return s.buf }

// Reset empties the sink for reuse.
func (s *ByteSink) Reset() { s.buf = s.buf[:0] }

// BoundedSink is a Sink backed by a single caller-supplied fixed buffer,
// used by the incremental encode surface to model "NeedsSpace(n)"
// suspension: once dst is full, further writes are refused until the
// caller drains it and supplies a fresh buffer.
type BoundedSink struct {
	dst []byte
	n   int
}

// NewBoundedSink wraps dst for a single incremental Encode call.
func NewBoundedSink(dst []byte) *BoundedSink { return &BoundedSink{dst: dst} }

func (s *BoundedSink) Avail() int { return len(s.dst) - s.n }

func (s *BoundedSink) Write(p []byte) int {
	room := s.Avail()
	if room <= 0 {
		return 0
	}
	n := len(p)
	if n > room {
		n = room
	}
	copy(s.dst[s.n:], p[:n])
	s.n += n
	return n
}

// Written reports how many bytes have been written into dst so far.
func (s *BoundedSink) Written() int { return s.n }

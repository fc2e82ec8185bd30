// Package pbstream is the public codec surface spec.md section 6
// describes: one-shot helpers that drive a codec to completion over a
// whole buffer (EncodeTo, DecodeFrom), incremental entry points that
// suspend instead of blocking (EncodeIncremental, DecodeIncremental),
// and EncodedSize. It is a thin facade over message.Decoder/Encoder
// and the field/schema packages, the way the teacher's top-level
// dynamic package wraps codec.Buffer for its own public Marshal/
// Unmarshal surface.
package pbstream

import (
	"github.com/kcheng/pbstream/field"
	"github.com/kcheng/pbstream/message"
	"github.com/kcheng/pbstream/pberr"
	"github.com/kcheng/pbstream/schema"
	"github.com/kcheng/pbstream/wire"
)

// Progress is the outcome of one incremental encode or decode step,
// mirroring spec.md's Progress variants (Done | NeedsSpace(n) | Error
// for encoding; Done(value) | NeedsBytes(n) | Error for decoding).
// Needed is a lower bound on additional capacity/bytes required to
// make further progress, when known; 0 means "unknown, just try
// again with whatever you have."
type Progress struct {
	Done   bool
	Needed int
}

// EncodeTo drives msg's encoding to completion against sink, in one
// call. It assumes sink has (or will make) enough room for the whole
// encoding; if sink runs out of space before the encoding is complete,
// EncodeTo fails with pberr.Other rather than returning a partial
// write as success. Use EncodeIncremental when sink has bounded
// capacity and writes need to be interleaved with draining it.
func EncodeTo(sink wire.Sink, msg *field.Message, opts ...message.EncoderOption) error {
	enc := message.NewEncoder(msg, opts...)
	for {
		status, err := enc.Poll(sink)
		if err != nil {
			return pberr.AttachStream(err, sink)
		}
		if status == wire.Done {
			return nil
		}
		if sink.Avail() == 0 {
			return pberr.AttachStream(
				pberr.New(pberr.Other, "pbstream: EncodeTo: sink has no remaining capacity before encoding finished"), sink)
		}
	}
}

// Encoder is a resumable encoding in progress, for callers driving a
// bounded sink across multiple write opportunities.
type Encoder struct {
	enc *message.Encoder
}

// NewEncoder begins encoding msg. The returned Encoder is driven to
// completion via repeated calls to Step.
func NewEncoder(msg *field.Message, opts ...message.EncoderOption) *Encoder {
	return &Encoder{enc: message.NewEncoder(msg, opts...)}
}

// Step writes as much of the encoding as currently fits in sink and
// reports how much more room (if any) is known to be needed.
func (e *Encoder) Step(sink wire.Sink) (Progress, error) {
	status, err := e.enc.Poll(sink)
	if err != nil {
		return Progress{}, pberr.AttachStream(err, sink)
	}
	if status == wire.Done {
		return Progress{Done: true}, nil
	}
	return Progress{Done: false, Needed: 1}, nil
}

// EncodeIncremental performs a single encode step against sink,
// matching spec.md's encode_incremental(sink, value) -> Progress entry
// point for callers that want a one-shot step rather than managing an
// Encoder value across calls.
func EncodeIncremental(sink wire.Sink, msg *field.Message) (Progress, error) {
	return NewEncoder(msg).Step(sink)
}

// DecodeFrom drives a decode of sch-shaped bytes already fully present
// in src (src must report eof=true, as wire.FromBytes does) to
// completion in one call.
func DecodeFrom(src wire.Source, sch *schema.MessageSchema, opts ...message.DecoderOption) (*field.Message, error) {
	dec := message.NewDecoder(sch, opts...)
	for {
		status, err := dec.Poll(src)
		if err != nil {
			return nil, pberr.AttachStream(err, src)
		}
		if status == wire.Done {
			return dec.Message(), nil
		}
	}
}

// Decoder is a resumable decode in progress, for callers feeding bytes
// to a wire.ByteSource incrementally as they arrive.
type Decoder struct {
	dec *message.Decoder
}

// NewDecoder begins decoding a message against sch.
func NewDecoder(sch *schema.MessageSchema, opts ...message.DecoderOption) *Decoder {
	return &Decoder{dec: message.NewDecoder(sch, opts...)}
}

// Step advances the decode using whatever bytes src currently has
// buffered.
func (d *Decoder) Step(src wire.Source) (Progress, error) {
	status, err := d.dec.Poll(src)
	if err != nil {
		return Progress{}, pberr.AttachStream(err, src)
	}
	if status == wire.Done {
		return Progress{Done: true}, nil
	}
	return Progress{Done: false, Needed: 1}, nil
}

// Message returns the value accumulated so far, valid at any point
// including before Step reports Done.
func (d *Decoder) Message() *field.Message { return d.dec.Message() }

// DecodeIncremental performs a single decode step against src,
// matching spec.md's decode_incremental(source) -> Progress entry
// point. On Done, the decoded message is available from the returned
// Decoder's Message method.
func DecodeIncremental(src wire.Source, sch *schema.MessageSchema) (*Decoder, Progress, error) {
	d := NewDecoder(sch)
	p, err := d.Step(src)
	return d, p, err
}

// EncodedSize reports the exact number of bytes EncodeTo would write
// for msg, without writing anything -- cheap enough to call before
// every length-delimited wrapping, per spec.md section 6's
// encoded_size requirement.
func EncodedSize(msg *field.Message) uint64 {
	return message.EncodedSize(msg)
}

package message

import (
	"sort"

	"github.com/kcheng/pbstream/field"
	"github.com/kcheng/pbstream/schema"
	"github.com/kcheng/pbstream/wire"
)

// EncodedSize computes the exact number of bytes Encoder would emit for
// msg, without writing anything. Callers needing to wrap msg in a
// length-delimited field (an embedded message, a bytes/string field, a
// packed repeated field) must know this before writing the length
// prefix (spec.md section 4.2).
func EncodedSize(msg *field.Message) uint64 {
	var n uint64
	for _, e := range msg.Schema().Entries() {
		if e.Oneof != nil {
			num, val, present := msg.GetOneof(e.Oneof)
			if !present {
				continue
			}
			variant := findVariant(e.Oneof, num)
			n += tagSize(variant) + valueSize(variant, val)
			continue
		}
		f := e.Field
		switch f.Kind {
		case schema.Singular:
			if f.Optional && !msg.Has(f) {
				continue
			}
			v := msg.GetSingular(f)
			n += tagSize(f) + valueSize(f, v)
		case schema.Embedded:
			m := msg.GetEmbedded(f)
			if m == nil {
				continue
			}
			sz := EncodedSize(m)
			n += tagSize(f) + uint64(wire.SizeVarint(sz)) + sz
		case schema.Repeated:
			for _, v := range msg.GetRepeated(f) {
				n += tagSize(f) + valueSize(f, v)
			}
		case schema.PackedRepeated:
			vals := msg.GetRepeated(f)
			if len(vals) == 0 {
				continue
			}
			var payload uint64
			for _, v := range vals {
				payload += packedElementSize(f.Type, v)
			}
			n += tagSize(f) + uint64(wire.SizeVarint(payload)) + payload
		case schema.Map:
			for k, v := range msg.GetMap(f) {
				entrySize := mapEntrySize(f, k, v)
				n += tagSize(f) + uint64(wire.SizeVarint(entrySize)) + entrySize
			}
		case schema.Ignore, schema.ReservedTag, schema.ReservedName:
			// unit accumulator, nothing to emit.
		}
	}
	return n
}

func findVariant(g *schema.OneofGroup, num schema.FieldNumber) *schema.Field {
	for i := range g.Variants {
		if g.Variants[i].Number == num {
			return &g.Variants[i]
		}
	}
	return nil
}

func tagSize(f *schema.Field) uint64 {
	wt := f.Type.WireType()
	if f.Kind == schema.Embedded || f.Kind == schema.Map || f.Type == schema.Message {
		wt = wire.LengthDelimited
	}
	if f.Kind == schema.PackedRepeated {
		wt = wire.LengthDelimited
	}
	return uint64(wire.SizeVarint(wire.EncodeTagValue(f.Number.Uint32(), wt)))
}

func valueSize(f *schema.Field, v interface{}) uint64 {
	switch f.Type.WireType() {
	case wire.Varint:
		n, _ := field.EncodeVarintScalar(f.Type, v)
		return uint64(wire.SizeVarint(n))
	case wire.Bit32:
		return 4
	case wire.Bit64:
		return 8
	case wire.LengthDelimited:
		if f.Type == schema.Message {
			m := v.(*field.Message)
			sz := EncodedSize(m)
			return uint64(wire.SizeVarint(sz)) + sz
		}
		b, _ := field.EncodeBytesScalar(f.Type, v)
		return uint64(wire.SizeVarint(uint64(len(b)))) + uint64(len(b))
	}
	return 0
}

func packedElementSize(t schema.ScalarType, v interface{}) uint64 {
	switch t.WireType() {
	case wire.Varint:
		n, _ := field.EncodeVarintScalar(t, v)
		return uint64(wire.SizeVarint(n))
	case wire.Bit32:
		return 4
	case wire.Bit64:
		return 8
	}
	return 0
}

func mapEntrySize(f *schema.Field, key, val interface{}) uint64 {
	entrySchema := mapEntrySchema(f)
	entry := field.NewMessage(entrySchema)
	entry.SetSingular(entrySchema.Entries()[0].Field, key)
	valField := entrySchema.Entries()[1].Field
	if valField.Kind == schema.Embedded {
		if m, ok := val.(*field.Message); ok {
			entry.MergeEmbedded(valField, m)
		}
	} else {
		entry.SetSingular(valField, val)
	}
	return EncodedSize(entry)
}

// Encoder drives a field.Message out to the wire, walking its schema in
// declaration order and emitting each present field, per spec.md
// section 4.5's encoder loop. Like Decoder it is a poll-style state
// machine, suspending (wire.Pending) when the destination sink has no
// more room rather than blocking.
type Encoder struct {
	msg *field.Message
	buf []byte // fully-rendered output, produced eagerly by NewEncoder
	pos int
}

// EncoderOption adjusts an Encoder at construction, mirroring the
// teacher's codec.Buffer.SetDeterministic setter shape.
type EncoderOption func(*encOptions)

type encOptions struct {
	deterministicMaps bool
}

// WithDeterministicMaps makes the encoder emit map entries sorted by
// key instead of in Go's randomized map iteration order. The wire
// format itself promises no canonical entry order; this is an opt-in
// for callers that diff or hash encoded output, the same role the
// teacher's Buffer.SetDeterministic serves.
func WithDeterministicMaps() EncoderOption {
	return func(o *encOptions) { o.deterministicMaps = true }
}

// NewEncoder renders msg's wire bytes immediately (each nested
// length-delimited payload is rendered first and its length prefix
// written from the rendered bytes, so no separate size pass is needed)
// and returns an Encoder that streams them out through Poll.
func NewEncoder(msg *field.Message, opts ...EncoderOption) *Encoder {
	var o encOptions
	for _, opt := range opts {
		opt(&o)
	}
	buf := appendMessage(nil, msg, o)
	return &Encoder{msg: msg, buf: buf}
}

// Poll writes as much of the remaining output as fits in sink and
// reports wire.Done once everything has been written.
func (e *Encoder) Poll(sink wire.Sink) (wire.Status, error) {
	for e.pos < len(e.buf) {
		n := sink.Write(e.buf[e.pos:])
		if n == 0 {
			return wire.Pending, nil
		}
		e.pos += n
	}
	return wire.Done, nil
}

// Bytes returns the fully rendered encoding, for callers that already
// have an unbounded sink and don't need incremental suspension.
func (e *Encoder) Bytes() []byte { return e.buf }

func appendMessage(dst []byte, msg *field.Message, o encOptions) []byte {
	for _, e := range msg.Schema().Entries() {
		if e.Oneof != nil {
			num, val, present := msg.GetOneof(e.Oneof)
			if !present {
				continue
			}
			variant := findVariant(e.Oneof, num)
			dst = appendTag(dst, variant)
			dst = appendValue(dst, variant, val, o)
			continue
		}
		f := e.Field
		switch f.Kind {
		case schema.Singular:
			if f.Optional && !msg.Has(f) {
				continue
			}
			v := msg.GetSingular(f)
			dst = appendTag(dst, f)
			dst = appendValue(dst, f, v, o)
		case schema.Embedded:
			m := msg.GetEmbedded(f)
			if m == nil {
				continue
			}
			dst = appendTag(dst, f)
			inner := appendMessage(nil, m, o)
			dst = wire.AppendVarint(dst, uint64(len(inner)))
			dst = append(dst, inner...)
		case schema.Repeated:
			for _, v := range msg.GetRepeated(f) {
				dst = appendTag(dst, f)
				dst = appendValue(dst, f, v, o)
			}
		case schema.PackedRepeated:
			vals := msg.GetRepeated(f)
			if len(vals) == 0 {
				continue
			}
			var payload []byte
			for _, v := range vals {
				payload = appendPackedElement(payload, f.Type, v)
			}
			dst = wire.AppendVarint(append(dst, tagBytes(f)...), uint64(len(payload)))
			dst = append(dst, payload...)
		case schema.Map:
			mp := msg.GetMap(f)
			if o.deterministicMaps {
				for _, k := range sortedMapKeys(mp) {
					dst = appendMapEntry(dst, f, k, mp[k], o)
				}
			} else {
				for k, v := range mp {
					dst = appendMapEntry(dst, f, k, v, o)
				}
			}
		case schema.Ignore, schema.ReservedTag, schema.ReservedName:
			// unit accumulator, nothing to emit.
		}
	}
	return dst
}

func tagBytes(f *schema.Field) []byte {
	wt := f.Type.WireType()
	if f.Kind == schema.Embedded || f.Kind == schema.Map || f.Type == schema.Message {
		wt = wire.LengthDelimited
	}
	if f.Kind == schema.PackedRepeated {
		wt = wire.LengthDelimited
	}
	return wire.AppendVarint(nil, wire.EncodeTagValue(f.Number.Uint32(), wt))
}

func appendTag(dst []byte, f *schema.Field) []byte {
	return append(dst, tagBytes(f)...)
}

func appendMapEntry(dst []byte, f *schema.Field, k, v interface{}, o encOptions) []byte {
	dst = appendTag(dst, f)
	entry := mapEntryMessage(f, k, v)
	inner := appendMessage(nil, entry, o)
	dst = wire.AppendVarint(dst, uint64(len(inner)))
	return append(dst, inner...)
}

// sortedMapKeys orders a map accumulator's keys for deterministic
// output. Proto3 map keys are always integral, bool, or string, so a
// type switch over those shapes covers every legal key.
func sortedMapKeys(mp map[interface{}]interface{}) []interface{} {
	keys := make([]interface{}, 0, len(mp))
	for k := range mp {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return keys
}

func keyLess(a, b interface{}) bool {
	switch x := a.(type) {
	case bool:
		return !x && b.(bool)
	case int32:
		return x < b.(int32)
	case int64:
		return x < b.(int64)
	case uint32:
		return x < b.(uint32)
	case uint64:
		return x < b.(uint64)
	case string:
		return x < b.(string)
	default:
		return false
	}
}

func appendValue(dst []byte, f *schema.Field, v interface{}, o encOptions) []byte {
	switch f.Type.WireType() {
	case wire.Varint:
		n, _ := field.EncodeVarintScalar(f.Type, v)
		return wire.AppendVarint(dst, n)
	case wire.Bit32:
		n, _ := field.EncodeFixed32Scalar(f.Type, v)
		return wire.AppendFixed32(dst, n)
	case wire.Bit64:
		n, _ := field.EncodeFixed64Scalar(f.Type, v)
		return wire.AppendFixed64(dst, n)
	case wire.LengthDelimited:
		if f.Type == schema.Message {
			m, _ := v.(*field.Message)
			inner := appendMessage(nil, m, o)
			dst = wire.AppendVarint(dst, uint64(len(inner)))
			return append(dst, inner...)
		}
		b, _ := field.EncodeBytesScalar(f.Type, v)
		dst = wire.AppendVarint(dst, uint64(len(b)))
		return append(dst, b...)
	}
	return dst
}

func appendPackedElement(dst []byte, t schema.ScalarType, v interface{}) []byte {
	switch t.WireType() {
	case wire.Varint:
		n, _ := field.EncodeVarintScalar(t, v)
		return wire.AppendVarint(dst, n)
	case wire.Bit32:
		n, _ := field.EncodeFixed32Scalar(t, v)
		return wire.AppendFixed32(dst, n)
	case wire.Bit64:
		n, _ := field.EncodeFixed64Scalar(t, v)
		return wire.AppendFixed64(dst, n)
	}
	return dst
}

func mapEntryMessage(f *schema.Field, key, val interface{}) *field.Message {
	entrySchema := mapEntrySchema(f)
	entry := field.NewMessage(entrySchema)
	keyField := entrySchema.Entries()[0].Field
	valField := entrySchema.Entries()[1].Field
	entry.SetSingular(keyField, key)
	if valField.Kind == schema.Embedded {
		if m, ok := val.(*field.Message); ok && m != nil {
			entry.MergeEmbedded(valField, m)
		}
	} else {
		entry.SetSingular(valField, val)
	}
	return entry
}

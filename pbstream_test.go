package pbstream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kcheng/pbstream/field"
	"github.com/kcheng/pbstream/message"
	"github.com/kcheng/pbstream/pberr"
	"github.com/kcheng/pbstream/schema"
	"github.com/kcheng/pbstream/wire"
)

func testSchema(t *testing.T) (*schema.MessageSchema, *schema.Field) {
	t.Helper()
	f := &schema.Field{Number: schema.MustFieldNumber(1), Kind: schema.Singular, Type: schema.Int32, Name: "x"}
	sch, err := schema.NewMessageSchema(schema.Entry{Field: f})
	require.NoError(t, err)
	return sch, f
}

func TestEncodeToAndDecodeFromRoundTrip(t *testing.T) {
	sch, f := testSchema(t)
	msg := field.NewMessage(sch)
	msg.SetSingular(f, int32(77))

	sink := wire.NewByteSink()
	require.NoError(t, EncodeTo(sink, msg))

	got, err := DecodeFrom(wire.FromBytes(sink.Bytes()), sch)
	require.NoError(t, err)
	require.Equal(t, int32(77), got.GetSingular(f))
}

func TestEncodeToFailsWhenBoundedSinkRunsOut(t *testing.T) {
	sch, f := testSchema(t)
	msg := field.NewMessage(sch)
	msg.SetSingular(f, int32(1<<20))

	sink := wire.NewBoundedSink(make([]byte, 1))
	err := EncodeTo(sink, msg)
	require.Error(t, err)
}

func TestIncrementalEncodeAndDecodeStepAcrossCalls(t *testing.T) {
	sch, f := testSchema(t)
	msg := field.NewMessage(sch)
	msg.SetSingular(f, int32(5))

	enc := NewEncoder(msg)
	sink := wire.NewByteSink()
	for {
		p, err := enc.Step(sink)
		require.NoError(t, err)
		if p.Done {
			break
		}
	}

	dec := NewDecoder(sch)
	src := wire.FromBytes(sink.Bytes())
	for {
		p, err := dec.Step(src)
		require.NoError(t, err)
		if p.Done {
			break
		}
	}
	require.Equal(t, int32(5), dec.Message().GetSingular(f))
}

func TestEncodedSizeMatchesActualOutput(t *testing.T) {
	sch, f := testSchema(t)
	msg := field.NewMessage(sch)
	msg.SetSingular(f, int32(-1))

	sink := wire.NewByteSink()
	require.NoError(t, EncodeTo(sink, msg))
	require.Equal(t, EncodedSize(msg), uint64(len(sink.Bytes())))
}

func TestDecodeErrorSurfacesSource(t *testing.T) {
	sch, _ := testSchema(t)

	// Tag claims a length-delimited field 2 (unknown to the schema, so
	// it is skipped) with 10 payload bytes, but the stream ends
	// immediately: UnexpectedEos, with the source
	// attached so the caller can decide what to do with the rest of it.
	payload := wire.AppendVarint(nil, wire.EncodeTagValue(2, wire.LengthDelimited))
	payload = wire.AppendVarint(payload, 10)

	src := wire.FromBytes(payload)
	_, err := DecodeFrom(src, sch)
	require.Error(t, err)
	require.Equal(t, pberr.UnexpectedEos, pberr.KindOf(err))

	got, ok := pberr.StreamOf(err)
	require.True(t, ok)
	require.Same(t, src, got.(*wire.ByteSource))
}

func TestEncodeErrorSurfacesSink(t *testing.T) {
	sch, f := testSchema(t)
	msg := field.NewMessage(sch)
	msg.SetSingular(f, int32(1<<20))

	sink := wire.NewBoundedSink(make([]byte, 1))
	err := EncodeTo(sink, msg)
	require.Error(t, err)

	got, ok := pberr.StreamOf(err)
	require.True(t, ok)
	require.Same(t, sink, got.(*wire.BoundedSink))
}

func TestEncodeToDeterministicMapsOption(t *testing.T) {
	f := &schema.Field{
		Number: schema.MustFieldNumber(1), Kind: schema.Map, Name: "m",
		MapKey: schema.Uint32, MapValue: schema.String,
	}
	sch, err := schema.NewMessageSchema(schema.Entry{Field: f})
	require.NoError(t, err)

	msg := field.NewMessage(sch)
	for i := uint32(0); i < 16; i++ {
		msg.PutMapEntry(f, i, "v")
	}

	a := wire.NewByteSink()
	require.NoError(t, EncodeTo(a, msg, message.WithDeterministicMaps()))
	b := wire.NewByteSink()
	require.NoError(t, EncodeTo(b, msg, message.WithDeterministicMaps()))
	require.Equal(t, a.Bytes(), b.Bytes())
}

func TestDecodeAllConcurrentPreservesOrder(t *testing.T) {
	sch, f := testSchema(t)
	var payloads [][]byte
	for i := 0; i < 5; i++ {
		msg := field.NewMessage(sch)
		msg.SetSingular(f, int32(i))
		sink := wire.NewByteSink()
		require.NoError(t, EncodeTo(sink, msg))
		payloads = append(payloads, sink.Bytes())
	}

	got, err := DecodeAllConcurrent(context.Background(), sch, payloads)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, m := range got {
		require.Equal(t, int32(i), m.GetSingular(f))
	}
}

func TestEncodeAllConcurrentPreservesOrder(t *testing.T) {
	sch, f := testSchema(t)
	var msgs []*field.Message
	for i := 0; i < 5; i++ {
		m := field.NewMessage(sch)
		m.SetSingular(f, int32(i*2))
		msgs = append(msgs, m)
	}

	got, err := EncodeAllConcurrent(context.Background(), msgs)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, payload := range got {
		back, err := DecodeFrom(wire.FromBytes(payload), sch)
		require.NoError(t, err)
		require.Equal(t, int32(i*2), back.GetSingular(f))
	}
}

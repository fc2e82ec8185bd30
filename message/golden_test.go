package message

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kcheng/pbstream/field"
	"github.com/kcheng/pbstream/schema"
	"github.com/kcheng/pbstream/wire"
)

func mustSchema(t *testing.T, entries ...schema.Entry) *schema.MessageSchema {
	t.Helper()
	s, err := schema.NewMessageSchema(entries...)
	require.NoError(t, err)
	return s
}

func decodeAll(t *testing.T, sch *schema.MessageSchema, payload []byte) *field.Message {
	t.Helper()
	dec := NewDecoder(sch)
	src := wire.FromBytes(payload)
	status, err := dec.Poll(src)
	require.NoError(t, err)
	require.Equal(t, wire.Done, status)
	return dec.Message()
}

// Golden 1: {1: int32 = 150, 2: int32 = 150} -> [0x08,0x96,0x01,0x10,0x96,0x01]
func TestGoldenTwoInt32Fields(t *testing.T) {
	f1 := &schema.Field{Number: schema.MustFieldNumber(1), Kind: schema.Singular, Type: schema.Int32, Name: "a"}
	f2 := &schema.Field{Number: schema.MustFieldNumber(2), Kind: schema.Singular, Type: schema.Int32, Name: "b"}
	sch := mustSchema(t, schema.Entry{Field: f1}, schema.Entry{Field: f2})

	msg := field.NewMessage(sch)
	msg.SetSingular(f1, int32(150))
	msg.SetSingular(f2, int32(150))

	got := NewEncoder(msg).Bytes()
	require.Equal(t, []byte{0x08, 0x96, 0x01, 0x10, 0x96, 0x01}, got)
	require.Equal(t, uint64(len(got)), EncodedSize(msg))

	back := decodeAll(t, sch, got)
	require.Equal(t, int32(150), back.GetSingular(f1))
	require.Equal(t, int32(150), back.GetSingular(f2))
}

// Golden 2: PackedRepeated<int32> @1 = [0, 1, 2] -> [10, 3, 0, 1, 2]
func TestGoldenPackedRepeatedInt32(t *testing.T) {
	f := &schema.Field{Number: schema.MustFieldNumber(1), Kind: schema.PackedRepeated, Type: schema.Int32, Name: "xs"}
	sch := mustSchema(t, schema.Entry{Field: f})

	msg := field.NewMessage(sch)
	msg.AppendRepeatedAll(f, []interface{}{int32(0), int32(1), int32(2)})

	got := NewEncoder(msg).Bytes()
	require.Equal(t, []byte{10, 3, 0, 1, 2}, got)

	back := decodeAll(t, sch, got)
	vals := back.GetRepeated(f)
	require.Equal(t, []interface{}{int32(0), int32(1), int32(2)}, vals)
}

// Golden 3: fixed32 @1 = 123 -> [0x0d, 0x7b, 0x00, 0x00, 0x00]
func TestGoldenFixed32(t *testing.T) {
	f := &schema.Field{Number: schema.MustFieldNumber(1), Kind: schema.Singular, Type: schema.Fixed32, Name: "x"}
	sch := mustSchema(t, schema.Entry{Field: f})

	msg := field.NewMessage(sch)
	msg.SetSingular(f, uint32(123))

	got := NewEncoder(msg).Bytes()
	require.Equal(t, []byte{0x0d, 0x7b, 0x00, 0x00, 0x00}, got)
}

// Golden 4: sint32 zigzag examples.
func TestGoldenSint32(t *testing.T) {
	f := &schema.Field{Number: schema.MustFieldNumber(1), Kind: schema.Singular, Type: schema.Sint32, Name: "x"}
	sch := mustSchema(t, schema.Entry{Field: f})

	cases := []struct {
		v    int32
		body []byte
	}{
		{-1, []byte{0x01}},
		{12345678, []byte{0x9c, 0x85, 0xe3, 0x0b}},
		{-12345678, []byte{0x9b, 0x85, 0xe3, 0x0b}},
	}
	for _, c := range cases {
		msg := field.NewMessage(sch)
		msg.SetSingular(f, c.v)
		got := NewEncoder(msg).Bytes()
		want := append([]byte{0x08}, c.body...)
		require.Equal(t, want, got, "sint32=%d", c.v)

		back := decodeAll(t, sch, got)
		require.Equal(t, c.v, back.GetSingular(f))
	}
}

// Golden 5: int32 = -12345678 -> 10-byte sign-extended varint.
func TestGoldenNegativeInt32TenBytes(t *testing.T) {
	f := &schema.Field{Number: schema.MustFieldNumber(1), Kind: schema.Singular, Type: schema.Int32, Name: "x"}
	sch := mustSchema(t, schema.Entry{Field: f})

	msg := field.NewMessage(sch)
	msg.SetSingular(f, int32(-12345678))

	got := NewEncoder(msg).Bytes()
	want := append([]byte{0x08}, 0xb2, 0xbd, 0x8e, 0xfa, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01)
	require.Equal(t, want, got)
	require.Equal(t, uint64(11), EncodedSize(msg)) // 1 tag byte + 10 varint bytes

	back := decodeAll(t, sch, got)
	require.Equal(t, int32(-12345678), back.GetSingular(f))
}

func TestNegativeInt32AlwaysTenByteVarint(t *testing.T) {
	f := &schema.Field{Number: schema.MustFieldNumber(1), Kind: schema.Singular, Type: schema.Int32, Name: "x"}
	sch := mustSchema(t, schema.Entry{Field: f})
	for _, v := range []int32{-1, -2, -1000, -2147483648} {
		msg := field.NewMessage(sch)
		msg.SetSingular(f, v)
		require.Equal(t, uint64(11), EncodedSize(msg), "v=%d", v)
	}
}

// Golden 6: string = "foo" -> [3, 0x66, 0x6f, 0x6f]
func TestGoldenString(t *testing.T) {
	f := &schema.Field{Number: schema.MustFieldNumber(1), Kind: schema.Singular, Type: schema.String, Name: "s"}
	sch := mustSchema(t, schema.Entry{Field: f})

	msg := field.NewMessage(sch)
	msg.SetSingular(f, "foo")

	got := NewEncoder(msg).Bytes()
	want := append([]byte{0x0a}, 3, 0x66, 0x6f, 0x6f)
	require.Equal(t, want, got)

	back := decodeAll(t, sch, got)
	require.Equal(t, "foo", back.GetSingular(f))
}

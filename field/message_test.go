package field

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kcheng/pbstream/schema"
)

func testSchema(t *testing.T) (*schema.MessageSchema, *schema.Field, *schema.Field) {
	t.Helper()
	nested, err := schema.NewMessageSchema(
		schema.Entry{Field: &schema.Field{Number: schema.MustFieldNumber(1), Kind: schema.Singular, Type: schema.Int32, Name: "x"}},
	)
	require.NoError(t, err)
	embedded := &schema.Field{Number: schema.MustFieldNumber(1), Kind: schema.Embedded, Type: schema.Message, Message: nested, Name: "inner"}
	rep := &schema.Field{Number: schema.MustFieldNumber(2), Kind: schema.Repeated, Type: schema.Int32, Name: "xs"}
	sch, err := schema.NewMessageSchema(schema.Entry{Field: embedded}, schema.Entry{Field: rep})
	require.NoError(t, err)
	return sch, embedded, rep
}

func TestMergeEmbeddedRecursesIntoExistingValue(t *testing.T) {
	sch, embedded, _ := testSchema(t)
	innerField := embedded.Message.Entries()[0].Field

	dst := NewMessage(sch)
	a := NewMessage(embedded.Message)
	a.SetSingular(innerField, int32(1))
	dst.MergeEmbedded(embedded, a)

	b := NewMessage(embedded.Message)
	b.SetSingular(innerField, int32(2))
	dst.MergeEmbedded(embedded, b)

	require.Equal(t, int32(2), dst.GetEmbedded(embedded).GetSingular(innerField))
}

func TestAppendRepeatedAccumulates(t *testing.T) {
	sch, _, rep := testSchema(t)
	m := NewMessage(sch)
	m.AppendRepeated(rep, int32(1))
	m.AppendRepeated(rep, int32(2))
	require.Equal(t, []interface{}{int32(1), int32(2)}, m.GetRepeated(rep))
}

func TestMapEntryOverwriteByKey(t *testing.T) {
	sch, err := schema.NewMessageSchema(
		schema.Entry{Field: &schema.Field{Number: schema.MustFieldNumber(1), Kind: schema.Map, Name: "m", MapKey: schema.String, MapValue: schema.Int32}},
	)
	require.NoError(t, err)
	f := sch.Entries()[0].Field

	m := NewMessage(sch)
	m.PutMapEntry(f, "a", int32(1))
	m.PutMapEntry(f, "a", int32(2))
	m.PutMapEntry(f, "b", int32(3))

	got := m.GetMap(f)
	require.Len(t, got, 2)
	require.Equal(t, int32(2), got["a"])
	require.Equal(t, int32(3), got["b"])
}

func TestOneofSetClearsPreviousVariant(t *testing.T) {
	g := &schema.OneofGroup{Name: "g", Variants: []schema.Field{
		{Number: schema.MustFieldNumber(1), Kind: schema.Oneof, Type: schema.Int32, Name: "a"},
		{Number: schema.MustFieldNumber(2), Kind: schema.Oneof, Type: schema.String, Name: "b"},
	}}
	sch, err := schema.NewMessageSchema(schema.Entry{Oneof: g})
	require.NoError(t, err)

	m := NewMessage(sch)
	m.SetOneof(g, &g.Variants[0], int32(42))
	m.SetOneof(g, &g.Variants[1], "hi")

	num, val, present := m.GetOneof(g)
	require.True(t, present)
	require.Equal(t, schema.MustFieldNumber(2), num)
	require.Equal(t, "hi", val)
}

package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

// These tests pin this package's varint and tag encoding byte-for-byte
// against google.golang.org/protobuf/encoding/protowire, the reference
// implementation's own low-level wire helpers, so a future change here
// can't silently drift from upstream protobuf-go's wire format.
func TestVarintMatchesProtowire(t *testing.T) {
	vals := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40, 1<<64 - 1}
	for _, v := range vals {
		got := AppendVarint(nil, v)
		want := protowire.AppendVarint(nil, v)
		require.Equal(t, want, got, "v=%d", v)

		gotV, gotN := protowire.ConsumeVarint(got)
		require.Greater(t, gotN, 0)
		require.Equal(t, v, gotV)
	}
}

func TestTagEncodingMatchesProtowire(t *testing.T) {
	cases := []struct {
		num uint32
		wt  Type
		pwt protowire.Type
	}{
		{1, Varint, protowire.VarintType},
		{2, Bit64, protowire.Fixed64Type},
		{3, LengthDelimited, protowire.BytesType},
		{536870911, Bit32, protowire.Fixed32Type},
	}
	for _, c := range cases {
		got := AppendVarint(nil, EncodeTagValue(c.num, c.wt))
		want := protowire.AppendTag(nil, protowire.Number(c.num), c.pwt)
		require.Equal(t, want, got, "num=%d wt=%d", c.num, c.wt)
	}
}

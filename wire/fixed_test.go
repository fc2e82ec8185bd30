package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixed32RoundTrip(t *testing.T) {
	enc := AppendFixed32(nil, 123)
	require.Equal(t, []byte{0x7b, 0x00, 0x00, 0x00}, enc)

	op := NewFixed32Op()
	consumed, done, err := op.Poll(enc, true)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, 4, consumed)
	require.Equal(t, uint32(123), op.Uint32())
}

func TestFixed64RoundTrip(t *testing.T) {
	enc := AppendFixed64(nil, 1<<40+7)
	op := NewFixed64Op()
	consumed, done, err := op.Poll(enc, true)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, 8, consumed)
	require.Equal(t, uint64(1<<40+7), op.Uint64())
}

func TestZigZag32(t *testing.T) {
	cases := map[int32]uint32{0: 0, -1: 1, 1: 2, -2: 3, 2147483647: 4294967294, -2147483648: 4294967295}
	for in, want := range cases {
		got := ZigZagEncode32(in)
		require.Equal(t, want, got, "encode %d", in)
		require.Equal(t, in, ZigZagDecode32(got), "decode %d", got)
	}
}

func TestZigZag64(t *testing.T) {
	vals := []int64{0, -1, 1, -2, 2, 1 << 40, -(1 << 40)}
	for _, v := range vals {
		require.Equal(t, v, ZigZagDecode64(ZigZagEncode64(v)))
	}
}

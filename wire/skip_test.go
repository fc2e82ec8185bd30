package wire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kcheng/pbstream/pberr"
)

func TestSkipOpVarintStopsAtNaturalEnd(t *testing.T) {
	payload := AppendVarint(nil, 1<<40) // 6 bytes
	payload = append(payload, 0xaa, 0xbb)

	op := NewSkipOp(Varint)
	consumed, done, err := op.Poll(payload, true)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, 6, consumed)
}

func TestSkipOpFixedWidths(t *testing.T) {
	op := NewSkipOp(Bit32)
	consumed, done, err := op.Poll([]byte{1, 2, 3, 4, 5}, true)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, 4, consumed)

	op = NewSkipOp(Bit64)
	consumed, done, err = op.Poll(make([]byte, 8), true)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, 8, consumed)
}

func TestSkipOpLengthDelimitedIncremental(t *testing.T) {
	payload := AppendVarint(nil, 20)
	payload = append(payload, make([]byte, 20)...)

	op := NewSkipOp(LengthDelimited)
	var total int
	for i := 0; i < len(payload); i += 3 {
		end := i + 3
		if end > len(payload) {
			end = len(payload)
		}
		consumed, done, err := op.Poll(payload[i:end], end == len(payload))
		require.NoError(t, err)
		total += consumed
		if end == len(payload) {
			require.True(t, done)
		}
	}
	require.Equal(t, len(payload), total)
}

func TestSkipOpLengthDelimitedTruncatedIsUnexpectedEos(t *testing.T) {
	payload := AppendVarint(nil, 10) // claims 10 payload bytes, provides 2
	payload = append(payload, 0x01, 0x02)

	op := NewSkipOp(LengthDelimited)
	_, _, err := op.Poll(payload, true)
	require.Error(t, err)
	require.Equal(t, pberr.UnexpectedEos, pberr.KindOf(err))
}

func TestSkipOpGroupWireTypeIsUnsupported(t *testing.T) {
	op := NewSkipOp(startGroup)
	_, _, err := op.Poll([]byte{0x00}, true)
	require.Error(t, err)
	require.Equal(t, pberr.Unsupported, pberr.KindOf(err))
}

package wellknown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kcheng/pbstream/pberr"
)

func TestEmptyRoundTrip(t *testing.T) {
	require.NoError(t, DecodeEmpty(nil))
	require.Empty(t, EncodeEmpty())
}

func TestEmptyIgnoresAnyFields(t *testing.T) {
	d, err := EncodeDuration(Duration{Seconds: 5, Nanos: 6})
	require.NoError(t, err)
	// Empty has no declared fields, so any well-formed bytes decode
	// successfully -- including another message's encoding.
	require.NoError(t, DecodeEmpty(d))
}

func TestDurationRoundTrip(t *testing.T) {
	d := Duration{Seconds: 100, Nanos: 250}
	enc, err := EncodeDuration(d)
	require.NoError(t, err)
	got, err := DecodeDuration(enc)
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestDurationNegativeAcceptedOnDecodeRangeOnly(t *testing.T) {
	d := Duration{Seconds: -5, Nanos: -250}
	enc, err := EncodeDuration(d)
	require.NoError(t, err)
	got, err := DecodeDuration(enc)
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestDurationOutOfRangeIsInvalid(t *testing.T) {
	d := Duration{Seconds: maxDurationSeconds + 1}
	_, err := EncodeDuration(d)
	require.Error(t, err)
	require.Equal(t, pberr.Invalid, pberr.KindOf(err))
}

func TestDurationToNonNegativeRejectsNegative(t *testing.T) {
	d := Duration{Seconds: -1, Nanos: 0}
	_, err := d.ToNonNegative()
	require.Error(t, err)

	d2 := Duration{Seconds: 3, Nanos: 500}
	got, err := d2.ToNonNegative()
	require.NoError(t, err)
	require.Equal(t, 3*time.Second+500*time.Nanosecond, got)
}

func TestErrorRecordRoundTrip(t *testing.T) {
	r := ErrorRecord{
		Kind:  "decode",
		Cause: "truncated varint",
		Locations: []LocationRecord{
			{Module: "wire", File: "varint.go", Line: 42, Message: "mid-varint eos"},
			{Module: "message", File: "decoder.go", Line: 7, Message: "propagated"},
		},
	}
	enc := EncodeErrorRecord(r)
	got, err := DecodeErrorRecord(enc)
	require.NoError(t, err)
	require.Equal(t, r, got)
}

func TestErrorRecordEmptyLocations(t *testing.T) {
	r := ErrorRecord{Kind: "invalid", Cause: "bad input"}
	enc := EncodeErrorRecord(r)
	got, err := DecodeErrorRecord(enc)
	require.NoError(t, err)
	require.Equal(t, "invalid", got.Kind)
	require.Empty(t, got.Locations)
}

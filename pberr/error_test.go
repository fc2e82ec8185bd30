package pberr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorsIsSentinel(t *testing.T) {
	err := New(Invalid, "bad varint")
	require.True(t, errors.Is(err, ErrInvalid))
	require.False(t, errors.Is(err, ErrUnsupported))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Other, cause, "sink write failed")
	require.Equal(t, cause, errors.Unwrap(err))
	require.ErrorIs(t, err, cause)
}

func TestKindOfNonPberrError(t *testing.T) {
	require.Equal(t, Other, KindOf(errors.New("plain")))
}

func TestAttachStreamRecoverable(t *testing.T) {
	stream := &struct{ name string }{"source"}
	err := AttachStream(New(UnexpectedEos, "truncated"), stream)

	got, ok := StreamOf(err)
	require.True(t, ok)
	require.Same(t, stream, got)
	require.Equal(t, UnexpectedEos, KindOf(err))
}

func TestAttachStreamDoesNotMutateOriginal(t *testing.T) {
	orig := New(Invalid, "bad bytes")
	_ = AttachStream(orig, "stream")
	require.Nil(t, orig.Stream)
}

func TestAttachStreamClassifiesForeignError(t *testing.T) {
	cause := errors.New("connection reset")
	err := AttachStream(cause, "sink")
	require.Equal(t, Other, KindOf(err))
	require.ErrorIs(t, err, cause)
	got, ok := StreamOf(err)
	require.True(t, ok)
	require.Equal(t, "sink", got)
}

func TestStreamOfWithoutAttachment(t *testing.T) {
	_, ok := StreamOf(New(Invalid, "plain"))
	require.False(t, ok)
}

func TestKindOfWrappedError(t *testing.T) {
	inner := New(UnexpectedEos, "truncated")
	wrapped := Wrapf(Invalid, inner, "field %d failed", 3)
	require.Equal(t, Invalid, KindOf(wrapped))
	require.True(t, errors.Is(wrapped, ErrInvalid))
}

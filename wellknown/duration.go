package wellknown

import (
	"time"

	"github.com/kcheng/pbstream/field"
	"github.com/kcheng/pbstream/message"
	"github.com/kcheng/pbstream/pberr"
	"github.com/kcheng/pbstream/schema"
	"github.com/kcheng/pbstream/wire"
)

const (
	maxDurationSeconds = 315_576_000_000
	minDurationSeconds = -315_576_000_000
	maxDurationNanos   = 999_999_999
	minDurationNanos   = -999_999_999
)

var (
	durationSecondsField = &schema.Field{Number: schema.MustFieldNumber(1), Kind: schema.Singular, Name: "seconds", Type: schema.Int64}
	durationNanosField   = &schema.Field{Number: schema.MustFieldNumber(2), Kind: schema.Singular, Name: "nanos", Type: schema.Int32}
	durationSchema       = mustDurationSchema()
)

func mustDurationSchema() *schema.MessageSchema {
	s, err := schema.NewMessageSchema(
		schema.Entry{Field: durationSecondsField},
		schema.Entry{Field: durationNanosField},
	)
	if err != nil {
		panic(err)
	}
	return s
}

// DurationSchema returns the schema for google.protobuf.Duration:
// {seconds int64 @1, nanos int32 @2}.
func DurationSchema() *schema.MessageSchema { return durationSchema }

// Duration mirrors google.protobuf.Duration's two components. Unlike
// the canonical protobuf rule that seconds and nanos must carry the
// same sign, this type accepts either part negative independently at
// the wire level: spec.md's open question on duration sign handling
// resolved in favor of validating magnitude ranges only on decode, and
// reserving sign-consistency checks for ToNonNegative, the one
// operation that actually needs a well-ordered non-negative value.
type Duration struct {
	Seconds int64
	Nanos   int32
}

// Validate reports whether d's components fall within the ranges
// google.protobuf.Duration defines, independent of sign.
func (d Duration) Validate() error {
	if d.Seconds < minDurationSeconds || d.Seconds > maxDurationSeconds {
		return pberr.Newf(pberr.Invalid, "duration: seconds %d out of range [%d, %d]", d.Seconds, minDurationSeconds, maxDurationSeconds)
	}
	if d.Nanos < minDurationNanos || d.Nanos > maxDurationNanos {
		return pberr.Newf(pberr.Invalid, "duration: nanos %d out of range [%d, %d]", d.Nanos, minDurationNanos, maxDurationNanos)
	}
	return nil
}

// ToNonNegative converts d to a time.Duration, failing if either
// component is negative. This is the one place sign matters: a caller
// asking for a non-negative duration needs both parts to agree that
// there is no negative magnitude to represent.
func (d Duration) ToNonNegative() (time.Duration, error) {
	if d.Seconds < 0 || d.Nanos < 0 {
		return 0, pberr.New(pberr.Invalid, "duration: cannot convert a negative duration to a non-negative value")
	}
	return time.Duration(d.Seconds)*time.Second + time.Duration(d.Nanos)*time.Nanosecond, nil
}

// ToMessage renders d as a field.Message bound to DurationSchema.
func (d Duration) ToMessage() *field.Message {
	m := field.NewMessage(durationSchema)
	m.SetSingular(durationSecondsField, d.Seconds)
	m.SetSingular(durationNanosField, d.Nanos)
	return m
}

// DurationFromMessage extracts a Duration from a message decoded
// against DurationSchema, validating its ranges.
func DurationFromMessage(m *field.Message) (Duration, error) {
	d := Duration{
		Seconds: m.GetSingular(durationSecondsField).(int64),
		Nanos:   m.GetSingular(durationNanosField).(int32),
	}
	if err := d.Validate(); err != nil {
		return Duration{}, err
	}
	return d, nil
}

// DecodeDuration decodes payload as a standalone Duration message.
func DecodeDuration(payload []byte) (Duration, error) {
	dec := message.NewDecoder(durationSchema)
	src := wire.FromBytes(payload)
	for {
		status, err := dec.Poll(src)
		if err != nil {
			return Duration{}, err
		}
		if status == wire.Done {
			return DurationFromMessage(dec.Message())
		}
	}
}

// EncodeDuration returns d's wire encoding, failing if d's components
// are out of range.
func EncodeDuration(d Duration) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return message.NewEncoder(d.ToMessage()).Bytes(), nil
}

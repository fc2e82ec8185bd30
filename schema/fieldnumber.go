// Package schema holds the data model of spec.md section 3: field
// numbers, wire types, scalar types, and the runtime field-schema table
// a message decoder/encoder is bound to. It follows Design Notes
// section 9's option (b), a runtime schema table, rather than
// compile-time generic tuples -- the same shape as the teacher's own
// desc.MessageDescriptor/desc.FieldDescriptor, which is itself a
// runtime table describing a message's fields.
package schema

import "github.com/kcheng/pbstream/pberr"

// FieldNumber is a validated protobuf field number: an integer in
// [1, 2^29-1] excluding the reserved band [19000, 19999].
type FieldNumber uint32

const (
	minFieldNumber uint32 = 1
	maxFieldNumber uint32 = 1<<29 - 1
	reservedLow    uint32 = 19000
	reservedHigh   uint32 = 19999
)

// NewFieldNumber validates n and returns it as a FieldNumber, or an
// Invalid error if n is zero, out of range, or falls in the reserved
// band.
func NewFieldNumber(n uint32) (FieldNumber, error) {
	if n < minFieldNumber || n > maxFieldNumber {
		return 0, pberr.Newf(pberr.Invalid, "field number %d out of range [%d, %d]", n, minFieldNumber, maxFieldNumber)
	}
	if n >= reservedLow && n <= reservedHigh {
		return 0, pberr.Newf(pberr.Invalid, "field number %d falls in the reserved band [%d, %d]", n, reservedLow, reservedHigh)
	}
	return FieldNumber(n), nil
}

// MustFieldNumber is NewFieldNumber for schema literals known to be
// valid at compile time; it panics on an invalid number, the way a
// schema built from generated code would treat a bug in the generator.
func MustFieldNumber(n uint32) FieldNumber {
	fn, err := NewFieldNumber(n)
	if err != nil {
		panic(err)
	}
	return fn
}

func (n FieldNumber) Uint32() uint32 { return uint32(n) }

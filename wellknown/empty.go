// Package wellknown implements the three well-known message adapters
// spec.md section 4.7 calls for: google.protobuf.Empty,
// google.protobuf.Duration, and an application-defined trackable error
// record. Each is a thin composition over the schema/field/message
// packages plus whatever semantic validation the wire format alone
// can't express (e.g. Duration's range bounds).
package wellknown

import (
	"github.com/kcheng/pbstream/message"
	"github.com/kcheng/pbstream/schema"
	"github.com/kcheng/pbstream/wire"
)

var emptySchema = mustSchema()

func mustSchema() *schema.MessageSchema {
	s, err := schema.NewMessageSchema()
	if err != nil {
		panic(err)
	}
	return s
}

// EmptySchema returns the (field-less) schema for google.protobuf.Empty.
func EmptySchema() *schema.MessageSchema { return emptySchema }

// DecodeEmpty decodes payload as an Empty message: any fields present
// are unknown (Empty declares none) and are skipped per spec.md
// section 4.3, so this succeeds for any well-formed message bytes
// regardless of their content.
func DecodeEmpty(payload []byte) error {
	dec := message.NewDecoder(emptySchema)
	src := wire.FromBytes(payload)
	for {
		status, err := dec.Poll(src)
		if err != nil {
			return err
		}
		if status == wire.Done {
			return nil
		}
	}
}

// EncodeEmpty returns the (always zero-length) wire encoding of Empty.
func EncodeEmpty() []byte { return nil }

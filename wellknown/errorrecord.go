package wellknown

import (
	"github.com/kcheng/pbstream/field"
	"github.com/kcheng/pbstream/message"
	"github.com/kcheng/pbstream/schema"
	"github.com/kcheng/pbstream/wire"
)

var (
	locationModuleField  = &schema.Field{Number: schema.MustFieldNumber(1), Kind: schema.Singular, Name: "module", Type: schema.String}
	locationFileField    = &schema.Field{Number: schema.MustFieldNumber(2), Kind: schema.Singular, Name: "file", Type: schema.String}
	locationLineField    = &schema.Field{Number: schema.MustFieldNumber(3), Kind: schema.Singular, Name: "line", Type: schema.Uint32}
	locationMessageField = &schema.Field{Number: schema.MustFieldNumber(4), Kind: schema.Singular, Name: "message", Type: schema.String}
	locationRecordSchema = mustLocationRecordSchema()

	errorKindField      = &schema.Field{Number: schema.MustFieldNumber(1), Kind: schema.Singular, Name: "kind", Type: schema.String}
	errorCauseField     = &schema.Field{Number: schema.MustFieldNumber(2), Kind: schema.Singular, Name: "cause", Type: schema.String}
	errorLocationsField = &schema.Field{Number: schema.MustFieldNumber(3), Kind: schema.Repeated, Name: "locations", Type: schema.Message, Message: locationRecordSchema}
	errorRecordSchema   = mustErrorRecordSchema()
)

func mustLocationRecordSchema() *schema.MessageSchema {
	s, err := schema.NewMessageSchema(
		schema.Entry{Field: locationModuleField},
		schema.Entry{Field: locationFileField},
		schema.Entry{Field: locationLineField},
		schema.Entry{Field: locationMessageField},
	)
	if err != nil {
		panic(err)
	}
	return s
}

func mustErrorRecordSchema() *schema.MessageSchema {
	s, err := schema.NewMessageSchema(
		schema.Entry{Field: errorKindField},
		schema.Entry{Field: errorCauseField},
		schema.Entry{Field: errorLocationsField},
	)
	if err != nil {
		panic(err)
	}
	return s
}

// LocationRecordSchema returns the schema for a single stack/source
// location entry: {module string @1, file string @2, line uint32 @3,
// message string @4}.
func LocationRecordSchema() *schema.MessageSchema { return locationRecordSchema }

// ErrorRecordSchema returns the schema for the trackable error record:
// {kind string @1, cause string @2, locations repeated LocationRecord @3}.
func ErrorRecordSchema() *schema.MessageSchema { return errorRecordSchema }

// LocationRecord identifies where, in the decoding/encoding pipeline,
// an error record's cause was produced -- a module and source
// position plus a free-form note.
type LocationRecord struct {
	Module  string
	File    string
	Line    uint32
	Message string
}

func (l LocationRecord) toMessage() *field.Message {
	m := field.NewMessage(locationRecordSchema)
	m.SetSingular(locationModuleField, l.Module)
	m.SetSingular(locationFileField, l.File)
	m.SetSingular(locationLineField, l.Line)
	m.SetSingular(locationMessageField, l.Message)
	return m
}

func locationRecordFromMessage(m *field.Message) LocationRecord {
	return LocationRecord{
		Module:  m.GetSingular(locationModuleField).(string),
		File:    m.GetSingular(locationFileField).(string),
		Line:    m.GetSingular(locationLineField).(uint32),
		Message: m.GetSingular(locationMessageField).(string),
	}
}

// ErrorRecord is a trackable, wire-transmissible record of a failure:
// a short machine-readable kind, a human-readable cause, and zero or
// more locations tracing where the failure was observed as it
// propagated (innermost first, by convention of the caller appending
// as it unwinds).
type ErrorRecord struct {
	Kind      string
	Cause     string
	Locations []LocationRecord
}

// ToMessage renders r as a field.Message bound to ErrorRecordSchema.
func (r ErrorRecord) ToMessage() *field.Message {
	m := field.NewMessage(errorRecordSchema)
	m.SetSingular(errorKindField, r.Kind)
	m.SetSingular(errorCauseField, r.Cause)
	for _, loc := range r.Locations {
		m.AppendRepeated(errorLocationsField, loc.toMessage())
	}
	return m
}

// ErrorRecordFromMessage extracts an ErrorRecord from a message decoded
// against ErrorRecordSchema.
func ErrorRecordFromMessage(m *field.Message) ErrorRecord {
	raw := m.GetRepeated(errorLocationsField)
	locs := make([]LocationRecord, len(raw))
	for i, v := range raw {
		locs[i] = locationRecordFromMessage(v.(*field.Message))
	}
	return ErrorRecord{
		Kind:      m.GetSingular(errorKindField).(string),
		Cause:     m.GetSingular(errorCauseField).(string),
		Locations: locs,
	}
}

// DecodeErrorRecord decodes payload as a standalone ErrorRecord message.
func DecodeErrorRecord(payload []byte) (ErrorRecord, error) {
	dec := message.NewDecoder(errorRecordSchema)
	src := wire.FromBytes(payload)
	for {
		status, err := dec.Poll(src)
		if err != nil {
			return ErrorRecord{}, err
		}
		if status == wire.Done {
			return ErrorRecordFromMessage(dec.Message()), nil
		}
	}
}

// EncodeErrorRecord returns r's wire encoding.
func EncodeErrorRecord(r ErrorRecord) []byte {
	return message.NewEncoder(r.ToMessage()).Bytes()
}

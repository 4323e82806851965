package model

import (
	"bytes"
	"encoding/json"
)

// ValueKind tags the variant held by a Value.
type ValueKind string

const (
	KindString  ValueKind = "string"
	KindInt     ValueKind = "int"
	KindBool    ValueKind = "bool"
	KindAddress ValueKind = "address"
	KindBytes   ValueKind = "bytes"
	KindArray   ValueKind = "array"
	KindTuple   ValueKind = "tuple"
)

// Value is a decoded ABI value. Scalars live in Text (integers as base-10,
// bytes as 0x hex, addresses checksummed) or Bool; composites in Items/Fields.
type Value struct {
	Kind   ValueKind
	Text   string
	Bool   bool
	Items  []Value
	Fields []Field
}

// Field is a named tuple member.
type Field struct {
	Name  string
	Value Value
}

func StringValue(s string) Value  { return Value{Kind: KindString, Text: s} }
func IntValue(s string) Value     { return Value{Kind: KindInt, Text: s} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func AddressValue(s string) Value { return Value{Kind: KindAddress, Text: s} }
func BytesValue(s string) Value   { return Value{Kind: KindBytes, Text: s} }
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindArray, Items: items}
}
func TupleValue(fields ...Field) Value { return Value{Kind: KindTuple, Fields: fields} }

// String renders scalars as text; composites as their JSON form.
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindArray, KindTuple:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return v.Text
	}
}

// MarshalJSON emits integers as strings so no precision is lost, and tuples
// as objects in declaration order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindBool:
		return json.Marshal(v.Bool)
	case KindArray:
		items := v.Items
		if items == nil {
			items = []Value{}
		}
		return json.Marshal(items)
	case KindTuple:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			val, err := f.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return json.Marshal(v.Text)
	}
}

package core

import (
	"encoding/json"
	"fmt"
)

// Value is a closed union over the shapes allowed in metadata and
// configuration maps: strings, numbers, booleans, lists and nested maps.
// Concrete types implement the unexported isValue marker, preventing
// arbitrary payloads from leaking into what would otherwise be untyped blobs.
type Value interface {
	isValue()
	json.Marshaler
}

// StringValue is a plain text value.
type StringValue struct{ Value string }

func (StringValue) isValue() {}

// MarshalJSON implements json.Marshaler.
func (v StringValue) MarshalJSON() ([]byte, error) { return json.Marshal(v.Value) }

// NumberValue is a numeric value (all JSON numbers map to float64).
type NumberValue struct{ Value float64 }

func (NumberValue) isValue() {}

// MarshalJSON implements json.Marshaler.
func (v NumberValue) MarshalJSON() ([]byte, error) { return json.Marshal(v.Value) }

// BoolValue is a boolean value.
type BoolValue struct{ Value bool }

func (BoolValue) isValue() {}

// MarshalJSON implements json.Marshaler.
func (v BoolValue) MarshalJSON() ([]byte, error) { return json.Marshal(v.Value) }

// ListValue is an ordered sequence of values.
type ListValue struct{ Values []Value }

func (ListValue) isValue() {}

// MarshalJSON implements json.Marshaler.
func (v ListValue) MarshalJSON() ([]byte, error) {
	if v.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.Values)
}

// MapValue is a nested string-keyed mapping.
type MapValue struct{ Values Metadata }

func (MapValue) isValue() {}

// MarshalJSON implements json.Marshaler.
func (v MapValue) MarshalJSON() ([]byte, error) {
	if v.Values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v.Values)
}

// String wraps a string as a Value.
func String(s string) Value { return StringValue{Value: s} }

// Number wraps a float64 as a Value.
func Number(f float64) Value { return NumberValue{Value: f} }

// Bool wraps a bool as a Value.
func Bool(b bool) Value { return BoolValue{Value: b} }

// List wraps values as a ListValue.
func List(values ...Value) Value { return ListValue{Values: values} }

// StringList wraps a string slice as a ListValue of StringValues.
func StringList(items []string) Value {
	values := make([]Value, len(items))
	for i, s := range items {
		values[i] = String(s)
	}
	return ListValue{Values: values}
}

// Map wraps a Metadata map as a MapValue.
func Map(m Metadata) Value { return MapValue{Values: m} }

// FromAny converts a decoded JSON value (string, float64, bool, []any,
// map[string]any and the common integer types) into the closed union.
// nil converts to nil. Unsupported dynamic types are rejected.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case bool:
		return Bool(t), nil
	case []any:
		values := make([]Value, 0, len(t))
		for _, item := range t {
			converted, err := FromAny(item)
			if err != nil {
				return nil, err
			}
			values = append(values, converted)
		}
		return ListValue{Values: values}, nil
	case map[string]any:
		m := make(Metadata, len(t))
		for k, item := range t {
			converted, err := FromAny(item)
			if err != nil {
				return nil, err
			}
			if converted != nil {
				m[k] = converted
			}
		}
		return MapValue{Values: m}, nil
	default:
		return nil, fmt.Errorf("unsupported metadata value type %T", v)
	}
}

// Metadata is an open mapping from string keys to closed Values. It backs
// agent configuration, memory metadata, workflow inputs/outputs and synergy
// coordination strategies.
type Metadata map[string]Value

// UnmarshalJSON decodes a JSON object into the closed value union.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := make(Metadata, len(raw))
	for k, v := range raw {
		converted, err := FromAny(v)
		if err != nil {
			return fmt.Errorf("metadata key %q: %w", k, err)
		}
		if converted != nil {
			decoded[k] = converted
		}
	}
	*m = decoded
	return nil
}

// Clone returns a copy of the map. Values are immutable by construction
// except for nested lists/maps, which are copied shallowly one level deep at
// each nesting step.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v Value) Value {
	switch t := v.(type) {
	case ListValue:
		values := make([]Value, len(t.Values))
		for i, item := range t.Values {
			values[i] = cloneValue(item)
		}
		return ListValue{Values: values}
	case MapValue:
		return MapValue{Values: t.Values.Clone()}
	default:
		return v
	}
}

// GetString returns the string stored under key, or "" when the key is
// absent or holds a non-string value.
func (m Metadata) GetString(key string) string {
	if v, ok := m[key].(StringValue); ok {
		return v.Value
	}
	return ""
}

// GetNumber returns the number stored under key and whether it was present.
func (m Metadata) GetNumber(key string) (float64, bool) {
	if v, ok := m[key].(NumberValue); ok {
		return v.Value, true
	}
	return 0, false
}

// GetInt returns the number stored under key truncated to int.
func (m Metadata) GetInt(key string) (int, bool) {
	f, ok := m.GetNumber(key)
	return int(f), ok
}

// GetBool returns the boolean stored under key, or false when absent.
func (m Metadata) GetBool(key string) bool {
	if v, ok := m[key].(BoolValue); ok {
		return v.Value
	}
	return false
}

// GetStringList returns the string items of the list stored under key.
// Non-string items are skipped.
func (m Metadata) GetStringList(key string) []string {
	list, ok := m[key].(ListValue)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list.Values))
	for _, v := range list.Values {
		if s, ok := v.(StringValue); ok {
			out = append(out, s.Value)
		}
	}
	return out
}

// GetMap returns the nested Metadata stored under key, or nil.
func (m Metadata) GetMap(key string) Metadata {
	if v, ok := m[key].(MapValue); ok {
		return v.Values
	}
	return nil
}

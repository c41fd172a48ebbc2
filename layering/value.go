package layering

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Kind enumerates the shapes a Value can take.
type Kind uint8

const (
	// KindNull is the zero Kind and doubles as the explicit null tombstone.
	KindNull Kind = iota
	KindMap
	KindList
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Map is a mutable layer of named values.
type Map map[string]Value

// List is an ordered sequence of values.
type List []Value

// Value is a tagged union over the shapes found in loosely typed snapshot
// payloads. The zero Value is null.
type Value struct {
	kind Kind
	m    Map
	l    List
	s    string
	n    float64
	b    bool
}

// Null returns the explicit null tombstone.
func Null() Value { return Value{} }

// String wraps s.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number wraps n.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// MapOf wraps m. A nil map is stored as an empty one.
func MapOf(m Map) Value {
	if m == nil {
		m = Map{}
	}
	return Value{kind: KindMap, m: m}
}

// ListOf wraps l. A nil list is stored as an empty one.
func ListOf(l ...Value) Value {
	if l == nil {
		l = List{}
	}
	return Value{kind: KindList, l: l}
}

// Kind reports the shape of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null tombstone.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsMap returns the underlying map when v is a map.
func (v Value) AsMap() (Map, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// AsList returns the underlying list when v is a list.
func (v Value) AsList() (List, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.l, true
}

// AsString returns the underlying string when v is a string.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsNumber returns the underlying number when v is a number.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.n, true
}

// AsBool returns the underlying bool when v is a bool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindMap:
		return MapOf(v.m.Clone())
	case KindList:
		return ListOf(v.l.Clone()...)
	default:
		return v
	}
}

// Clone returns a deep copy of m. A nil map clones to nil.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for key, value := range m {
		out[key] = value.Clone()
	}
	return out
}

// Clone returns a deep copy of l.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, value := range l {
		out[i] = value.Clone()
	}
	return out
}

// Keys returns the map keys in lexical order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Lookup walks path through nested maps. Every segment is matched literally,
// so keys containing dots are addressed as a single segment.
func (m Map) Lookup(path ...string) (Value, bool) {
	if len(path) == 0 {
		return MapOf(m), m != nil
	}
	current := m
	for i, segment := range path {
		value, ok := current[segment]
		if !ok {
			return Value{}, false
		}
		if i == len(path)-1 {
			return value, true
		}
		next, ok := value.AsMap()
		if !ok {
			return Value{}, false
		}
		current = next
	}
	return Value{}, false
}

// Equal reports whether a and b hold the same shape and contents.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindString:
		return a.s == b.s
	case KindNumber:
		return a.n == b.n
	case KindBool:
		return a.b == b.b
	case KindList:
		if len(a.l) != len(b.l) {
			return false
		}
		for i := range a.l {
			if !Equal(a.l[i], b.l[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return EqualMaps(a.m, b.m)
	default:
		return false
	}
}

// EqualMaps compares two maps by content; nil and empty maps are equal.
func EqualMaps(a, b Map) bool {
	if len(a) != len(b) {
		return false
	}
	for key, av := range a {
		bv, ok := b[key]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}

// FromAny converts a JSON-like Go value into a Value. Unsupported types
// collapse to null rather than failing.
func FromAny(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Null()
	case Value:
		return v.Clone()
	case Map:
		return MapOf(v.Clone())
	case List:
		return ListOf(v.Clone()...)
	case map[string]any:
		return MapOf(FromMap(v))
	case []any:
		out := make(List, len(v))
		for i, item := range v {
			out[i] = FromAny(item)
		}
		return ListOf(out...)
	case []map[string]any:
		out := make(List, len(v))
		for i, item := range v {
			out[i] = MapOf(FromMap(item))
		}
		return ListOf(out...)
	case []string:
		out := make(List, len(v))
		for i, item := range v {
			out[i] = String(item)
		}
		return ListOf(out...)
	case string:
		return String(v)
	case bool:
		return Bool(v)
	case float64:
		return Number(v)
	case float32:
		return Number(float64(v))
	case int:
		return Number(float64(v))
	case int8:
		return Number(float64(v))
	case int16:
		return Number(float64(v))
	case int32:
		return Number(float64(v))
	case int64:
		return Number(float64(v))
	case uint:
		return Number(float64(v))
	case uint8:
		return Number(float64(v))
	case uint16:
		return Number(float64(v))
	case uint32:
		return Number(float64(v))
	case uint64:
		return Number(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return String(v.String())
		}
		return Number(f)
	default:
		return Null()
	}
}

// FromMap converts a JSON-like Go map into a Map.
func FromMap(raw map[string]any) Map {
	if raw == nil {
		return nil
	}
	out := make(Map, len(raw))
	for key, value := range raw {
		out[key] = FromAny(value)
	}
	return out
}

// Any converts v back into plain Go values (map[string]any, []any, string,
// float64, bool or nil).
func (v Value) Any() any {
	switch v.kind {
	case KindMap:
		return v.m.Any()
	case KindList:
		out := make([]any, len(v.l))
		for i, item := range v.l {
			out[i] = item.Any()
		}
		return out
	case KindString:
		return v.s
	case KindNumber:
		return v.n
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// Any converts m into a plain map[string]any.
func (m Map) Any() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = value.Any()
	}
	return out
}

// MarshalJSON encodes v; map keys are emitted in lexical order.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber && (math.IsNaN(v.n) || math.IsInf(v.n, 0)) {
		return nil, fmt.Errorf("layering: unsupported number %v", v.n)
	}
	return json.Marshal(v.Any())
}

// UnmarshalJSON decodes any JSON document into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

func (v Value) String() string {
	data, err := json.Marshal(v.Any())
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(data)
}

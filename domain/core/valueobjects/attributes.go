package valueobjects

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AttrKind tags the variant held by an AttrValue.
type AttrKind string

const (
	AttrString AttrKind = "string"
	AttrNumber AttrKind = "number"
	AttrBool   AttrKind = "bool"
	AttrList   AttrKind = "list"
	AttrMap    AttrKind = "map"
)

// AttrValue is a typed union for the open attribute bags carried by nodes
// and edges. Modeling it as a tagged variant rather than interface{} keeps
// serialization exhaustive: every value round-trips without type loss.
type AttrValue struct {
	kind AttrKind
	str  string
	num  float64
	b    bool
	list []AttrValue
	m    Attributes
}

// Attributes is the open key/value bag on nodes and edges.
type Attributes map[string]AttrValue

// StringAttr wraps a string value.
func StringAttr(s string) AttrValue { return AttrValue{kind: AttrString, str: s} }

// NumberAttr wraps a numeric value.
func NumberAttr(n float64) AttrValue { return AttrValue{kind: AttrNumber, num: n} }

// BoolAttr wraps a boolean value.
func BoolAttr(b bool) AttrValue { return AttrValue{kind: AttrBool, b: b} }

// ListAttr wraps a list of values.
func ListAttr(items ...AttrValue) AttrValue {
	return AttrValue{kind: AttrList, list: items}
}

// MapAttr wraps a nested attribute bag.
func MapAttr(m Attributes) AttrValue { return AttrValue{kind: AttrMap, m: m} }

// Kind returns the variant tag.
func (v AttrValue) Kind() AttrKind { return v.kind }

// AsString returns the string value; ok is false for other variants.
func (v AttrValue) AsString() (string, bool) { return v.str, v.kind == AttrString }

// AsNumber returns the numeric value; ok is false for other variants.
func (v AttrValue) AsNumber() (float64, bool) { return v.num, v.kind == AttrNumber }

// AsBool returns the boolean value; ok is false for other variants.
func (v AttrValue) AsBool() (bool, bool) { return v.b, v.kind == AttrBool }

// AsList returns the list value; ok is false for other variants.
func (v AttrValue) AsList() ([]AttrValue, bool) { return v.list, v.kind == AttrList }

// AsMap returns the nested bag; ok is false for other variants.
func (v AttrValue) AsMap() (Attributes, bool) { return v.m, v.kind == AttrMap }

// Equals compares two values structurally.
func (v AttrValue) Equals(other AttrValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case AttrString:
		return v.str == other.str
	case AttrNumber:
		return v.num == other.num
	case AttrBool:
		return v.b == other.b
	case AttrList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equals(other.list[i]) {
				return false
			}
		}
		return true
	case AttrMap:
		return v.m.Equals(other.m)
	}
	return true
}

// Equals compares two attribute bags structurally.
func (a Attributes) Equals(other Attributes) bool {
	if len(a) != len(other) {
		return false
	}
	for k, v := range a {
		ov, ok := other[k]
		if !ok || !v.Equals(ov) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the bag. Nil stays nil.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v.clone()
	}
	return out
}

func (v AttrValue) clone() AttrValue {
	switch v.kind {
	case AttrList:
		items := make([]AttrValue, len(v.list))
		for i, it := range v.list {
			items[i] = it.clone()
		}
		return AttrValue{kind: AttrList, list: items}
	case AttrMap:
		return AttrValue{kind: AttrMap, m: v.m.Clone()}
	default:
		return v
	}
}

// MarshalJSON emits the native JSON form of the value.
func (v AttrValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case AttrString:
		return json.Marshal(v.str)
	case AttrNumber:
		return json.Marshal(v.num)
	case AttrBool:
		return json.Marshal(v.b)
	case AttrList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case AttrMap:
		if v.m == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.m)
	}
	return []byte("null"), nil
}

// UnmarshalJSON parses any JSON value into the matching variant. JSON null
// is rejected: absent keys should be deleted from the bag, not stored.
func (v *AttrValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := attrFromRaw(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func attrFromRaw(raw interface{}) (AttrValue, error) {
	switch t := raw.(type) {
	case string:
		return StringAttr(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return AttrValue{}, err
		}
		return NumberAttr(f), nil
	case bool:
		return BoolAttr(t), nil
	case []interface{}:
		items := make([]AttrValue, len(t))
		for i, it := range t {
			parsed, err := attrFromRaw(it)
			if err != nil {
				return AttrValue{}, err
			}
			items[i] = parsed
		}
		return AttrValue{kind: AttrList, list: items}, nil
	case map[string]interface{}:
		m := make(Attributes, len(t))
		for k, it := range t {
			parsed, err := attrFromRaw(it)
			if err != nil {
				return AttrValue{}, err
			}
			m[k] = parsed
		}
		return MapAttr(m), nil
	case nil:
		return AttrValue{}, fmt.Errorf("attribute value cannot be null")
	}
	return AttrValue{}, fmt.Errorf("unsupported attribute value type %T", raw)
}

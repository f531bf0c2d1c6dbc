package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindText
	KindNumber
	KindBool
)

// Value is a checklist answer: exactly one of text, number or boolean.
type Value struct {
	kind ValueKind
	text string
	num  float64
	b    bool
}

func TextValue(s string) Value    { return Value{kind: KindText, text: s} }
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsZero() bool    { return v.kind == KindNone }

// Bool returns the boolean payload and whether v holds one.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// String renders the text form of the payload; booleans render as true/false.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	nv, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = nv
	return nil
}

// UnmarshalYAML accepts a plain scalar, so CLI input files can use natural values.
func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	nv, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = nv
	return nil
}

// ValueOf converts a decoded scalar into a Value. nil yields the zero Value.
func ValueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		return TextValue(x), nil
	case bool:
		return BoolValue(x), nil
	case float64:
		return NumberValue(x), nil
	case float32:
		return NumberValue(float64(x)), nil
	case int:
		return NumberValue(float64(x)), nil
	case int64:
		return NumberValue(float64(x)), nil
	case uint64:
		return NumberValue(float64(x)), nil
	}
	return Value{}, fmt.Errorf("%w: unsupported checklist value %T", ErrInvalidInput, raw)
}

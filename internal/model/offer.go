package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindNested
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNested:
		return "nested"
	default:
		return "null"
	}
}

// Value is a single field of an offer. Sources disagree on types for the same
// concept, so every field keeps the kind it arrived with.
type Value struct {
	kind   Kind
	str    string
	num    float64
	flag   bool
	nested any
}

func Null() Value { return Value{} }

func String(s string) Value { return Value{kind: KindString, str: s} }

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

func Nested(raw any) Value { return Value{kind: KindNested, nested: raw} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) Num() (float64, bool) {
	return v.num, v.kind == KindNumber
}

func (v Value) Flag() (bool, bool) {
	return v.flag, v.kind == KindBool
}

// Text renders scalar values as text. Null and nested values have no text form.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return "", false
		}
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.flag), true
	default:
		return "", false
	}
}

// Raw returns the plain Go value (string, float64, bool, nil or the nested value).
func (v Value) Raw() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.flag
	case KindNested:
		return v.nested
	default:
		return nil
	}
}

// ValueOf wraps a decoded JSON value or a Go literal.
func ValueOf(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case uint:
		return Number(float64(t))
	case uint32:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	default:
		return Nested(t)
	}
}

// Offer is one tender/bid/award record with source-specific field names.
type Offer map[string]Value

func NewOffer(fields map[string]any) Offer {
	o := make(Offer, len(fields))
	for k, v := range fields {
		o[k] = ValueOf(v)
	}
	return o
}

// Get returns the field or a null value when the key is absent.
func (o Offer) Get(key string) Value {
	if o == nil {
		return Null()
	}
	return o[key]
}

func (o *Offer) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	*o = NewOffer(fields)
	return nil
}

func (o Offer) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(o))
	for k, v := range o {
		if v.kind == KindNumber && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
			fields[k] = nil
			continue
		}
		fields[k] = v.Raw()
	}
	return json.Marshal(fields)
}

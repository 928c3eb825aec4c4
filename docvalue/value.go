// Package docvalue is a dynamic document model for fingerprinting JSON, CBOR
// and TOML documents.
//
// Documents decode into Value, a sum type whose variants mirror the data
// model shared by the three formats. Equal documents fingerprint equally
// regardless of source format, key order or whitespace:
//
//	v, _ := docvalue.ParseJSON([]byte(`{"b": 1, "a": [true, null]}`))
//	sum, _ := digest.SumNamed(digest.Default, v)
package docvalue

import (
	"time"

	"xdao.co/fingerprint/fingerprint"
)

// Value is one node of a document.
type Value interface {
	fingerprint.Fingerprinter
	isValue()
}

type (
	Null   struct{}
	Bool   bool
	Int    int64
	Uint   uint64
	Float  float64
	String string
	Bytes  []byte
	Array  []Value
	Object map[string]Value
	Time   struct{ T time.Time }
)

var values = fingerprint.MustEnum[Value](fingerprint.ReprIsize,
	fingerprint.Case[Null](),
	fingerprint.Case[Bool](),
	fingerprint.Case[Int](),
	fingerprint.Case[Uint](),
	fingerprint.Case[Float](),
	fingerprint.Case[String](),
	fingerprint.Case[Bytes](),
	fingerprint.Case[Array](),
	fingerprint.Case[Object](),
	fingerprint.Case[Time](),
)

func init() {
	fingerprint.MustRegisterEnum(values)
}

// Enum returns the descriptor used to encode Values.
func Enum() *fingerprint.Enum[Value] { return values }

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Int) isValue()    {}
func (Uint) isValue()   {}
func (Float) isValue()  {}
func (String) isValue() {}
func (Bytes) isValue()  {}
func (Array) isValue()  {}
func (Object) isValue() {}
func (Time) isValue()   {}

func (v Null) Fingerprint(w *fingerprint.Writer)   { values.Encode(w, v) }
func (v Bool) Fingerprint(w *fingerprint.Writer)   { values.Encode(w, v) }
func (v Int) Fingerprint(w *fingerprint.Writer)    { values.Encode(w, v) }
func (v Uint) Fingerprint(w *fingerprint.Writer)   { values.Encode(w, v) }
func (v Float) Fingerprint(w *fingerprint.Writer)  { values.Encode(w, v) }
func (v String) Fingerprint(w *fingerprint.Writer) { values.Encode(w, v) }
func (v Bytes) Fingerprint(w *fingerprint.Writer)  { values.Encode(w, v) }
func (v Array) Fingerprint(w *fingerprint.Writer)  { values.Encode(w, v) }
func (v Object) Fingerprint(w *fingerprint.Writer) { values.Encode(w, v) }
func (v Time) Fingerprint(w *fingerprint.Writer)   { values.Encode(w, v) }

// ToGo converts v to plain Go values: nil, bool, int64, uint64, float64,
// string, []byte, []any, map[string]any and time.Time.
func ToGo(v Value) any {
	switch x := v.(type) {
	case Bool:
		return bool(x)
	case Int:
		return int64(x)
	case Uint:
		return uint64(x)
	case Float:
		return float64(x)
	case String:
		return string(x)
	case Bytes:
		return []byte(x)
	case Array:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToGo(e)
		}
		return out
	case Object:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = ToGo(e)
		}
		return out
	case Time:
		return x.T
	default:
		return nil
	}
}

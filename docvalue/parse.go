package docvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/pelletier/go-toml/v2"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
	FormatTOML Format = "toml"
)

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".cbor":
		return FormatCBOR, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("docvalue: cannot infer format of %q", path)
	}
}

// Parse decodes b as format.
func Parse(format Format, b []byte) (Value, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(b)
	case FormatCBOR:
		return ParseCBOR(b)
	case FormatTOML:
		return ParseTOML(b)
	default:
		return nil, fmt.Errorf("docvalue: unknown format %q", format)
	}
}

// ParseJSON decodes a single JSON document. Numbers keep their exact text
// until classified, so integers beyond 2^53 survive.
func ParseJSON(b []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return nil, fmt.Errorf("docvalue: json: %w", err)
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("docvalue: json: trailing data after document")
	}
	return From(x)
}

// ParseCBOR decodes a single CBOR data item.
func ParseCBOR(b []byte) (Value, error) {
	var x any
	if err := cbor.Unmarshal(b, &x); err != nil {
		return nil, fmt.Errorf("docvalue: cbor: %w", err)
	}
	return From(x)
}

// ParseTOML decodes a TOML document. The root is always an Object.
func ParseTOML(b []byte) (Value, error) {
	var x map[string]any
	if err := toml.Unmarshal(b, &x); err != nil {
		return nil, fmt.Errorf("docvalue: toml: %w", err)
	}
	if x == nil {
		x = map[string]any{}
	}
	return From(x)
}

// From converts decoded Go data to a Value. It accepts the shapes produced by
// encoding/json (with UseNumber), fxamacker/cbor and go-toml, plus the
// matching Value types themselves.
func From(x any) (Value, error) {
	return from(x, "")
}

func from(x any, path string) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(v), nil
	case int8:
		return Int(v), nil
	case int16:
		return Int(v), nil
	case int32:
		return Int(v), nil
	case int64:
		return Int(v), nil
	case uint:
		return fromUint(uint64(v)), nil
	case uint8:
		return Int(v), nil
	case uint16:
		return Int(v), nil
	case uint32:
		return Int(v), nil
	case uint64:
		return fromUint(v), nil
	case float32:
		return fromFloat(float64(v)), nil
	case float64:
		return fromFloat(v), nil
	case json.Number:
		return fromNumber(v)
	case string:
		return String(v), nil
	case []byte:
		return Bytes(bytes.Clone(v)), nil
	case time.Time:
		return Time{T: v}, nil
	case toml.LocalDate, toml.LocalTime, toml.LocalDateTime:
		// Local dates and times have no instant; keep their RFC 3339 text.
		return String(fmt.Sprint(v)), nil
	case []any:
		out := make(Array, len(v))
		for i, e := range v {
			ev, err := from(e, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case map[string]any:
		out := make(Object, len(v))
		for k, e := range v {
			ev, err := from(e, path+"."+k)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case map[any]any:
		out := make(Object, len(v))
		for k, e := range v {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("docvalue: %s: object key %v (%T) is not a string", pathOrRoot(path), k, k)
			}
			ev, err := from(e, path+"."+ks)
			if err != nil {
				return nil, err
			}
			out[ks] = ev
		}
		return out, nil
	default:
		return nil, fmt.Errorf("docvalue: %s: unsupported %T", pathOrRoot(path), x)
	}
}

func pathOrRoot(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}

func fromUint(u uint64) Value {
	if u <= math.MaxInt64 {
		return Int(int64(u))
	}
	return Uint(u)
}

// fromFloat classifies integral floats the same way as integral number
// literals, so 1 and 1.0 fingerprint alike across formats.
func fromFloat(f float64) Value {
	if f == math.Trunc(f) && !math.Signbit(f) && f < (1<<64) {
		return fromUint(uint64(f))
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < 0 {
		return Int(int64(f))
	}
	return Float(f)
}

func fromNumber(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return Uint(u), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("docvalue: number %q: %w", n, err)
	}
	return fromFloat(f), nil
}

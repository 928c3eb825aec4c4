package docvalue

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("docvalue: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// EncodeCBOR writes v as canonical CBOR (RFC 7049 canonical map key order).
// Times are written as integer Unix seconds.
func EncodeCBOR(v Value) ([]byte, error) {
	b, err := cborEncMode.Marshal(ToGo(v))
	if err != nil {
		return nil, fmt.Errorf("docvalue: cbor: %w", err)
	}
	return b, nil
}

// EncodeJSON writes v as JSON with sorted object keys. Bytes become base64
// strings and times RFC 3339 strings, so the conversion is lossy for those
// two variants.
func EncodeJSON(v Value) ([]byte, error) {
	b, err := json.Marshal(ToGo(v))
	if err != nil {
		return nil, fmt.Errorf("docvalue: json: %w", err)
	}
	return b, nil
}

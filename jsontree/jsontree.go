// Package jsontree implements the stdlib encoding/json codec boundary
// named in spec §6: a document tree built of map[string]interface{},
// []interface{}, and JSON-native primitives serializes to bytes and back
// with the engine's own tree entirely unaware of the wire format.
package jsontree

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Encode renders a document tree produced by docgraph.Engine.Serialize as
// JSON bytes.
func Encode(tree interface{}) ([]byte, error) {
	b, err := json.Marshal(tree)
	if err != nil {
		return nil, errors.Wrap(err, "jsontree: encode")
	}
	return b, nil
}

// EncodeIndent is Encode with two-space indentation, for CLI output and
// fixtures that need to stay human-readable.
func EncodeIndent(tree interface{}) ([]byte, error) {
	b, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "jsontree: encode indent")
	}
	return b, nil
}

// Decode parses JSON bytes into the canonical document-tree shape
// docgraph.Engine.Deserialize expects: map[string]interface{},
// []interface{}, string, bool, int64, float64, and nil.
func Decode(data []byte) (interface{}, error) {
	var tree interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&tree); err != nil {
		return nil, errors.Wrap(err, "jsontree: decode")
	}
	return normalizeNumbers(tree), nil
}

// normalizeNumbers converts json.Number leaves (from UseNumber, which keeps
// large integers exact) to int64 when the number parses as an integer that
// fits in int64, and to float64 otherwise.
func normalizeNumbers(v interface{}) interface{} {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		f, _ := n.Float64()
		return f
	case map[string]interface{}:
		for k, val := range n {
			n[k] = normalizeNumbers(val)
		}
		return n
	case []interface{}:
		for i, val := range n {
			n[i] = normalizeNumbers(val)
		}
		return n
	default:
		return v
	}
}

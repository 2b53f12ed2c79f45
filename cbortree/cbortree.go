// Package cbortree implements a CBOR codec boundary for the engine's
// document tree, built on github.com/fxamacker/cbor/v2, for callers who
// need a compact binary wire format instead of JSON or YAML text.
package cbortree

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// stringMapType pins CBOR map decoding to map[string]interface{}, matching
// the other codec packages' document-tree shape instead of cbor's own
// default of map[interface{}]interface{}.
var stringMapType = reflect.TypeOf(map[string]interface{}(nil))

var decMode = func() cbor.DecMode {
	opts := cbor.DecOptions{
		DefaultMapType: stringMapType,
	}
	mode, err := opts.DecMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// Encode renders a document tree as CBOR bytes, using CBOR's canonical
// (deterministic) encoding so identical trees always produce identical
// bytes.
func Encode(tree interface{}) ([]byte, error) {
	opts := cbor.CanonicalEncOptions()
	em, err := opts.EncMode()
	if err != nil {
		return nil, errors.Wrap(err, "cbortree: build encoder")
	}
	b, err := em.Marshal(tree)
	if err != nil {
		return nil, errors.Wrap(err, "cbortree: encode")
	}
	return b, nil
}

// Decode parses CBOR bytes into the canonical document-tree shape
// docgraph.Engine.Deserialize expects.
func Decode(data []byte) (interface{}, error) {
	var tree interface{}
	if err := decMode.Unmarshal(data, &tree); err != nil {
		return nil, errors.Wrap(err, "cbortree: decode")
	}
	return normalize(tree), nil
}

// normalize coerces CBOR's narrower integer types (uint64/int64 split) down
// to int64 so the tree's primitive kinds match the other codec packages.
func normalize(v interface{}) interface{} {
	switch n := v.(type) {
	case uint64:
		return int64(n)
	case map[string]interface{}:
		for k, val := range n {
			n[k] = normalize(val)
		}
		return n
	case []interface{}:
		for i, val := range n {
			n[i] = normalize(val)
		}
		return n
	default:
		return v
	}
}

// Package yamltree implements a YAML codec boundary for the engine's
// document tree, built on gopkg.in/yaml.v3, the teacher corpus's YAML
// library of choice.
package yamltree

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Encode renders a document tree as YAML bytes.
func Encode(tree interface{}) ([]byte, error) {
	b, err := yaml.Marshal(tree)
	if err != nil {
		return nil, errors.Wrap(err, "yamltree: encode")
	}
	return b, nil
}

// Decode parses YAML bytes into the canonical document-tree shape
// docgraph.Engine.Deserialize expects.
func Decode(data []byte) (interface{}, error) {
	var tree interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, errors.Wrap(err, "yamltree: decode")
	}
	return normalize(tree), nil
}

// normalize walks a yaml.v3-decoded value through map[string]interface{}
// (yaml.v3's default for string-keyed mappings) and []interface{}, coercing
// int to int64 so the document tree exposes the same primitive kinds
// regardless of codec.
func normalize(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
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

package docgraph

import (
	"fmt"
	"reflect"
)

// deref walks through pointers and interfaces to the first non-pointer,
// non-interface reflect.Value, matching Classify's own traversal so driver
// code that needs the concrete kind (map/slice/struct) sees what Classify
// saw. Callers must only invoke this on values Classify did not report as
// CategoryPrimitive (i.e. never on a nil pointer/interface).
func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	return v
}

// safeInterface returns v.Interface(), tolerating invalid/unexported values
// by returning nil instead of panicking.
func safeInterface(v reflect.Value) interface{} {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

// unwrapPrimitive converts a PRIMITIVE-category reflect.Value to its plain
// Go value for embedding directly in a document tree.
func unwrapPrimitive(v reflect.Value) interface{} {
	return safeInterface(v)
}

func asVersioned(v reflect.Value) (VersionedType, bool) {
	iface := safeInterface(v)
	if iface == nil {
		return nil, false
	}
	vt, ok := iface.(VersionedType)
	return vt, ok
}

func asDictConvertible(v reflect.Value) (DictConvertible, bool) {
	iface := safeInterface(v)
	if iface == nil {
		return nil, false
	}
	dc, ok := iface.(DictConvertible)
	return dc, ok
}

// formatAttributeKey renders a reflect.Value already known to be an
// ATTRIBUTE type (spec §3) as the string form used for document mapping
// keys.
func formatAttributeKey(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// classNameFor returns the fully-qualified-type-string class tag for t when
// no explicit classID was registered via Engine.RegisterType (spec §3
// "Class-tag / version-tag keys": "default: a fully qualified type
// identifier string").
func classNameFor(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func refStrings(refs []PreservedReference) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Ref
	}
	return out
}

// toMapKey converts a decoded document key back into a comparable Go value
// suitable for use as a map key, mapping short JSON-array "tuple" keys
// (spec §8 scenario 5) onto fixed-size arrays, which are comparable in Go
// where slices are not. Tuples longer than 4 elements are not supported by
// the default AutoKeySerializableDictType round trip.
func toMapKey(v interface{}) interface{} {
	s, ok := v.([]interface{})
	if !ok {
		return v
	}
	switch len(s) {
	case 1:
		return [1]interface{}{s[0]}
	case 2:
		return [2]interface{}{s[0], s[1]}
	case 3:
		return [3]interface{}{s[0], s[1], s[2]}
	case 4:
		return [4]interface{}{s[0], s[1], s[2], s[3]}
	default:
		return v
	}
}

package docgraph

import "reflect"

// ValueCategory classifies a runtime value the way the driver needs to in
// order to decide whether to recurse, dispatch to a handler, or pass the
// value through unchanged. See spec §3 "Value category".
type ValueCategory uint8

const (
	// CategoryPrimitive is a scalar leaf that passes through unchanged.
	CategoryPrimitive ValueCategory = iota
	// CategorySpecial is a structural container the driver recurses into
	// directly (slice/array or map).
	CategorySpecial
	// CategoryObject is anything else: a struct, pointer, or interface
	// value dispatched to a type handler.
	CategoryObject
)

// Classify reports the ValueCategory of v using the default, Go-kind-based
// rules. It treats the invalid reflect.Value (nil interface) and nil
// pointers as primitives, since the driver's nil handling short-circuits
// identity tracking for them (see driver.go and SPEC_FULL.md's
// "NoneType/nil identity scrubbing" note).
func Classify(v reflect.Value) ValueCategory {
	if !v.IsValid() {
		return CategoryPrimitive
	}
	switch v.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		// A named type over a primitive kind (Go's enum idiom, e.g. "type
		// Color int") is never a Python-style builtin scalar: it carries
		// behavior (String/EnumName methods) a registered handler needs the
		// chance to see. Only the unnamed builtin kinds pass through as
		// PRIMITIVE; anything with a PkgPath is routed to OBJECT dispatch.
		if v.Type().PkgPath() != "" {
			return CategoryObject
		}
		return CategoryPrimitive
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return CategoryPrimitive
		}
		return Classify(v.Elem())
	case reflect.Slice, reflect.Array, reflect.Map:
		return CategorySpecial
	default:
		return CategoryObject
	}
}

// IsAttribute reports whether v is legal as a mapping key in the target
// format. The default rule (string or any integer kind) matches JSON/YAML
// object keys; formats with a richer key space can override this via a
// custom FormatSettings.
func IsAttribute(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

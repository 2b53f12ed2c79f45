// Package docgraph implements a format-independent object-graph
// serialization engine: identity- and cycle-safe traversal, route-scoped
// behavioral semantics, schema versioning via an external conversion
// manager, and type-handler dispatch by most-specific registered ancestor.
//
// An Engine is built once with the type handlers and semantics a program
// needs, then reused concurrently across many independent Serialize and
// Deserialize calls; all per-traversal state lives in an internal driver
// discarded at the end of each call (see driver.go).
package docgraph

import (
	"reflect"

	"go.uber.org/zap"
)

// Engine is the entry point: a registry of type handlers, a class-tag type
// registry, a semantic default set, and an identity strategy, all built up
// via functional options (spec §6 "Engine configuration").
type Engine struct {
	settings  *FormatSettings
	defaults  *SemanticRegistry
	identity  Identity
	logger    *zap.Logger

	serializeHandlers   *HandlerRegistry[SerializeHandler]
	deserializeHandlers *HandlerRegistry[DeserializeHandler]

	typeToClassID map[reflect.Type]string
	classIDToType map[string]reflect.Type
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithFormatSettings overrides the default class/version keys and
// classification rules (spec §6).
func WithFormatSettings(s *FormatSettings) Option {
	return func(e *Engine) { e.settings = s }
}

// WithIdentity selects the identity strategy (default PointerIdentity;
// spec §9 "Object identity").
func WithIdentity(strategy Identity) Option {
	return func(e *Engine) { e.identity = strategy }
}

// WithLogger attaches a zap logger the engine uses for traversal
// diagnostics: a debug entry for each reference-resolution detour and a
// warning when no serialize handler resolves for a type.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithDefaultSemantic overrides one of the engine-wide default semantics
// (spec §4.1's formatter-level fallback).
func WithDefaultSemantic(s Semantic) Option {
	return func(e *Engine) {
		if e.defaults == nil {
			e.defaults = NewSemanticRegistry()
		}
		e.defaults.Set(s)
	}
}

// NewEngine builds an Engine with the given options applied over the
// documented defaults, then wires the built-in type handlers (spec §6
// default handler set: PreservedReference, KeySerializableDict, time.Time,
// time.Duration, error).
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		settings:            DefaultSettings(),
		defaults:            NewSemanticRegistry(),
		identity:            PointerIdentity{},
		serializeHandlers:   NewHandlerRegistry[SerializeHandler](),
		deserializeHandlers: NewHandlerRegistry[DeserializeHandler](),
		typeToClassID:       make(map[reflect.Type]string),
		classIDToType:       make(map[string]reflect.Type),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	registerBuiltins(e)
	return e
}

// RegisterType associates classID with the Go type of sample, so the
// deserialize side can resolve a class tag back to a concrete type
// (spec §6 "load_type"). sample may be a zero value.
func (e *Engine) RegisterType(classID string, sample interface{}) {
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	e.typeToClassID[t] = classID
	e.classIDToType[classID] = t
}

// RegisterSerializeHandler installs handler for t (a concrete type, or an
// interface type to participate in ancestor dispatch; spec §4.2).
func (e *Engine) RegisterSerializeHandler(t reflect.Type, handler SerializeHandler) {
	e.serializeHandlers.Add(t, handler)
}

// RegisterDeserializeHandler installs handler for t.
func (e *Engine) RegisterDeserializeHandler(t reflect.Type, handler DeserializeHandler) {
	e.deserializeHandlers.Add(t, handler)
}

// RegisterEnum wires a Go enum-like type (spec §8 scenario 6) into the
// class-tag registry and a pair of handlers: serialize writes
// {"state": v.EnumName()} for the value v being serialized, deserialize
// invokes fromName to recover the
// value. Go has no reflective name->value table for a type's constants
// (unlike Python's Enum), so fromName must be supplied by the caller.
func (e *Engine) RegisterEnum(classID string, sample Enum, fromName func(name string) (interface{}, error)) {
	e.RegisterType(classID, sample)
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	e.serializeHandlers.Add(t, func(route *Route, v reflect.Value) (interface{}, error) {
		en := deref(v).Interface().(Enum)
		return map[string]interface{}{"state": en.EnumName()}, nil
	})
	e.deserializeHandlers.Add(t, func(route *Route, target reflect.Type, doc interface{}) (interface{}, error) {
		m, ok := doc.(map[string]interface{})
		if !ok {
			return nil, &HandlerContractError{Want: "map[string]interface{}", Got: reflect.TypeOf(doc).String()}
		}
		name, _ := m["state"].(string)
		return fromName(name)
	})
}

// Serialize walks obj and returns a document tree of maps, slices, and
// primitives ready for a codec (spec §4.3). A fresh driver with its own
// path frame and identity cache backs the call; the Engine itself holds no
// per-call state, so concurrent Serialize/Deserialize calls never interfere
// (spec §5).
func (e *Engine) Serialize(obj interface{}) (interface{}, error) {
	route := NewRoute(e.settings, e.defaults)
	d := &driver{engine: e, route: route, identity: NewIdentityCache(e.identity), frame: &pathFrame{}}

	out, err := d.serializeValue(reflect.ValueOf(obj), route)
	if err != nil {
		return nil, err
	}
	if err := route.final.run(d.identity); err != nil {
		return nil, err
	}
	if len(d.preservedRefs) > 0 {
		return nil, &PreservedReferenceNotDissolvedError{Refs: refStrings(d.preservedRefs)}
	}
	return out, nil
}

// Deserialize reconstructs a value from a document tree previously produced
// by Serialize (spec §4.4).
func (e *Engine) Deserialize(tree interface{}) (interface{}, error) {
	route := NewRoute(e.settings, e.defaults)
	d := &driver{engine: e, route: route, identity: NewIdentityCache(e.identity), frame: &pathFrame{}, rootDoc: tree}

	out, err := d.deserializeValue(tree, route)
	if err != nil {
		return nil, err
	}
	if err := route.final.run(d.identity); err != nil {
		return nil, err
	}
	if len(d.preservedRefs) > 0 {
		return nil, &PreservedReferenceNotDissolvedError{Refs: refStrings(d.preservedRefs)}
	}
	return out, nil
}

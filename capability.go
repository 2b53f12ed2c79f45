package docgraph

// Capability hooks translate spec §6's duck-typed Python hooks
// (to_dict/from_dict/check_in_*_route) into explicit Go interfaces objects
// opt into, per spec §9's design note ("replace with an explicit
// capability trait/interface; objects opt in").

// DictConvertible is the fallback serializer hook (spec §6 "to_dict").
// A handler-registry miss for an OBJECT-category value falls back to this
// if the value implements it.
type DictConvertible interface {
	ToDict(route *Route) (map[string]interface{}, error)
}

// DictPopulatable is the fallback deserializer hook (spec §6 "from_dict").
type DictPopulatable interface {
	FromDict(doc map[string]interface{}, route *Route) error
}

// SerializationRouteAware lets an object install route-scoped semantics on
// itself before handler selection (spec §4.3 step 2, §6
// "check_in_serialization_route").
type SerializationRouteAware interface {
	CheckInSerializationRoute(route *Route)
}

// DeserializationRouteAware is the deserialize-side counterpart (spec §4.4
// step 2, §6 "check_in_deserialization_route").
type DeserializationRouteAware interface {
	CheckInDeserializationRoute(route *Route)
}

// VersionedType is implemented by a Go type (not instance — the method set
// here is meant to be called through a zero value or on the type's factory)
// that wants version metadata serialized alongside its tagged form and
// migrated on the way back in (spec §3 "Semantic" SerializeNoneVersionInfo,
// §4.3, §4.4, §6 "get_conversion_manager").
type VersionedType interface {
	// VersionObject returns the current version metadata for this
	// instance, or nil if none. Its result is itself run back through the
	// driver, so it must be composed of values the driver can serialize.
	VersionObject() interface{}
	// ConversionManager returns the collaborator responsible for migrating
	// an older document shape to the current one. The core only invokes
	// it; spec §1 explicitly scopes the migration algorithms themselves
	// out of the core engine.
	ConversionManager() ConversionManager
}

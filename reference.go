package docgraph

// PreservedReference is a placeholder standing for an object serialized at
// another path (spec §3 "PreservedReference", §4.5). On the serialize side
// it replaces a value already seen; on the deserialize side it marks an
// occurrence pointing at a location not yet (or being) materialized.
type PreservedReference struct {
	// Obj is the strong handle to the original object, present on the
	// serialize side and once resolved on the deserialize side.
	Obj interface{}
	// Ref is the path string identifying the canonical occurrence.
	Ref string
}

// ToDict implements DictConvertible so a PreservedReference round-trips
// through the normal object pipeline (spec §4.5: "its handler produces
// {ref: <path>} so it round-trips").
func (p PreservedReference) ToDict(ctx *Route) (map[string]interface{}, error) {
	return map[string]interface{}{"ref": p.Ref}, nil
}

// preservedReferenceFromDict is the deserialize-side handler body
// (default_handlers.py's handle_PreservedReference).
func preservedReferenceFromDict(doc map[string]interface{}) (PreservedReference, error) {
	ref, _ := doc["ref"].(string)
	return PreservedReference{Ref: ref}, nil
}

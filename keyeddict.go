package docgraph

// KeySerializableDict is the default stand-in for a mapping whose keys are
// not ATTRIBUTE-typed (spec §4.3 step 4, §8 scenario 5, grounded on
// default_handlers.py's KeySerializableDict). It serializes as an ordered
// list of [key, value] pairs so arbitrary (nested, non-string) keys survive
// the round trip.
type KeySerializableDict struct {
	Pairs [][2]interface{}
}

// ToDict implements DictConvertible.
func (k KeySerializableDict) ToDict(route *Route) (map[string]interface{}, error) {
	state := make([]interface{}, len(k.Pairs))
	for i, pair := range k.Pairs {
		state[i] = []interface{}{pair[0], pair[1]}
	}
	return map[string]interface{}{"state": state}, nil
}

// defaultKeyedDictConstructor is the engine default for
// KindAutoKeySerializableDictType, wiring a non-ATTRIBUTE-keyed map into a
// KeySerializableDict.
func defaultKeyedDictConstructor(m map[interface{}]interface{}) interface{} {
	pairs := make([][2]interface{}, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, [2]interface{}{k, v})
	}
	return KeySerializableDict{Pairs: pairs}
}

// keySerializableDictFromDoc is KeySerializableDict's deserialize handler
// body, reconstructing the original map[interface{}]interface{} (not
// another KeySerializableDict) so the value at that path matches what was
// originally serialized.
func keySerializableDictFromDoc(doc map[string]interface{}) (map[interface{}]interface{}, error) {
	stateRaw, _ := doc["state"].([]interface{})
	out := make(map[interface{}]interface{}, len(stateRaw))
	for _, pairRaw := range stateRaw {
		pair, ok := pairRaw.([]interface{})
		if !ok || len(pair) != 2 {
			continue
		}
		out[toMapKey(pair[0])] = pair[1]
	}
	return out, nil
}

package docgraph

import (
	"reflect"

	"go.uber.org/zap"
)

// driver owns all per-traversal mutable state: the path frame, the identity
// cache, and (deserialize side) the root document being navigated for
// reference detours. Exactly one driver exists per Serialize/Deserialize
// call and is discarded afterward (spec §5 "driver exclusively owns
// per-traversal state").
type driver struct {
	engine   *Engine
	route    *Route
	identity *IdentityCache
	frame    *pathFrame

	// rootDoc is the full decoded document tree, used by resolveReference to
	// navigate to a referenced location on the deserialize side.
	rootDoc interface{}

	// preservedRefs accumulates references left unresolved (circular or
	// resolution disabled) while DetonateDanglingPreservedReferences is set,
	// checked at finalization (spec §4.7, §7 "PreservedReferenceNotDissolved").
	preservedRefs []PreservedReference
}

// serializeValue implements spec §4.3's "_serialize": classify, let the
// value opt into route-scoped semantics, auto-preserve on repeat identity,
// then dispatch by category.
func (d *driver) serializeValue(v reflect.Value, route *Route) (interface{}, error) {
	settings := d.engine.settings
	category := settings.classify(v)

	if category == CategoryPrimitive {
		return unwrapPrimitive(v), nil
	}

	if v.IsValid() && v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if iface := safeInterface(v); iface != nil {
		if hook, ok := iface.(SerializationRouteAware); ok {
			hook.CheckInSerializationRoute(route)
		}
	}

	if boolOf(route.GetSemantic(KindAutoPreserveReferences)) {
		currentPath := settings.pathToString(d.frame.current())
		if seenAt, seen := d.identity.CheckIn(v, currentPath); seen {
			ref := PreservedReference{Obj: safeInterface(v), Ref: seenAt}
			branch := route.Branch()
			branch.AddSemantic(AutoPreserveReferences(false))
			return d.serializeValue(reflect.ValueOf(ref), branch)
		}
	}

	switch category {
	case CategorySpecial:
		return d.serializeSpecial(v, route)
	default:
		return d.serializeObject(v, route)
	}
}

func (d *driver) serializeSpecial(v reflect.Value, route *Route) (interface{}, error) {
	cv := deref(v)
	switch cv.Kind() {
	case reflect.Map:
		return d.serializeMap(cv, route)
	case reflect.Slice, reflect.Array:
		return d.serializeSequence(cv, route)
	default:
		return nil, &HandlerContractError{
			Path: d.engine.settings.pathToString(d.frame.current()),
			Want: "map, slice, or array", Got: cv.Kind().String(),
		}
	}
}

func (d *driver) serializeMap(v reflect.Value, route *Route) (interface{}, error) {
	needsWrap := false
	for _, key := range v.MapKeys() {
		if !d.engine.settings.isAttribute(key) {
			needsWrap = true
			break
		}
	}
	if needsWrap {
		if wrapSem, ok := route.GetSemantic(KindAutoKeySerializableDictType).(AutoKeyDictSemantic); ok && wrapSem.New != nil {
			generic := make(map[interface{}]interface{}, v.Len())
			for _, key := range v.MapKeys() {
				generic[key.Interface()] = v.MapIndex(key).Interface()
			}
			wrapped := wrapSem.New(generic)
			return d.serializeValue(reflect.ValueOf(wrapped), route.Branch())
		}
	}

	out := make(map[string]interface{}, v.Len())
	for _, key := range v.MapKeys() {
		keyStr := formatAttributeKey(key)
		d.frame.push(KeyElem(keyStr))
		child, err := d.serializeValue(v.MapIndex(key), route.Branch())
		d.frame.pop()
		if err != nil {
			return nil, err
		}
		out[keyStr] = child
	}
	return out, nil
}

func (d *driver) serializeSequence(v reflect.Value, route *Route) (interface{}, error) {
	out := make([]interface{}, v.Len())
	for i := 0; i < v.Len(); i++ {
		d.frame.push(IndexElem(i))
		child, err := d.serializeValue(v.Index(i), route.Branch())
		d.frame.pop()
		if err != nil {
			return nil, err
		}
		out[i] = child
	}
	return out, nil
}

// serializeObject implements spec §4.3's OBJECT branch: optional version
// info (no path frame pushed, matching the reference implementation), type
// handler dispatch, recursion into the handler's shallow representation
// under a frame-scoped AutoPreserveReferences(false), and class-tag
// assignment.
//
// The frame semantic is installed on route itself and the handler's dict is
// serialized through route.Branch(), so the dict itself observes APR=false
// (it is a transient value, never worth identity-tracking) while its own
// fields, one branch further down, fall through past the one-level frame
// scope back to the route-scoped/default APR setting.
func (d *driver) serializeObject(v reflect.Value, route *Route) (interface{}, error) {
	settings := d.engine.settings
	concrete := deref(v)
	if !concrete.IsValid() {
		return nil, nil
	}

	ro := make(map[string]interface{})

	if vt, ok := asVersioned(v); ok {
		versionInfo := vt.VersionObject()
		if versionInfo != nil || boolOf(route.GetSemantic(KindSerializeNoneVersionInfo)) {
			vRoute := route.Branch()
			vRoute.AddSemantic(AutoPreserveReferences(false))
			verSer, err := d.serializeValue(reflect.ValueOf(versionInfo), vRoute)
			if err != nil {
				return nil, err
			}
			ro[settings.VersionKey] = verSer
		}
	}

	handler, ok := d.engine.serializeHandlers.Resolve(concrete.Type())
	if !ok {
		d.logger().Warn("no serialize handler", zap.String("type", concrete.Type().String()), zap.String("path", settings.pathToString(d.frame.current())))
		return nil, &NotSerializableError{
			Path: settings.pathToString(d.frame.current()),
			Type: concrete.Type().String(),
		}
	}
	serObj, err := handler(route, v)
	if err != nil {
		return nil, wrapf(err, "serializing %s", concrete.Type())
	}

	route.AddFrameSemantic(AutoPreserveReferences(false))
	recursed, err := d.serializeValue(reflect.ValueOf(serObj), route.Branch())
	if err != nil {
		return nil, err
	}
	recMap, ok := recursed.(map[string]interface{})
	if !ok {
		return nil, &HandlerContractError{
			Path: settings.pathToString(d.frame.current()),
			Want: "map[string]interface{} from handler", Got: reflect.TypeOf(recursed).String(),
		}
	}
	for k, val := range recMap {
		ro[k] = val
	}

	classStr := classNameFor(concrete.Type())
	if id, ok := d.engine.typeToClassID[concrete.Type()]; ok {
		classStr = id
	}
	if override, ok := route.GetSemantic(KindOverrideClassString).(StringSemantic); ok {
		classStr = override.Val
	}
	route.ObjTypeStr = classStr
	ro[settings.ClassKey] = classStr
	return ro, nil
}

// deserializeValue implements spec §4.4's "_deserialize".
func (d *driver) deserializeValue(doc interface{}, route *Route) (interface{}, error) {
	switch val := doc.(type) {
	case nil:
		return nil, nil
	case PreservedReference:
		return val.Obj, nil
	case map[string]interface{}:
		return d.deserializeMap(val, route)
	case []interface{}:
		return d.deserializeSequence(val, route)
	default:
		return val, nil
	}
}

func (d *driver) deserializeSequence(arr []interface{}, route *Route) (interface{}, error) {
	out := make([]interface{}, len(arr))
	for i, elem := range arr {
		if isPrimitiveDoc(elem) {
			out[i] = elem
			continue
		}
		d.frame.push(IndexElem(i))
		child, err := d.deserializeValue(elem, route.Branch())
		d.frame.pop()
		if err != nil {
			return nil, err
		}
		out[i] = child
	}
	return out, nil
}

// isPrimitiveDoc reports whether a decoded document value needs no further
// recursion: everything except a nested mapping, nested sequence, or an
// already-resolved PreservedReference left behind by a sibling's detour
// (spec §4.4's "cv in primitives" check, generalized to cover the
// forwarding case).
func isPrimitiveDoc(v interface{}) bool {
	switch v.(type) {
	case map[string]interface{}, []interface{}, PreservedReference:
		return false
	default:
		return true
	}
}

func (d *driver) deserializeMap(m map[string]interface{}, route *Route) (interface{}, error) {
	settings := d.engine.settings

	classIDRaw, hasClass := m[settings.ClassKey]
	if hasClass {
		delete(m, settings.ClassKey)
	}
	var versionInfo interface{}
	var hasVersion bool
	if versionRaw, ok := m[settings.VersionKey]; ok && hasClass {
		delete(m, settings.VersionKey)
		ver, err := d.deserializeValue(versionRaw, route.Branch())
		if err != nil {
			return nil, err
		}
		versionInfo, hasVersion = ver, true
	}

	for k, v := range m {
		if isPrimitiveDoc(v) {
			continue
		}
		d.frame.push(KeyElem(k))
		child, err := d.deserializeValue(v, route.Branch())
		d.frame.pop()
		if err != nil {
			return nil, err
		}
		m[k] = child
	}

	if !hasClass {
		return m, nil
	}
	classID, _ := classIDRaw.(string)
	pathStr := settings.pathToString(d.frame.current())

	t, ok := d.engine.classIDToType[classID]
	if !ok {
		return nil, &InvalidDocumentError{Path: pathStr, ClassID: classID, Reason: "unregistered type"}
	}

	zero := reflect.New(t).Interface()
	if hasVersion {
		vt, isVersioned := zero.(VersionedType)
		if !isVersioned || vt.ConversionManager() == nil {
			return nil, &InvalidDocumentError{Path: pathStr, ClassID: classID, Reason: "version info present but type has no conversion manager"}
		}
		migrated, err := vt.ConversionManager().UpdateToCurrent(m, versionInfo)
		if err != nil {
			return nil, wrapf(err, "migrating %s at %q", classID, pathStr)
		}
		m = migrated
	}

	if hook, ok := zero.(DeserializationRouteAware); ok {
		hook.CheckInDeserializationRoute(route)
	}

	handler, ok := d.engine.deserializeHandlers.Resolve(t)
	if !ok {
		return nil, &InvalidDocumentError{Path: pathStr, ClassID: classID, Reason: "no deserialize handler registered"}
	}
	ret, err := handler(route, t, m)
	if err != nil {
		return nil, wrapf(err, "deserializing %s at %q", classID, pathStr)
	}

	if name, ok := stringOf(route.GetSemantic(KindNotifyFinalizedMethodName)); ok && name != "" {
		if method := reflect.ValueOf(ret).MethodByName(name); method.IsValid() {
			route.Finalize(func(*IdentityCache) error {
				results := method.Call(nil)
				if len(results) > 0 {
					if errVal, ok := results[0].Interface().(error); ok {
						return errVal
					}
				}
				return nil
			})
		}
	}

	if pref, ok := ret.(PreservedReference); ok {
		return d.resolveReference(pref, route)
	}

	d.identity.RecordPath(pathStr, ret)
	return ret, nil
}

// resolveReference implements spec §4.4's reference-resolution branch,
// including the eager-resolution detour that walks to the referenced
// location, deserializes it there, and rewrites both sites so later
// encounters of the same shared object share one Go value (spec §4.5,
// DESIGN.md "Open Question: reference rewritten to current path").
func (d *driver) resolveReference(pref PreservedReference, route *Route) (interface{}, error) {
	settings := d.engine.settings
	resolve := boolOf(route.GetSemantic(KindResolvePreservedReferences))
	detonate := boolOf(route.GetSemantic(KindDetonateDanglingPreservedRefs))

	refPath, err := settings.stringToPath(pref.Ref)
	if err != nil {
		return nil, err
	}
	circular := d.frame.current().HasPrefix(refPath)

	if !resolve || circular {
		if detonate {
			d.preservedRefs = append(d.preservedRefs, pref)
		}
		return pref, nil
	}

	if cached, ok := d.identity.PathSeen(pref.Ref); ok {
		return cached, nil
	}

	section, setBack, err := d.navigate(refPath)
	if err != nil {
		return nil, err
	}

	d.logger().Debug("resolving detoured reference", zap.String("ref", pref.Ref))

	savedFrame := d.frame.snapshot()
	d.frame = &pathFrame{elems: append(Path{}, refPath...)}
	detourRoute := route.Branch()
	resolved, derr := d.deserializeValue(section, detourRoute)
	d.frame = &savedFrame
	if derr != nil {
		return nil, derr
	}

	newPath := settings.pathToString(d.frame.current())
	d.identity.RecordPath(newPath, resolved)
	setBack(PreservedReference{Obj: resolved, Ref: newPath})

	return resolved, nil
}

// navigate walks d.rootDoc to path and returns the value found there plus a
// closure that overwrites it in place, used to install the forwarding
// reference left behind by a resolved detour.
func (d *driver) navigate(path Path) (section interface{}, setBack func(interface{}), err error) {
	if len(path) == 0 {
		return d.rootDoc, func(v interface{}) { d.rootDoc = v }, nil
	}
	parent := d.rootDoc
	for _, elem := range path[:len(path)-1] {
		switch c := parent.(type) {
		case map[string]interface{}:
			parent = c[elem.Key]
		case []interface{}:
			if elem.Index < 0 || elem.Index >= len(c) {
				return nil, nil, &PathFormatError{Raw: d.engine.settings.pathToString(path), Reason: "index out of range"}
			}
			parent = c[elem.Index]
		default:
			return nil, nil, &PathFormatError{Raw: d.engine.settings.pathToString(path), Reason: "path does not resolve to a container"}
		}
	}
	last := path[len(path)-1]
	switch c := parent.(type) {
	case map[string]interface{}:
		return c[last.Key], func(v interface{}) { c[last.Key] = v }, nil
	case []interface{}:
		if last.Index < 0 || last.Index >= len(c) {
			return nil, nil, &PathFormatError{Raw: d.engine.settings.pathToString(path), Reason: "index out of range"}
		}
		return c[last.Index], func(v interface{}) { c[last.Index] = v }, nil
	default:
		return nil, nil, &PathFormatError{Raw: d.engine.settings.pathToString(path), Reason: "path does not resolve to a container"}
	}
}

func (d *driver) logger() *zap.Logger {
	if d.engine.logger != nil {
		return d.engine.logger
	}
	return zap.NewNop()
}

package docgraph

import (
	"reflect"
	"time"
)

// Enum is the capability hook for Go's enum idiom (a named integer or
// string type with a human-readable name), the closest analog to Python's
// Enum type handled natively by default_handlers.py's handle_Enum. Unlike
// Python, Go has no runtime enumeration of a type's members, so the reverse
// direction (name -> value) must be registered explicitly via
// Engine.RegisterEnum.
type Enum interface {
	EnumName() string
}

func registerBuiltins(e *Engine) {
	e.serializeHandlers.SetDefault(defaultSerializeHandler)
	e.deserializeHandlers.SetDefault(defaultDeserializeHandler)

	e.RegisterType("docgraph.PreservedReference", PreservedReference{})
	e.serializeHandlers.Add(reflect.TypeOf(PreservedReference{}), func(route *Route, v reflect.Value) (interface{}, error) {
		pr := deref(v).Interface().(PreservedReference)
		return pr.ToDict(route)
	})
	e.deserializeHandlers.Add(reflect.TypeOf(PreservedReference{}), func(route *Route, t reflect.Type, doc interface{}) (interface{}, error) {
		m, ok := doc.(map[string]interface{})
		if !ok {
			return nil, &HandlerContractError{Want: "map[string]interface{}", Got: reflect.TypeOf(doc).String()}
		}
		return preservedReferenceFromDict(m)
	})

	e.RegisterType("docgraph.KeySerializableDict", KeySerializableDict{})
	e.serializeHandlers.Add(reflect.TypeOf(KeySerializableDict{}), func(route *Route, v reflect.Value) (interface{}, error) {
		kd := deref(v).Interface().(KeySerializableDict)
		return kd.ToDict(route)
	})
	e.deserializeHandlers.Add(reflect.TypeOf(KeySerializableDict{}), func(route *Route, t reflect.Type, doc interface{}) (interface{}, error) {
		m, ok := doc.(map[string]interface{})
		if !ok {
			return nil, &HandlerContractError{Want: "map[string]interface{}", Got: reflect.TypeOf(doc).String()}
		}
		return keySerializableDictFromDoc(m)
	})

	e.RegisterType("time.Time", time.Time{})
	e.serializeHandlers.Add(reflect.TypeOf(time.Time{}), func(route *Route, v reflect.Value) (interface{}, error) {
		t := deref(v).Interface().(time.Time)
		return map[string]interface{}{
			"state": []interface{}{t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond()},
			"loc":   t.Location().String(),
		}, nil
	})
	e.deserializeHandlers.Add(reflect.TypeOf(time.Time{}), func(route *Route, t reflect.Type, doc interface{}) (interface{}, error) {
		m, ok := doc.(map[string]interface{})
		if !ok {
			return nil, &HandlerContractError{Want: "map[string]interface{}", Got: reflect.TypeOf(doc).String()}
		}
		state, _ := m["state"].([]interface{})
		if len(state) != 7 {
			return nil, &HandlerContractError{Want: "7-element state for time.Time", Got: "malformed state"}
		}
		ints := make([]int, 7)
		for i, raw := range state {
			ints[i] = toInt(raw)
		}
		loc := time.UTC
		if locName, ok := m["loc"].(string); ok {
			if l, err := time.LoadLocation(locName); err == nil {
				loc = l
			}
		}
		return time.Date(ints[0], time.Month(ints[1]), ints[2], ints[3], ints[4], ints[5], ints[6], loc), nil
	})

	e.RegisterType("time.Duration", time.Duration(0))
	e.serializeHandlers.Add(reflect.TypeOf(time.Duration(0)), func(route *Route, v reflect.Value) (interface{}, error) {
		return map[string]interface{}{"state": int64(deref(v).Interface().(time.Duration))}, nil
	})
	e.deserializeHandlers.Add(reflect.TypeOf(time.Duration(0)), func(route *Route, t reflect.Type, doc interface{}) (interface{}, error) {
		m, ok := doc.(map[string]interface{})
		if !ok {
			return nil, &HandlerContractError{Want: "map[string]interface{}", Got: reflect.TypeOf(doc).String()}
		}
		return time.Duration(toInt64(m["state"])), nil
	})

	errType := reflect.TypeOf((*error)(nil)).Elem()
	e.serializeHandlers.Add(errType, func(route *Route, v reflect.Value) (interface{}, error) {
		err := deref(v).Interface().(error)
		return map[string]interface{}{"state": err.Error()}, nil
	})
}

// defaultSerializeHandler covers every OBJECT-category type without a more
// specific registration (spec §6 "default handler falls back to to_dict, or
// a baseline struct-field dump").
func defaultSerializeHandler(route *Route, v reflect.Value) (interface{}, error) {
	if dc, ok := asDictConvertible(v); ok {
		return dc.ToDict(route)
	}
	cv := deref(v)
	if !cv.IsValid() || cv.Kind() != reflect.Struct {
		typ := "invalid"
		if cv.IsValid() {
			typ = cv.Type().String()
		}
		return nil, &NotSerializableError{Type: typ}
	}
	t := cv.Type()
	out := make(map[string]interface{}, cv.NumField())
	for i := 0; i < cv.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := fieldDocName(f)
		if name == "-" {
			continue
		}
		out[name] = cv.Field(i).Interface()
	}
	return out, nil
}

// defaultDeserializeHandler is defaultSerializeHandler's inverse.
func defaultDeserializeHandler(route *Route, t reflect.Type, doc interface{}) (interface{}, error) {
	m, ok := doc.(map[string]interface{})
	if !ok {
		return nil, &HandlerContractError{Want: "map[string]interface{}", Got: reflect.TypeOf(doc).String()}
	}
	ptr := reflect.New(t)
	if dp, ok := ptr.Interface().(DictPopulatable); ok {
		if err := dp.FromDict(m, route); err != nil {
			return nil, err
		}
		return ptr.Interface(), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, &HandlerContractError{Want: "struct or DictPopulatable", Got: t.Kind().String()}
	}
	elem := ptr.Elem()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := fieldDocName(f)
		if name == "-" {
			continue
		}
		val, present := m[name]
		if !present {
			continue
		}
		if err := assignValue(elem.Field(i), val); err != nil {
			return nil, wrapf(err, "field %s", f.Name)
		}
	}
	// Returned as a pointer (not elem.Interface()) so repeated references to
	// the same path via RecordPath share one Go value, matching the
	// reference semantics the identity cache assumes.
	return ptr.Interface(), nil
}

func fieldDocName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("docgraph"); ok && tag != "" {
		return tag
	}
	return f.Name
}

// assignValue sets fv from a decoded document value, coercing the numeric
// types a codec like encoding/json collapses to float64 back to the
// field's declared kind, and bridging the pointer/value mismatch that
// arises because object handlers always materialize a pointer (see
// defaultDeserializeHandler) regardless of whether the destination field
// itself is a pointer.
func assignValue(fv reflect.Value, val interface{}) error {
	if val == nil {
		return nil
	}
	if _, ok := val.(PreservedReference); ok && fv.Type() != reflect.TypeOf(PreservedReference{}) {
		// An unresolved (circular, or resolution-disabled) reference has no
		// static field type to live in; leave the field at its zero value
		// rather than failing the whole document.
		return nil
	}
	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Ptr && fv.Kind() != reflect.Ptr && rv.Type().Elem() == fv.Type() {
		rv = rv.Elem()
	} else if rv.Kind() != reflect.Ptr && fv.Kind() == reflect.Ptr && rv.Type() == fv.Type().Elem() {
		boxed := reflect.New(rv.Type())
		boxed.Elem().Set(rv)
		rv = boxed
	}
	if rv.Type().AssignableTo(fv.Type()) {
		fv.Set(rv)
		return nil
	}
	if rv.Type().ConvertibleTo(fv.Type()) {
		switch fv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64, reflect.String, reflect.Bool:
			fv.Set(rv.Convert(fv.Type()))
			return nil
		}
	}
	return &HandlerContractError{Want: fv.Type().String(), Got: rv.Type().String()}
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

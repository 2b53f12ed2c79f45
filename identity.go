package docgraph

import (
	"reflect"
	"sync"
)

// Identity is a stable identifier for an object encountered during a
// traversal. The default strategy is the Go analog of Python's id(obj):
// the pointer address underlying a reflect.Value (spec §9 "Object identity
// via address").
type Identity interface {
	// IdentityOf returns a stable key for v and reports whether v is
	// identity-trackable at all (nil pointers/interfaces are not).
	IdentityOf(v reflect.Value) (key interface{}, ok bool)
}

// PointerIdentity keys identity off the underlying pointer address of v,
// dereferencing through interfaces. It is the default strategy.
type PointerIdentity struct{}

func (PointerIdentity) IdentityOf(v reflect.Value) (interface{}, bool) {
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if v.IsNil() {
			return nil, false
		}
		return v.Pointer(), true
	default:
		// Value types have no stable address once boxed repeatedly into
		// `any`; they are never identity-tracked under this strategy.
		return nil, false
	}
}

// UUIDIdentity assigns each object a fresh engine identity on first visit,
// for callers who need identity-by-assignment rather than identity-by-
// address (spec §9 design note; grounded on github.com/google/uuid, also
// used by alcionai-clues for request/span identifiers).
//
// Because it assigns on first visit rather than deriving from the value,
// UUIDIdentity still requires a way to recognize "the same object again":
// it falls back to PointerIdentity internally and keys its own assigned ids
// off that, so it shares PointerIdentity's limits on un-addressable values.
type UUIDIdentity struct {
	inner PointerIdentity
	mu    sync.Mutex // guards ids; one strategy may serve concurrent traversals
	ids   map[interface{}]string
}

// NewUUIDIdentity returns a ready-to-use UUIDIdentity strategy.
func NewUUIDIdentity() *UUIDIdentity {
	return &UUIDIdentity{ids: make(map[interface{}]string)}
}

func (u *UUIDIdentity) IdentityOf(v reflect.Value) (interface{}, bool) {
	key, ok := u.inner.IdentityOf(v)
	if !ok {
		return nil, false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if id, seen := u.ids[key]; seen {
		return id, true
	}
	id := newUUIDString()
	u.ids[key] = id
	return id, true
}

// IdentityCache is the bidirectional mapping named in spec §3 "Identity
// cache": during serialize, object identity -> path string, plus the
// lifecycle slice holding strong references so identities are never
// recycled mid-traversal; during deserialize, path string -> materialized
// value.
type IdentityCache struct {
	strategy Identity

	// serialize side
	pathByIdentity map[interface{}]string
	lifecycle      []reflect.Value

	// deserialize side
	valueByPath map[string]interface{}
}

// NewIdentityCache builds an empty cache using strategy (PointerIdentity if
// nil).
func NewIdentityCache(strategy Identity) *IdentityCache {
	if strategy == nil {
		strategy = PointerIdentity{}
	}
	return &IdentityCache{
		strategy:       strategy,
		pathByIdentity: make(map[interface{}]string),
		valueByPath:    make(map[string]interface{}),
	}
}

// CheckIn implements spec §4.3 step 3's check_in_object: if v has already
// been seen, returns the path it was first seen at and ok=true (the caller
// must replace v with a PreservedReference to that path). Otherwise records
// v at currentPath, holds a strong reference in the lifecycle list, and
// returns ok=false.
func (c *IdentityCache) CheckIn(v reflect.Value, currentPath string) (seenAt string, ok bool) {
	key, trackable := c.strategy.IdentityOf(v)
	if !trackable {
		return "", false
	}
	if existing, seen := c.pathByIdentity[key]; seen {
		return existing, true
	}
	c.pathByIdentity[key] = currentPath
	c.lifecycle = append(c.lifecycle, v)
	return "", false
}

// Forget removes any identity-cache entry for v without recording it,
// matching default_handlers.py's handle_NoneType scrubbing the nil
// singleton's identity so it is never reused across graphs. Go has no
// singleton nil object to scrub, but nil pointers/interfaces are simply
// never trackable (see PointerIdentity), so Forget is a no-op kept for
// symmetry with the reference implementation and for callers of a custom
// Identity strategy that might track nils.
func (c *IdentityCache) Forget(v reflect.Value) {
	key, trackable := c.strategy.IdentityOf(v)
	if !trackable {
		return
	}
	delete(c.pathByIdentity, key)
}

// PathSeen reports whether a path is already materialized on the
// deserialize side.
func (c *IdentityCache) PathSeen(path string) (interface{}, bool) {
	v, ok := c.valueByPath[path]
	return v, ok
}

// RecordPath records the materialized value for path on the deserialize
// side.
func (c *IdentityCache) RecordPath(path string, v interface{}) {
	c.valueByPath[path] = v
}

// Reset clears all per-traversal state, releasing the lifecycle's strong
// references (spec §4.7 "Finalization also empties the lifecycle
// collection").
func (c *IdentityCache) Reset() {
	c.pathByIdentity = make(map[interface{}]string)
	c.lifecycle = nil
	c.valueByPath = make(map[string]interface{})
}

// Empty reports whether the cache holds no per-traversal state, the
// condition the "Finalization hygiene" testable property describes (spec §8).
func (c *IdentityCache) Empty() bool {
	return len(c.pathByIdentity) == 0 && len(c.lifecycle) == 0 && len(c.valueByPath) == 0
}

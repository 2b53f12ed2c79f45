package docgraph

// SemanticKind identifies a behavioral flag kind consulted by the driver at
// every recursion step (spec §3 "Semantic").
type SemanticKind string

const (
	KindAutoPreserveReferences           SemanticKind = "auto_preserve_references"
	KindAutoKeySerializableDictType      SemanticKind = "auto_key_serializable_dict_type"
	KindDetonateDanglingPreservedRefs    SemanticKind = "detonate_dangling_preserved_references"
	KindResolvePreservedReferences       SemanticKind = "resolve_preserved_references"
	KindPreserveSerializableKeyOrdering  SemanticKind = "preserve_serializable_key_ordering"
	KindSerializeNoneVersionInfo         SemanticKind = "serialize_none_version_info"
	KindOverrideClassString              SemanticKind = "override_class_string"
	KindNotifyFinalizedMethodName        SemanticKind = "notify_finalized_method_name"
)

// Semantic is a single tagged behavioral value (spec §3). Concrete kinds
// below wrap the value type the driver expects for that kind.
type Semantic interface {
	Kind() SemanticKind
}

// BoolSemantic backs every boolean-valued semantic kind.
type BoolSemantic struct {
	kind SemanticKind
	On   bool
}

func (b BoolSemantic) Kind() SemanticKind { return b.kind }

func AutoPreserveReferences(on bool) Semantic {
	return BoolSemantic{kind: KindAutoPreserveReferences, On: on}
}
func DetonateDanglingPreservedReferences(on bool) Semantic {
	return BoolSemantic{kind: KindDetonateDanglingPreservedRefs, On: on}
}
func ResolvePreservedReferences(on bool) Semantic {
	return BoolSemantic{kind: KindResolvePreservedReferences, On: on}
}
func PreserveSerializableKeyOrdering(on bool) Semantic {
	return BoolSemantic{kind: KindPreserveSerializableKeyOrdering, On: on}
}
func SerializeNoneVersionInfo(on bool) Semantic {
	return BoolSemantic{kind: KindSerializeNoneVersionInfo, On: on}
}

// StringSemantic backs every string-valued semantic kind.
type StringSemantic struct {
	kind SemanticKind
	Val  string
}

func (s StringSemantic) Kind() SemanticKind { return s.kind }

func OverrideClassString(s string) Semantic {
	return StringSemantic{kind: KindOverrideClassString, Val: s}
}
func NotifyFinalizedMethodName(s string) Semantic {
	return StringSemantic{kind: KindNotifyFinalizedMethodName, Val: s}
}

// KeyedDictConstructor builds a serializable stand-in for a mapping whose
// keys are not ATTRIBUTE-typed (spec §4.3 step 4, §8 scenario 5).
type KeyedDictConstructor func(m map[interface{}]interface{}) interface{}

// AutoKeyDictSemantic carries the constructor used by
// KindAutoKeySerializableDictType.
type AutoKeyDictSemantic struct {
	New KeyedDictConstructor
}

func (AutoKeyDictSemantic) Kind() SemanticKind { return KindAutoKeySerializableDictType }

func AutoKeySerializableDictType(ctor KeyedDictConstructor) Semantic {
	return AutoKeyDictSemantic{New: ctor}
}

// SemanticRegistry is the formatter-level default semantic map a Route
// falls back to once its own and ancestor chains are exhausted (spec §4.1).
type SemanticRegistry struct {
	values map[SemanticKind]Semantic
}

// NewSemanticRegistry builds a registry seeded with the engine's documented
// defaults (formatter.py's Formatter.__init__ semantics dict).
func NewSemanticRegistry() *SemanticRegistry {
	r := &SemanticRegistry{values: make(map[SemanticKind]Semantic)}
	r.Set(AutoPreserveReferences(true))
	r.Set(DetonateDanglingPreservedReferences(true))
	r.Set(ResolvePreservedReferences(true))
	r.Set(PreserveSerializableKeyOrdering(false))
	r.Set(SerializeNoneVersionInfo(false))
	r.Set(AutoKeySerializableDictType(defaultKeyedDictConstructor))
	return r
}

// Set installs s, replacing any existing value of the same kind.
func (r *SemanticRegistry) Set(s Semantic) {
	r.values[s.Kind()] = s
}

// Remove deletes any semantic of kind k.
func (r *SemanticRegistry) Remove(k SemanticKind) {
	delete(r.values, k)
}

// Get returns the semantic registered for k, or nil if absent.
func (r *SemanticRegistry) Get(k SemanticKind) Semantic {
	if r == nil {
		return nil
	}
	return r.values[k]
}

// recognized reports whether k is one of the kinds this engine understands.
// Adding a semantic of an unrecognized kind is a programming error (spec
// §4.1 "Error conditions").
func recognized(k SemanticKind) bool {
	switch k {
	case KindAutoPreserveReferences,
		KindAutoKeySerializableDictType,
		KindDetonateDanglingPreservedRefs,
		KindResolvePreservedReferences,
		KindPreserveSerializableKeyOrdering,
		KindSerializeNoneVersionInfo,
		KindOverrideClassString,
		KindNotifyFinalizedMethodName:
		return true
	default:
		return false
	}
}

func boolOf(s Semantic) bool {
	if s == nil {
		return false
	}
	if b, ok := s.(BoolSemantic); ok {
		return b.On
	}
	return false
}

func stringOf(s Semantic) (string, bool) {
	if s == nil {
		return "", false
	}
	if v, ok := s.(StringSemantic); ok {
		return v.Val, true
	}
	return "", false
}

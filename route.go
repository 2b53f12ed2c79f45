package docgraph

// finalizeList is the shared finalization subscriber list a Route and all
// of its branches publish to (spec §3 "Route", §4.7 "Finalization").
type finalizeList struct {
	subscribers []func(cache *IdentityCache) error
}

func (f *finalizeList) subscribe(cb func(cache *IdentityCache) error) {
	f.subscribers = append(f.subscribers, cb)
}

func (f *finalizeList) run(cache *IdentityCache) error {
	for _, cb := range f.subscribers {
		if err := cb(cache); err != nil {
			return err
		}
	}
	return nil
}

// Route carries per-traversal state: the handler to dispatch through, a
// branchable semantics stack, the finalization subscriber list, and a
// pointer to the formatter settings (spec §3 "Route", §4.1).
//
// A Route is single-use and owned by exactly one traversal (spec §5).
type Route struct {
	settings *FormatSettings
	defaults *SemanticRegistry
	final    *finalizeList

	// ObjTypeStr is the class-tag value the driver writes for the object
	// currently being serialized through this route (spec §4.3 step 5).
	ObjTypeStr string

	parent *Route

	own            map[SemanticKind]Semantic
	ownFrame       map[SemanticKind]Semantic // installed via AddFrameSemantic, visible to my direct children only
	inheritedFrame map[SemanticKind]Semantic // what my parent's ownFrame looked like when I was branched
}

// NewRoute creates a root Route for one traversal.
func NewRoute(settings *FormatSettings, defaults *SemanticRegistry) *Route {
	if settings == nil {
		settings = DefaultSettings()
	}
	if defaults == nil {
		defaults = NewSemanticRegistry()
	}
	return &Route{
		settings: settings,
		defaults: defaults,
		final:    &finalizeList{},
		own:      make(map[SemanticKind]Semantic),
	}
}

// Branch returns a child Route sharing the finalizer list and formatter
// settings, inheriting route-scoped semantics by fallback lookup through
// the parent chain and one-level-only frame-scoped semantics from its
// immediate parent (spec §4.1 "branch()").
func (r *Route) Branch() *Route {
	child := &Route{
		settings: r.settings,
		defaults: r.defaults,
		final:    r.final,
		parent:   r,
		own:      make(map[SemanticKind]Semantic),
	}
	if len(r.ownFrame) > 0 {
		child.inheritedFrame = make(map[SemanticKind]Semantic, len(r.ownFrame))
		for k, v := range r.ownFrame {
			child.inheritedFrame[k] = v
		}
	}
	return child
}

// AddSemantic installs s as route-scoped: visible to this route and every
// descendant branch, forever (spec §4.1).
//
// Installing a semantic of an unrecognized kind is a programming error and
// panics, matching spec §4.1's "must fail loudly".
func (r *Route) AddSemantic(s Semantic) {
	if !recognized(s.Kind()) {
		panic("docgraph: AddSemantic: unrecognized semantic kind " + string(s.Kind()))
	}
	r.own[s.Kind()] = s
}

// AddFrameSemantic installs s such that routes branched from r afterwards
// observe it, but their own descendants do not; r itself does not see it
// through GetSemantic (spec §4.1 "add_frame_semantic").
func (r *Route) AddFrameSemantic(s Semantic) {
	if !recognized(s.Kind()) {
		panic("docgraph: AddFrameSemantic: unrecognized semantic kind " + string(s.Kind()))
	}
	if r.ownFrame == nil {
		r.ownFrame = make(map[SemanticKind]Semantic)
	}
	r.ownFrame[s.Kind()] = s
}

// GetSemantic returns the semantic registered for k by this route, its
// frame-scoped inheritance, or an ancestor's route-scoped map, falling back
// to the formatter defaults; nil if nowhere present (spec §4.1).
func (r *Route) GetSemantic(k SemanticKind) Semantic {
	if v, ok := r.own[k]; ok {
		return v
	}
	if v, ok := r.inheritedFrame[k]; ok {
		return v
	}
	if r.parent != nil {
		if v := r.parent.getOwnChain(k); v != nil {
			return v
		}
	}
	return r.defaults.Get(k)
}

// getOwnChain walks only route-scoped ("own") maps up the ancestor chain,
// deliberately ignoring frame-scoped entries belonging to ancestors beyond
// the immediate branch point, so frame-scoped semantics apply to exactly
// one level (spec §4.1).
func (r *Route) getOwnChain(k SemanticKind) Semantic {
	if v, ok := r.own[k]; ok {
		return v
	}
	if r.parent != nil {
		return r.parent.getOwnChain(k)
	}
	return nil
}

// Finalize registers cb to run during finalization, in subscription order
// (spec §4.1 "finalize.subscribe").
func (r *Route) Finalize(cb func(cache *IdentityCache) error) {
	r.final.subscribe(cb)
}

// Settings returns the formatter settings this route was created with.
func (r *Route) Settings() *FormatSettings { return r.settings }

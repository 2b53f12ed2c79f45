package docgraph

import (
	"strconv"
	"strings"
)

// PathElem is one frame of a traversal path: either a mapping key or a
// sequence index (spec §4.6 "Path bookkeeping").
type PathElem struct {
	Key      string
	Index    int
	IsIndex  bool
}

// KeyElem builds a mapping-key path element.
func KeyElem(key string) PathElem { return PathElem{Key: key} }

// IndexElem builds a sequence-index path element.
func IndexElem(i int) PathElem { return PathElem{Index: i, IsIndex: true} }

// Path is an ordered sequence of path elements; the empty Path is the
// document root (spec §3 "Path").
type Path []PathElem

// HasPrefix reports whether p starts with prefix, used for circular
// reference detection (spec §4.4, "a reference's path is considered
// circular iff it is a (non-strict) prefix of the current traversal path").
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if prefix[i] != p[i] {
			return false
		}
	}
	return true
}

// pathSeparator and escape runes for the default slash-joined path string
// form. A literal slash or backslash inside a key is backslash-escaped.
const (
	pathSeparator   = '/'
	pathEscape      = '\\'
	pathIndexPrefix = '#'
)

// PathToString renders p using the default slash-joined form, matching the
// teacher's struct-tag string style (proto/properties.go Properties.String)
// applied to path segments instead of tag fields. Sequence indices are
// rendered as "#<n>" so StringToPath can tell them apart from string keys
// without ambiguity.
func PathToString(p Path) string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, elem := range p {
		if i > 0 {
			b.WriteByte(pathSeparator)
		}
		if elem.IsIndex {
			b.WriteByte(pathIndexPrefix)
			b.WriteString(strconv.Itoa(elem.Index))
			continue
		}
		for j, r := range elem.Key {
			if r == pathSeparator || r == pathEscape || (r == pathIndexPrefix && j == 0) {
				b.WriteByte(pathEscape)
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StringToPath is the inverse of PathToString. It must satisfy
// StringToPath(PathToString(p)) == p for every Path PathToString can
// produce (spec §4.6).
func StringToPath(s string) (Path, error) {
	if s == "" {
		return nil, nil
	}
	var (
		path    Path
		cur     strings.Builder
		escaped bool
		// literal is set when the segment's first rune was escaped, so an
		// escaped leading '#' stays part of a key rather than an index.
		literal bool
	)
	flush := func() {
		seg := cur.String()
		cur.Reset()
		isKey := literal
		literal = false
		if !isKey && len(seg) > 0 && seg[0] == pathIndexPrefix {
			n, err := strconv.Atoi(seg[1:])
			if err == nil {
				path = append(path, IndexElem(n))
				return
			}
		}
		path = append(path, KeyElem(seg))
	}
	for _, r := range s {
		switch {
		case escaped:
			if cur.Len() == 0 {
				literal = true
			}
			cur.WriteRune(r)
			escaped = false
		case r == pathEscape:
			escaped = true
		case r == pathSeparator:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		return nil, &PathFormatError{Raw: s, Reason: "trailing escape character"}
	}
	flush()
	return path, nil
}

// pathFrame is the driver's single mutable path stack. Every push must be
// matched by a pop on every exit path, including failure (spec §3
// invariant, §4.6).
type pathFrame struct {
	elems Path
}

func (f *pathFrame) push(e PathElem) {
	f.elems = append(f.elems, e)
}

func (f *pathFrame) pop() {
	f.elems = f.elems[:len(f.elems)-1]
}

func (f *pathFrame) current() Path {
	out := make(Path, len(f.elems))
	copy(out, f.elems)
	return out
}

func (f *pathFrame) snapshot() pathFrame {
	return pathFrame{elems: f.current()}
}

package docgraph

import "reflect"

// FormatSettings is the formatter-level configuration named in spec §6:
// the reserved class-tag and version-tag keys, the PRIMITIVE/SPECIAL/
// ATTRIBUTE classification rules, and the path<->string conversion. A
// FormatSettings value is shared, read-only, and safe across traversals
// (spec §5).
type FormatSettings struct {
	// ClassKey is the reserved mapping key naming a tagged object's type.
	ClassKey string
	// VersionKey is the reserved mapping key carrying version metadata.
	VersionKey string

	// Classify overrides the default Classify function for this format.
	Classify func(reflect.Value) ValueCategory
	// IsAttribute overrides the default IsAttribute function for this format.
	IsAttribute func(reflect.Value) bool

	// PathToString and StringToPath must be mutual inverses for every path
	// the driver can produce (spec §4.6).
	PathToString func(Path) string
	StringToPath func(string) (Path, error)
}

// DefaultSettings returns the formatter settings used when no override is
// supplied: "$type"/"$version" reserved keys, the default Go-kind
// classification, and slash-joined, escaped path strings.
func DefaultSettings() *FormatSettings {
	return &FormatSettings{
		ClassKey:     "$type",
		VersionKey:   "$version",
		Classify:     Classify,
		IsAttribute:  IsAttribute,
		PathToString: PathToString,
		StringToPath: StringToPath,
	}
}

func (s *FormatSettings) classify(v reflect.Value) ValueCategory {
	if s != nil && s.Classify != nil {
		return s.Classify(v)
	}
	return Classify(v)
}

func (s *FormatSettings) isAttribute(v reflect.Value) bool {
	if s != nil && s.IsAttribute != nil {
		return s.IsAttribute(v)
	}
	return IsAttribute(v)
}

func (s *FormatSettings) pathToString(p Path) string {
	if s != nil && s.PathToString != nil {
		return s.PathToString(p)
	}
	return PathToString(p)
}

func (s *FormatSettings) stringToPath(str string) (Path, error) {
	if s != nil && s.StringToPath != nil {
		return s.StringToPath(str)
	}
	return StringToPath(str)
}

package docgraph

import (
	"fmt"

	"github.com/pkg/errors"
)

// NotSerializableError is returned when no handler matches a value and the
// value exposes no DictConvertible fallback.
type NotSerializableError struct {
	Path string
	Type string
}

func (e *NotSerializableError) Error() string {
	return fmt.Sprintf("docgraph: no handler for type %q at path %q", e.Type, e.Path)
}

// NotSerializable reports whether err is a *NotSerializableError.
func (e *NotSerializableError) NotSerializable() bool { return true }

// PreservedReferenceNotDissolvedError is raised at finalization when
// DetonateDanglingPreservedReferences is set and references remain unresolved.
type PreservedReferenceNotDissolvedError struct {
	Refs []string
}

func (e *PreservedReferenceNotDissolvedError) Error() string {
	return fmt.Sprintf("docgraph: %d preserved reference(s) not dissolved: %v", len(e.Refs), e.Refs)
}

// InvalidDocumentError covers a class-tag that does not resolve to a known
// type, or a version tag present without a conversion manager.
type InvalidDocumentError struct {
	Path    string
	ClassID string
	Reason  string
}

func (e *InvalidDocumentError) Error() string {
	return fmt.Sprintf("docgraph: invalid document at path %q (class %q): %s", e.Path, e.ClassID, e.Reason)
}

// PathFormatError is returned when a path string cannot be parsed back into
// a path sequence.
type PathFormatError struct {
	Raw    string
	Reason string
}

func (e *PathFormatError) Error() string {
	return fmt.Sprintf("docgraph: malformed path %q: %s", e.Raw, e.Reason)
}

// HandlerContractError is returned when a handler produces a value of a
// disallowed category for its call site.
type HandlerContractError struct {
	Path string
	Want string
	Got  string
}

func (e *HandlerContractError) Error() string {
	return fmt.Sprintf("docgraph: handler contract violated at path %q: want %s, got %s", e.Path, e.Want, e.Got)
}

func wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

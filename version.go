package docgraph

// ConversionManager is the embedded version-upgrade mechanism's contract
// (spec §1, §6). The core only invokes UpdateToCurrent; the migration
// algorithm itself is an external collaborator and explicitly out of this
// module's scope (spec §1 "Explicitly out of scope").
type ConversionManager interface {
	// GetVersionObject returns the version metadata for instance, or nil if
	// none. The driver does not call it: the version info it serializes
	// comes from VersionedType.VersionObject.
	GetVersionObject(instance interface{}) interface{}
	// UpdateToCurrent migrates raw (the freshly-deserialized field map,
	// before the type handler constructs the final value) from the schema
	// described by versionInfo to the current schema, returning the
	// migrated map.
	UpdateToCurrent(raw map[string]interface{}, versionInfo interface{}) (map[string]interface{}, error)
}

// RenameFieldConversionManager is a minimal ConversionManager that renames
// fields between versions, grounded on spec §8 scenario 4 ("T's conversion
// manager renames field `old` to `new`"). It is provided as a ready-to-use
// building block, not a requirement — callers may implement ConversionManager
// directly for richer migrations.
type RenameFieldConversionManager struct {
	// CurrentVersion is what GetVersionObject returns; a document whose
	// version info equals it is left unchanged by UpdateToCurrent.
	CurrentVersion interface{}
	// Renames maps old field name -> new field name, applied when the
	// document's version differs from CurrentVersion.
	Renames map[string]string
}

func (m *RenameFieldConversionManager) GetVersionObject(instance interface{}) interface{} {
	return m.CurrentVersion
}

func (m *RenameFieldConversionManager) UpdateToCurrent(raw map[string]interface{}, versionInfo interface{}) (map[string]interface{}, error) {
	if versionInfo == m.CurrentVersion {
		return raw, nil
	}
	for oldName, newName := range m.Renames {
		if v, ok := raw[oldName]; ok {
			raw[newName] = v
			delete(raw, oldName)
		}
	}
	return raw, nil
}

package docgraph_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/docgraph/docgraph"
)

// Leaf is a plain struct relying entirely on the default struct-field
// handler, no DictConvertible implementation.
type Leaf struct {
	Value string
}

// Container holds two pointers that may or may not alias the same Leaf.
type Container struct {
	A *Leaf
	B *Leaf
}

// CycleNode can point at itself.
type CycleNode struct {
	Name string
	Self *CycleNode
}

func newTestEngine() *docgraph.Engine {
	e := docgraph.NewEngine()
	e.RegisterType("Leaf", Leaf{})
	e.RegisterType("Container", Container{})
	e.RegisterType("CycleNode", CycleNode{})
	return e
}

func TestSimpleScalarMapRoundtrip(t *testing.T) {
	e := newTestEngine()
	in := map[string]interface{}{
		"name":  "ada",
		"count": int64(3),
		"ratio": 0.5,
		"on":    true,
	}

	tree, err := e.Serialize(in)
	require.NoError(t, err)

	out, err := e.Deserialize(tree)
	require.NoError(t, err)

	outMap, ok := out.(map[string]interface{})
	require.True(t, ok)
	if diff := cmp.Diff(in, outMap); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSharedLeafReferenceResolvesToSamePointer(t *testing.T) {
	e := newTestEngine()
	leaf := &Leaf{Value: "shared"}
	c := Container{A: leaf, B: leaf}

	tree, err := e.Serialize(c)
	require.NoError(t, err)

	out, err := e.Deserialize(tree)
	require.NoError(t, err)

	got, ok := out.(*Container)
	require.True(t, ok)
	require.NotNil(t, got.A)
	require.NotNil(t, got.B)
	require.Equal(t, "shared", got.A.Value)
	require.Same(t, got.A, got.B, "A and B must resolve to the identical Go pointer")
}

func TestSelfCycleDoesNotInfiniteLoop(t *testing.T) {
	e := docgraph.NewEngine(docgraph.WithDefaultSemantic(docgraph.DetonateDanglingPreservedReferences(false)))
	e.RegisterType("CycleNode", CycleNode{})
	n := &CycleNode{Name: "root"}
	n.Self = n

	tree, err := e.Serialize(n)
	require.NoError(t, err, "a self-cycle must serialize without recursing forever")

	out, err := e.Deserialize(tree)
	require.NoError(t, err)

	got, ok := out.(*CycleNode)
	require.True(t, ok)
	require.Equal(t, "root", got.Name)

	// A genuine cycle can't be eagerly resolved (the ancestor object hasn't
	// finished constructing yet): the reference is left dangling, and since
	// a *CycleNode field has no way to hold a raw PreservedReference
	// placeholder, it is left at its zero value instead of erroring out.
	require.Nil(t, got.Self)
}

func TestDanglingReferenceIsDetonatedByDefault(t *testing.T) {
	e := docgraph.NewEngine()
	e.RegisterType("CycleNode", CycleNode{})
	n := &CycleNode{Name: "root"}
	n.Self = n

	tree, err := e.Serialize(n)
	require.NoError(t, err)

	_, err = e.Deserialize(tree)
	require.Error(t, err)
	var notDissolved *docgraph.PreservedReferenceNotDissolvedError
	require.ErrorAs(t, err, &notDissolved)
}

func TestPathStringRoundtrip(t *testing.T) {
	cases := []docgraph.Path{
		nil,
		{docgraph.KeyElem("a")},
		{docgraph.KeyElem("a"), docgraph.IndexElem(3), docgraph.KeyElem("b/c")},
		{docgraph.KeyElem(`weird\key`)},
	}
	for _, p := range cases {
		s := docgraph.PathToString(p)
		back, err := docgraph.StringToPath(s)
		require.NoError(t, err)
		if len(p) == 0 && len(back) == 0 {
			continue
		}
		require.Equal(t, p, back, "path %#v did not round trip through %q", p, s)
	}
}

func TestNonAttributeMapKeyRoundtrip(t *testing.T) {
	e := docgraph.NewEngine()
	in := map[float64]string{3.14: "pi", 2.72: "e"}

	tree, err := e.Serialize(in)
	require.NoError(t, err)

	out, err := e.Deserialize(tree)
	require.NoError(t, err)

	got, ok := out.(map[interface{}]interface{})
	require.True(t, ok)
	require.Equal(t, "pi", got[3.14])
	require.Equal(t, "e", got[2.72])
}

type Color int

const (
	ColorRed Color = iota
	ColorGreen
	ColorBlue
)

func (c Color) EnumName() string {
	switch c {
	case ColorRed:
		return "Red"
	case ColorGreen:
		return "Green"
	case ColorBlue:
		return "Blue"
	default:
		return "Unknown"
	}
}

func colorFromName(name string) (interface{}, error) {
	switch name {
	case "Red":
		return ColorRed, nil
	case "Green":
		return ColorGreen, nil
	case "Blue":
		return ColorBlue, nil
	default:
		return nil, &docgraph.InvalidDocumentError{ClassID: "Color", Reason: "unknown enum member " + name}
	}
}

func TestEnumRoundtrip(t *testing.T) {
	e := docgraph.NewEngine()
	e.RegisterEnum("Color", ColorRed, colorFromName)

	tree, err := e.Serialize(ColorGreen)
	require.NoError(t, err)

	out, err := e.Deserialize(tree)
	require.NoError(t, err)
	require.Equal(t, ColorGreen, out)
}

// PersonV1 is the legacy document shape: a bare "Name" field.
// PersonV2 is the current Go type, with "FirstName" in its place.
type PersonV2 struct {
	FirstName string
}

func (p *PersonV2) VersionObject() interface{} { return 2 }

func (p *PersonV2) ConversionManager() docgraph.ConversionManager {
	return &docgraph.RenameFieldConversionManager{
		CurrentVersion: 2,
		Renames:        map[string]string{"Name": "FirstName"},
	}
}

func TestVersionMigrationRenamesField(t *testing.T) {
	e := docgraph.NewEngine()
	e.RegisterType("Person", PersonV2{})

	// Hand-build a v1 document the way an older release of this program
	// would have produced it, with the old field name and version tag.
	oldDoc := map[string]interface{}{
		"$type":    "Person",
		"$version": int64(1),
		"Name":     "ada",
	}

	out, err := e.Deserialize(oldDoc)
	require.NoError(t, err)

	got, ok := out.(*PersonV2)
	require.True(t, ok)
	require.Equal(t, "ada", got.FirstName)
}

// TestFinalizationHygieneAcrossCalls exercises the same Engine across
// several independent traversals of a graph with shared identity, checking
// that no per-traversal state (identity cache entries, path frame) survives
// into the next call (spec §4.7, §8 "Finalization hygiene").
func TestFinalizationHygieneAcrossCalls(t *testing.T) {
	e := newTestEngine()
	leaf := &Leaf{Value: "once"}
	c := Container{A: leaf, B: leaf}

	for i := 0; i < 3; i++ {
		tree, err := e.Serialize(c)
		require.NoError(t, err)

		out, err := e.Deserialize(tree)
		require.NoError(t, err)

		got, ok := out.(*Container)
		require.True(t, ok)
		require.Same(t, got.A, got.B)
		require.Equal(t, "once", got.A.Value)
	}
}

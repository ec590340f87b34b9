package intermediate_test

import (
	"bytes"
	"math"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intermediate-serializer/descriptor"
	"intermediate-serializer/extref"
	"intermediate-serializer/intermediate"
	"intermediate-serializer/mathtypes"
	"intermediate-serializer/typename"
)

type stubSprite struct {
	Name  string
	Layer int32
}

type transform struct {
	Position mathtypes.Vector3
	Bounds   mathtypes.Rectangle
	Tint     mathtypes.Color
}

type metrics struct {
	Tiny  int8
	Big   uint64
	Ratio float64
	Delay time.Duration
	Flag  bool
}

type chainNode struct {
	Label string
	Next  *chainNode
}

type palette struct {
	Name string
}

type board struct {
	Left  *palette
	Right *palette
}

type shape interface {
	area() float64
}

type circle struct {
	Radius float64
}

func (c circle) area() float64 { return math.Pi * c.Radius * c.Radius }

type square struct {
	Side float64
}

func (s square) area() float64 { return s.Side * s.Side }

type spline struct {
	Points int32
}

func (s *spline) area() float64 { return 0 }

type canvas struct {
	Title  string
	Shapes []shape
}

type blend int32

type material struct {
	Mode blend
	Link *url.URL
}

type profile struct {
	Name     string
	Nickname *string
}

type glyph struct {
	Symbol rune
	Pad    rune
}

type levelRef struct {
	Name    string
	Terrain extref.Reference
}

func newSerializer(t *testing.T) (*intermediate.Serializer, *descriptor.Registry, *typename.Resolver) {
	t.Helper()

	registry := descriptor.NewRegistry()
	types := typename.NewResolver("Shapes")

	require.NoError(t, types.RegisterType("Shapes", circle{}))
	require.NoError(t, types.RegisterType("Shapes", square{}))
	require.NoError(t, types.RegisterType("Shapes", &spline{}))

	return intermediate.New(registry, types), registry, types
}

func roundTrip[T any](t *testing.T, s *intermediate.Serializer, graph T) T {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, s.Serialize(&buf, graph))

	got, err := intermediate.DeserializeAs[T](s, &buf, "")
	require.NoError(t, err, "document was:\n%s", buf.String())

	return got
}

func TestRoundTripStruct(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	in := stubSprite{Name: "hero", Layer: 3}
	got := roundTrip(t, s, in)

	assert.Empty(t, cmp.Diff(in, got))
}

func TestRoundTripNumericBoundaries(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	in := metrics{
		Tiny:  math.MinInt8,
		Big:   math.MaxUint64,
		Ratio: 0.25,
		Delay: 2*time.Hour + 45*time.Minute,
		Flag:  true,
	}

	got := roundTrip(t, s, in)

	assert.Empty(t, cmp.Diff(in, got))
}

func TestRoundTripMathTypes(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	in := transform{
		Position: mathtypes.Vector3{X: 1.5, Y: -2, Z: 0.5},
		Bounds:   mathtypes.Rectangle{X: 0, Y: 16, Width: 32, Height: 32},
		Tint:     mathtypes.Color{R: 255, G: 128, B: 0, A: 255},
	}

	got := roundTrip(t, s, in)

	assert.Empty(t, cmp.Diff(in, got))
}

func TestRoundTripMap(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	type scores struct {
		ByName map[string]int32
	}

	in := scores{ByName: map[string]int32{"alpha": 1, "beta": 2, "gamma": 3}}
	got := roundTrip(t, s, in)

	assert.Empty(t, cmp.Diff(in, got))
}

func TestRoundTripNullMember(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	got := roundTrip(t, s, profile{Name: "ghost"})
	assert.Nil(t, got.Nickname)

	nick := "Ace"
	got = roundTrip(t, s, profile{Name: "ghost", Nickname: &nick})
	require.NotNil(t, got.Nickname)
	assert.Equal(t, "Ace", *got.Nickname)
}

func TestRoundTripEmptyStringPointer(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	// a pointer to the empty string is a value, not an absent member;
	// only Null="true" may read back as nil
	empty := ""
	got := roundTrip(t, s, profile{Name: "ghost", Nickname: &empty})
	require.NotNil(t, got.Nickname)
	assert.Equal(t, "", *got.Nickname)
}

func TestRoundTripCharMembers(t *testing.T) {
	t.Parallel()

	s, registry, _ := newSerializer(t)
	require.NoError(t, registry.Type(glyph{}, descriptor.Char("Symbol"), descriptor.Char("Pad")))

	in := glyph{Symbol: 'é', Pad: ' '}
	got := roundTrip(t, s, in)

	assert.Equal(t, in, got)
}

func TestRoundTripEnumAndConverter(t *testing.T) {
	t.Parallel()

	s, registry, _ := newSerializer(t)

	descriptor.RegisterEnum(registry, map[string]blend{
		"Opaque":   0,
		"Additive": 1,
	})

	require.NoError(t, registry.Converter(
		func(u *url.URL) (string, error) { return u.String(), nil },
		func(text string) (*url.URL, error) { return url.Parse(text) },
	))

	link, err := url.Parse("https://example.com/atlas?page=2")
	require.NoError(t, err)

	in := material{Mode: 1, Link: link}
	got := roundTrip(t, s, in)

	assert.Empty(t, cmp.Diff(in, got))
}

func TestRoundTripPolymorphicSequence(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	in := canvas{
		Title:  "demo",
		Shapes: []shape{circle{Radius: 1}, square{Side: 2}, &spline{Points: 16}},
	}

	got := roundTrip(t, s, in)

	require.Len(t, got.Shapes, 3)
	assert.IsType(t, circle{}, got.Shapes[0])
	assert.IsType(t, square{}, got.Shapes[1])
	assert.IsType(t, &spline{}, got.Shapes[2])
	assert.Empty(t, cmp.Diff(in, got))
}

func TestSharedDiamond(t *testing.T) {
	t.Parallel()

	s, registry, _ := newSerializer(t)
	require.NoError(t, registry.Type(board{}, descriptor.Shared("Left"), descriptor.Shared("Right")))

	warm := &palette{Name: "warm"}
	got := roundTrip(t, s, &board{Left: warm, Right: warm})

	require.NotNil(t, got.Left)
	assert.Same(t, got.Left, got.Right, "both members must resolve to one object")
}

type linkPair struct {
	Primary *url.URL
	Backup  *url.URL
}

func TestSharedConverterMember(t *testing.T) {
	t.Parallel()

	s, registry, _ := newSerializer(t)
	require.NoError(t, registry.Converter(
		func(u *url.URL) (string, error) { return u.String(), nil },
		func(text string) (*url.URL, error) { return url.Parse(text) },
	))
	require.NoError(t, registry.Type(linkPair{}, descriptor.Shared("Primary"), descriptor.Shared("Backup")))

	link, err := url.Parse("https://example.com/docs")
	require.NoError(t, err)

	// the converter leaf defines the identifier, the second occurrence
	// refers back to it
	got := roundTrip(t, s, linkPair{Primary: link, Backup: link})
	require.NotNil(t, got.Primary)
	assert.Same(t, got.Primary, got.Backup)
	assert.Equal(t, "https://example.com/docs", got.Primary.String())
}

func TestSharedCycle(t *testing.T) {
	t.Parallel()

	s, registry, _ := newSerializer(t)
	require.NoError(t, registry.Type(chainNode{}, descriptor.Shared("Next")))

	n3 := &chainNode{Label: "gamma"}
	n2 := &chainNode{Label: "beta", Next: n3}
	n1 := &chainNode{Label: "alpha", Next: n2}
	n3.Next = n1

	got := roundTrip(t, s, n1)

	require.NotNil(t, got.Next)
	require.NotNil(t, got.Next.Next)
	require.NotNil(t, got.Next.Next.Next)

	assert.Equal(t, "alpha", got.Label)
	assert.Equal(t, "beta", got.Next.Label)
	assert.Equal(t, "gamma", got.Next.Next.Label)
	assert.Same(t, got, got.Next.Next.Next, "ring must close on the root object")
}

func TestExternalReferenceLocations(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	in := levelRef{
		Name:    "forest",
		Terrain: extref.Resolve("levels/forest.xml", "../textures/grass.png"),
	}

	var buf bytes.Buffer
	require.NoError(t, s.SerializeAt(&buf, "levels/forest.xml", in))

	doc := buf.String()
	assert.Contains(t, doc, "<Terrain>../textures/grass.png</Terrain>",
		"reference must be rendered relative to the document")

	got, err := intermediate.DeserializeAs[levelRef](s, strings.NewReader(doc), "levels/forest.xml")
	require.NoError(t, err)

	assert.Equal(t, in.Terrain, got.Terrain)
}

func TestRoundTripFlattenedMember(t *testing.T) {
	t.Parallel()

	s, registry, _ := newSerializer(t)

	type placement struct {
		X float32
		Y float32
	}

	type marker struct {
		Name string
		At   placement
	}

	require.NoError(t, registry.Type(marker{}, descriptor.Flatten("At")))

	in := marker{Name: "spawn", At: placement{X: 1.5, Y: -2}}

	var buf bytes.Buffer
	require.NoError(t, s.Serialize(&buf, in))

	doc := buf.String()
	assert.NotContains(t, doc, "<At>", "flattened members leave no element of their own")
	assert.Contains(t, doc, "<X>1.5</X>")

	got, err := intermediate.DeserializeAs[marker](s, strings.NewReader(doc), "")
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestDeserializeOptionalAbsent(t *testing.T) {
	t.Parallel()

	s, registry, _ := newSerializer(t)
	require.NoError(t, registry.Type(stubSprite{}, descriptor.Optional("Layer")))

	const doc = `<IntermediateDocument>
  <Asset Type="stubSprite">
    <Name>hero</Name>
  </Asset>
</IntermediateDocument>`

	got, err := intermediate.DeserializeAs[stubSprite](s, strings.NewReader(doc), "")
	require.NoError(t, err)

	assert.Equal(t, stubSprite{Name: "hero"}, got)
}

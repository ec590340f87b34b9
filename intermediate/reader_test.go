package intermediate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intermediate-serializer/descriptor"
	"intermediate-serializer/intermediate"
)

type guarded struct {
	Name   string
	Secret string
}

type gridRow struct {
	Cells [3]int32
}

type scoreTable struct {
	ByName map[string]int32
}

func deserializeSprite(t *testing.T, doc string) (stubSprite, error) {
	t.Helper()

	s, _, _ := newSerializer(t)

	return intermediate.DeserializeAs[stubSprite](s, strings.NewReader(doc), "")
}

func TestDeserializeRejectsContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unknown member",
			doc: `<IntermediateDocument>
  <Asset Type="stubSprite">
    <Name>hero</Name>
    <Layer>3</Layer>
    <Color>red</Color>
  </Asset>
</IntermediateDocument>`,
			want: intermediate.ErrUnexpectedMember,
		},
		{
			name: "duplicate member",
			doc: `<IntermediateDocument>
  <Asset Type="stubSprite">
    <Name>hero</Name>
    <Name>villain</Name>
    <Layer>3</Layer>
  </Asset>
</IntermediateDocument>`,
			want: intermediate.ErrUnexpectedMember,
		},
		{
			name: "missing member",
			doc: `<IntermediateDocument>
  <Asset Type="stubSprite">
    <Name>hero</Name>
  </Asset>
</IntermediateDocument>`,
			want: intermediate.ErrMissingMember,
		},
		{
			name: "unparsable number",
			doc: `<IntermediateDocument>
  <Asset Type="stubSprite">
    <Name>hero</Name>
    <Layer>banana</Layer>
  </Asset>
</IntermediateDocument>`,
			want: intermediate.ErrValueFormat,
		},
		{
			name: "number out of range",
			doc: `<IntermediateDocument>
  <Asset Type="stubSprite">
    <Name>hero</Name>
    <Layer>2147483648</Layer>
  </Asset>
</IntermediateDocument>`,
			want: intermediate.ErrValueFormat,
		},
		{
			name: "unknown attribute",
			doc: `<IntermediateDocument>
  <Asset Type="stubSprite">
    <Name version="2">hero</Name>
    <Layer>3</Layer>
  </Asset>
</IntermediateDocument>`,
			want: intermediate.ErrUnexpectedMember,
		},
		{
			name: "identity on a value member",
			doc: `<IntermediateDocument>
  <Asset Type="stubSprite">
    <Name ID="#1">hero</Name>
    <Layer>3</Layer>
  </Asset>
</IntermediateDocument>`,
			want: intermediate.ErrValueFormat,
		},
		{
			name: "null where not nullable",
			doc: `<IntermediateDocument>
  <Asset Type="stubSprite">
    <Name Null="true" />
    <Layer>3</Layer>
  </Asset>
</IntermediateDocument>`,
			want: intermediate.ErrValueFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := deserializeSprite(t, tt.doc)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDeserializeExcludedMember(t *testing.T) {
	t.Parallel()

	s, registry, _ := newSerializer(t)
	require.NoError(t, registry.Type(guarded{}, descriptor.Exclude("Secret")))

	const doc = `<IntermediateDocument>
  <Asset Type="guarded">
    <Name>vault</Name>
    <Secret>hunter2</Secret>
  </Asset>
</IntermediateDocument>`

	_, err := intermediate.DeserializeAs[guarded](s, strings.NewReader(doc), "")

	require.ErrorIs(t, err, intermediate.ErrUnexpectedMember)
	assert.Contains(t, err.Error(), "excluded")
}

func TestDeserializeErrorCarriesPosition(t *testing.T) {
	t.Parallel()

	_, err := deserializeSprite(t, `<IntermediateDocument>
  <Asset Type="stubSprite">
    <Name>hero</Name>
    <Layer>banana</Layer>
  </Asset>
</IntermediateDocument>`)

	var cerr *intermediate.Error
	require.ErrorAs(t, err, &cerr)

	assert.Equal(t, intermediate.KindValueFormat, cerr.Kind)
	assert.Equal(t, 4, cerr.Line)
	assert.Positive(t, cerr.Column)
}

func TestDeserializeDanglingReference(t *testing.T) {
	t.Parallel()

	s, registry, _ := newSerializer(t)
	require.NoError(t, registry.Type(board{}, descriptor.Shared("Left"), descriptor.Shared("Right")))

	const doc = `<IntermediateDocument>
  <Asset Type="board">
    <Left>
      <Name>warm</Name>
    </Left>
    <Right>#7</Right>
  </Asset>
</IntermediateDocument>`

	_, err := intermediate.DeserializeAs[*board](s, strings.NewReader(doc), "")
	assert.ErrorIs(t, err, intermediate.ErrDanglingReference)
}

func TestDeserializeDuplicateMapKey(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	const doc = `<IntermediateDocument>
  <Asset Type="scoreTable">
    <ByName>
      <Item>
        <Key>alpha</Key>
        <Value>1</Value>
      </Item>
      <Item>
        <Key>alpha</Key>
        <Value>2</Value>
      </Item>
    </ByName>
  </Asset>
</IntermediateDocument>`

	_, err := intermediate.DeserializeAs[scoreTable](s, strings.NewReader(doc), "")
	assert.ErrorIs(t, err, intermediate.ErrDuplicateKey)
}

func TestDeserializeMapEntryShape(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	const doc = `<IntermediateDocument>
  <Asset Type="scoreTable">
    <ByName>
      <Item>
        <Value>1</Value>
      </Item>
    </ByName>
  </Asset>
</IntermediateDocument>`

	_, err := intermediate.DeserializeAs[scoreTable](s, strings.NewReader(doc), "")
	assert.ErrorIs(t, err, intermediate.ErrMissingMember)
}

func TestDeserializeMapEntryAttribute(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	// entry elements group a key and a value; they never carry identity
	const doc = `<IntermediateDocument>
  <Asset Type="scoreTable">
    <ByName>
      <Item ID="#1">
        <Key>ada</Key>
        <Value>1</Value>
      </Item>
    </ByName>
  </Asset>
</IntermediateDocument>`

	_, err := intermediate.DeserializeAs[scoreTable](s, strings.NewReader(doc), "")
	assert.ErrorIs(t, err, intermediate.ErrUnexpectedMember)
}

func TestDeserializeItemNames(t *testing.T) {
	t.Parallel()

	s, registry, _ := newSerializer(t)
	require.NoError(t, registry.Type(animation{}, descriptor.ItemName("Frames", "Frame")))

	in := animation{Name: "walk", Frames: []int32{1, 2, 3}}
	assert.Equal(t, in, roundTrip(t, s, in))

	// once an item name is configured, the default element-type name is
	// no longer accepted
	const doc = `<IntermediateDocument>
  <Asset Type="animation">
    <Name>walk</Name>
    <Frames>
      <int32>1</int32>
    </Frames>
  </Asset>
</IntermediateDocument>`

	_, err := intermediate.DeserializeAs[animation](s, strings.NewReader(doc), "")
	assert.ErrorIs(t, err, intermediate.ErrUnexpectedMember)
}

func TestDeserializeArrayLength(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	const doc = `<IntermediateDocument>
  <Asset Type="gridRow">
    <Cells>
      <int32>1</int32>
      <int32>2</int32>
    </Cells>
  </Asset>
</IntermediateDocument>`

	_, err := intermediate.DeserializeAs[gridRow](s, strings.NewReader(doc), "")
	assert.ErrorIs(t, err, intermediate.ErrValueFormat)
}

func TestDeserializeUnknownToken(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	const doc = `<IntermediateDocument>
  <Asset Type="canvas">
    <Title>demo</Title>
    <Shapes>
      <Item Type="hexagon">
        <Side>1</Side>
      </Item>
    </Shapes>
  </Asset>
</IntermediateDocument>`

	_, err := intermediate.DeserializeAs[canvas](s, strings.NewReader(doc), "")
	assert.ErrorIs(t, err, intermediate.ErrTypeResolution)
}

func TestDeserializeMissingTokenOnAbstractMember(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	const doc = `<IntermediateDocument>
  <Asset Type="canvas">
    <Title>demo</Title>
    <Shapes>
      <Item>
        <Side>1</Side>
      </Item>
    </Shapes>
  </Asset>
</IntermediateDocument>`

	_, err := intermediate.DeserializeAs[canvas](s, strings.NewReader(doc), "")
	assert.ErrorIs(t, err, intermediate.ErrTypeResolution)
}

func TestDeserializeDocumentShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "wrong root element",
			doc:  `<Document><Asset Type="stubSprite" /></Document>`,
		},
		{
			name: "no asset element",
			doc:  `<IntermediateDocument></IntermediateDocument>`,
		},
		{
			name: "two asset elements",
			doc: `<IntermediateDocument>
  <Asset Type="stubSprite"><Name>a</Name><Layer>1</Layer></Asset>
  <Asset Type="stubSprite"><Name>b</Name><Layer>2</Layer></Asset>
</IntermediateDocument>`,
		},
		{
			name: "malformed markup",
			doc:  `<IntermediateDocument><Asset Type="stubSprite">`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := deserializeSprite(t, tt.doc)
			assert.ErrorIs(t, err, intermediate.ErrValueFormat)
		})
	}
}

func TestDeserializeRootAttribute(t *testing.T) {
	t.Parallel()

	const doc = `<IntermediateDocument Version="2">
  <Asset Type="stubSprite">
    <Name>hero</Name>
    <Layer>3</Layer>
  </Asset>
</IntermediateDocument>`

	_, err := deserializeSprite(t, doc)
	assert.ErrorIs(t, err, intermediate.ErrUnexpectedMember)
}

func TestDeserializeRedundantTokenAccepted(t *testing.T) {
	t.Parallel()

	s, _, _ := newSerializer(t)

	const redundant = `<IntermediateDocument>
  <Asset Type="stubSprite">
    <Name Type="string">hero</Name>
    <Layer>3</Layer>
  </Asset>
</IntermediateDocument>`

	got, err := intermediate.DeserializeAs[stubSprite](s, strings.NewReader(redundant), "")
	require.NoError(t, err, "a token naming the member's own type is redundant, not an error")
	assert.Equal(t, stubSprite{Name: "hero", Layer: 3}, got)

	const unresolvable = `<IntermediateDocument>
  <Asset Type="stubSprite">
    <Name Type="Mesh">hero</Name>
    <Layer>3</Layer>
  </Asset>
</IntermediateDocument>`

	_, err = intermediate.DeserializeAs[stubSprite](s, strings.NewReader(unresolvable), "")
	assert.ErrorIs(t, err, intermediate.ErrTypeResolution,
		"a token must still resolve even on a concrete member")
}

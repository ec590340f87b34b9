package descriptor_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intermediate-serializer/descriptor"
	"intermediate-serializer/typename"
)

const schemaYAML = `
version: "1"
types:
  - type: Game.Sprite
    members:
      - name: TexturePath
        element: Texture
      - name: Scratch
        excluded: true
      - name: Frames
        item: Frame
        optional: true
`

func TestParseSchema(t *testing.T) {
	t.Parallel()

	sf, err := descriptor.ParseSchema([]byte(schemaYAML))
	require.NoError(t, err)

	assert.Equal(t, "1", sf.Version)
	require.Len(t, sf.Types, 1)
	assert.Equal(t, "Game.Sprite", sf.Types[0].Type)
	require.Len(t, sf.Types[0].Members, 3)
	assert.Equal(t, "Texture", sf.Types[0].Members[0].Element)

	res := sf.Validate()
	assert.True(t, res.IsValid())
}

func TestParseSchemaDefaultsVersion(t *testing.T) {
	t.Parallel()

	sf, err := descriptor.ParseSchema([]byte("types: []"))
	require.NoError(t, err)
	assert.Equal(t, "1", sf.Version)
}

func TestValidateRejectsConflicts(t *testing.T) {
	t.Parallel()

	sf, err := descriptor.ParseSchema([]byte(`
types:
  - type: Game.Sprite
    members:
      - name: A
        optional: true
        required: true
      - name: B
        excluded: true
        element: Other
      - name: B
`))
	require.NoError(t, err)

	res := sf.Validate()
	require.True(t, res.HasErrors())

	var codes []string
	for _, d := range res.Errors {
		codes = append(codes, d.Code)
	}

	assert.Contains(t, codes, "optional_required_conflict")
	assert.Contains(t, codes, "excluded_conflict")
	assert.Contains(t, codes, "duplicate_member")
}

func TestApplySchema(t *testing.T) {
	t.Parallel()

	reg := descriptor.NewRegistry()
	types := typename.NewResolver("Game")
	require.NoError(t, types.Register("Game", "Sprite", reflect.TypeFor[sprite]()))

	sf, err := descriptor.ParseSchema([]byte(schemaYAML))
	require.NoError(t, err)

	res := reg.ApplySchema(sf, types)
	require.True(t, res.IsValid(), res.Error())

	d, err := reg.Lookup(reflect.TypeFor[sprite]())
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Texture", "Frames"}, memberNames(d))

	frames, ok := d.MemberByName("Frames")
	require.True(t, ok)
	assert.Equal(t, "Frame", frames.ItemName)
	assert.True(t, frames.Optional)
}

func TestApplySchemaUnknownToken(t *testing.T) {
	t.Parallel()

	reg := descriptor.NewRegistry()
	types := typename.NewResolver()

	sf, err := descriptor.ParseSchema([]byte(schemaYAML))
	require.NoError(t, err)

	res := reg.ApplySchema(sf, types)
	require.True(t, res.HasErrors())
	assert.Equal(t, "type_not_found", res.Errors[0].Code)
}

func TestApplySchemaUnknownField(t *testing.T) {
	t.Parallel()

	reg := descriptor.NewRegistry()
	types := typename.NewResolver()
	require.NoError(t, types.Register("Game", "Sprite", reflect.TypeFor[sprite]()))

	sf, err := descriptor.ParseSchema([]byte(`
types:
  - type: Game.Sprite
    members:
      - name: DoesNotExist
        optional: true
`))
	require.NoError(t, err)

	res := reg.ApplySchema(sf, types)
	require.True(t, res.HasErrors())
	assert.Equal(t, "apply_failed", res.Errors[0].Code)
}

func TestApplySchemaKeepsWarnings(t *testing.T) {
	t.Parallel()

	reg := descriptor.NewRegistry()
	types := typename.NewResolver()
	require.NoError(t, types.Register("Game", "Sprite", reflect.TypeFor[sprite]()))

	sf, err := descriptor.ParseSchema([]byte(`
types:
  - type: Game.Sprite
`))
	require.NoError(t, err)

	res := reg.ApplySchema(sf, types)
	require.True(t, res.IsValid(), res.Error())
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "empty_type_entry", res.Warnings[0].Code)
}

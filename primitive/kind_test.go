package primitive_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intermediate-serializer/primitive"
)

func TestKindClassification(t *testing.T) {
	t.Parallel()

	for k := primitive.KindEnum(1); int(k) < primitive.KindTotal; k++ {
		name := k.String()
		assert.False(t, strings.HasPrefix(name, "KindEnum("), "kind %d has no name", k)

		// chars parse as characters even though they store signed; the
		// numeric predicates exclude them
		integer := (k.IsSigned() || k.IsUnsigned()) && k != primitive.KindChar
		assert.Equal(t, integer, k.IsInteger(), name)
		assert.Equal(t, k.IsInteger() || k.IsFloat(), k.IsNumber(), name)
	}
}

func TestParseTrimsNumericText(t *testing.T) {
	t.Parallel()

	v, err := primitive.Parse(primitive.KindInt32, reflect.TypeFor[int32](), "  42\n")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int())

	// char content is significant byte for byte, a padded char is not one rune
	_, err = primitive.Parse(primitive.KindChar, reflect.TypeFor[int32](), " x ")
	assert.Error(t, err)
}

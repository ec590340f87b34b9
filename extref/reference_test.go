package extref_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"intermediate-serializer/extref"
)

func TestResolveRelative(t *testing.T) {
	t.Parallel()

	ref := extref.Resolve(filepath.Join("content", "levels", "level1.xml"), "../textures/rock.xml")
	assert.Equal(t, filepath.Join("content", "textures", "rock.xml"), ref.Path)
}

func TestResolveAbsolute(t *testing.T) {
	t.Parallel()

	abs, err := filepath.Abs(filepath.Join("content", "sky.xml"))
	assert.NoError(t, err)

	ref := extref.Resolve(filepath.Join("content", "levels", "level1.xml"), abs)
	assert.Equal(t, abs, ref.Path)
}

func TestResolveEmpty(t *testing.T) {
	t.Parallel()

	ref := extref.Resolve("anywhere.xml", "")
	assert.True(t, ref.IsZero())
}

func TestRelativeRoundTrip(t *testing.T) {
	t.Parallel()

	doc := filepath.Join("content", "levels", "level1.xml")
	ref := extref.Resolve(doc, "../textures/rock.xml")

	text := extref.Relative(doc, ref)
	assert.Equal(t, "../textures/rock.xml", text)

	assert.Equal(t, ref, extref.Resolve(doc, filepath.FromSlash(text)))
}

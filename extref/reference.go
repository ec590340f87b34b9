// Package extref provides path-only handles to other assets. A reference
// records where an asset lives; its content is never loaded here.
package extref

import "path/filepath"

// Reference is an opaque handle to another asset, carrying only the resolved
// path.
type Reference struct {
	Path string
}

// IsZero reports whether the reference points nowhere.
func (r Reference) IsZero() bool {
	return r.Path == ""
}

// Resolve builds a reference from raw document text. Relative paths are
// resolved against the directory of the containing document; absolute paths
// are kept as written, cleaned.
func Resolve(documentLocation, raw string) Reference {
	if raw == "" {
		return Reference{}
	}

	if filepath.IsAbs(raw) {
		return Reference{Path: filepath.Clean(raw)}
	}

	return Reference{Path: filepath.Join(filepath.Dir(documentLocation), raw)}
}

// Relative renders the reference as document text relative to the given
// document location, falling back to the absolute path when no relative form
// exists.
func Relative(documentLocation string, r Reference) string {
	if r.IsZero() {
		return ""
	}

	rel, err := filepath.Rel(filepath.Dir(documentLocation), r.Path)
	if err != nil {
		return r.Path
	}

	return filepath.ToSlash(rel)
}

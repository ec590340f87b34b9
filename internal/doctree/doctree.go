// Package doctree parses a document stream into a tree of named elements
// with attributes, text content and source positions. It is the
// format-facing edge of the serializer; everything above it works on
// elements, not on markup.
package doctree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

var ErrMalformed = errors.New("malformed document")

// Element is one named node of the document tree.
type Element struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*Element

	Line, Column int
}

// Attr reports the value of a named attribute.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// Parse reads a single-rooted element tree from r.
func Parse(r io.Reader) (*Element, error) {
	lines := &lineIndex{}
	dec := xml.NewDecoder(io.TeeReader(r, lines))

	var (
		root  *Element
		stack []*Element
		texts []*strings.Builder
	)

	for {
		start := dec.InputOffset()

		tok, err := dec.Token()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line, col := lines.position(start)
			el := &Element{
				Name:   t.Name.Local,
				Attrs:  make(map[string]string, len(t.Attr)),
				Line:   line,
				Column: col,
			}

			for _, a := range t.Attr {
				el.Attrs[a.Name.Local] = a.Value
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple root elements", ErrMalformed)
				}

				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}

			stack = append(stack, el)
			texts = append(texts, &strings.Builder{})

		case xml.EndElement:
			el := stack[len(stack)-1]
			raw := texts[len(texts)-1].String()
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]

			if len(el.Children) == 0 {
				// keep raw text: a single space is a legal character value
				el.Text = raw
			} else if trimmed := strings.TrimSpace(raw); trimmed != "" {
				el.Text = trimmed
			}

		case xml.CharData:
			if len(texts) > 0 {
				texts[len(texts)-1].Write(t)
			}

			// comments, directives and processing instructions are ignored
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}

	return root, nil
}

// lineIndex records newline offsets of everything the decoder has read so a
// byte offset can be mapped back to a line and column.
type lineIndex struct {
	offset   int64
	newlines []int64
}

func (l *lineIndex) Write(p []byte) (int, error) {
	for i, b := range p {
		if b == '\n' {
			l.newlines = append(l.newlines, l.offset+int64(i))
		}
	}

	l.offset += int64(len(p))

	return len(p), nil
}

func (l *lineIndex) position(offset int64) (line, col int) {
	n := sort.Search(len(l.newlines), func(i int) bool {
		return l.newlines[i] >= offset
	})

	line = n + 1

	start := int64(-1)
	if n > 0 {
		start = l.newlines[n-1]
	}

	return line, int(offset - start)
}

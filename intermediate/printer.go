package intermediate

import (
	"bufio"
	"encoding/xml"
	"io"
)

// attr is one ordered element attribute; a map would scramble the
// Type-before-ID convention.
type attr struct {
	name, value string
}

// printer renders elements as indented markup. The standard encoder is
// bypassed on purpose: indentation must never leak whitespace into leaf
// text, because a char-valued leaf may legitimately hold a bare space.
type printer struct {
	w     *bufio.Writer
	depth int
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: bufio.NewWriter(w)}
}

func (p *printer) open(name string, attrs []attr) {
	p.indent()
	p.tag(name, attrs)
	p.w.WriteString(">\n")
	p.depth++
}

func (p *printer) close(name string) {
	p.depth--
	p.indent()
	p.w.WriteString("</")
	p.w.WriteString(name)
	p.w.WriteString(">\n")
}

func (p *printer) leaf(name, text string, attrs []attr) {
	p.indent()
	p.tag(name, attrs)
	p.w.WriteByte('>')
	_ = xml.EscapeText(p.w, []byte(text))
	p.w.WriteString("</")
	p.w.WriteString(name)
	p.w.WriteString(">\n")
}

func (p *printer) empty(name string, attrs []attr) {
	p.indent()
	p.tag(name, attrs)
	p.w.WriteString(" />\n")
}

func (p *printer) tag(name string, attrs []attr) {
	p.w.WriteByte('<')
	p.w.WriteString(name)

	for _, a := range attrs {
		p.w.WriteByte(' ')
		p.w.WriteString(a.name)
		p.w.WriteString(`="`)
		_ = xml.EscapeText(p.w, []byte(a.value))
		p.w.WriteByte('"')
	}
}

func (p *printer) indent() {
	for i := 0; i < p.depth; i++ {
		p.w.WriteString("  ")
	}
}

func (p *printer) flush() error {
	return p.w.Flush()
}

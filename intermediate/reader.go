package intermediate

import (
	"encoding"
	"reflect"
	"strings"

	"intermediate-serializer/descriptor"
	"intermediate-serializer/extref"
	"intermediate-serializer/identity"
	"intermediate-serializer/internal/doctree"
	"intermediate-serializer/primitive"
)

var (
	extrefType          = reflect.TypeFor[extref.Reference]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
)

// memberCtx carries the member-level flags that shape how an element's
// content is interpreted.
type memberCtx struct {
	char      bool
	allowNull bool
	itemName  string
}

// reader holds the state of one deserialize call.
type reader struct {
	s        *Serializer
	location string
	refs     *identity.Table
	deferred []*Error
}

// readInto interprets el as a value of target's type and stores the result.
// target must be settable.
func (d *reader) readInto(el *doctree.Element, target reflect.Value, ctx memberCtx) error {
	if err := d.checkAttrs(el); err != nil {
		return err
	}

	if isNullMarker(el) {
		if !ctx.allowNull {
			return newError(el, KindValueFormat, "member %q does not allow null", el.Name)
		}

		target.SetZero()

		return nil
	}

	switch target.Type().Kind() {
	case reflect.Pointer:
		return d.readPointer(el, target, ctx)
	case reflect.Interface:
		return d.readInterface(el, target, ctx)
	}

	// a redundant token naming the static type is accepted silently;
	// anything else must still resolve and be compatible
	if tok, ok := el.Attr(typeAttr); ok {
		if _, err := d.s.types.Resolve(tok, target.Type()); err != nil {
			return wrapError(el, KindTypeResolution, err)
		}
	}

	if _, ok := el.Attr(idAttr); ok {
		return newError(el, KindValueFormat, "identity requires a reference-typed member")
	}

	return d.populateValue(el, target, ctx)
}

func (d *reader) readPointer(el *doctree.Element, target reflect.Value, ctx memberCtx) error {
	static := target.Type()
	elem := static.Elem()

	if elem.Kind() == reflect.Pointer {
		return newError(el, KindTypeResolution, "type %s cannot be represented in a document", static)
	}

	// converters may be registered for the pointer form itself
	if conv, ok := d.s.registry.ConverterFor(static); ok {
		if len(el.Children) > 0 {
			return newError(el.Children[0], KindUnexpectedMember, "unexpected element %q in leaf value", el.Children[0].Name)
		}

		if el.Text == "" {
			target.SetZero()
			return nil
		}

		out, err := conv.Parse(el.Text)
		if err != nil {
			return wrapError(el, KindValueFormat, err)
		}

		if id, ok := el.Attr(idAttr); ok {
			if err := d.refs.Define(id, out); err != nil {
				return wrapError(el, KindValueFormat, err)
			}
		}

		target.Set(out)

		return nil
	}

	if tok, ok := el.Attr(typeAttr); ok {
		if _, err := d.s.types.Resolve(tok, elem); err != nil {
			return wrapError(el, KindTypeResolution, err)
		}
	}

	// an entirely empty element for a nullable leaf means "no value";
	// strings are exempt because empty text is a legitimate string value
	if len(el.Children) == 0 && el.Text == "" && len(el.Attrs) == 0 &&
		d.isLeafType(elem) && primitive.FromReflectType(elem) != primitive.KindString {
		target.SetZero()
		return nil
	}

	pv := reflect.New(elem)

	// register the object before populating members; this is what lets a
	// cycle refer back to a node that is still being defined
	if id, ok := el.Attr(idAttr); ok {
		if err := d.refs.Define(id, pv); err != nil {
			return wrapError(el, KindValueFormat, err)
		}
	}

	ictx := ctx
	ictx.allowNull = false

	if err := d.populateValue(el, pv.Elem(), ictx); err != nil {
		return err
	}

	target.Set(pv)

	return nil
}

func (d *reader) readInterface(el *doctree.Element, target reflect.Value, ctx memberCtx) error {
	static := target.Type()

	tok, hasTok := el.Attr(typeAttr)
	if !hasTok {
		return newError(el, KindTypeResolution, "abstract member %q requires a type token", el.Name)
	}

	concrete, err := d.s.types.Resolve(tok, static)
	if err != nil {
		return wrapError(el, KindTypeResolution, err)
	}

	pv := reflect.New(concrete)

	id, hasID := el.Attr(idAttr)
	if hasID {
		// identity rides on the pointer form
		if err := d.refs.Define(id, pv); err != nil {
			return wrapError(el, KindValueFormat, err)
		}
	}

	ictx := ctx
	ictx.allowNull = false

	if err := d.populateValue(el, pv.Elem(), ictx); err != nil {
		return err
	}

	if !hasID && concrete.Implements(static) {
		target.Set(pv.Elem())
	} else {
		target.Set(pv)
	}

	return nil
}

// populateValue fills an addressable, non-pointer, non-interface value from
// el's content.
func (d *reader) populateValue(el *doctree.Element, v reflect.Value, ctx memberCtx) error {
	t := v.Type()

	if t == extrefType {
		if len(el.Children) > 0 {
			return newError(el.Children[0], KindUnexpectedMember, "unexpected element %q in external reference", el.Children[0].Name)
		}

		v.Set(reflect.ValueOf(extref.Resolve(d.location, strings.TrimSpace(el.Text))))

		return nil
	}

	if conv, ok := d.s.registry.ConverterFor(t); ok {
		if len(el.Children) > 0 {
			return newError(el.Children[0], KindUnexpectedMember, "unexpected element %q in leaf value", el.Children[0].Name)
		}

		out, err := conv.Parse(el.Text)
		if err != nil {
			return wrapError(el, KindValueFormat, err)
		}

		v.Set(out)

		return nil
	}

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		if len(el.Children) > 0 {
			return newError(el.Children[0], KindUnexpectedMember, "unexpected element %q in leaf value", el.Children[0].Name)
		}

		if err := v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(el.Text)); err != nil {
			return wrapError(el, KindValueFormat, err)
		}

		return nil
	}

	if table, ok := d.s.registry.EnumFor(t); ok {
		text := strings.TrimSpace(el.Text)

		val, ok := table.Parse(text)
		if !ok {
			return newError(el, KindValueFormat, "%q is not a member of %s", text, t)
		}

		if primitive.FromReflectType(t).IsUnsigned() {
			v.SetUint(uint64(val))
		} else {
			v.SetInt(val)
		}

		return nil
	}

	kind := primitive.FromReflectType(t)
	if ctx.char {
		kind = primitive.KindChar
	}

	if kind != 0 {
		if len(el.Children) > 0 {
			return newError(el.Children[0], KindUnexpectedMember, "unexpected element %q in leaf value", el.Children[0].Name)
		}

		out, err := primitive.Parse(kind, t, el.Text)
		if err != nil {
			return wrapError(el, KindValueFormat, err)
		}

		v.Set(out)

		return nil
	}

	switch t.Kind() {
	case reflect.Struct:
		return d.populateStruct(el, v)
	case reflect.Slice, reflect.Array:
		return d.readSequence(el, v, ctx)
	case reflect.Map:
		return d.readMap(el, v)
	default:
		return newError(el, KindTypeResolution, "type %s cannot be represented in a document", t)
	}
}

func (d *reader) populateStruct(el *doctree.Element, sv reflect.Value) error {
	desc, err := d.s.registry.Lookup(sv.Type())
	if err != nil {
		return wrapError(el, KindTypeResolution, err)
	}

	used := make([]bool, len(el.Children))

	if err := d.populateMembers(el, el.Children, used, desc, sv); err != nil {
		return err
	}

	// strict schema: leftovers are errors, never skipped
	for i, ch := range el.Children {
		if used[i] {
			continue
		}

		if _, excluded := desc.ExcludedField(ch.Name); excluded {
			return newError(ch, KindUnexpectedMember, "member %q of %s is excluded", ch.Name, sv.Type())
		}

		return newError(ch, KindUnexpectedMember, "type %s has no member %q", sv.Type(), ch.Name)
	}

	return nil
}

func (d *reader) populateMembers(parent *doctree.Element, children []*doctree.Element, used []bool, desc *descriptor.TypeDescriptor, sv reflect.Value) error {
	for i := range desc.Members {
		m := &desc.Members[i]
		fv := descriptor.FieldValue(sv, m)

		if m.Flatten {
			if err := d.readFlattened(parent, children, used, m, fv); err != nil {
				return err
			}

			continue
		}

		idx := -1

		for j, ch := range children {
			if used[j] || ch.Name != m.Name {
				continue
			}

			if idx >= 0 {
				return newError(ch, KindUnexpectedMember, "duplicate element %q", m.Name)
			}

			idx = j
		}

		if idx < 0 {
			if m.Optional {
				continue
			}

			return newError(parent, KindMissingMember, "required member %q of %s is absent", m.Name, sv.Type())
		}

		used[idx] = true

		if err := d.readMember(children[idx], m, fv); err != nil {
			return err
		}
	}

	return nil
}

// readFlattened consumes a flattened member's children directly from the
// parent's child list.
func (d *reader) readFlattened(parent *doctree.Element, children []*doctree.Element, used []bool, m *descriptor.Member, fv reflect.Value) error {
	inner := fv

	if m.Type.Kind() == reflect.Pointer {
		inner = reflect.New(m.Type.Elem()).Elem()
	}

	if inner.Kind() != reflect.Struct {
		return newError(parent, KindValueFormat, "flattened member %q must be object-shaped", m.Name)
	}

	desc, err := d.s.registry.Lookup(inner.Type())
	if err != nil {
		return wrapError(parent, KindTypeResolution, err)
	}

	if err := d.populateMembers(parent, children, used, desc, inner); err != nil {
		return err
	}

	if m.Type.Kind() == reflect.Pointer {
		fv.Set(inner.Addr())
	}

	return nil
}

func (d *reader) readMember(el *doctree.Element, m *descriptor.Member, fv reflect.Value) error {
	if m.Shared && isReferenceElement(el) {
		id := strings.TrimSpace(el.Text)
		ft := fv.Type()
		pos := el
		name := m.Name

		d.refs.Resolve(id, func(v reflect.Value) {
			if !v.Type().AssignableTo(ft) {
				d.deferred = append(d.deferred, newError(pos, KindTypeResolution,
					"shared object %q is %s, member %q expects %s", id, v.Type(), name, ft))
				return
			}

			fv.Set(v)
		})

		return nil
	}

	ctx := memberCtx{char: m.Char, allowNull: m.AllowNull, itemName: m.ItemName}

	return d.readInto(el, fv, ctx)
}

func (d *reader) readSequence(el *doctree.Element, target reflect.Value, ctx memberCtx) error {
	t := target.Type()
	elem := t.Elem()

	itemName := ctx.itemName
	if itemName == "" {
		itemName = descriptor.DefaultItemName(elem)
	}

	if len(el.Children) == 0 && strings.TrimSpace(el.Text) != "" {
		return newError(el, KindValueFormat, "collection %q carries text content", el.Name)
	}

	for _, ch := range el.Children {
		if ch.Name != itemName {
			return newError(ch, KindUnexpectedMember, "collection %q expects %q items, found %q", el.Name, itemName, ch.Name)
		}
	}

	n := len(el.Children)

	switch t.Kind() {
	case reflect.Slice:
		target.Set(reflect.MakeSlice(t, n, n))
	case reflect.Array:
		if n != t.Len() {
			return newError(el, KindValueFormat, "array %q holds %d items, document has %d", el.Name, t.Len(), n)
		}
	}

	ictx := memberCtx{allowNull: isNullable(elem)}

	for i, ch := range el.Children {
		if err := d.readInto(ch, target.Index(i), ictx); err != nil {
			return err
		}
	}

	return nil
}

func (d *reader) readMap(el *doctree.Element, target reflect.Value) error {
	t := target.Type()
	target.Set(reflect.MakeMapWithSize(t, len(el.Children)))

	for _, entry := range el.Children {
		if entry.Name != entryElementName {
			return newError(entry, KindUnexpectedMember, "map %q expects %q entries, found %q", el.Name, entryElementName, entry.Name)
		}

		for name := range entry.Attrs {
			return newError(entry, KindUnexpectedMember, "unknown attribute %q on element %q", name, entry.Name)
		}

		var keyEl, valEl *doctree.Element

		for _, ch := range entry.Children {
			switch {
			case ch.Name == keyElementName && keyEl == nil:
				keyEl = ch
			case ch.Name == valueElementName && valEl == nil:
				valEl = ch
			default:
				return newError(ch, KindUnexpectedMember, "unexpected element %q in map entry", ch.Name)
			}
		}

		if keyEl == nil || valEl == nil {
			return newError(entry, KindMissingMember, "map entry requires %s and %s", keyElementName, valueElementName)
		}

		key := reflect.New(t.Key()).Elem()
		if err := d.readInto(keyEl, key, memberCtx{}); err != nil {
			return err
		}

		if target.MapIndex(key).IsValid() {
			return newError(entry, KindDuplicateKey, "duplicate key %q in map %q", strings.TrimSpace(keyEl.Text), el.Name)
		}

		val := reflect.New(t.Elem()).Elem()
		if err := d.readInto(valEl, val, memberCtx{allowNull: isNullable(t.Elem())}); err != nil {
			return err
		}

		target.SetMapIndex(key, val)
	}

	return nil
}

func (d *reader) checkAttrs(el *doctree.Element) error {
	for name, value := range el.Attrs {
		switch name {
		case typeAttr, idAttr:
		case nullAttr:
			if value != "true" {
				return newError(el, KindValueFormat, "attribute %s must be %q", nullAttr, "true")
			}
		default:
			return newError(el, KindUnexpectedMember, "unknown attribute %q on element %q", name, el.Name)
		}
	}

	return nil
}

// isLeafType reports whether t is represented as element text, which makes
// an entirely empty element mean "no value" for a nullable member.
func (d *reader) isLeafType(t reflect.Type) bool {
	if t == extrefType {
		return true
	}

	if _, ok := d.s.registry.ConverterFor(t); ok {
		return true
	}

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}

	if _, ok := d.s.registry.EnumFor(t); ok {
		return true
	}

	return primitive.FromReflectType(t) != 0
}

func isNullMarker(el *doctree.Element) bool {
	return el.Attrs[nullAttr] == "true"
}

// isReferenceElement recognizes the reference form of a shared member: no
// attributes, no children, text naming an identifier.
func isReferenceElement(el *doctree.Element) bool {
	return len(el.Children) == 0 && len(el.Attrs) == 0 &&
		strings.HasPrefix(strings.TrimSpace(el.Text), refPrefix)
}

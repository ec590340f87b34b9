package intermediate

import (
	"encoding"
	"reflect"
	"sort"

	"intermediate-serializer/descriptor"
	"intermediate-serializer/extref"
	"intermediate-serializer/identity"
	"intermediate-serializer/primitive"
)

// writer holds the state of one serialize call.
type writer struct {
	s        *Serializer
	location string
	assigner *identity.Assigner
	onstack  map[any]bool
	p        *printer
}

// note is the pre-pass over the object graph. Every reference object is
// counted once per path reaching it, so the write pass knows up front which
// defining elements need identifiers.
func (w *writer) note(v reflect.Value) error {
	if !v.IsValid() || isNilValue(v) {
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer:
		if w.assigner.Note(v.Interface()) {
			return nil
		}

		// pointer-level converters make the pointer itself a leaf
		if _, ok := w.s.registry.ConverterFor(v.Type()); ok {
			return nil
		}

		return w.note(v.Elem())

	case reflect.Interface:
		return w.note(v.Elem())

	case reflect.Struct:
		t := v.Type()
		if w.isLeaf(t) {
			return nil
		}

		desc, err := w.s.registry.Lookup(t)
		if err != nil {
			return wrapError(nil, KindTypeResolution, err)
		}

		sv := addressable(v)

		for i := range desc.Members {
			if err := w.note(descriptor.FieldValue(sv, &desc.Members[i])); err != nil {
				return err
			}
		}

		return nil

	case reflect.Slice, reflect.Array:
		if w.isLeaf(v.Type()) {
			return nil
		}

		for i := 0; i < v.Len(); i++ {
			if err := w.note(v.Index(i)); err != nil {
				return err
			}
		}

		return nil

	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := w.note(iter.Value()); err != nil {
				return err
			}
		}

		return nil
	}

	return nil
}

// writeRoot renders the asset element. The root always carries a type token
// so a document is self-describing even without a statically typed reader.
func (w *writer) writeRoot(v reflect.Value) error {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}

	base := v.Type()
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	token := base.Name()
	if id, ok := w.s.types.IDOf(base); ok {
		token = id.Qualified()
	}

	var attrs []attr
	if token != "" {
		attrs = append(attrs, attr{typeAttr, token})
	}

	return w.writeValue(assetElementName, v, memberCtx{}, attrs)
}

// writeValue renders one element for v. attrs carries attributes decided by
// the caller (the root token); type tokens and identifiers are appended here.
func (w *writer) writeValue(name string, v reflect.Value, ctx memberCtx, attrs []attr) error {
	t := v.Type()

	switch t.Kind() {
	case reflect.Interface:
		concrete := v.Elem()

		token, present, err := w.s.types.Token(concrete.Type(), t)
		if err != nil {
			return wrapError(nil, KindTypeResolution, err)
		}

		if present {
			attrs = append(attrs, attr{typeAttr, token})
		}

		return w.writeValue(name, concrete, ctx, attrs)

	case reflect.Pointer:
		key := v.Interface()

		if conv, ok := w.s.registry.ConverterFor(t); ok {
			text, err := conv.Format(v)
			if err != nil {
				return wrapError(nil, KindValueFormat, err)
			}

			// a converter leaf can still define an identifier, so a
			// shared second occurrence has a target to refer back to
			if w.assigner.NeedsID(key) && !w.assigner.Defined(key) {
				attrs = append(attrs, attr{idAttr, w.assigner.ID(key)})
			}

			w.assigner.MarkDefined(key)
			w.p.leaf(name, text, attrs)

			return nil
		}

		if w.onstack[key] {
			return newError(nil, KindValueFormat, "cycle through non-shared members of %s", t.Elem())
		}

		if w.assigner.NeedsID(key) && !w.assigner.Defined(key) {
			attrs = append(attrs, attr{idAttr, w.assigner.ID(key)})
		}

		// mark before descending so a shared cycle back to this object
		// renders as a reference instead of recursing forever
		w.assigner.MarkDefined(key)
		w.onstack[key] = true

		err := w.writeBody(name, v.Elem(), ctx, attrs)

		delete(w.onstack, key)

		return err
	}

	return w.writeBody(name, addressable(v), ctx, attrs)
}

// writeBody renders the content of a non-pointer, non-interface value.
func (w *writer) writeBody(name string, v reflect.Value, ctx memberCtx, attrs []attr) error {
	t := v.Type()

	if t == extrefType {
		ref := v.Interface().(extref.Reference)
		w.p.leaf(name, extref.Relative(w.location, ref), attrs)

		return nil
	}

	if conv, ok := w.s.registry.ConverterFor(t); ok {
		text, err := conv.Format(v)
		if err != nil {
			return wrapError(nil, KindValueFormat, err)
		}

		w.p.leaf(name, text, attrs)

		return nil
	}

	if m, ok := textMarshaler(v); ok {
		text, err := m.MarshalText()
		if err != nil {
			return wrapError(nil, KindValueFormat, err)
		}

		w.p.leaf(name, string(text), attrs)

		return nil
	}

	if table, ok := w.s.registry.EnumFor(t); ok {
		var raw int64
		if primitive.FromReflectType(t).IsUnsigned() {
			raw = int64(v.Uint())
		} else {
			raw = v.Int()
		}

		member, ok := table.Format(raw)
		if !ok {
			return newError(nil, KindValueFormat, "value %d of %s has no member name", raw, t)
		}

		w.p.leaf(name, member, attrs)

		return nil
	}

	kind := primitive.FromReflectType(t)
	if ctx.char {
		kind = primitive.KindChar
	}

	if kind != 0 {
		text, err := primitive.Format(kind, v)
		if err != nil {
			return wrapError(nil, KindValueFormat, err)
		}

		w.p.leaf(name, text, attrs)

		return nil
	}

	switch t.Kind() {
	case reflect.Struct:
		return w.writeStruct(name, v, attrs)
	case reflect.Slice, reflect.Array:
		return w.writeSequence(name, v, ctx, attrs)
	case reflect.Map:
		return w.writeMap(name, v, attrs)
	default:
		return newError(nil, KindTypeResolution, "type %s cannot be represented in a document", t)
	}
}

func (w *writer) writeStruct(name string, v reflect.Value, attrs []attr) error {
	desc, err := w.s.registry.Lookup(v.Type())
	if err != nil {
		return wrapError(nil, KindTypeResolution, err)
	}

	w.p.open(name, attrs)

	if err := w.writeMembers(desc, v); err != nil {
		return err
	}

	w.p.close(name)

	return nil
}

func (w *writer) writeMembers(desc *descriptor.TypeDescriptor, v reflect.Value) error {
	for i := range desc.Members {
		m := &desc.Members[i]
		if err := w.writeMember(m, descriptor.FieldValue(v, m)); err != nil {
			return err
		}
	}

	return nil
}

func (w *writer) writeMember(m *descriptor.Member, fv reflect.Value) error {
	if m.Flatten {
		return w.writeFlattened(m, fv)
	}

	if isNilValue(fv) {
		switch {
		case m.Optional:
			return nil
		case m.AllowNull:
			w.p.empty(m.Name, []attr{{nullAttr, "true"}})
			return nil
		default:
			return newError(nil, KindValueFormat, "member %q is nil and neither optional nor nullable", m.Name)
		}
	}

	ctx := memberCtx{char: m.Char, itemName: m.ItemName}

	if m.Shared {
		return w.writeShared(m.Name, fv, ctx)
	}

	return w.writeValue(m.Name, fv, ctx, nil)
}

// writeShared renders a reference leaf when the target object's defining
// element has already been written, an inline definition otherwise.
func (w *writer) writeShared(name string, v reflect.Value, ctx memberCtx) error {
	if key, ok := referenceKey(v); ok && w.assigner.Defined(key) {
		w.p.leaf(name, w.assigner.ID(key), nil)
		return nil
	}

	return w.writeValue(name, v, ctx, nil)
}

func (w *writer) writeFlattened(m *descriptor.Member, fv reflect.Value) error {
	inner := fv

	if inner.Kind() == reflect.Pointer {
		if inner.IsNil() {
			return newError(nil, KindValueFormat, "flattened member %q is nil", m.Name)
		}

		inner = inner.Elem()
	}

	if inner.Kind() != reflect.Struct {
		return newError(nil, KindValueFormat, "flattened member %q must be object-shaped", m.Name)
	}

	desc, err := w.s.registry.Lookup(inner.Type())
	if err != nil {
		return wrapError(nil, KindTypeResolution, err)
	}

	return w.writeMembers(desc, inner)
}

func (w *writer) writeSequence(name string, v reflect.Value, ctx memberCtx, attrs []attr) error {
	itemName := ctx.itemName
	if itemName == "" {
		itemName = descriptor.DefaultItemName(v.Type().Elem())
	}

	w.p.open(name, attrs)

	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)

		if isNilValue(item) {
			w.p.empty(itemName, []attr{{nullAttr, "true"}})
			continue
		}

		if err := w.writeValue(itemName, item, memberCtx{}, nil); err != nil {
			return err
		}
	}

	w.p.close(name)

	return nil
}

// writeMap renders entries sorted by formatted key text, so equal maps
// always produce equal documents.
func (w *writer) writeMap(name string, v reflect.Value, attrs []attr) error {
	keys := v.MapKeys()

	type entry struct {
		text string
		key  reflect.Value
	}

	entries := make([]entry, len(keys))

	for i, k := range keys {
		text, err := w.keyText(addressable(k))
		if err != nil {
			return err
		}

		entries[i] = entry{text: text, key: k}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].text < entries[j].text })

	w.p.open(name, attrs)

	for _, e := range entries {
		w.p.open(entryElementName, nil)
		w.p.leaf(keyElementName, e.text, nil)

		val := v.MapIndex(e.key)

		if isNilValue(val) {
			w.p.empty(valueElementName, []attr{{nullAttr, "true"}})
		} else if err := w.writeValue(valueElementName, addressable(val), memberCtx{}, nil); err != nil {
			return err
		}

		w.p.close(entryElementName)
	}

	w.p.close(name)

	return nil
}

// keyText renders a map key through the leaf strategies; keys must be leaf
// values, they have no structural form inside a Key element.
func (w *writer) keyText(v reflect.Value) (string, error) {
	t := v.Type()

	if conv, ok := w.s.registry.ConverterFor(t); ok {
		return conv.Format(v)
	}

	if m, ok := textMarshaler(v); ok {
		b, err := m.MarshalText()
		return string(b), err
	}

	if table, ok := w.s.registry.EnumFor(t); ok {
		var raw int64
		if primitive.FromReflectType(t).IsUnsigned() {
			raw = int64(v.Uint())
		} else {
			raw = v.Int()
		}

		member, ok := table.Format(raw)
		if !ok {
			return "", newError(nil, KindValueFormat, "value %d of %s has no member name", raw, t)
		}

		return member, nil
	}

	if kind := primitive.FromReflectType(t); kind != 0 {
		return primitive.Format(kind, v)
	}

	return "", newError(nil, KindValueFormat, "map key type %s is not a leaf value", t)
}

// isLeaf reports whether t renders as element text.
func (w *writer) isLeaf(t reflect.Type) bool {
	if t == extrefType {
		return true
	}

	if _, ok := w.s.registry.ConverterFor(t); ok {
		return true
	}

	if t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType) {
		return true
	}

	if _, ok := w.s.registry.EnumFor(t); ok {
		return true
	}

	return primitive.FromReflectType(t) != 0
}

// textMarshaler finds a TextMarshaler implementation on v or its address.
func textMarshaler(v reflect.Value) (encoding.TextMarshaler, bool) {
	if v.Type().Implements(textMarshalerType) {
		return v.Interface().(encoding.TextMarshaler), true
	}

	if v.CanAddr() && reflect.PointerTo(v.Type()).Implements(textMarshalerType) {
		return v.Addr().Interface().(encoding.TextMarshaler), true
	}

	return nil, false
}

// referenceKey extracts the comparable identity key of a reference value.
func referenceKey(v reflect.Value) (any, bool) {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}

	if v.Kind() == reflect.Pointer && !v.IsNil() {
		return v.Interface(), true
	}

	return nil, false
}

// addressable returns v itself when addressable, or an addressable copy.
// Member access needs an address for unexported fields.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}

	c := reflect.New(v.Type()).Elem()
	c.Set(v)

	return c
}

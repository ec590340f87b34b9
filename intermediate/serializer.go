// Package intermediate is the document engine: a bidirectional mapping
// between intermediate documents and runtime object graphs, driven by
// descriptor metadata rather than hand-written parsers.
//
// The engine walks the document tree (read direction) or the object graph
// (write direction), consulting the descriptor registry for the member
// model, the typename resolver for polymorphic type tokens, and the
// identity table for shared and cyclic references.
package intermediate

import (
	"io"
	"reflect"

	"intermediate-serializer/descriptor"
	"intermediate-serializer/identity"
	"intermediate-serializer/internal/doctree"
	"intermediate-serializer/typename"
)

// Document vocabulary. The root wrapper holds a single asset element; every
// element may carry a type token, a shared identifier and a null marker.
const (
	rootElementName  = "IntermediateDocument"
	assetElementName = "Asset"

	typeAttr = "Type"
	idAttr   = "ID"
	nullAttr = "Null"

	entryElementName = "Item"
	keyElementName   = "Key"
	valueElementName = "Value"

	refPrefix = "#"
)

// Serializer binds a descriptor registry and a type resolver into a
// document engine. It is stateless across calls and safe for concurrent
// use; all per-document state lives on the call stack.
type Serializer struct {
	registry *descriptor.Registry
	types    *typename.Resolver
}

// New creates a serializer over the given registry and type resolver.
func New(registry *descriptor.Registry, types *typename.Resolver) *Serializer {
	return &Serializer{registry: registry, types: types}
}

// Deserialize reads one document into an object graph of rootType.
// location is the document's own path, used to resolve external references;
// it may be empty when the document has none.
//
// The first content error aborts the call; no partial graph is returned.
func (s *Serializer) Deserialize(r io.Reader, location string, rootType reflect.Type) (any, error) {
	root, err := doctree.Parse(r)
	if err != nil {
		return nil, wrapError(nil, KindValueFormat, err)
	}

	if root.Name != rootElementName {
		return nil, newError(root, KindValueFormat, "expected %s root, found %q", rootElementName, root.Name)
	}

	for name := range root.Attrs {
		return nil, newError(root, KindUnexpectedMember, "unknown attribute %q on element %q", name, root.Name)
	}

	if len(root.Children) != 1 || root.Children[0].Name != assetElementName {
		return nil, newError(root, KindValueFormat, "%s must hold exactly one %s element", rootElementName, assetElementName)
	}

	rd := &reader{
		s:        s,
		location: location,
		refs:     identity.NewTable(),
	}

	target := reflect.New(rootType).Elem()
	ctx := memberCtx{allowNull: isNullable(rootType)}

	if err := rd.readInto(root.Children[0], target, ctx); err != nil {
		return nil, err
	}

	if ids := rd.refs.Dangling(); len(ids) > 0 {
		return nil, newError(root, KindDanglingReference, "identifier %q referenced but never defined", ids[0])
	}

	if len(rd.deferred) > 0 {
		return nil, rd.deferred[0]
	}

	return target.Interface(), nil
}

// DeserializeAs is the typed convenience form of Deserialize.
func DeserializeAs[T any](s *Serializer, r io.Reader, location string) (T, error) {
	var zero T

	v, err := s.Deserialize(r, location, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}

	return v.(T), nil
}

// Serialize writes graph as one document. External references are written
// with their stored paths; use SerializeAt to render them relative to a
// document location.
func (s *Serializer) Serialize(w io.Writer, graph any) error {
	return s.SerializeAt(w, "", graph)
}

// SerializeAt writes graph as one document located at location, producing
// output that Deserialize reconstructs into an equal graph, including
// shared-reference identity.
func (s *Serializer) SerializeAt(w io.Writer, location string, graph any) error {
	v := reflect.ValueOf(graph)
	if !v.IsValid() || isNilValue(v) {
		return newError(nil, KindValueFormat, "cannot serialize an empty graph")
	}

	wr := &writer{
		s:        s,
		location: location,
		assigner: identity.NewAssigner(),
		onstack:  make(map[any]bool),
		p:        newPrinter(w),
	}

	if err := wr.note(v); err != nil {
		return err
	}

	wr.p.open(rootElementName, nil)

	if err := wr.writeRoot(v); err != nil {
		return err
	}

	wr.p.close(rootElementName)

	return wr.p.flush()
}

func isNullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return true
	default:
		return false
	}
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	default:
		return false
	}
}

package descriptor

import (
	"reflect"
	"unsafe"
)

// Shape classifies how a type maps onto document structure.
type Shape int

const (
	ShapeObject   Shape = iota // member-named children
	ShapeSequence              // one like-named child per item
	ShapeMap                   // one entry child per key/value pair
)

// String returns a human-readable shape name.
func (s Shape) String() string {
	switch s {
	case ShapeObject:
		return "object"
	case ShapeSequence:
		return "sequence"
	case ShapeMap:
		return "map"
	default:
		return "unknown"
	}
}

// Member describes one serializable member of a type.
type Member struct {
	// Name is the document element name (default: the field name).
	Name string
	// Field is the Go field name.
	Field string
	// Index is the reflect field index path within the owning struct.
	Index []int
	// Type is the member's statically declared type.
	Type reflect.Type
	// Optional members absent from the document keep the runtime default.
	Optional bool
	// AllowNull permits an explicit document null marker.
	AllowNull bool
	// Shared members are resolved through the identity table, not inline.
	Shared bool
	// Flatten splices the member's children directly into the parent element.
	Flatten bool
	// Char marks a rune-typed member as a single character value.
	Char bool
	// ItemName overrides the child element name for collection members.
	ItemName string
	// Unexported members are accessed through their address.
	Unexported bool
}

// TypeDescriptor is the cached, ordered serialization model of one type.
type TypeDescriptor struct {
	Type reflect.Type
	// Shape selects structural modeling for sequence and map types; members
	// apply to object-shaped types only.
	Shape Shape
	// Elem is the element type of a sequence or the value type of a map.
	Elem reflect.Type
	// Key is the key type of a map.
	Key reflect.Type
	// Members lists serializable members in declaration order, base
	// (embedded) members before the owning type's own.
	Members []Member

	excluded map[string]string // document name -> field name
}

// MemberByName finds a member by document element name.
func (d *TypeDescriptor) MemberByName(name string) (*Member, bool) {
	for i := range d.Members {
		if d.Members[i].Name == name {
			return &d.Members[i], true
		}
	}

	return nil, false
}

// ExcludedField reports whether name belongs to an explicitly excluded
// member, returning its field name. Documents naming an excluded member are
// rejected, not skipped.
func (d *TypeDescriptor) ExcludedField(name string) (string, bool) {
	field, ok := d.excluded[name]
	return field, ok
}

// FieldValue returns the settable value of m within structVal, which must be
// addressable. Unexported members are reached through their address.
func FieldValue(structVal reflect.Value, m *Member) reflect.Value {
	f := structVal.FieldByIndex(m.Index)
	if m.Unexported {
		f = reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
	}

	return f
}

// DefaultItemName derives the child element name for a collection from its
// element type.
func DefaultItemName(elem reflect.Type) string {
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	if elem.Kind() == reflect.Interface || elem.Name() == "" {
		return "Item"
	}

	return elem.Name()
}

// nullable reports whether a type has a natural "no value" state.
func nullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return true
	default:
		return false
	}
}

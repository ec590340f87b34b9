package identity

import "strconv"

// Assigner hands out document-local identifiers for objects that are
// reachable from more than one path. It is fed by a pre-pass over the object
// graph; the subsequent write pass sees stable decisions.
//
// Keys must be comparable reference values (pointers, or interfaces holding
// pointers).
type Assigner struct {
	stem    string
	last    int
	seen    map[any]int
	ids     map[any]string
	defined map[any]bool
}

// NewAssigner creates an assigner producing "#1", "#2", ... identifiers.
func NewAssigner() *Assigner {
	return &Assigner{
		stem:    "#",
		seen:    make(map[any]int),
		ids:     make(map[any]string),
		defined: make(map[any]bool),
	}
}

// Note records one encounter of obj during the pre-pass and reports whether
// the object was seen before (callers stop descending on repeats).
func (a *Assigner) Note(obj any) (repeat bool) {
	a.seen[obj]++
	return a.seen[obj] > 1
}

// NeedsID reports whether obj was encountered more than once and therefore
// needs an identifier on its defining element.
func (a *Assigner) NeedsID(obj any) bool {
	return a.seen[obj] > 1
}

// ID returns the identifier for obj, allocating the next one on first use.
func (a *Assigner) ID(obj any) string {
	if id, ok := a.ids[obj]; ok {
		return id
	}

	a.last++
	id := a.stem + strconv.Itoa(a.last)
	a.ids[obj] = id

	return id
}

// MarkDefined records that obj's defining element has been written. Later
// encounters write a reference instead.
func (a *Assigner) MarkDefined(obj any) {
	a.defined[obj] = true
}

// Defined reports whether obj's defining element has been written.
func (a *Assigner) Defined(obj any) bool {
	return a.defined[obj]
}

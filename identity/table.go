// Package identity tracks shared-object identifiers within a single
// document, reconstructing shared and cyclic references from a tree-shaped
// document.
package identity

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

var ErrRedefined = errors.New("identifier defined more than once")

type slot struct {
	value  reflect.Value
	filled bool
	fixups []func(reflect.Value)
}

// Table is the per-document mapping from identifier to object. Objects are
// registered the moment they are allocated, before their members are
// populated, which is what makes cyclic graphs representable.
type Table struct {
	slots map[string]*slot
}

func NewTable() *Table {
	return &Table{slots: make(map[string]*slot)}
}

// Define fills the slot for id with v and flushes any queued references.
// Each identifier may be defined exactly once per document.
func (t *Table) Define(id string, v reflect.Value) error {
	s := t.slot(id)
	if s.filled {
		return fmt.Errorf("%w: %q", ErrRedefined, id)
	}

	s.value = v
	s.filled = true

	for _, fixup := range s.fixups {
		fixup(v)
	}

	s.fixups = nil

	return nil
}

// Resolve runs fixup with the object for id, immediately when the id is
// already defined, or as soon as it becomes defined otherwise.
func (t *Table) Resolve(id string, fixup func(reflect.Value)) {
	s := t.slot(id)
	if s.filled {
		fixup(s.value)
		return
	}

	s.fixups = append(s.fixups, fixup)
}

// Dangling reports identifiers that were referenced but never defined, in
// sorted order. Call it after the full document has been traversed.
func (t *Table) Dangling() []string {
	var ids []string

	for id, s := range t.slots {
		if !s.filled {
			ids = append(ids, id)
		}
	}

	sort.Strings(ids)

	return ids
}

func (t *Table) slot(id string) *slot {
	s, ok := t.slots[id]
	if !ok {
		s = &slot{}
		t.slots[id] = s
	}

	return s
}

// Package typename resolves polymorphic type tokens against a registry of
// namespace-qualified type names.
//
// A token is either a bare name ("Mesh") or a qualified name
// ("Engine.Graphics.Mesh"). Bare names are searched in the namespace of the
// statically declared member type first, then in the resolver's builtin
// namespace list, in order.
package typename

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrUnknownToken     = errors.New("type token does not resolve to any known type")
	ErrIncompatibleType = errors.New("type token resolves to a type incompatible with the member type")
	ErrUnregisteredType = errors.New("runtime type is not registered under any namespace")
	ErrDuplicateName    = errors.New("name already registered in namespace")
)

// ID is a namespace-qualified type name.
type ID struct {
	Namespace string
	Name      string
}

// Qualified returns the fully qualified token for the ID.
func (id ID) Qualified() string {
	if id.Namespace == "" {
		return id.Name
	}

	return id.Namespace + "." + id.Name
}

// Resolver maps document type tokens to runtime types and back.
type Resolver struct {
	builtins []string
	names    map[string]map[string]reflect.Type
	ids      map[reflect.Type]ID
}

// NewResolver creates a resolver with the given builtin namespaces, searched
// in order for bare-name tokens.
func NewResolver(builtins ...string) *Resolver {
	return &Resolver{
		builtins: builtins,
		names:    make(map[string]map[string]reflect.Type),
		ids:      make(map[reflect.Type]ID),
	}
}

// Register binds a namespace-qualified name to a runtime type. Pointer types
// are registered by their element type.
func (r *Resolver) Register(namespace, name string, t reflect.Type) error {
	t = normalize(t)

	ns, ok := r.names[namespace]
	if !ok {
		ns = make(map[string]reflect.Type)
		r.names[namespace] = ns
	}

	if prev, ok := ns[name]; ok && prev != t {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateName, namespace, name)
	}

	ns[name] = t

	if _, ok := r.ids[t]; !ok {
		r.ids[t] = ID{Namespace: namespace, Name: name}
	}

	return nil
}

// RegisterType binds prototype's type under its reflect type name.
func (r *Resolver) RegisterType(namespace string, prototype any) error {
	t := normalize(reflect.TypeOf(prototype))
	return r.Register(namespace, t.Name(), t)
}

// IDOf reports the registered ID for a runtime type.
func (r *Resolver) IDOf(t reflect.Type) (ID, bool) {
	id, ok := r.ids[normalize(t)]
	return id, ok
}

// Token decides the document token for runtimeType in a slot statically
// declared as staticType. The second result is false when the token should
// be omitted because the two types are equal.
func (r *Resolver) Token(runtimeType, staticType reflect.Type) (string, bool, error) {
	rt := normalize(runtimeType)
	if rt == normalize(staticType) {
		return "", false, nil
	}

	id, ok := r.ids[rt]
	if !ok {
		return "", false, fmt.Errorf("%w: %s", ErrUnregisteredType, rt)
	}

	// abbreviate to the bare name when scope search would find the same type
	if t, err := r.Resolve(id.Name, staticType); err == nil && t == rt {
		return id.Name, true, nil
	}

	return id.Qualified(), true, nil
}

// Resolve maps a document token to a runtime type. An empty token means the
// statically declared type. The resolved type must be assignable to the
// static member type.
func (r *Resolver) Resolve(token string, staticType reflect.Type) (reflect.Type, error) {
	static := normalize(staticType)

	if token == "" {
		return static, nil
	}

	t, ok := r.lookup(token, static)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownToken, token)
	}

	if !compatible(t, staticType) {
		return nil, fmt.Errorf("%w: %q is %s, member expects %s", ErrIncompatibleType, token, t, staticType)
	}

	return t, nil
}

func (r *Resolver) lookup(token string, static reflect.Type) (reflect.Type, bool) {
	if i := strings.LastIndex(token, "."); i >= 0 {
		namespace, name := token[:i], token[i+1:]
		t, ok := r.names[namespace][name]

		return t, ok
	}

	// bare name: the static type's own namespace wins over builtins
	if id, ok := r.ids[static]; ok {
		if t, ok := r.names[id.Namespace][token]; ok {
			return t, true
		}
	}

	for _, namespace := range r.builtins {
		if t, ok := r.names[namespace][token]; ok {
			return t, true
		}
	}

	// an unregistered static type still answers to its own name
	if static != nil && token == static.Name() {
		return static, true
	}

	return nil, false
}

// normalize strips one pointer level so *Mesh and Mesh share a token.
func normalize(t reflect.Type) reflect.Type {
	if t != nil && t.Kind() == reflect.Pointer {
		return t.Elem()
	}

	return t
}

func compatible(resolved, static reflect.Type) bool {
	if static == nil {
		return true
	}

	if static.Kind() == reflect.Interface {
		return resolved.Implements(static) || reflect.PointerTo(resolved).Implements(static)
	}

	return resolved == normalize(static)
}

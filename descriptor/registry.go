package descriptor

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"intermediate-serializer/primitive"
)

var (
	ErrNotAStruct      = errors.New("member options apply to struct types only")
	ErrUnknownField    = errors.New("type has no such field")
	ErrOptionConflict  = errors.New("conflicting member options")
	ErrNotChar         = errors.New("char option applies to rune-typed members only")
	ErrNotACollection  = errors.New("item name applies to collection members only")
	ErrSharedValueType = errors.New("shared members must be pointer- or interface-typed")
)

type memberConfig struct {
	rename       string
	optional     bool
	required     bool
	disallowNull bool
	shared       bool
	flatten      bool
	exclude      bool
	include      bool
	char         bool
	itemName     string
}

type typeConfig struct {
	members map[string]*memberConfig
}

// Option configures one member of a registered type.
type Option func(*typeConfig)

func (c *typeConfig) member(field string) *memberConfig {
	m, ok := c.members[field]
	if !ok {
		m = &memberConfig{}
		c.members[field] = m
	}

	return m
}

// Rename sets the document element name for a member.
func Rename(field, documentName string) Option {
	return func(c *typeConfig) { c.member(field).rename = documentName }
}

// Optional keeps the runtime default when the member is absent from the
// document instead of erroring.
func Optional(field string) Option {
	return func(c *typeConfig) { c.member(field).optional = true }
}

// Required marks a member as must-be-present. Combining it with Optional is
// a registration error.
func Required(field string) Option {
	return func(c *typeConfig) { c.member(field).required = true }
}

// DisallowNull rejects an explicit document null marker for the member.
func DisallowNull(field string) Option {
	return func(c *typeConfig) { c.member(field).disallowNull = true }
}

// Shared resolves the member through the document identity table instead of
// inline construction.
func Shared(field string) Option {
	return func(c *typeConfig) { c.member(field).shared = true }
}

// Flatten splices the member's children directly into the parent element.
func Flatten(field string) Option {
	return func(c *typeConfig) { c.member(field).flatten = true }
}

// Exclude removes a member from the model. Document elements naming it are
// rejected.
func Exclude(field string) Option {
	return func(c *typeConfig) { c.member(field).exclude = true }
}

// Include adds a member that default visibility would exclude, such as an
// unexported field.
func Include(field string) Option {
	return func(c *typeConfig) { c.member(field).include = true }
}

// Char marks a rune-typed member as a single character value.
func Char(field string) Option {
	return func(c *typeConfig) { c.member(field).char = true }
}

// ItemName overrides the child element name for a collection member.
func ItemName(field, name string) Option {
	return func(c *typeConfig) { c.member(field).itemName = name }
}

// Registry resolves and caches type descriptors. The cache is append-only
// and safe to share across concurrent serializer calls; descriptor
// computation is idempotent, so a guarded insert is all the locking needed.
type Registry struct {
	mu         sync.Mutex
	configs    map[reflect.Type]*typeConfig
	cache      map[reflect.Type]*TypeDescriptor
	enums      map[reflect.Type]*primitive.EnumTable
	converters map[reflect.Type]primitive.Converter
}

func NewRegistry() *Registry {
	return &Registry{
		configs:    make(map[reflect.Type]*typeConfig),
		cache:      make(map[reflect.Type]*TypeDescriptor),
		enums:      make(map[reflect.Type]*primitive.EnumTable),
		converters: make(map[reflect.Type]primitive.Converter),
	}
}

// Type registers member options for prototype's type. Options are validated
// against the type's fields immediately.
func (r *Registry) Type(prototype any, opts ...Option) error {
	return r.configure(reflect.TypeOf(prototype), opts...)
}

func (r *Registry) configure(t reflect.Type, opts ...Option) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if len(opts) == 0 {
		return nil
	}

	if t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s", ErrNotAStruct, t)
	}

	cfg := &typeConfig{members: make(map[string]*memberConfig)}
	for _, opt := range opts {
		opt(cfg)
	}

	for field, mc := range cfg.members {
		sf, ok := t.FieldByName(field)
		if !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, t, field)
		}

		if err := checkMemberConfig(t, sf, mc); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.configs[t] = cfg

	// descriptors of types embedding t baked t's previous config in when
	// their members were spliced, so every cached entry is suspect
	clear(r.cache)

	return nil
}

func checkMemberConfig(t reflect.Type, sf reflect.StructField, mc *memberConfig) error {
	if mc.optional && mc.required {
		return fmt.Errorf("%w: %s.%s is both optional and required", ErrOptionConflict, t, sf.Name)
	}

	if mc.exclude && (mc.include || mc.optional || mc.required || mc.shared || mc.flatten) {
		return fmt.Errorf("%w: %s.%s is excluded but also configured", ErrOptionConflict, t, sf.Name)
	}

	if mc.char && sf.Type.Kind() != reflect.Int32 &&
		!(sf.Type.Kind() == reflect.Pointer && sf.Type.Elem().Kind() == reflect.Int32) {
		return fmt.Errorf("%w: %s.%s", ErrNotChar, t, sf.Name)
	}

	if mc.itemName != "" {
		switch sf.Type.Kind() {
		case reflect.Slice, reflect.Array:
		default:
			return fmt.Errorf("%w: %s.%s", ErrNotACollection, t, sf.Name)
		}
	}

	if mc.shared {
		switch sf.Type.Kind() {
		case reflect.Pointer, reflect.Interface:
		default:
			return fmt.Errorf("%w: %s.%s", ErrSharedValueType, t, sf.Name)
		}
	}

	return nil
}

// Lookup resolves the descriptor for t, memoized per type.
func (r *Registry) Lookup(t reflect.Type) (*TypeDescriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lookupLocked(t)
}

func (r *Registry) lookupLocked(t reflect.Type) (*TypeDescriptor, error) {
	if d, ok := r.cache[t]; ok {
		return d, nil
	}

	d, err := r.build(t)
	if err != nil {
		return nil, err
	}

	r.cache[t] = d

	return d, nil
}

func (r *Registry) build(t reflect.Type) (*TypeDescriptor, error) {
	d := &TypeDescriptor{
		Type:     t,
		excluded: make(map[string]string),
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		d.Shape = ShapeSequence
		d.Elem = t.Elem()

		return d, nil

	case reflect.Map:
		d.Shape = ShapeMap
		d.Key = t.Key()
		d.Elem = t.Elem()

		return d, nil

	case reflect.Struct:
		if err := r.appendMembers(d, t, nil); err != nil {
			return nil, err
		}

		return d, nil

	default:
		return d, nil
	}
}

// appendMembers walks t's fields in declaration order. Embedded struct
// members are spliced in place, so base members precede the members a
// wrapping type declares after the embedded field.
func (r *Registry) appendMembers(d *TypeDescriptor, t reflect.Type, prefix []int) error {
	cfg := r.configs[t]

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			if err := r.appendMembers(d, sf.Type, index); err != nil {
				return err
			}

			continue
		}

		var mc *memberConfig
		if cfg != nil {
			mc = cfg.members[sf.Name]
		}

		exported := sf.PkgPath == ""

		included := exported
		if mc != nil {
			if mc.exclude {
				included = false
			} else if mc.include {
				included = true
			}
		}

		name := sf.Name
		if mc != nil && mc.rename != "" {
			name = mc.rename
		}

		if !included {
			// only explicit exclusion makes the name a hard document error
			if mc != nil && mc.exclude {
				d.excluded[name] = sf.Name
			}

			continue
		}

		m := Member{
			Name:       name,
			Field:      sf.Name,
			Index:      index,
			Type:       sf.Type,
			AllowNull:  nullable(sf.Type),
			Unexported: !exported,
		}

		if mc != nil {
			m.Optional = mc.optional
			m.Shared = mc.shared
			m.Flatten = mc.flatten
			m.Char = mc.char
			m.ItemName = mc.itemName

			if mc.disallowNull {
				m.AllowNull = false
			}
		}

		d.Members = append(d.Members, m)
	}

	return nil
}

// RegisterEnum binds an enumeration name table to T for leaf conversion.
func RegisterEnum[T primitive.Integer](r *Registry, names map[string]T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.enums[reflect.TypeFor[T]()] = primitive.NewEnumTable(names)
}

// EnumFor reports the enum table registered for t.
func (r *Registry) EnumFor(t reflect.Type) (*primitive.EnumTable, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, ok := r.enums[t]

	return table, ok
}

// Converter installs a custom leaf codec from a format/parse function pair.
func (r *Registry) Converter(formatFn, parseFn any) error {
	conv, err := primitive.NewConverter(formatFn, parseFn)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.converters[conv.Type] = conv

	return nil
}

// ConverterFor reports the custom codec registered for t.
func (r *Registry) ConverterFor(t reflect.Type) (primitive.Converter, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.converters[t]

	return conv, ok
}

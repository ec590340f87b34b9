package primitive

// Integer constrains enumeration underlying types.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// EnumTable maps enumeration member names to values, both directions.
// Lookups are case-sensitive exact matches.
type EnumTable struct {
	byName  map[string]int64
	byValue map[int64]string
}

// NewEnumTable builds an enum table from a name-to-value map.
func NewEnumTable[T Integer](names map[string]T) *EnumTable {
	t := &EnumTable{
		byName:  make(map[string]int64, len(names)),
		byValue: make(map[int64]string, len(names)),
	}

	for name, value := range names {
		t.byName[name] = int64(value)

		// keep the first name on aliased values for stable formatting
		if prev, ok := t.byValue[int64(value)]; !ok || name < prev {
			t.byValue[int64(value)] = name
		}
	}

	return t
}

// Parse resolves an enumeration member name to its value.
func (t *EnumTable) Parse(name string) (int64, bool) {
	v, ok := t.byName[name]
	return v, ok
}

// Format resolves an enumeration value back to a member name.
func (t *EnumTable) Format(value int64) (string, bool) {
	name, ok := t.byValue[value]
	return name, ok
}

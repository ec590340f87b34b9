package descriptor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"intermediate-serializer/internal/diagnostic"
	"intermediate-serializer/typename"
)

// SchemaFile represents the root of a YAML serialization schema file. It
// overlays member options onto types registered in code, keyed by their
// document type tokens.
type SchemaFile struct {
	// Version of the schema format (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Types lists per-type member option overlays.
	Types []TypeSchema `yaml:"types"`
}

// TypeSchema carries the member overlays for one type.
type TypeSchema struct {
	// Type is the document type token ("Engine.Graphics.Mesh" or a bare
	// name resolvable through the builtin namespaces).
	Type string `yaml:"type"`

	// Members lists per-member options, keyed by Go field name.
	Members []MemberSchema `yaml:"members,omitempty"`
}

// MemberSchema carries the options for one member.
type MemberSchema struct {
	// Name is the Go field name the entry configures.
	Name string `yaml:"name"`

	// Element overrides the document element name.
	Element string `yaml:"element,omitempty"`

	// Item overrides the child element name for collection members.
	Item string `yaml:"item,omitempty"`

	Optional  *bool `yaml:"optional,omitempty"`
	Required  *bool `yaml:"required,omitempty"`
	AllowNull *bool `yaml:"allowNull,omitempty"`
	Shared    *bool `yaml:"shared,omitempty"`
	Flatten   *bool `yaml:"flatten,omitempty"`
	Excluded  *bool `yaml:"excluded,omitempty"`
	Included  *bool `yaml:"included,omitempty"`
	Char      *bool `yaml:"char,omitempty"`
}

// LoadSchemaFile loads and parses a YAML schema file from the given path.
func LoadSchemaFile(path string) (*SchemaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	return ParseSchema(data)
}

// ParseSchema parses YAML data into a SchemaFile.
func ParseSchema(data []byte) (*SchemaFile, error) {
	var sf SchemaFile

	err := yaml.Unmarshal(data, &sf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}

	applyDefaults(&sf)

	return &sf, nil
}

func applyDefaults(sf *SchemaFile) {
	if sf.Version == "" {
		sf.Version = "1"
	}
}

// Validate performs structural validation that needs no type registry:
// duplicate entries, empty names, conflicting options.
func (sf *SchemaFile) Validate() *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	seenTypes := map[string]struct{}{}

	for i := range sf.Types {
		ts := &sf.Types[i]
		if ts.Type == "" {
			res.AddError("type_token_empty", "type entry with empty token", "", "")
			continue
		}

		if _, ok := seenTypes[ts.Type]; ok {
			res.AddError("duplicate_type", fmt.Sprintf("duplicate type entry %q", ts.Type), ts.Type, "")
			continue
		}

		seenTypes[ts.Type] = struct{}{}

		if len(ts.Members) == 0 {
			res.AddWarning("empty_type_entry", "type entry configures no members", ts.Type, "")
		}

		seenMembers := map[string]struct{}{}

		for j := range ts.Members {
			ms := &ts.Members[j]
			if ms.Name == "" {
				res.AddError("member_name_empty", "member entry with empty name", ts.Type, "")
				continue
			}

			if _, ok := seenMembers[ms.Name]; ok {
				res.AddError("duplicate_member", fmt.Sprintf("duplicate member entry %q", ms.Name), ts.Type, ms.Name)
				continue
			}

			seenMembers[ms.Name] = struct{}{}

			if isTrue(ms.Optional) && isTrue(ms.Required) {
				res.AddError("optional_required_conflict",
					"member cannot be both optional and required", ts.Type, ms.Name)
			}

			if isTrue(ms.Excluded) && (isTrue(ms.Included) || isTrue(ms.Optional) ||
				isTrue(ms.Shared) || isTrue(ms.Flatten) || ms.Element != "" || ms.Item != "") {
				res.AddError("excluded_conflict",
					"excluded member carries other options", ts.Type, ms.Name)
			}
		}
	}

	return res
}

// ApplySchema resolves each type entry against the token resolver and
// registers the overlays. Registry-aware problems (unknown tokens, unknown
// fields) are reported as diagnostics alongside the structural ones.
func (r *Registry) ApplySchema(sf *SchemaFile, types *typename.Resolver) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	res.Merge(*sf.Validate())

	if res.HasErrors() {
		return res
	}

	for i := range sf.Types {
		ts := &sf.Types[i]

		t, err := types.Resolve(ts.Type, nil)
		if err != nil {
			res.AddError("type_not_found", err.Error(), ts.Type, "")
			continue
		}

		var opts []Option

		for j := range ts.Members {
			ms := &ts.Members[j]
			opts = append(opts, ms.options()...)
		}

		if err := r.configure(t, opts...); err != nil {
			res.AddError("apply_failed", err.Error(), ts.Type, "")
		}
	}

	return res
}

func (ms *MemberSchema) options() []Option {
	var opts []Option

	if ms.Element != "" {
		opts = append(opts, Rename(ms.Name, ms.Element))
	}

	if ms.Item != "" {
		opts = append(opts, ItemName(ms.Name, ms.Item))
	}

	if isTrue(ms.Optional) {
		opts = append(opts, Optional(ms.Name))
	}

	if isTrue(ms.Required) {
		opts = append(opts, Required(ms.Name))
	}

	if ms.AllowNull != nil && !*ms.AllowNull {
		opts = append(opts, DisallowNull(ms.Name))
	}

	if isTrue(ms.Shared) {
		opts = append(opts, Shared(ms.Name))
	}

	if isTrue(ms.Flatten) {
		opts = append(opts, Flatten(ms.Name))
	}

	if isTrue(ms.Excluded) {
		opts = append(opts, Exclude(ms.Name))
	}

	if isTrue(ms.Included) {
		opts = append(opts, Include(ms.Name))
	}

	if isTrue(ms.Char) {
		opts = append(opts, Char(ms.Name))
	}

	return opts
}

func isTrue(b *bool) bool {
	return b != nil && *b
}

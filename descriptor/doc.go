// Package descriptor provides the serialization type model: per-type,
// per-member metadata that drives document reading and writing.
//
// Descriptors are plain immutable data, computed once per type and cached by
// the registry for the lifetime of the process. Metadata comes from explicit
// registration calls, optionally overlaid by a YAML schema file.
//
// # Key capabilities
//
//   - Member renaming, exclusion and forced inclusion (including unexported
//     fields)
//   - Optional and must-be-present members
//   - Null-marker rejection for members that must not be null
//   - Custom collection item element names
//   - Shared-resource and flattened-content member flags
//   - Structural modeling of sequence and map types
//
// # Schema Overview
//
// The schema file has the following structure:
//
//	version: "1"
//	types:
//	  - type: Engine.Graphics.Mesh
//	    members:
//	      - name: Positions
//	        item: Vertex
//	      - name: DebugName
//	        excluded: true
//	      - name: Tint
//	        element: Color
//	        optional: true
package descriptor

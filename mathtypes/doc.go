// Package mathtypes provides the composite math value types carried by
// intermediate documents: vectors, rectangle, matrix, quaternion, plane and
// color.
//
// Each type marshals to an ordered, whitespace-separated component list and
// unmarshals from a whitespace- or comma-separated list whose length must
// match the type's arity exactly.
package mathtypes

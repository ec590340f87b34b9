// Package diagnostic provides structured warnings and errors for
// serialization schema validation.
//
// Key capabilities:
//   - Unknown type-token and member reports
//   - Conflicting member-option reports
//   - Duplicate definition reports
package diagnostic

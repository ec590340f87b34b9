package typename

import (
	"time"

	"intermediate-serializer/mathtypes"
)

// BuiltinNamespace holds the leaf types every document may name without
// registration on the caller's side.
const BuiltinNamespace = "Builtin"

// RegisterBuiltins binds the math leaf types and Duration under
// BuiltinNamespace. Pass BuiltinNamespace to NewResolver to make their bare
// tokens resolvable.
func RegisterBuiltins(r *Resolver) error {
	prototypes := []any{
		mathtypes.Vector2{},
		mathtypes.Vector3{},
		mathtypes.Vector4{},
		mathtypes.Quaternion{},
		mathtypes.Plane{},
		mathtypes.Rectangle{},
		mathtypes.Matrix{},
		mathtypes.Color{},
		time.Duration(0),
	}

	for _, p := range prototypes {
		if err := r.RegisterType(BuiltinNamespace, p); err != nil {
			return err
		}
	}

	return nil
}

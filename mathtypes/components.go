package mathtypes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrComponentCount is reported when a component list does not match the
// arity of the target type.
var ErrComponentCount = errors.New("wrong number of components")

func splitComponents(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ','
	})
}

func parseFloats(typeName, text string, want int) ([]float32, error) {
	fields := splitComponents(text)
	if len(fields) != want {
		return nil, fmt.Errorf("%s: %w: want %d, got %d", typeName, ErrComponentCount, want, len(fields))
	}

	out := make([]float32, want)

	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("%s: component %d: %w", typeName, i+1, err)
		}

		out[i] = float32(v)
	}

	return out, nil
}

func parseInts(typeName, text string, want int) ([]int, error) {
	fields := splitComponents(text)
	if len(fields) != want {
		return nil, fmt.Errorf("%s: %w: want %d, got %d", typeName, ErrComponentCount, want, len(fields))
	}

	out := make([]int, want)

	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%s: component %d: %w", typeName, i+1, err)
		}

		out[i] = v
	}

	return out, nil
}

func parseBytes(typeName, text string, want int) ([]uint8, error) {
	fields := splitComponents(text)
	if len(fields) != want {
		return nil, fmt.Errorf("%s: %w: want %d, got %d", typeName, ErrComponentCount, want, len(fields))
	}

	out := make([]uint8, want)

	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%s: component %d: %w", typeName, i+1, err)
		}

		out[i] = uint8(v)
	}

	return out, nil
}

func formatFloats(components ...float32) []byte {
	var b strings.Builder

	for i, c := range components {
		if i > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(strconv.FormatFloat(float64(c), 'g', -1, 32))
	}

	return []byte(b.String())
}

func formatInts(components ...int) []byte {
	var b strings.Builder

	for i, c := range components {
		if i > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(strconv.Itoa(c))
	}

	return []byte(b.String())
}

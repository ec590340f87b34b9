package primitive

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrUnknownKind = errors.New("type has no primitive representation")
	ErrNotOneChar  = errors.New("character value must be exactly one character")
)

// Parse converts invariant document text into a value of type t.
//
// Numeric text is locale-independent and range-checked against the native
// width of the target kind; out-of-range text is an error. Character text
// must be exactly one character and is not trimmed, so a literal space is a
// legal value.
func Parse(kind KindEnum, t reflect.Type, text string) (reflect.Value, error) {
	v := reflect.New(t).Elem()

	// numeric, bool and duration text tolerates surrounding whitespace;
	// char and string content is significant byte for byte
	if kind.IsNumber() || kind == KindBool || kind == KindDuration {
		text = strings.TrimSpace(text)
	}

	switch {
	case kind == KindChar:
		r, err := ParseChar(text)
		if err != nil {
			return reflect.Value{}, err
		}

		v.SetInt(int64(r))

	case kind.IsSigned():
		n, err := strconv.ParseInt(text, 10, bitSize(kind))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse %s from %q: %w", kind, text, err)
		}

		v.SetInt(n)

	case kind.IsUnsigned():
		n, err := strconv.ParseUint(text, 10, bitSize(kind))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse %s from %q: %w", kind, text, err)
		}

		v.SetUint(n)

	case kind.IsFloat():
		f, err := strconv.ParseFloat(text, bitSize(kind))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse %s from %q: %w", kind, text, err)
		}

		v.SetFloat(f)

	case kind == KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse %s from %q: %w", kind, text, err)
		}

		v.SetBool(b)

	case kind == KindString:
		v.SetString(text)

	case kind == KindDuration:
		d, err := time.ParseDuration(text)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse %s from %q: %w", kind, text, err)
		}

		v.SetInt(int64(d))

	default:
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnknownKind, t)
	}

	return v, nil
}

// Format renders a value of the given kind as invariant document text.
// It is the inverse of Parse: Parse(kind, t, Format(kind, v)) == v for every
// representable v.
func Format(kind KindEnum, v reflect.Value) (string, error) {
	switch {
	case kind == KindChar:
		return string(rune(v.Int())), nil
	case kind.IsSigned():
		return strconv.FormatInt(v.Int(), 10), nil
	case kind.IsUnsigned():
		return strconv.FormatUint(v.Uint(), 10), nil
	case kind.IsFloat():
		return strconv.FormatFloat(v.Float(), 'g', -1, bitSize(kind)), nil
	case kind == KindBool:
		return strconv.FormatBool(v.Bool()), nil
	case kind == KindString:
		return v.String(), nil
	case kind == KindDuration:
		return time.Duration(v.Int()).String(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, v.Type())
	}
}

// ParseChar decodes a single-character value. Empty text is rejected here;
// nullable character members are handled before the text reaches this point.
func ParseChar(text string) (rune, error) {
	if utf8.RuneCountInString(text) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrNotOneChar, text)
	}

	r, _ := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError {
		return 0, fmt.Errorf("%w: invalid encoding", ErrNotOneChar)
	}

	return r, nil
}

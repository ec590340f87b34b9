package primitive

import (
	"errors"
	"reflect"
)

var (
	ErrNotAConverter         = errors.New("provided function pair is not a recognizable converter")
	ErrConverterNotAFunc     = errors.New("provided converter is not a function")
	ErrConverterTypeMismatch = errors.New("format and parse functions disagree on the value type")
)

// Converter adapts a pair of user functions into a leaf value codec for a
// single type.
//
// Supported interfaces:
//   - format: func(T) (string, error)
//   - parse:  func(string) (T, error)
type Converter struct {
	Type   reflect.Type
	format reflect.Value
	parse  reflect.Value
}

var (
	stringType = reflect.TypeFor[string]()
	errorType  = reflect.TypeFor[error]()
)

// NewConverter inspects the provided functions and returns a Converter if
// they form a valid format/parse pair for the same type.
func NewConverter(formatFn, parseFn any) (Converter, error) {
	fv := reflect.ValueOf(formatFn)
	pv := reflect.ValueOf(parseFn)

	if fv.Kind() != reflect.Func || pv.Kind() != reflect.Func {
		return Converter{}, ErrConverterNotAFunc
	}

	ft := fv.Type()
	pt := pv.Type()

	if ft.NumIn() != 1 || ft.NumOut() != 2 ||
		ft.Out(0) != stringType || ft.Out(1) != errorType {
		return Converter{}, ErrNotAConverter
	}

	if pt.NumIn() != 1 || pt.NumOut() != 2 ||
		pt.In(0) != stringType || pt.Out(1) != errorType {
		return Converter{}, ErrNotAConverter
	}

	if ft.In(0) != pt.Out(0) {
		return Converter{}, ErrConverterTypeMismatch
	}

	return Converter{
		Type:   ft.In(0),
		format: fv,
		parse:  pv,
	}, nil
}

// Format renders v as document text via the user format function.
func (c Converter) Format(v reflect.Value) (string, error) {
	out := c.format.Call([]reflect.Value{v})
	if err, _ := out[1].Interface().(error); err != nil {
		return "", err
	}

	return out[0].String(), nil
}

// Parse converts document text into a value via the user parse function.
func (c Converter) Parse(text string) (reflect.Value, error) {
	out := c.parse.Call([]reflect.Value{reflect.ValueOf(text)})
	if err, _ := out[1].Interface().(error); err != nil {
		return reflect.Value{}, err
	}

	return out[0], nil
}

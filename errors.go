package tagged

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
)

var ErrNoValue = errors.New("no value")
var ErrNotSupported = errors.New("not supported")

var ErrMissingDiscriminator = errors.New("missing discriminator")
var ErrUnknownDiscriminator = errors.New("unknown discriminator")
var ErrFieldDecode = errors.New("field decode")

// ErrDecoderUsed is returned when a SequenceDecoder is asked to decode a second time.
var ErrDecoderUsed = errors.New("sequence decoder already used")

// NotSupportedError is returned if a target type can not be decoded at all,
// e.g. a channel or an interface type.
type NotSupportedError struct {
	Type reflect.Type
}

func (n NotSupportedError) Error() string {
	return fmt.Sprintf("type %q is not supported", n.Type)
}

// MissingDiscriminatorError reports a record without its discriminator field.
type MissingDiscriminatorError struct {
	// Field is the name of the discriminator field.
	Field string

	// Path points to the record.
	Path Path
}

func (e *MissingDiscriminatorError) Error() string {
	return fmt.Sprintf("missing discriminator %q at %s", e.Field, e.Path)
}

func (e *MissingDiscriminatorError) Is(target error) bool {
	return target == ErrMissingDiscriminator
}

func (e *MissingDiscriminatorError) prependPath(prefix Path) {
	e.Path = slices.Concat(prefix, e.Path)
}

// UnknownDiscriminatorError reports a discriminator value that is not registered.
type UnknownDiscriminatorError struct {
	// Value is the discriminator value as found in the record.
	Value string

	// Path points to the discriminator field.
	Path Path
}

func (e *UnknownDiscriminatorError) Error() string {
	return fmt.Sprintf("unknown discriminator %q at %s", e.Value, e.Path)
}

func (e *UnknownDiscriminatorError) Is(target error) bool {
	return target == ErrUnknownDiscriminator
}

func (e *UnknownDiscriminatorError) prependPath(prefix Path) {
	e.Path = slices.Concat(prefix, e.Path)
}

// FieldDecodeError reports a value that could not be decoded into its target,
// either because it is missing, has the wrong type or is malformed.
type FieldDecodeError struct {
	// Path points to the offending value.
	Path Path

	// Expected describes the target, usually a Go type or a validation rule.
	Expected string

	// Actual describes the value found in the source.
	Actual string

	// Err is the underlying cause.
	Err error
}

// Field returns the name of the innermost field on the path.
func (e *FieldDecodeError) Field() string {
	return e.Path.lastKey()
}

func (e *FieldDecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
	}

	return fmt.Sprintf("decode %s: expected %s, got %s: %s", e.Path, e.Expected, e.Actual, e.Err)
}

func (e *FieldDecodeError) Unwrap() error {
	return e.Err
}

func (e *FieldDecodeError) Is(target error) bool {
	return target == ErrFieldDecode
}

func (e *FieldDecodeError) prependPath(prefix Path) {
	e.Path = slices.Concat(prefix, e.Path)
}

// pathError is implemented by errors that carry a coding path.
type pathError interface {
	error
	prependPath(prefix Path)
}

// withPath prefixes the coding path of err with the given elements. Errors without a
// coding path are returned as is.
func withPath(err error, prefix ...PathElement) error {
	var pe pathError
	if errors.As(err, &pe) {
		pe.prependPath(prefix)
	}

	return err
}

// fieldError creates a FieldDecodeError for a value read from source, unless err already
// carries a coding path.
func fieldError(source Source, expected string, err error) error {
	var pe pathError
	if errors.As(err, &pe) {
		return err
	}

	return &FieldDecodeError{
		Expected: expected,
		Actual:   describe(source),
		Err:      err,
	}
}

// describe returns a short description of the current value of source.
func describe(source Source) string {
	if source == nil {
		return "nothing"
	}

	if describer, ok := source.(Describer); ok {
		return describer.Describe()
	}

	return fmt.Sprintf("%T", source)
}

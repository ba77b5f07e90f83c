package tagged

import (
	"errors"
	"fmt"
	"reflect"
)

// Variant describes one case of a tagged union with base interface T: the discriminator
// value and how to decode a record of that case.
type Variant[T any] struct {
	tag    string
	decode func(*Decoder, Source) (T, error)

	// concrete type of the values produced, nil for variants created by CaseFunc
	typ reflect.Type

	// set if the variant is invalid, reported by NewRegistry
	err error
}

// Tag returns the discriminator value of the variant.
func (v Variant[T]) Tag() string {
	return v.tag
}

// Case registers the Go type V for the discriminator value tag. Either V or *V must
// implement the interface T. If V implements T, values of type V are produced, otherwise
// values of type *V.
func Case[T any, V any](tag string) Variant[T] {
	tyBase := reflect.TypeFor[T]()
	tyVariant := reflect.TypeFor[V]()

	variant := Variant[T]{tag: tag}

	switch {
	case tyBase.Kind() != reflect.Interface:
		variant.err = fmt.Errorf("variant %q: base type %s is not an interface", tag, tyBase)

	case tyVariant.Implements(tyBase):
		variant.typ = tyVariant
		variant.decode = func(d *Decoder, source Source) (T, error) {
			var value V
			if err := d.Unmarshal(source, &value); err != nil {
				var tZero T
				return tZero, err
			}

			return any(value).(T), nil
		}

	case reflect.PointerTo(tyVariant).Implements(tyBase):
		variant.typ = reflect.PointerTo(tyVariant)
		variant.decode = func(d *Decoder, source Source) (T, error) {
			value := new(V)
			if err := d.Unmarshal(source, value); err != nil {
				var tZero T
				return tZero, err
			}

			return any(value).(T), nil
		}

	default:
		variant.err = fmt.Errorf("variant %q: neither %s nor %s implement %s",
			tag, tyVariant, reflect.PointerTo(tyVariant), tyBase)
	}

	return variant
}

// CaseFunc registers a hand written decode function for the discriminator value tag.
// Values produced by a CaseFunc variant can not be mapped back to their tag by
// [Registry.TagOf].
func CaseFunc[T any](tag string, decode func(d *Decoder, source Source) (T, error)) Variant[T] {
	variant := Variant[T]{tag: tag, decode: decode}
	if decode == nil {
		variant.err = fmt.Errorf("variant %q: decode function is nil", tag)
	}

	return variant
}

// Registry is the closed set of variants of a tagged union with base interface T, keyed
// by the value of the discriminator field. A Registry is immutable and safe for concurrent use.
type Registry[T any] struct {
	field    string
	variants map[string]Variant[T]
	tags     map[reflect.Type]string
	order    []string
}

// NewRegistry builds a Registry for records whose discriminator is stored in field.
func NewRegistry[T any](field string, variants ...Variant[T]) (*Registry[T], error) {
	if field == "" {
		return nil, errors.New("discriminator field must not be empty")
	}

	registry := &Registry[T]{
		field:    field,
		variants: make(map[string]Variant[T], len(variants)),
		tags:     make(map[reflect.Type]string, len(variants)),
	}

	for _, variant := range variants {
		if variant.err != nil {
			return nil, variant.err
		}

		if variant.tag == "" {
			return nil, errors.New("variant tag must not be empty")
		}

		if _, exists := registry.variants[variant.tag]; exists {
			return nil, fmt.Errorf("duplicate variant %q", variant.tag)
		}

		if variant.typ != nil {
			if other, exists := registry.tags[variant.typ]; exists {
				return nil, fmt.Errorf("type %s registered for %q and %q", variant.typ, other, variant.tag)
			}

			registry.tags[variant.typ] = variant.tag
		}

		registry.variants[variant.tag] = variant
		registry.order = append(registry.order, variant.tag)
	}

	return registry, nil
}

// MustRegistry is like NewRegistry but panics on error. Use it to
// initialize package level registries.
func MustRegistry[T any](field string, variants ...Variant[T]) *Registry[T] {
	registry, err := NewRegistry(field, variants...)
	if err != nil {
		panic(err)
	}

	return registry
}

// Field returns the name of the discriminator field.
func (r *Registry[T]) Field() string {
	return r.field
}

// Tags returns all registered discriminator values in registration order.
func (r *Registry[T]) Tags() []string {
	return append([]string(nil), r.order...)
}

// Resolve returns the variant registered for tag. An unknown tag is always an error,
// there is no fallback variant.
func (r *Registry[T]) Resolve(tag string) (Variant[T], error) {
	variant, ok := r.variants[tag]
	if !ok {
		return Variant[T]{}, &UnknownDiscriminatorError{Value: tag, Path: Path{Key(r.field)}}
	}

	return variant, nil
}

// TagOf returns the discriminator value for a value produced by one of the variants.
func (r *Registry[T]) TagOf(value T) (string, bool) {
	ty := reflect.TypeOf(value)
	if ty == nil {
		return "", false
	}

	tag, ok := r.tags[ty]
	return tag, ok
}

package tagged

import (
	"encoding"
	"errors"
	"fmt"
	"iter"
	"math"
	"reflect"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
)

// Unmarshal decodes source into target using the default Decoder.
func Unmarshal(source Source, target any) error {
	return dec.Unmarshal(source, target)
}

// UnmarshalNew decodes source into a new value of type T using the default Decoder.
func UnmarshalNew[T any](source Source) (T, error) {
	return UnmarshalNewWith[T](dec, source)
}

func UnmarshalNewWith[T any](dec *Decoder, source Source) (T, error) {
	var target T
	err := dec.Unmarshal(source, &target)
	return target, err
}

// A setter sets the reflect.Value to a value extracted from the given Source
type setter func(Source, reflect.Value) error

// setterBuild tracks the types that are currently in construction and the setters
// built so far. Built setters are only added to the cache once the root setter
// was built successfully.
type setterBuild struct {
	inConstruction map[reflect.Type]struct{}
	built          map[reflect.Type]setter
}

var tyTextUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()

// The default Decoder instance.
var dec = NewDecoder()

// Decoder decodes a Source onto Go values. A Decoder is safe for concurrent use,
// its configuration methods return a new Decoder and never modify the receiver.
type Decoder struct {
	// the struct tag that is used
	structTag string

	// Require values for fields. Set to true to fail with ErrNoValue
	// if a value is missing in a Source
	requireValues bool

	// optional struct validation run after decoding
	validate *validator.Validate

	logger *zap.Logger

	// Cache for setters, indexed by reflect.Type
	setterCache sync.Map
}

func NewDecoder() *Decoder {
	return &Decoder{
		structTag: "json",
		logger:    zap.NewNop(),
	}
}

// copy returns a new Decoder with the same configuration and an empty setter cache.
func (d *Decoder) copy() *Decoder {
	return &Decoder{
		structTag:     d.structTag,
		requireValues: d.requireValues,
		validate:      d.validate,
		logger:        d.logger,
	}
}

// WithTag returns a Decoder that takes field names from the given struct tag.
func (d *Decoder) WithTag(structTag string) *Decoder {
	if d.structTag == structTag {
		return d
	}

	c := d.copy()
	c.structTag = structTag
	return c
}

// RequireValues returns a Decoder that fails with ErrNoValue if a struct field has
// no value in the Source.
func (d *Decoder) RequireValues() *Decoder {
	if d.requireValues {
		return d
	}

	c := d.copy()
	c.requireValues = true
	return c
}

// WithValidator returns a Decoder that validates every decoded struct using v.
// A failed validation is reported as a FieldDecodeError.
func (d *Decoder) WithValidator(v *validator.Validate) *Decoder {
	c := d.copy()
	c.validate = v
	return c
}

// WithValidation returns a Decoder that validates decoded structs using the `validate`
// struct tag. Field names in errors follow the decoders struct tag.
func (d *Decoder) WithValidation() *Decoder {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fi reflect.StructField) string {
		tag := parseFieldTag(fi, d.structTag)
		if tag.Skip {
			return "-"
		}

		return tag.Name
	})

	return d.WithValidator(v)
}

// WithLogger returns a Decoder that writes debug output to logger.
func (d *Decoder) WithLogger(logger *zap.Logger) *Decoder {
	c := d.copy()
	c.logger = logger
	return c
}

func (d *Decoder) log() *zap.Logger {
	if d.logger == nil {
		return zap.NewNop()
	}

	return d.logger
}

// Unmarshal decodes source into target, which must be a non nil pointer.
func (d *Decoder) Unmarshal(source Source, target any) error {
	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Pointer || targetValue.IsNil() {
		return fmt.Errorf("target must be a non nil pointer, got %T", target)
	}

	targetValue = targetValue.Elem()

	// build the setter for the targets type
	setter, err := d.rootSetterOf(targetValue.Type())
	if err != nil {
		return err
	}

	if err := setter(source, targetValue); err != nil {
		return err
	}

	return d.validateValue(targetValue)
}

func (d *Decoder) rootSetterOf(ty reflect.Type) (setter, error) {
	if cached, ok := d.setterCache.Load(ty); ok {
		return cached.(setter), nil
	}

	build := &setterBuild{
		inConstruction: map[reflect.Type]struct{}{},
		built:          map[reflect.Type]setter{},
	}

	setter, err := d.setterOf(build, ty)
	if err != nil {
		return nil, err
	}

	for builtType, builtSetter := range build.built {
		d.setterCache.Store(builtType, builtSetter)
	}

	return setter, nil
}

func (d *Decoder) setterOf(build *setterBuild, ty reflect.Type) (setter, error) {
	if cached, ok := d.setterCache.Load(ty); ok {
		return cached.(setter), nil
	}

	if setter, ok := build.built[ty]; ok {
		return setter, nil
	}

	if _, ok := build.inConstruction[ty]; ok {
		// detected a cycle. return a setter that does a cache lookup when executed.
		// the actual setter is in the cache once the root setter was built.
		lazySetter := func(source Source, target reflect.Value) error {
			cached, ok := d.setterCache.Load(ty)
			if !ok {
				return NotSupportedError{Type: ty}
			}

			return cached.(setter)(source, target)
		}

		return lazySetter, nil
	}

	build.inConstruction[ty] = struct{}{}

	setter, err := d.makeSetterOf(build, ty)
	if err != nil {
		return nil, err
	}

	build.built[ty] = setter

	return setter, nil
}

func (d *Decoder) makeSetterOf(build *setterBuild, ty reflect.Type) (setter, error) {
	if reflect.PointerTo(ty).Implements(tyTextUnmarshaler) {
		return setTextUnmarshaler, nil
	}

	switch ty.Kind() {
	case reflect.Bool:
		return setBool, nil

	case reflect.Int:
		if strconv.IntSize == 32 {
			return makeSetInt(BinarySource.Int32, Source.Int, reflect.Value.SetInt, math.MinInt, math.MaxInt), nil
		}

		return makeSetInt(BinarySource.Int64, Source.Int, reflect.Value.SetInt, math.MinInt, math.MaxInt), nil

	case reflect.Int8:
		return makeSetInt(BinarySource.Int8, Source.Int, reflect.Value.SetInt, math.MinInt8, math.MaxInt8), nil

	case reflect.Int16:
		return makeSetInt(BinarySource.Int16, Source.Int, reflect.Value.SetInt, math.MinInt16, math.MaxInt16), nil

	case reflect.Int32:
		return makeSetInt(BinarySource.Int32, Source.Int, reflect.Value.SetInt, math.MinInt32, math.MaxInt32), nil

	case reflect.Int64:
		return makeSetInt(BinarySource.Int64, Source.Int, reflect.Value.SetInt, math.MinInt64, math.MaxInt64), nil

	case reflect.Uint:
		if strconv.IntSize == 32 {
			return makeSetInt(BinarySource.Uint32, Source.Uint, reflect.Value.SetUint, 0, math.MaxUint), nil
		}

		return makeSetInt(BinarySource.Uint64, Source.Uint, reflect.Value.SetUint, 0, math.MaxUint), nil

	case reflect.Uint8:
		return makeSetInt(BinarySource.Uint8, Source.Uint, reflect.Value.SetUint, 0, math.MaxUint8), nil

	case reflect.Uint16:
		return makeSetInt(BinarySource.Uint16, Source.Uint, reflect.Value.SetUint, 0, math.MaxUint16), nil

	case reflect.Uint32:
		return makeSetInt(BinarySource.Uint32, Source.Uint, reflect.Value.SetUint, 0, math.MaxUint32), nil

	case reflect.Uint64:
		return makeSetInt(BinarySource.Uint64, Source.Uint, reflect.Value.SetUint, 0, math.MaxUint64), nil

	case reflect.Float32:
		return makeSetFloat(BinarySource.Float32), nil

	case reflect.Float64:
		return makeSetFloat(BinarySource.Float64), nil

	case reflect.String:
		return setString, nil

	case reflect.Pointer:
		return d.makeSetPointer(build, ty)

	case reflect.Struct:
		return d.makeSetStruct(build, ty)

	case reflect.Slice:
		return d.makeSetSlice(build, ty)

	case reflect.Array:
		return d.makeSetArray(build, ty)

	case reflect.Map:
		return d.makeSetMap(build, ty)

	default:
		return nil, NotSupportedError{Type: ty}
	}
}

func (d *Decoder) makeSetStruct(build *setterBuild, ty reflect.Type) (setter, error) {
	var setters []setter

	structTag := d.structTag
	if structTag == "" {
		structTag = "json"
	}

	fields := structFieldsOf(ty, structTag)

	for _, field := range fields {
		de, err := d.setterOf(build, field.Type)
		if err != nil {
			return nil, fmt.Errorf("setter for field %q: %w", field.Name, err)
		}

		setters = append(setters, de)
	}

	setter := func(source Source, target reflect.Value) error {
		for idx, field := range fields {
			fieldSource, err := source.Get(field.Name)
			switch {
			case errors.Is(err, ErrNoValue):
				if d.requireValues || field.Required {
					return &FieldDecodeError{
						Path:     Path{Key(field.Name)},
						Expected: field.Type.String(),
						Actual:   "nothing",
						Err:      err,
					}
				}

				// It is okay to not get a value at all,
				// in that case we just skip the field
				continue

			case errors.Is(err, ErrNotSupported):
				// not an object at all
				return fieldError(source, ty.String(), err)

			case err != nil:
				return &FieldDecodeError{
					Path:     Path{Key(field.Name)},
					Expected: field.Type.String(),
					Actual:   "unreadable value",
					Err:      fmt.Errorf("lookup child: %w", err),
				}
			}

			fieldValue := target.FieldByIndex(field.Index)
			if err := setters[idx](fieldSource, fieldValue); err != nil {
				return withPath(err, Key(field.Name))
			}
		}

		return nil
	}

	return setter, nil
}

func (d *Decoder) makeSetMap(build *setterBuild, ty reflect.Type) (setter, error) {
	keySetter, err := d.setterOf(build, ty.Key())
	if err != nil {
		return nil, fmt.Errorf("setter for key type %q: %w", ty, err)
	}

	valueSetter, err := d.setterOf(build, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("setter for value type %q: %w", ty, err)
	}

	keyType := ty.Key()
	valueType := ty.Elem()

	setter := func(source Source, target reflect.Value) error {
		keyValues, err := source.KeyValues()
		if err != nil {
			return fieldError(source, ty.String(), err)
		}

		mapTarget := reflect.MakeMap(ty)

		for keySource, valueSource := range keyValues {
			keyName := describe(keySource)
			if name, err := fork(keySource).String(); err == nil {
				keyName = name
			}

			keyTarget := reflect.New(keyType).Elem()
			if err := keySetter(keySource, keyTarget); err != nil {
				return withPath(err, Key(keyName))
			}

			valueTarget := reflect.New(valueType).Elem()
			if err := valueSetter(valueSource, valueTarget); err != nil {
				return withPath(err, Key(keyName))
			}

			mapTarget.SetMapIndex(keyTarget, valueTarget)
		}

		target.Set(mapTarget)

		return nil
	}

	return setter, nil
}

func (d *Decoder) makeSetSlice(build *setterBuild, ty reflect.Type) (setter, error) {
	elementSetter, err := d.setterOf(build, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("setter for element type %q: %w", ty, err)
	}

	// a empty element
	placeholderValue := reflect.New(ty.Elem()).Elem()

	setter := func(source Source, target reflect.Value) error {
		sourceIter, err := source.Iter()
		if err != nil {
			return fieldError(source, ty.String(), err)
		}

		target.Set(reflect.MakeSlice(ty, 0, 0))

		for elementSource := range sourceIter {
			// add an empty element to grow the list
			target.Set(reflect.Append(target, placeholderValue))

			idx := target.Len() - 1
			elementValue := target.Index(idx)
			if err := elementSetter(elementSource, elementValue); err != nil {
				return withPath(err, Index(idx))
			}
		}

		return nil
	}

	return setter, nil
}

func (d *Decoder) makeSetArray(build *setterBuild, ty reflect.Type) (setter, error) {
	elementSetter, err := d.setterOf(build, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("setter for element type %q: %w", ty, err)
	}

	// number of elements in the array
	elementCount := ty.Len()

	setter := func(source Source, target reflect.Value) error {
		sourceIter, err := source.Iter()
		if err != nil {
			return fieldError(source, ty.String(), err)
		}

		next, stop := iter.Pull(sourceIter)
		defer stop()

		for idx := 0; idx < elementCount; idx++ {
			elementSource, ok := next()
			if !ok {
				break
			}

			elementValue := target.Index(idx)
			if err := elementSetter(elementSource, elementValue); err != nil {
				return withPath(err, Index(idx))
			}
		}

		return nil
	}

	return setter, nil
}

func (d *Decoder) makeSetPointer(build *setterBuild, ty reflect.Type) (setter, error) {
	pointeeType := ty.Elem()

	pointeeSetter, err := d.setterOf(build, pointeeType)
	if err != nil {
		return nil, err
	}

	setter := func(source Source, target reflect.Value) error {
		// newValue is now a pointer to an instance of the pointeeType
		newValue := reflect.New(pointeeType)
		if err := pointeeSetter(source, newValue.Elem()); err != nil {
			return err
		}

		// set pointer to the new value
		target.Set(newValue)

		return nil
	}

	return setter, nil
}

func setBool(source Source, target reflect.Value) error {
	boolValue, err := source.Bool()
	if err != nil {
		return fieldError(source, "bool", err)
	}

	target.SetBool(boolValue)
	return nil
}

func makeSetInt[T constraints.Integer, V int64 | uint64](
	sized func(BinarySource) (T, error),
	generic func(Source) (V, error),
	setValue func(reflect.Value, V),
	minValue, maxValue V,
) setter {
	return func(source Source, target reflect.Value) error {
		if binarySource, ok := source.(BinarySource); ok {
			parsedValue, err := sized(binarySource)
			if err != nil {
				return fieldError(source, target.Type().String(), err)
			}

			setValue(target, V(parsedValue))
			return nil
		}

		// no binary source, need to fallback to the generic method
		intValue, err := generic(source)
		if err != nil {
			return fieldError(source, target.Type().String(), err)
		}

		if intValue < minValue || intValue > maxValue {
			err := fmt.Errorf("value %d: %w", intValue, strconv.ErrRange)
			return fieldError(source, target.Type().String(), err)
		}

		setValue(target, intValue)
		return nil
	}
}

func makeSetFloat[T float32 | float64](sized func(BinarySource) (T, error)) setter {
	return func(source Source, target reflect.Value) error {
		if binarySource, ok := source.(BinarySource); ok {
			floatValue, err := sized(binarySource)
			if err != nil {
				return fieldError(source, target.Type().String(), err)
			}

			target.SetFloat(float64(floatValue))
			return nil
		}

		floatValue, err := source.Float()
		if err != nil {
			return fieldError(source, target.Type().String(), err)
		}

		if target.OverflowFloat(floatValue) {
			err := fmt.Errorf("value %g: %w", floatValue, strconv.ErrRange)
			return fieldError(source, target.Type().String(), err)
		}

		target.SetFloat(floatValue)
		return nil
	}
}

func setString(source Source, target reflect.Value) error {
	stringValue, err := source.String()
	if err != nil {
		return fieldError(source, "string", err)
	}

	target.SetString(stringValue)

	return nil
}

func setTextUnmarshaler(source Source, target reflect.Value) error {
	text, err := source.String()
	if err != nil {
		return fieldError(source, target.Type().String(), err)
	}

	m := target.Addr().Interface().(encoding.TextUnmarshaler)
	if err := m.UnmarshalText([]byte(text)); err != nil {
		return &FieldDecodeError{
			Expected: target.Type().String(),
			Actual:   strconv.Quote(text),
			Err:      err,
		}
	}

	return nil
}

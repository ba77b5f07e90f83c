package tagged

import (
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"
	"strconv"
)

// AnySource adapts an already decoded Go value to a Source. It understands the values
// produced by encoding/json style decoders: map[string]any, []any, string, bool, float64,
// json.Number like types, signed and unsigned integers and nil.
//
// A nil child value is reported as ErrNoValue by Get.
type AnySource struct {
	Value any
}

var _ Source = AnySource{}

// number is implemented by json.Number and compatible types.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

func (a AnySource) Bool() (bool, error) {
	if boolValue, ok := a.Value.(bool); ok {
		return boolValue, nil
	}

	return false, ErrNotSupported
}

func (a AnySource) Int() (int64, error) {
	switch value := a.Value.(type) {
	case int:
		return int64(value), nil
	case int8:
		return int64(value), nil
	case int16:
		return int64(value), nil
	case int32:
		return int64(value), nil
	case int64:
		return value, nil
	case uint, uint8, uint16, uint32, uint64:
		uintValue, _ := a.Uint()
		if uintValue > math.MaxInt64 {
			return 0, fmt.Errorf("value %d: %w", uintValue, strconv.ErrRange)
		}

		return int64(uintValue), nil

	case float64:
		if value != math.Trunc(value) || math.IsInf(value, 0) {
			return 0, ErrNotSupported
		}

		if value < math.MinInt64 || value >= math.MaxInt64 {
			return 0, fmt.Errorf("value %g: %w", value, strconv.ErrRange)
		}

		return int64(value), nil

	case number:
		return StringSource(value.String()).Int()

	default:
		return 0, ErrNotSupported
	}
}

func (a AnySource) Uint() (uint64, error) {
	switch value := a.Value.(type) {
	case uint:
		return uint64(value), nil
	case uint8:
		return uint64(value), nil
	case uint16:
		return uint64(value), nil
	case uint32:
		return uint64(value), nil
	case uint64:
		return value, nil

	case number:
		return StringSource(value.String()).Uint()

	default:
		intValue, err := a.Int()
		if err != nil {
			return 0, err
		}

		if intValue < 0 {
			return 0, fmt.Errorf("value %d: %w", intValue, strconv.ErrRange)
		}

		return uint64(intValue), nil
	}
}

func (a AnySource) Float() (float64, error) {
	switch value := a.Value.(type) {
	case float64:
		return value, nil
	case float32:
		return float64(value), nil
	case number:
		return value.Float64()
	}

	intValue, err := a.Int()
	if err != nil {
		return 0, ErrNotSupported
	}

	return float64(intValue), nil
}

func (a AnySource) String() (string, error) {
	if stringValue, ok := a.Value.(string); ok {
		return stringValue, nil
	}

	return "", ErrNotSupported
}

func (a AnySource) Get(key string) (Source, error) {
	object, ok := a.Value.(map[string]any)
	if !ok {
		return nil, ErrNotSupported
	}

	value, ok := object[key]
	if !ok || value == nil {
		return nil, ErrNoValue
	}

	return AnySource{Value: value}, nil
}

func (a AnySource) KeyValues() (iter.Seq2[Source, Source], error) {
	object, ok := a.Value.(map[string]any)
	if !ok {
		return nil, ErrNotSupported
	}

	it := func(yield func(Source, Source) bool) {
		for _, key := range slices.Sorted(maps.Keys(object)) {
			if !yield(StringSource(key), AnySource{Value: object[key]}) {
				return
			}
		}
	}

	return it, nil
}

func (a AnySource) Iter() (iter.Seq[Source], error) {
	elements, ok := a.Value.([]any)
	if !ok {
		return nil, ErrNotSupported
	}

	it := func(yield func(Source) bool) {
		for _, element := range elements {
			if !yield(AnySource{Value: element}) {
				return
			}
		}
	}

	return it, nil
}

// Fork returns the source itself, an AnySource has no read position.
func (a AnySource) Fork() Source {
	return a
}

func (a AnySource) Describe() string {
	switch value := a.Value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(value)
	case map[string]any:
		return fmt.Sprintf("object with %d fields", len(value))
	case []any:
		return fmt.Sprintf("array with %d elements", len(value))
	default:
		return fmt.Sprintf("%v", value)
	}
}

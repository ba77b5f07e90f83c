package tagged

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validateValue runs the configured validator on value if it is a struct or a pointer to one.
func (d *Decoder) validateValue(value reflect.Value) error {
	if d.validate == nil {
		return nil
	}

	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil
		}

		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		return nil
	}

	err := d.validate.Struct(value.Interface())
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("validate %s: %w", value.Type(), err)
	}

	// report the first violation only, like every other decode error
	fe := validationErrors[0]

	expected := fe.Tag()
	if fe.Param() != "" {
		expected += "=" + fe.Param()
	}

	return &FieldDecodeError{
		Path:     d.validationPath(value.Type(), fe.StructNamespace()),
		Expected: expected,
		Actual:   describeValidated(fe.Value()),
		Err:      fe,
	}
}

// validationPath translates a validator struct namespace like "Image.Header.ID" or
// "Post.Tags[2]" into a coding path using the decoders field names.
func (d *Decoder) validationPath(ty reflect.Type, namespace string) Path {
	segments := strings.Split(namespace, ".")
	if len(segments) > 0 {
		// the first segment is the name of the validated type
		segments = segments[1:]
	}

	var path Path

	for _, segment := range segments {
		name, subscripts := splitSubscripts(segment)

		for ty.Kind() == reflect.Pointer {
			ty = ty.Elem()
		}

		if ty.Kind() != reflect.Struct {
			break
		}

		fi, ok := ty.FieldByName(name)
		if !ok {
			break
		}

		tag := parseFieldTag(fi, d.structTag)
		if !fi.Anonymous || tag.Explicit {
			path = append(path, Key(tag.Name))
		}

		ty = fi.Type

		for _, subscript := range subscripts {
			if idx, err := strconv.Atoi(subscript); err == nil {
				path = append(path, Index(idx))
			} else {
				path = append(path, Key(subscript))
			}

			for ty.Kind() == reflect.Pointer {
				ty = ty.Elem()
			}

			if ty.Kind() == reflect.Slice || ty.Kind() == reflect.Array || ty.Kind() == reflect.Map {
				ty = ty.Elem()
			}
		}
	}

	return path
}

// splitSubscripts splits "Tags[2]" into "Tags" and ["2"].
func splitSubscripts(segment string) (string, []string) {
	name, rest, found := strings.Cut(segment, "[")
	if !found {
		return segment, nil
	}

	var subscripts []string
	for _, part := range strings.Split(rest, "[") {
		subscripts = append(subscripts, strings.TrimSuffix(part, "]"))
	}

	return name, subscripts
}

func describeValidated(value any) string {
	if str, ok := value.(string); ok {
		return strconv.Quote(str)
	}

	return fmt.Sprintf("%v", value)
}

package tagged

import "errors"

// ReadDiscriminator returns the value of the discriminator field of a record without
// consuming the record. The lookup happens on a fork of source if source implements
// [Forker]. Otherwise [Source.Get] must be free of side effects.
//
// It fails with a [MissingDiscriminatorError] if the record has no such field and with a
// [FieldDecodeError] if the record is not an object or the discriminator is not a string.
func ReadDiscriminator(source Source, field string) (string, error) {
	peek := fork(source)

	tagSource, err := peek.Get(field)
	switch {
	case errors.Is(err, ErrNoValue):
		return "", &MissingDiscriminatorError{Field: field}

	case err != nil:
		return "", fieldError(peek, "object", err)
	}

	tag, err := tagSource.String()
	if err != nil {
		return "", withPath(fieldError(tagSource, "string", err), Key(field))
	}

	return tag, nil
}

package tagged

import "iter"

// Source represents the abstract interface to a serialized value. A record, the discriminator
// within a record and the collection of records are all accessed through it.
//
// A [Source] provides methods to interpret the underlying data in different forms:
//   - **Primitive types**: conversion to `bool`, `int64`, `uint64`, `float64` and `string`.
//   - **Objects**: access to a named child value using [Source.Get].
//   - **Collections**: sequential access to the elements of a list using [Source.Iter].
//   - **Maps**: traversal of key/value pairs via [Source.KeyValues].
//
// If converting the [Source] into a particular form isn't possible, the method must return
// [ErrNotSupported]. If an object does not contain a requested child, [Source.Get] must return
// [ErrNoValue].
//
// Methods are not required to be idempotent. A source streaming from an [io.Reader] consumes
// data with each call. Such a source should implement [Forker], otherwise peeking at the
// discriminator of a record would consume data needed to decode the record afterwards.
//
// The package includes two building blocks for custom implementations: [StringSource] parses
// text using the strconv package, and [EmptySource] returns [ErrNotSupported] for everything.
type Source interface {
	// Bool returns the current value as a bool.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Bool() (bool, error)

	// Int returns the current value as an int64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Int() (int64, error)

	// Uint returns the current value as an uint64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Uint() (uint64, error)

	// Float returns the current value as a float64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Float() (float64, error)

	// String returns the current value as a string.
	// Returns error ErrNotSupported if the value can not be represented as such.
	String() (string, error)

	// Get returns a child value of this [Source] if it exists.
	// Returns error [ErrNotSupported] if the current [Source] does not have any
	// child values. If the [Source] does have children, but just not the
	// requested child, [ErrNoValue] must be returned.
	Get(key string) (Source, error)

	// KeyValues interprets the [Source] as a map and iterates over the
	// elements within. It yields a pair of key and value [Source] instances.
	// Returns [ErrNotSupported] if the [Source] is not a map.
	KeyValues() (iter.Seq2[Source, Source], error)

	// Iter interprets the [Source] as a collection and iterates over the
	// elements within.
	// Returns [ErrNotSupported] if the [Source] is not iterable.
	Iter() (iter.Seq[Source], error)
}

// Forker is implemented by sources that can create an independent read cursor over the
// same value. Reading from the fork must not affect the original source.
type Forker interface {
	Fork() Source
}

// Describer is implemented by sources that can describe their current value for
// diagnostics, e.g. the raw JSON text of a value. The description is used as
// [FieldDecodeError.Actual].
type Describer interface {
	Describe() string
}

// BinarySource extends the [Source] interface by methods for extracting integer and float
// values of a specific bit size. The [Decoder] prefers these methods over [Source.Int],
// [Source.Uint] and [Source.Float], which is useful for binary formats where the size of a
// value on the wire is given by the type of the target.
type BinarySource interface {
	Source

	Int8() (int8, error)
	Int16() (int16, error)
	Int32() (int32, error)
	Int64() (int64, error)

	Uint8() (uint8, error)
	Uint16() (uint16, error)
	Uint32() (uint32, error)
	Uint64() (uint64, error)

	Float32() (float32, error)
	Float64() (float64, error)
}

// fork returns an independent cursor for source if it supports one. Otherwise the source
// itself is returned and reading from it is assumed to be free of side effects.
func fork(source Source) Source {
	if forker, ok := source.(Forker); ok {
		return forker.Fork()
	}

	return source
}

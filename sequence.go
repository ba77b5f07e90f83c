package tagged

import (
	"errors"

	"go.uber.org/zap"
)

// State is the state of a SequenceDecoder.
type State int

const (
	StateNotStarted State = iota
	StateReading
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateReading:
		return "reading"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SequenceDecoder decodes a collection of tagged records into a slice of the base
// interface T. A SequenceDecoder is used for exactly one collection and is not safe for
// concurrent use. Decode independent collections with independent SequenceDecoders,
// they may share the Registry and the Decoder.
type SequenceDecoder[T any] struct {
	registry *Registry[T]
	decoder  *Decoder

	state State
	index int
	err   error
}

// NewSequenceDecoder creates a SequenceDecoder. If decoder is nil, the default Decoder is used.
func NewSequenceDecoder[T any](registry *Registry[T], decoder *Decoder) *SequenceDecoder[T] {
	if decoder == nil {
		decoder = dec
	}

	return &SequenceDecoder[T]{
		registry: registry,
		decoder:  decoder,
	}
}

// State returns the current state of the decoder.
func (s *SequenceDecoder[T]) State() State {
	return s.state
}

// Index returns the number of records decoded so far. In StateFailed this is the
// index of the failing record.
func (s *SequenceDecoder[T]) Index() int {
	return s.index
}

// Err returns the error that moved the decoder into StateFailed.
func (s *SequenceDecoder[T]) Err() error {
	return s.err
}

// Decode decodes every element of the collection source. Either all records are decoded,
// in which case the result has one value per record in input order, or the first failing
// record aborts decoding and nil is returned along with an error whose coding path starts
// at the index of that record. An empty collection yields an empty, non nil slice.
func (s *SequenceDecoder[T]) Decode(source Source) ([]T, error) {
	return s.decode(source, nil)
}

// DecodeField decodes the collection stored in field of the object source, e.g. the
// "messages" array of a JSON document.
func (s *SequenceDecoder[T]) DecodeField(source Source, field string) ([]T, error) {
	if s.state != StateNotStarted {
		return nil, ErrDecoderUsed
	}

	collection, err := source.Get(field)
	switch {
	case errors.Is(err, ErrNoValue):
		return nil, s.fail(&FieldDecodeError{
			Path:     Path{Key(field)},
			Expected: "collection",
			Actual:   "nothing",
			Err:      err,
		})

	case err != nil:
		return nil, s.fail(fieldError(source, "object", err))
	}

	return s.decode(collection, Path{Key(field)})
}

func (s *SequenceDecoder[T]) decode(source Source, prefix Path) ([]T, error) {
	if s.state != StateNotStarted {
		return nil, ErrDecoderUsed
	}

	log := s.decoder.log()

	records, err := source.Iter()
	if err != nil {
		return nil, s.fail(withPath(fieldError(source, "collection", err), prefix...))
	}

	s.state = StateReading
	log.Debug("Start decoding sequence", zap.String("discriminator", s.registry.field))

	values := make([]T, 0)

	for record := range records {
		value, err := DecodeRecord(s.decoder, s.registry, record)
		if err != nil {
			log.Debug("Decoding record failed", zap.Int("index", s.index), zap.Error(err))

			elemPath := append(prefix[:len(prefix):len(prefix)], Index(s.index))
			return nil, s.fail(recordError(record, err, elemPath))
		}

		values = append(values, value)
		s.index++
	}

	s.state = StateDone
	log.Debug("Finished decoding sequence", zap.Int("records", len(values)))

	return values, nil
}

// recordError attaches the path of a record to err. Errors without a coding path, like a
// NotSupportedError for a variant type, are wrapped into a FieldDecodeError.
func recordError(record Source, err error, path Path) error {
	var pe pathError
	if !errors.As(err, &pe) {
		return &FieldDecodeError{Path: path, Expected: "record", Actual: describe(record), Err: err}
	}

	return withPath(err, path...)
}

func (s *SequenceDecoder[T]) fail(err error) error {
	s.state = StateFailed
	s.err = err
	return err
}

// DecodeSequence decodes the collection source using the default Decoder.
func DecodeSequence[T any](registry *Registry[T], source Source) ([]T, error) {
	return NewSequenceDecoder(registry, nil).Decode(source)
}

// DecodeSequenceField decodes the collection in field of source using the default Decoder.
func DecodeSequenceField[T any](registry *Registry[T], source Source, field string) ([]T, error) {
	return NewSequenceDecoder(registry, nil).DecodeField(source, field)
}

// Package tagjson connects JSON documents to the tagged package. [Parse] exposes a document
// as a lazily evaluated tagged.Source, [Marshal] encodes decoded variants back to JSON with
// their discriminator.
package tagjson

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"unicode/utf8"

	"github.com/go-gum/tagged"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

var ErrInvalidJSON = errors.New("invalid json")

// maximum length of a raw value in error descriptions
const describeLimit = 64

// Parse validates data and returns a Source for the document. Values are located lazily
// on access, reading a value never changes the source, so forking is free.
func Parse(data []byte) (tagged.Source, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	return Source{result: gjson.ParseBytes(data)}, nil
}

// ParseTree decodes data completely and returns the resulting tree as a tagged.AnySource.
// Numbers are kept as json.Number to not lose precision for large integers.
func ParseTree(data []byte) (tagged.Source, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var tree any
	if err := decoder.Decode(&tree); err != nil {
		return nil, errors.Join(ErrInvalidJSON, err)
	}

	if decoder.More() {
		return nil, fmt.Errorf("%w: trailing data after document", ErrInvalidJSON)
	}

	return tagged.AnySource{Value: tree}, nil
}

// Source is a tagged.Source backed by a gjson.Result.
type Source struct {
	result gjson.Result
}

var _ tagged.Source = Source{}

func (s Source) Bool() (bool, error) {
	switch s.result.Type {
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	default:
		return false, tagged.ErrNotSupported
	}
}

func (s Source) Int() (int64, error) {
	if s.result.Type != gjson.Number {
		return 0, tagged.ErrNotSupported
	}

	return tagged.StringSource(s.result.Raw).Int()
}

func (s Source) Uint() (uint64, error) {
	if s.result.Type != gjson.Number {
		return 0, tagged.ErrNotSupported
	}

	return tagged.StringSource(s.result.Raw).Uint()
}

func (s Source) Float() (float64, error) {
	if s.result.Type != gjson.Number {
		return 0, tagged.ErrNotSupported
	}

	return strconv.ParseFloat(s.result.Raw, 64)
}

func (s Source) String() (string, error) {
	if s.result.Type != gjson.String {
		return "", tagged.ErrNotSupported
	}

	return s.result.Str, nil
}

// Get looks up a member of a JSON object. The member name is compared literally,
// it is not interpreted as a gjson path. A member with a null value counts as missing.
func (s Source) Get(key string) (tagged.Source, error) {
	if !s.result.IsObject() {
		return nil, tagged.ErrNotSupported
	}

	var found gjson.Result
	var ok bool

	s.result.ForEach(func(name, value gjson.Result) bool {
		if name.Str == key {
			found, ok = value, true
			return false
		}

		return true
	})

	if !ok || found.Type == gjson.Null {
		return nil, tagged.ErrNoValue
	}

	return Source{result: found}, nil
}

func (s Source) KeyValues() (iter.Seq2[tagged.Source, tagged.Source], error) {
	if !s.result.IsObject() {
		return nil, tagged.ErrNotSupported
	}

	it := func(yield func(tagged.Source, tagged.Source) bool) {
		s.result.ForEach(func(name, value gjson.Result) bool {
			return yield(tagged.StringSource(name.Str), Source{result: value})
		})
	}

	return it, nil
}

func (s Source) Iter() (iter.Seq[tagged.Source], error) {
	if !s.result.IsArray() {
		return nil, tagged.ErrNotSupported
	}

	it := func(yield func(tagged.Source) bool) {
		s.result.ForEach(func(_, value gjson.Result) bool {
			return yield(Source{result: value})
		})
	}

	return it, nil
}

// Fork returns the source itself, a Source has no read position.
func (s Source) Fork() tagged.Source {
	return s
}

// Describe returns the raw JSON of the value, shortened if necessary.
func (s Source) Describe() string {
	raw := s.result.Raw
	if len(raw) > describeLimit {
		// do not split a multi byte character
		cut := describeLimit
		for cut > 0 && !utf8.RuneStart(raw[cut]) {
			cut--
		}

		raw = raw[:cut] + "..."
	}

	return raw
}

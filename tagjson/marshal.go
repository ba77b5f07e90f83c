package tagjson

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-gum/tagged"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Unmarshal decodes a JSON array of tagged records.
func Unmarshal[T any](registry *tagged.Registry[T], data []byte) ([]T, error) {
	return UnmarshalWith(nil, registry, data)
}

// UnmarshalWith decodes a JSON array of tagged records using the given decoder.
// A nil decoder uses the default decoder of the tagged package.
func UnmarshalWith[T any](decoder *tagged.Decoder, registry *tagged.Registry[T], data []byte) ([]T, error) {
	source, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return tagged.NewSequenceDecoder(registry, decoder).Decode(source)
}

// UnmarshalField decodes the array of tagged records stored in field of a JSON object.
func UnmarshalField[T any](registry *tagged.Registry[T], data []byte, field string) ([]T, error) {
	source, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return tagged.NewSequenceDecoder(registry, nil).DecodeField(source, field)
}

// Marshal encodes values as a JSON array. Every value is encoded as a JSON object and the
// discriminator registered for its type is written into the registries discriminator field.
func Marshal[T any](registry *tagged.Registry[T], values []T) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for idx, value := range values {
		record, err := marshalRecord(registry, value)
		if err != nil {
			return nil, fmt.Errorf("marshal element %d: %w", idx, err)
		}

		if idx > 0 {
			buf.WriteByte(',')
		}

		buf.Write(record)
	}

	buf.WriteByte(']')

	return buf.Bytes(), nil
}

// MarshalField encodes values like Marshal and wraps the array into an object
// with a single member named field.
func MarshalField[T any](registry *tagged.Registry[T], field string, values []T) ([]byte, error) {
	array, err := Marshal(registry, values)
	if err != nil {
		return nil, err
	}

	return sjson.SetRawBytes([]byte("{}"), escapePath(field), array)
}

func marshalRecord[T any](registry *tagged.Registry[T], value T) ([]byte, error) {
	tag, ok := registry.TagOf(value)
	if !ok {
		return nil, fmt.Errorf("type %T is not registered", value)
	}

	record, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	if !gjson.ParseBytes(record).IsObject() {
		return nil, fmt.Errorf("type %T does not encode to a json object", value)
	}

	return sjson.SetBytes(record, escapePath(registry.Field()), tag)
}

// escapePath escapes a member name for use as a literal sjson path.
func escapePath(name string) string {
	var sb strings.Builder
	for _, ch := range name {
		switch ch {
		case '\\', '.', '*', '?', '|', '#', '@', ':', '!', '=', '<', '>', '%':
			sb.WriteByte('\\')
		}

		sb.WriteRune(ch)
	}

	return sb.String()
}

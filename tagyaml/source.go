// Package tagyaml exposes YAML documents as a tagged.Source.
package tagyaml

import (
	"errors"
	"fmt"
	"iter"

	"github.com/go-gum/tagged"
	"gopkg.in/yaml.v3"
)

const (
	tagNull      = "!!null"
	tagBool      = "!!bool"
	tagInt       = "!!int"
	tagFloat     = "!!float"
	tagString    = "!!str"
	tagTimestamp = "!!timestamp"
)

var ErrEmptyDocument = errors.New("empty document")

// Parse parses the first YAML document in data.
func Parse(data []byte) (tagged.Source, error) {
	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if document.Kind != yaml.DocumentNode || len(document.Content) == 0 {
		return nil, ErrEmptyDocument
	}

	return NewSource(document.Content[0]), nil
}

// NewSource wraps a yaml node. Aliases are resolved transparently.
func NewSource(node *yaml.Node) tagged.Source {
	return Source{node: resolve(node)}
}

// Source is a tagged.Source backed by a *yaml.Node. Reading never modifies the node.
type Source struct {
	node *yaml.Node
}

var _ tagged.Source = Source{}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}

	return node
}

func (s Source) scalar(tags ...string) bool {
	if s.node.Kind != yaml.ScalarNode {
		return false
	}

	for _, tag := range tags {
		if s.node.ShortTag() == tag {
			return true
		}
	}

	return false
}

func (s Source) Bool() (bool, error) {
	if !s.scalar(tagBool) {
		return false, tagged.ErrNotSupported
	}

	var value bool
	if err := s.node.Decode(&value); err != nil {
		return false, errors.Join(err, tagged.ErrNotSupported)
	}

	return value, nil
}

func (s Source) Int() (int64, error) {
	if !s.scalar(tagInt) {
		return 0, tagged.ErrNotSupported
	}

	var value int64
	if err := s.node.Decode(&value); err != nil {
		return 0, fmt.Errorf("decode %q: %w", s.node.Value, err)
	}

	return value, nil
}

func (s Source) Uint() (uint64, error) {
	if !s.scalar(tagInt) {
		return 0, tagged.ErrNotSupported
	}

	var value uint64
	if err := s.node.Decode(&value); err != nil {
		return 0, fmt.Errorf("decode %q: %w", s.node.Value, err)
	}

	return value, nil
}

func (s Source) Float() (float64, error) {
	if !s.scalar(tagFloat, tagInt) {
		return 0, tagged.ErrNotSupported
	}

	var value float64
	if err := s.node.Decode(&value); err != nil {
		return 0, fmt.Errorf("decode %q: %w", s.node.Value, err)
	}

	return value, nil
}

// String returns string scalars. Timestamps are returned in their textual form, so
// they can be parsed by a time.Time field.
func (s Source) String() (string, error) {
	if !s.scalar(tagString, tagTimestamp) {
		return "", tagged.ErrNotSupported
	}

	return s.node.Value, nil
}

func (s Source) Get(key string) (tagged.Source, error) {
	if s.node.Kind != yaml.MappingNode {
		return nil, tagged.ErrNotSupported
	}

	for idx := 0; idx+1 < len(s.node.Content); idx += 2 {
		if s.node.Content[idx].Value != key {
			continue
		}

		value := resolve(s.node.Content[idx+1])
		if value.Kind == yaml.ScalarNode && value.ShortTag() == tagNull {
			return nil, tagged.ErrNoValue
		}

		return Source{node: value}, nil
	}

	return nil, tagged.ErrNoValue
}

func (s Source) KeyValues() (iter.Seq2[tagged.Source, tagged.Source], error) {
	if s.node.Kind != yaml.MappingNode {
		return nil, tagged.ErrNotSupported
	}

	it := func(yield func(tagged.Source, tagged.Source) bool) {
		for idx := 0; idx+1 < len(s.node.Content); idx += 2 {
			key := Source{node: resolve(s.node.Content[idx])}
			value := Source{node: resolve(s.node.Content[idx+1])}
			if !yield(key, value) {
				return
			}
		}
	}

	return it, nil
}

func (s Source) Iter() (iter.Seq[tagged.Source], error) {
	if s.node.Kind != yaml.SequenceNode {
		return nil, tagged.ErrNotSupported
	}

	it := func(yield func(tagged.Source) bool) {
		for _, element := range s.node.Content {
			if !yield(Source{node: resolve(element)}) {
				return
			}
		}
	}

	return it, nil
}

// Fork returns the source itself, a Source has no read position.
func (s Source) Fork() tagged.Source {
	return s
}

func (s Source) Describe() string {
	switch s.node.Kind {
	case yaml.MappingNode:
		return fmt.Sprintf("mapping at line %d", s.node.Line)
	case yaml.SequenceNode:
		return fmt.Sprintf("sequence at line %d", s.node.Line)
	default:
		return fmt.Sprintf("%s %q at line %d", s.node.ShortTag(), s.node.Value, s.node.Line)
	}
}

package tagged

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func fieldNames(fields []structField) []string {
	var names []string
	for _, field := range fields {
		names = append(names, field.Name)
	}

	return names
}

func TestStructFields_JsonTags(t *testing.T) {
	type Struct struct {
		A string
		B string `json:"bee"`
		C string `json:"-"`
		D string `json:",omitempty"` // same as no json tag
		E string `json:"e,required"`

		// not exported, must not be listed
		f string
	}

	fields := structFieldsOf(reflect.TypeFor[Struct](), "json")
	require.Equal(t, []string{"A", "bee", "D", "e"}, fieldNames(fields))
	require.False(t, fields[0].Required)
	require.True(t, fields[3].Required)
}

func TestStructFields_OtherTag(t *testing.T) {
	type Struct struct {
		Foo string `url:"foo" json:"bar"`
	}

	require.Equal(t, []string{"bar"}, fieldNames(structFieldsOf(reflect.TypeFor[Struct](), "json")))
	require.Equal(t, []string{"foo"}, fieldNames(structFieldsOf(reflect.TypeFor[Struct](), "url")))
}

func TestNaming_JsonTagExplicit(t *testing.T) {
	type Struct struct {
		A string
		B string `json:"A"`
	}

	source := AnySource{Value: map[string]any{"A": "A", "B": "B"}}

	value, err := UnmarshalNew[Struct](source)
	require.NoError(t, err)
	require.Equal(t, Struct{B: "A"}, value)
}

func TestNaming_EmbeddedNamingConflict(t *testing.T) {
	type First struct{ A string }
	type Second struct{ A string }

	type Struct struct {
		First
		Second
	}

	value, err := UnmarshalNew[Struct](AnySource{Value: map[string]any{"A": "A"}})
	require.NoError(t, err)
	require.Equal(t, Struct{
		// naming conflict, nothing deserializes
	}, value)
}

func TestNaming_EmbeddedNamingExplicitWinsOnSameNesting(t *testing.T) {
	type First struct {
		A string
	}
	type Second struct {
		A string `json:"A"` // this one wins
	}

	type Struct struct {
		First
		Second
	}

	value, err := UnmarshalNew[Struct](AnySource{Value: map[string]any{"A": "A"}})
	require.NoError(t, err)
	require.Equal(t, Struct{Second: Second{A: "A"}}, value)
}

func TestNaming_EmbeddedLowerNestingWins(t *testing.T) {
	type First struct{ A string }

	type Struct struct {
		First
		A string // this one wins
	}

	value, err := UnmarshalNew[Struct](AnySource{Value: map[string]any{"A": "A"}})
	require.NoError(t, err)
	require.Equal(t, Struct{A: "A"}, value)
}

func TestNaming_EmbeddingWithExplicitTag(t *testing.T) {
	type First struct{ A string }

	type Struct struct {
		First `json:"first"`
		A     string
	}

	source := AnySource{Value: map[string]any{
		"A":     "A",
		"first": map[string]any{"A": "FirstA"},
	}}

	value, err := UnmarshalNew[Struct](source)
	require.NoError(t, err)
	require.Equal(t, Struct{A: "A", First: First{A: "FirstA"}}, value)
}

func TestNaming_NoEmbeddingWithPointer(t *testing.T) {
	type First struct{ A string }

	type Struct struct {
		*First
	}

	value, err := UnmarshalNew[Struct](AnySource{Value: map[string]any{"A": "A"}})
	require.NoError(t, err)
	require.Equal(t, Struct{}, value)
}

func TestNaming_MultipleEmbeddedTypes(t *testing.T) {
	type First struct {
		A string
		B string
		D string `json:"D"`
	}

	type Second struct {
		A string // neither First.A, nor Second.A are filled
		B string `json:"C"` // First.B and Second.B are both filled
		D string // Only first.D is filled
	}

	type Struct struct {
		First
		Second
	}

	source := AnySource{Value: map[string]any{
		"A": "A",
		"B": "FirstB",
		"C": "SecondB",
		"D": "FirstD",
	}}

	value, err := UnmarshalNew[Struct](source)
	require.NoError(t, err)
	require.Equal(t, Struct{
		First:  First{B: "FirstB", D: "FirstD"},
		Second: Second{B: "SecondB"},
	}, value)
}

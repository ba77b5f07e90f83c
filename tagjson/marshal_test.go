package tagjson

import (
	"testing"

	"github.com/go-gum/tagged"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type shape interface {
	area() float64
}

type circle struct {
	Radius float64 `json:"radius"`
}

func (c circle) area() float64 { return 3 * c.Radius * c.Radius }

type rect struct {
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

func (r *rect) area() float64 { return r.Width * r.Height }

type triangle struct{}

func (triangle) area() float64 { return 0 }

var shapes = tagged.MustRegistry("kind",
	tagged.Case[shape, circle]("circle"),
	tagged.Case[shape, rect]("rect"),
)

func TestUnmarshal(t *testing.T) {
	values, err := Unmarshal(shapes, []byte(`[
		{"kind": "circle", "radius": 2},
		{"kind": "rect", "w": 3, "h": 4.5}
	]`))

	require.NoError(t, err)
	require.Equal(t, []shape{circle{Radius: 2}, &rect{Width: 3, Height: 4.5}}, values)
}

func TestUnmarshalUnknownKind(t *testing.T) {
	values, err := Unmarshal(shapes, []byte(`[
		{"kind": "circle", "radius": 2},
		{"kind": "hexagon", "side": 1}
	]`))

	require.Nil(t, values)

	var unknownErr *tagged.UnknownDiscriminatorError
	require.ErrorAs(t, err, &unknownErr)
	require.Equal(t, "hexagon", unknownErr.Value)
	require.Equal(t, "$[1].kind", unknownErr.Path.String())
}

func TestUnmarshalField(t *testing.T) {
	data := []byte(`{"version": 1, "shapes": [{"kind": "circle", "radius": "big"}]}`)

	_, err := UnmarshalField(shapes, data, "shapes")

	var fieldErr *tagged.FieldDecodeError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "$.shapes[0].radius", fieldErr.Path.String())
	require.Equal(t, "float64", fieldErr.Expected)
	require.Equal(t, `"big"`, fieldErr.Actual)
}

func TestUnmarshalWithRequireValues(t *testing.T) {
	decoder := tagged.NewDecoder().RequireValues()

	_, err := UnmarshalWith(decoder, shapes, []byte(`[{"kind": "rect", "w": 3}]`))

	var fieldErr *tagged.FieldDecodeError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "$[0].h", fieldErr.Path.String())
	require.ErrorIs(t, err, tagged.ErrNoValue)

	// the default decoder skips missing values
	values, err := UnmarshalWith(nil, shapes, []byte(`[{"kind": "rect", "w": 3}]`))
	require.NoError(t, err)
	require.Equal(t, []shape{&rect{Width: 3}}, values)
}

func TestMarshal(t *testing.T) {
	data, err := Marshal(shapes, []shape{circle{Radius: 2}, &rect{Width: 3, Height: 4.5}})
	require.NoError(t, err)
	require.JSONEq(t, `[
		{"kind": "circle", "radius": 2},
		{"kind": "rect", "w": 3, "h": 4.5}
	]`, string(data))

	data, err = Marshal(shapes, []shape{})
	require.NoError(t, err)
	require.Equal(t, `[]`, string(data))
}

func TestMarshalRoundTrip(t *testing.T) {
	values := []shape{
		&rect{Width: 1, Height: 2},
		circle{Radius: 0.5},
		circle{Radius: 7},
	}

	data, err := Marshal(shapes, values)
	require.NoError(t, err)

	decoded, err := Unmarshal(shapes, data)
	require.NoError(t, err)

	if diff := cmp.Diff(values, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalField(t *testing.T) {
	data, err := MarshalField(shapes, "all.shapes", []shape{circle{Radius: 1}})
	require.NoError(t, err)
	require.JSONEq(t, `{"all.shapes": [{"kind": "circle", "radius": 1}]}`, string(data))

	decoded, err := UnmarshalField(shapes, data, "all.shapes")
	require.NoError(t, err)
	require.Equal(t, []shape{circle{Radius: 1}}, decoded)
}

func TestMarshalUnregistered(t *testing.T) {
	_, err := Marshal(shapes, []shape{circle{}, triangle{}})
	require.ErrorContains(t, err, "marshal element 1")
	require.ErrorContains(t, err, "not registered")
}

func TestMarshalNotAnObject(t *testing.T) {
	type label string

	registry := tagged.MustRegistry("kind", tagged.Case[any, label]("label"))

	_, err := Marshal(registry, []any{label("x")})
	require.ErrorContains(t, err, "does not encode to a json object")
}

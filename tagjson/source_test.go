package tagjson

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-gum/tagged"
	"github.com/stretchr/testify/require"
)

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"a": `))
	require.ErrorIs(t, err, ErrInvalidJSON)

	_, err = ParseTree([]byte(`[1, 2`))
	require.ErrorIs(t, err, ErrInvalidJSON)

	_, err = ParseTree([]byte(`[] []`))
	require.ErrorIs(t, err, ErrInvalidJSON)
}

func TestSourceScalars(t *testing.T) {
	source, err := Parse([]byte(`{
		"big": 18446744073709551615,
		"neg": -3,
		"float": 1.5,
		"str": "x",
		"yes": true,
		"nothing": null,
		"list": [1, 2]
	}`))
	require.NoError(t, err)

	get := func(key string) tagged.Source {
		child, err := source.Get(key)
		require.NoError(t, err)
		return child
	}

	bigValue, err := get("big").Uint()
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), bigValue)

	_, err = get("big").Int()
	require.ErrorIs(t, err, strconv.ErrRange)

	_, err = get("neg").Uint()
	require.ErrorIs(t, err, tagged.ErrNotSupported)

	negValue, err := get("neg").Int()
	require.NoError(t, err)
	require.Equal(t, int64(-3), negValue)

	_, err = get("float").Int()
	require.ErrorIs(t, err, tagged.ErrNotSupported)

	floatValue, err := get("float").Float()
	require.NoError(t, err)
	require.Equal(t, 1.5, floatValue)

	strValue, err := get("str").String()
	require.NoError(t, err)
	require.Equal(t, "x", strValue)

	_, err = get("str").Int()
	require.ErrorIs(t, err, tagged.ErrNotSupported)

	boolValue, err := get("yes").Bool()
	require.NoError(t, err)
	require.True(t, boolValue)

	_, err = source.Get("nothing")
	require.ErrorIs(t, err, tagged.ErrNoValue)

	_, err = source.Get("missing")
	require.ErrorIs(t, err, tagged.ErrNoValue)

	_, err = get("list").Get("x")
	require.ErrorIs(t, err, tagged.ErrNotSupported)
}

func TestSourceGetIsLiteral(t *testing.T) {
	source, err := Parse([]byte(`{"a.b": 1, "a": {"b": 2}, "*": 3}`))
	require.NoError(t, err)

	value, err := source.Get("a.b")
	require.NoError(t, err)

	intValue, err := value.Int()
	require.NoError(t, err)
	require.Equal(t, int64(1), intValue)

	value, err = source.Get("*")
	require.NoError(t, err)

	intValue, err = value.Int()
	require.NoError(t, err)
	require.Equal(t, int64(3), intValue)
}

func TestSourceDescribe(t *testing.T) {
	source, err := Parse([]byte(`{"name": "x", "long": "` + strings.Repeat("a", 100) + `"}`))
	require.NoError(t, err)

	name, err := source.Get("name")
	require.NoError(t, err)
	require.Equal(t, `"x"`, name.(tagged.Describer).Describe())

	long, err := source.Get("long")
	require.NoError(t, err)

	description := long.(tagged.Describer).Describe()
	require.Len(t, description, describeLimit+3)
	require.Contains(t, description, "...")
}

func TestSourceDescribeMultiByte(t *testing.T) {
	// the limit falls into the middle of the first euro sign
	source, err := Parse([]byte(`{"price": "` + strings.Repeat("a", 62) + `€€€"}`))
	require.NoError(t, err)

	price, err := source.Get("price")
	require.NoError(t, err)

	description := price.(tagged.Describer).Describe()
	require.True(t, utf8.ValidString(description))
	require.Equal(t, `"`+strings.Repeat("a", 62)+"...", description)
}

func TestSourceUnmarshal(t *testing.T) {
	type Entry struct {
		Key    string            `json:"key"`
		Values []int16           `json:"values"`
		Attrs  map[string]string `json:"attrs"`
		Next   *Entry            `json:"next"`
	}

	source, err := Parse([]byte(`{
		"key": "a",
		"values": [1, -2, 3],
		"attrs": {"x": "1", "y": "2"},
		"next": {"key": "b", "values": [], "next": null}
	}`))
	require.NoError(t, err)

	entry, err := tagged.UnmarshalNew[Entry](source)
	require.NoError(t, err)
	require.Equal(t, Entry{
		Key:    "a",
		Values: []int16{1, -2, 3},
		Attrs:  map[string]string{"x": "1", "y": "2"},
		Next:   &Entry{Key: "b", Values: []int16{}},
	}, entry)
}

func TestParseTree(t *testing.T) {
	source, err := ParseTree([]byte(`{"big": 18446744073709551615, "list": ["a", "b"]}`))
	require.NoError(t, err)

	type Doc struct {
		Big  uint64   `json:"big"`
		List []string `json:"list"`
	}

	doc, err := tagged.UnmarshalNew[Doc](source)
	require.NoError(t, err)
	require.Equal(t, Doc{Big: math.MaxUint64, List: []string{"a", "b"}}, doc)
}

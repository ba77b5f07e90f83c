package tagged

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathString(t *testing.T) {
	require.Equal(t, "$", Path(nil).String())
	require.Equal(t, "$.messages[3].url", Path{Key("messages"), Index(3), Key("url")}.String())
	require.Equal(t, "$[0][1]", Path{Index(0), Index(1)}.String())
	require.Equal(t, `$.a["odd key"][""]`, Path{Key("a"), Key("odd key"), Key("")}.String())
}

func TestPathLastKey(t *testing.T) {
	require.Equal(t, "tags", Path{Key("post"), Key("tags"), Index(2)}.lastKey())
	require.Equal(t, "", Path{Index(2)}.lastKey())
}

func TestWithPathPrependsOnce(t *testing.T) {
	err := withPath(&FieldDecodeError{Path: Path{Key("id")}}, Key("messages"), Index(1))
	require.Equal(t, "$.messages[1].id", err.(*FieldDecodeError).Path.String())

	err = withPath(err, Key("feed"))
	require.Equal(t, "$.feed.messages[1].id", err.(*FieldDecodeError).Path.String())
}

func TestFieldDecodeErrorMessage(t *testing.T) {
	err := &FieldDecodeError{
		Path:     Path{Key("messages"), Index(0), Key("id")},
		Expected: "int64",
		Actual:   `"one"`,
		Err:      ErrNotSupported,
	}

	require.EqualError(t, err, `decode $.messages[0].id: expected int64, got "one": not supported`)
	require.ErrorIs(t, err, ErrFieldDecode)
	require.ErrorIs(t, err, ErrNotSupported)
}

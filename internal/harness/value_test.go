package harness

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		typ  ParamType
		in   any
		want string
	}{
		{"int array text", TypeIntArray, "[1, 2,3]", "[1,2,3]"},
		{"int array decoded", TypeIntArray, []any{float64(1), float64(-2)}, "[1,-2]"},
		{"int array numbers", TypeIntArray2D, []any{[]any{json.Number("1")}, []any{}}, "[[1],[]]"},
		{"single quoted strings", TypeStringList, `['a', "b"]`, `["a","b"]`},
		{"python none", TypeTreeNode, "[1,None,2]", "[1,null,2]"},
		{"trailing comma", TypeIntArray, "[1,2,]", "[1,2]"},
		{"unparseable passes through", TypeIntArray, " [1, 2 ", "[1, 2"},
		{"string verbatim", TypeString, "  hi  ", "  hi  "},
		{"nil string", TypeString, nil, ""},
		{"int text trimmed", TypeInt, " 42 ", "42"},
		{"int number", TypeInt, json.Number("7"), "7"},
		{"int float", TypeInt, float64(3), "3"},
		{"bool text", TypeBoolean, "True", "true"},
		{"bool value", TypeBoolean, false, "false"},
		{"unknown type json", ParamType("matrix"), []any{"x", float64(1)}, `["x",1]`},
		{"control chars escaped", TypeStringArray, []any{"a\"b\n\x01é"}, `["a\"b\n\u0001é"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonical(tt.typ, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalMissingValue(t *testing.T) {
	got, err := Canonical(TypeInt, nil)
	require.NoError(t, err)
	assert.Equal(t, "null", got)
}

func TestParseLenient(t *testing.T) {
	v, err := ParseLenient(`[ 'it\'s', "😀", True, False, null, -1.5e3 ]`)
	require.NoError(t, err)
	assert.Equal(t, []any{"it's", "😀", true, false, nil, json.Number("-1.5e3")}, v)

	v, err = ParseLenient("[]")
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)
}

func TestParseLenientErrors(t *testing.T) {
	for _, in := range []string{"", "[1,", "[1 2]", "foo", "'abc", "[1] x", `"\u12"`, "1.2.3"} {
		_, err := ParseLenient(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestQuoteJSON(t *testing.T) {
	assert.Equal(t, `"tab\there"`, quoteJSON("tab\there"))
	assert.Equal(t, `"\\\b\f\r\u001f"`, quoteJSON("\\\b\f\r\x1f"))
	assert.Equal(t, `"日本"`, quoteJSON("日本"))
}

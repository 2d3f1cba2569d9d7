package json

import (
	stdjson "encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plain turns objects into maps so values can be compared with what
// encoding/json produces
func plain(v any) any {
	switch v := v.(type) {
	case Object:
		m := make(map[string]any, len(v))
		for _, member := range v {
			m[member.Key] = plain(member.Value)
		}
		return m
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

func TestParse(t *testing.T) {
	t.Run("members keep their order", func(t *testing.T) {
		v, err := Parse([]byte(`{"a":"b","c":false}`))
		require.NoError(t, err)
		assert.Equal(t, Object{{Key: "a", Value: "b"}, {Key: "c", Value: false}}, v)
		assert.Equal(t, []string{"a", "c"}, v.(Object).Keys())

		c, ok := v.(Object).Get("c")
		assert.True(t, ok)
		assert.Equal(t, false, c)
		_, ok = v.(Object).Get("z")
		assert.False(t, ok)
	})

	t.Run("scalars", func(t *testing.T) {
		for input, expected := range map[string]any{
			`null`:           nil,
			`true`:           true,
			` false `:        false,
			`0`:              0.0,
			`-12.5e1`:        -125.0,
			`3E-2`:           0.03,
			`""`:             "",
			`"a\"b\\c"`:      `a"b\c`,
			`"\u00e9\n"`:     "é\n",
			`"\ud83d\ude00"`: "😀",
			`"ção"`:          "ção",
		} {
			v, err := Parse([]byte(input))
			require.NoError(t, err, input)
			assert.Equal(t, expected, v, input)
		}
	})

	t.Run("same values as encoding/json", func(t *testing.T) {
		for _, input := range []string{
			`{"list": [1, 2.5, -3e2, true, null], "obj": {}, "arr": []}`,
			"{\n  \"nested\": {\"deep\": [[], [{}], {\"x\": \"y\"}]},\n  \"n\": 0.125\n}\n",
			`[ "a" , { "b" : [ 1 ] } ]`,
		} {
			got, err := Parse([]byte(input))
			require.NoError(t, err, input)

			var expected any
			require.NoError(t, stdjson.Unmarshal([]byte(input), &expected))
			if diff := cmp.Diff(expected, plain(got)); diff != "" {
				t.Errorf("mismatch for %s (-want +got):\n%s", input, diff)
			}
		}
	})

	t.Run("invalid documents", func(t *testing.T) {
		for _, input := range []string{
			``,
			`{"a":}`,
			`[1,]`,
			`{"a" "b"}`,
			`01`,
			`{} x`,
			`"unterminated`,
			"\"tab\there\"",
			`tru`,
		} {
			_, err := Parse([]byte(input))
			require.Error(t, err, input)
			assert.Contains(t, err.Error(), "json", input)
		}
	})
}

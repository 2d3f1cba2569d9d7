package csv

import (
	stdcsv "encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("same records as encoding/csv", func(t *testing.T) {
		for _, input := range []string{
			"name,age\n\"Smith, J\",42\n\"say \"\"hi\"\"\",\r\nlast,\"multi\nline\"\n",
			"a,b,c",
			"x\ny\nz\n",
			"\"\",\"\"\n,\n",
			"ção,é\n",
		} {
			got, err := Parse([]byte(input))
			require.NoError(t, err, input)

			expected, err := stdcsv.NewReader(strings.NewReader(input)).ReadAll()
			require.NoError(t, err, input)
			assert.Equal(t, expected, got, input)
		}
	})

	t.Run("custom separator", func(t *testing.T) {
		got, err := ParseWith([]byte("a;b,c;\"d;e\"\n1;2;3\n"), ';')
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a", "b,c", "d;e"}, {"1", "2", "3"}}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := Parse(nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("invalid input", func(t *testing.T) {
		for _, input := range []string{
			"a,\"b",
			"a,b\"c\n",
			"\"a\"b\n",
		} {
			_, err := Parse([]byte(input))
			require.Error(t, err, input)
			assert.Contains(t, err.Error(), "csv", input)
		}
	})
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{
		"2024-03-05",
		"05/03/2024",
		"5/3/2024",
		"05-03-2024",
		"2024/03/05",
		"05.03.2024",
		"5 March 2024",
		"5 Mar 2024",
		"March 5, 2024",
		"Mar 5, 2024",
		" 2024-03-05 ",
	} {
		t.Run(input, func(t *testing.T) {
			parsed := ParseDate(input)
			require.NotNil(t, parsed)
			assert.Equal(t, want.Year(), parsed.Year())
			assert.Equal(t, want.Month(), parsed.Month())
			assert.Equal(t, want.Day(), parsed.Day())
		})
	}

	assert.Nil(t, ParseDate(""))
	assert.Nil(t, ParseDate("   "))
	assert.Nil(t, ParseDate("not a date"))
	assert.Nil(t, ParseDate("2024-13-45"))
}

func TestWithinRange(t *testing.T) {
	from := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, WithinRange(from, from, to), "lower boundary day is inside")
	assert.True(t, WithinRange(to, from, to), "upper boundary day is inside")
	assert.True(t, WithinRange(time.Date(2024, time.January, 12, 23, 59, 0, 0, time.UTC), from, to))
	assert.False(t, WithinRange(time.Date(2024, time.January, 9, 23, 59, 0, 0, time.UTC), from, to))
	assert.False(t, WithinRange(time.Date(2024, time.January, 16, 0, 0, 1, 0, time.UTC), from, to))

	t.Run("time of day on the boundaries is ignored", func(t *testing.T) {
		late := time.Date(2024, time.January, 15, 23, 0, 0, 0, time.UTC)
		assert.True(t, WithinRange(late, from, to))
	})
}

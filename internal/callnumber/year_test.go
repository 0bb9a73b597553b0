package callnumber

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasValidYearSuffix(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1983", true},
		{"1983b", true},
		{"1983B", true},
		{"83", false},
		{"3983", false},
		{"1000", true},
		{"2999", true},
		{"999", false},
		{"0999", false},
		{"3000", false},
		{"HD30 .T8 1983", true},
		{"HD30 .T8 1983a ", true},
		{"HD30 .T8", false},
		{"1983bb", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, HasValidYearSuffix(tt.in))
		})
	}
}

func TestEnsureYear(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		fallback string
		want     string
	}{
		{name: "appends fallback year", raw: "HD30 .T8", fallback: "1983", want: "HD30 .T8 1983"},
		{name: "strips copyright marker", raw: "HD30 .T8", fallback: "c1983", want: "HD30 .T8 1983"},
		{name: "free-form date", raw: "HD30 .T8", fallback: "March 5, 1983", want: "HD30 .T8 1983"},
		{name: "already has year", raw: "HD30 .T8 1983", fallback: "2001", want: "HD30 .T8 1983"},
		{name: "already has year with suffix", raw: "HD30 .T8 1983b", fallback: "2001", want: "HD30 .T8 1983b"},
		{name: "no fallback", raw: "HD30 .T8", fallback: "", want: "HD30 .T8"},
		{name: "fallback without year", raw: "HD30 .T8", fallback: "n.d.", want: "HD30 .T8"},
		{name: "empty raw stays empty", raw: "", fallback: "1983", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EnsureYear(tt.raw, tt.fallback))
		})
	}
}

func TestEnsureYearThenNormalize(t *testing.T) {
	lines := Normalize(EnsureYear("HD 30.22 .T8 E2", "c1983"))
	assert.Equal(t, []string{"HD30.22", ".T8", ".E2", "1983"}, lines)
}

func TestExtractYear(t *testing.T) {
	year, ok := ExtractYear("1983-05-02")
	assert.True(t, ok)
	assert.Equal(t, "1983", year)

	_, ok = ExtractYear("0000")
	assert.False(t, ok)

	year, ok = ExtractYear("1999, reprinted 2004")
	assert.True(t, ok)
	assert.Equal(t, "2004", year)
}

package season

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandSingleSeasons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []Season
	}{
		{"canonical capitalization", "Spring", []Season{Spring}},
		{"lowercase", "summer", []Season{Summer}},
		{"uppercase", "AUTUMN", []Season{Autumn}},
		{"mixed case", "wInTeR", []Season{Winter}},
		{"surrounding whitespace", "  Spring  ", []Season{Spring}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Expand(tt.input))
		})
	}
}

func TestExpandRanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []Season
	}{
		{"adjacent pair", "Spring-Summer", []Season{Spring, Summer}},
		{"full forward sweep", "Spring-Winter", []Season{Spring, Summer, Autumn, Winter}},
		{"middle of cycle", "Summer-Autumn", []Season{Summer, Autumn}},
		{"single season range", "Autumn-Autumn", []Season{Autumn}},
		{"case insensitive endpoints", "spring-AUTUMN", []Season{Spring, Summer, Autumn}},
		{"whitespace around endpoints", "Spring - Summer", []Season{Spring, Summer}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Expand(tt.input))
		})
	}
}

func TestExpandWrappingRanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []Season
	}{
		{"autumn through spring", "Autumn-Spring", []Season{Autumn, Winter, Spring}},
		{"winter through spring", "Winter-Spring", []Season{Winter, Spring}},
		{"winter through autumn wraps whole cycle", "Winter-Autumn", []Season{Winter, Spring, Summer, Autumn}},
		{"summer through spring", "Summer-Spring", []Season{Summer, Autumn, Winter, Spring}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Expand(tt.input))
		})
	}
}

func TestExpandDeduplicatesPreservingOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Season{Spring, Summer}, Expand("Spring,Spring-Summer"))
	assert.Equal(t, []Season{Winter, Spring, Summer}, Expand("Winter-Spring,Spring-Summer"))
	assert.Equal(t, []Season{Autumn, Winter, Spring}, Expand("Autumn,Autumn-Spring,Winter"))
}

func TestExpandDropsUnknownTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []Season
	}{
		{"unknown single token", "Monsoon,Spring", []Season{Spring}},
		{"unknown range start", "Monsoon-Spring", nil},
		{"unknown range end", "Spring-Monsoon", nil},
		{"three part range is malformed", "Autumn-Winter-Spring", nil},
		{"only unknown tokens", "Monsoon,Harmattan", nil},
		{"known tokens survive around unknowns", "Monsoon,Winter-Spring,Dry", []Season{Winter, Spring}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Expand(tt.input))
		})
	}
}

func TestExpandEmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Expand(""))
	assert.Empty(t, Expand("   "))
	assert.Empty(t, Expand(",,"))
	assert.Empty(t, Expand(" , "))
}

func TestParse(t *testing.T) {
	t.Parallel()

	s, ok := Parse("autumn")
	require.True(t, ok)
	assert.Equal(t, Autumn, s)

	_, ok = Parse("Fall")
	assert.False(t, ok)

	_, ok = Parse("")
	assert.False(t, ok)
}

func TestCycleOrderIsFixed(t *testing.T) {
	t.Parallel()

	want := []Season{Spring, Summer, Autumn, Winter}
	got := Cycle()
	require.Equal(t, want, got)

	// Mutating the returned slice must not affect the canonical cycle.
	got[0] = Winter
	assert.Equal(t, want, Cycle())

	for i, s := range want {
		assert.Equal(t, i, Index(s))
	}
	assert.Equal(t, -1, Index(Season("Monsoon")))
}

func TestContains(t *testing.T) {
	t.Parallel()

	assert.True(t, Contains("Autumn-Spring", Winter))
	assert.True(t, Contains("spring, summer", Summer))
	assert.False(t, Contains("Autumn-Spring", Summer))
	assert.False(t, Contains("", Spring))
}

func TestNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Autumn", "Winter"}, Names([]Season{Autumn, Winter}))
	assert.Nil(t, Names(nil))
}

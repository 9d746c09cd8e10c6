package season

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"mapped word", "Purple", "violet"},
		{"last word of multi word token", "Pale Purple", "violet"},
		{"first token of slash list", "White/Pink", "white"},
		{"first token of comma list", "Red, Orange", "red"},
		{"first token of hyphen pair", "Blue-violet", "blue"},
		{"lowercasing", "CRIMSON", "crimson"},
		{"yellow maps to gold", "Bright Yellow", "gold"},
		{"unknown word passes through", "unknownhue", "unknownhue"},
		{"unknown multi word keeps last word", "Dusty Teal", "teal"},
		{"empty input", "", DefaultColor},
		{"separators only", "/,-", DefaultColor},
		{"whitespace only", "   ", DefaultColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DisplayColor(tt.description))
		})
	}
}

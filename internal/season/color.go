package season

import "strings"

// DefaultColor is the display color used when a flower color
// description is empty or contains no usable word.
const DefaultColor = "gray"

// displayColors maps a lowercased flower color word to the display
// color used for chart points and dashboard swatches. Words absent from
// the table pass through unchanged as a best-effort fallback; whether
// they render depends on the consumer's palette.
var displayColors = map[string]string{
	"white":    "white",
	"cream":    "beige",
	"ivory":    "beige",
	"yellow":   "gold",
	"gold":     "gold",
	"orange":   "orange",
	"apricot":  "orange",
	"red":      "red",
	"crimson":  "crimson",
	"scarlet":  "red",
	"pink":     "pink",
	"rose":     "pink",
	"magenta":  "magenta",
	"purple":   "violet",
	"violet":   "violet",
	"lavender": "lavender",
	"lilac":    "plum",
	"mauve":    "plum",
	"blue":     "blue",
	"indigo":   "indigo",
	"green":    "green",
	"brown":    "brown",
}

// colorSeparators split multi-color descriptions such as "White/Pink"
// or "Red, Orange" into their component tokens.
func colorSeparators(r rune) bool {
	return r == '/' || r == ',' || r == '-' || r == ';'
}

// DisplayColor maps a free-text flower color description to a display
// color. It takes the first slash/comma/hyphen separated token of the
// description, keeps the last whitespace-separated word of that token
// ("Pale Purple" keeps "Purple"), lowercases it, and looks it up in the
// display table. Unknown words are returned lowercased as-is; empty
// input returns DefaultColor.
func DisplayColor(description string) string {
	tokens := strings.FieldsFunc(description, colorSeparators)
	if len(tokens) == 0 {
		return DefaultColor
	}
	words := strings.Fields(tokens[0])
	if len(words) == 0 {
		return DefaultColor
	}
	word := strings.ToLower(words[len(words)-1])
	if display, ok := displayColors[word]; ok {
		return display
	}
	return word
}

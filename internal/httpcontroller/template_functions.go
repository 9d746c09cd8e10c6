// internal/httpcontroller/template_functions.go
package httpcontroller

import (
	"encoding/json"
	"html/template"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/verdantlabs/bloomcal/internal/season"
)

// GetTemplateFunctions returns a map of functions that can be used in templates
func (s *Server) GetTemplateFunctions() template.FuncMap {
	funcMap := baseTemplateFunctions()
	funcMap["RenderContent"] = s.RenderContent
	return funcMap
}

// baseTemplateFunctions holds every template function that does not need a
// running server. The template validator parses the views with this map plus
// a stub RenderContent, so a function added here is automatically known to
// both the renderer and the validator.
func baseTemplateFunctions() template.FuncMap {
	return template.FuncMap{
		"sub":          subFunc,
		"add":          addFunc,
		"even":         even,
		"title":        cases.Title(language.English).String,
		"toJSON":       toJSONFunc,
		"displayColor": season.DisplayColor,
		"joinComma":    joinComma,
		"urlsafe":      urlSafe,
	}
}

// simple math functions
func subFunc(a, b int) int { return a - b }
func addFunc(a, b int) int { return a + b }

// even checks if an integer is even. Useful for alternating styles in loops.
func even(index int) bool {
	return index%2 == 0
}

// toJSONFunc converts a value to a JSON string
func toJSONFunc(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// joinComma joins a list for display in a table cell.
func joinComma(values []string) string {
	return strings.Join(values, ", ")
}

// urlSafe encodes a value for use in a URL query.
func urlSafe(v string) string {
	return url.QueryEscape(v)
}

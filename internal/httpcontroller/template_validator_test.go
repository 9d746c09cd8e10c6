// template_validator_test.go: Package httpcontroller tests for template validation.

package httpcontroller

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateTemplatesEmbeddedViews validates the shipped view templates.
// This is the check cmd/validate-templates runs in CI; a parse error or a
// missing required define here means the dashboard cannot start.
func TestValidateTemplatesEmbeddedViews(t *testing.T) {
	result, err := ValidateTemplates("views")
	require.NoError(t, err)

	assert.Equal(t, 4, result.FilesScanned)
	assert.False(t, result.HasIssues(), "shipped templates should validate cleanly:\n%s", result.String())
}

func TestValidateTemplatesReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	writeTemplateFile(t, dir, "index.html", `{{define "index"}}{{RenderContent .}}{{end}}`)
	writeTemplateFile(t, dir, "dashboard.html", `{{define "dashboard"}}ok{{end}}`)
	writeTemplateFile(t, dir, "about.html", `{{define "about"}}ok{{end}}`)
	writeTemplateFile(t, dir, "error.html", `{{define "error"}}ok{{end}}`)
	writeTemplateFile(t, dir, "broken.html", "{{define \"broken\"}}\n{{frobnicate .}}\n{{end}}")

	result, err := ValidateTemplates(dir)
	require.NoError(t, err)
	require.True(t, result.HasIssues())

	assert.Equal(t, 5, result.FilesScanned)
	require.Len(t, result.Issues, 1)
	issue := result.Issues[0]
	assert.Equal(t, "broken.html", issue.File)
	assert.Equal(t, 2, issue.Line)
	assert.Contains(t, issue.Issue, "frobnicate")
}

func TestValidateTemplatesMissingRequired(t *testing.T) {
	dir := t.TempDir()
	writeTemplateFile(t, dir, "index.html", `{{define "index"}}ok{{end}}`)

	result, err := ValidateTemplates(dir)
	require.NoError(t, err)
	require.True(t, result.HasIssues())

	var missing []string
	for _, issue := range result.Issues {
		assert.Contains(t, issue.Issue, "not defined")
		missing = append(missing, issue.Issue)
	}
	require.Len(t, missing, 3)
	assert.Contains(t, missing[0], "dashboard")
	assert.Contains(t, missing[1], "about")
	assert.Contains(t, missing[2], "error")
}

func TestValidateTemplatesMissingDir(t *testing.T) {
	_, err := ValidateTemplates(filepath.Join(t.TempDir(), "no-such-dir"))
	assert.Error(t, err)
}

func writeTemplateFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

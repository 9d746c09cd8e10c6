// template_validator.go provides parse-time validation for the dashboard
// templates. The views ship embedded in the binary, so a broken template is
// only caught at startup (or worse, on first render); cmd/validate-templates
// runs this in CI against the source tree instead.
package httpcontroller

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// requiredTemplates are the define blocks the page routes and the error
// handler execute by name. A view file can be renamed freely, but removing
// one of these defines breaks rendering at runtime.
var requiredTemplates = []string{"index", "dashboard", "about", "error"}

// templateErrorLine extracts the line number from html/template parse errors,
// which are formatted as "template: name:line: message".
var templateErrorLine = regexp.MustCompile(`:(\d+):`)

// TemplateIssue describes a problem found in a template file.
type TemplateIssue struct {
	File  string
	Line  int
	Issue string
}

// TemplateValidationResult contains the outcome of a validation run.
type TemplateValidationResult struct {
	Issues       []TemplateIssue
	FilesScanned int
}

// HasIssues reports whether any validation issues were found.
func (r *TemplateValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// String formats the validation result as a human-readable report.
func (r *TemplateValidationResult) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Scanned %d template files\n", r.FilesScanned))

	if !r.HasIssues() {
		sb.WriteString("No issues found\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Found %d issues:\n", len(r.Issues)))
	for _, issue := range r.Issues {
		if issue.Line > 0 {
			sb.WriteString(fmt.Sprintf("  %s:%d: %s\n", issue.File, issue.Line, issue.Issue))
		} else {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", issue.File, issue.Issue))
		}
	}
	return sb.String()
}

// ValidateTemplates parses every .html file under templatesDir with the same
// function map the server uses and reports files that fail to parse, plus any
// required define block missing from the set.
func ValidateTemplates(templatesDir string) (*TemplateValidationResult, error) {
	result := &TemplateValidationResult{}
	defined := make(map[string]bool)

	err := filepath.Walk(templatesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".html") {
			return nil
		}

		result.FilesScanned++
		if issue := parseTemplateFile(path, defined); issue != nil {
			result.Issues = append(result.Issues, *issue)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk templates directory: %w", err)
	}

	for _, name := range requiredTemplates {
		if !defined[name] {
			result.Issues = append(result.Issues, TemplateIssue{
				File:  templatesDir,
				Issue: fmt.Sprintf("required template %q is not defined in any file", name),
			})
		}
	}

	return result, nil
}

// parseTemplateFile parses a single template file and records the names it
// defines. It returns a non-nil issue when the file does not parse.
func parseTemplateFile(path string, defined map[string]bool) *TemplateIssue {
	content, err := os.ReadFile(path)
	if err != nil {
		return &TemplateIssue{
			File:  filepath.Base(path),
			Issue: fmt.Sprintf("failed to read file: %v", err),
		}
	}

	name := filepath.Base(path)
	tmpl, err := template.New(name).Funcs(validationFuncMap()).Parse(string(content))
	if err != nil {
		issue := &TemplateIssue{
			File:  name,
			Issue: err.Error(),
		}
		if m := templateErrorLine.FindStringSubmatch(err.Error()); m != nil {
			if line, convErr := strconv.Atoi(m[1]); convErr == nil {
				issue.Line = line
			}
		}
		return issue
	}

	for _, t := range tmpl.Templates() {
		defined[t.Name()] = true
	}
	return nil
}

// validationFuncMap is the server funcMap with RenderContent stubbed out,
// since parsing only needs the function names to resolve.
func validationFuncMap() template.FuncMap {
	funcMap := baseTemplateFunctions()
	funcMap["RenderContent"] = func(any) (template.HTML, error) { return "", nil }
	return funcMap
}

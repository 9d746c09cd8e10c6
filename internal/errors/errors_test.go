package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestFastPathNoTelemetry(t *testing.T) {
	SetTelemetryReporter(nil)

	err := fmt.Errorf("test error")
	ee := New(err).Build()

	if ee.Error() != "test error" {
		t.Errorf("Expected error message 'test error', got '%s'", ee.Error())
	}
	if ee.GetComponent() != ComponentUnknown {
		t.Errorf("Expected component 'unknown' in fast path, got '%s'", ee.GetComponent())
	}
	if ee.Category != CategoryGeneric {
		t.Errorf("Expected category 'generic' in fast path, got '%s'", ee.Category)
	}
}

func TestBuilderSetsMetadata(t *testing.T) {
	ee := Newf("plants table has %d rows", 0).
		Component("datastore").
		Category(CategoryDatabase).
		Priority(PriorityHigh).
		Context("operation", "count_plants").
		Build()

	if ee.GetComponent() != "datastore" {
		t.Errorf("Expected component 'datastore', got '%s'", ee.GetComponent())
	}
	if ee.Category != CategoryDatabase {
		t.Errorf("Expected category 'database', got '%s'", ee.Category)
	}
	if ee.GetPriority() != PriorityHigh {
		t.Errorf("Expected priority 'high', got '%s'", ee.GetPriority())
	}
	if ee.GetContext()["operation"] != "count_plants" {
		t.Errorf("Expected operation context, got %v", ee.GetContext())
	}
}

func TestInvalidPriorityFallsBackToMedium(t *testing.T) {
	ee := Newf("boom").Priority("urgent").Build()
	if ee.GetPriority() != PriorityMedium {
		t.Errorf("Expected fallback priority 'medium', got '%s'", ee.GetPriority())
	}
}

func TestContextCopyIsIsolated(t *testing.T) {
	ee := Newf("boom").Context("key", "original").Build()

	ctx := ee.GetContext()
	ctx["key"] = "mutated"

	if ee.GetContext()["key"] != "original" {
		t.Error("GetContext must return a copy, not the underlying map")
	}
}

func TestIsMatchesCategory(t *testing.T) {
	dbErr := Newf("query failed").Category(CategoryDatabase).Build()
	otherDbErr := Newf("different query failed").Category(CategoryDatabase).Build()
	httpErr := Newf("bad request").Category(CategoryHTTP).Build()

	if !Is(dbErr, otherDbErr) {
		t.Error("Errors sharing a category should match via Is")
	}
	if Is(dbErr, httpErr) {
		t.Error("Errors with different categories should not match via Is")
	}
}

func TestIsCategoryAndIsNotFound(t *testing.T) {
	notFound := Newf("plant not in dataset").Category(CategoryNotFound).Build()
	wrapped := fmt.Errorf("lookup: %w", notFound)

	if !IsCategory(wrapped, CategoryNotFound) {
		t.Error("IsCategory should see through wrapping")
	}
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should see through wrapping")
	}
	if IsNotFound(fmt.Errorf("plain")) {
		t.Error("IsNotFound should be false for plain errors")
	}
}

func TestUnwrapReturnsOriginal(t *testing.T) {
	original := fmt.Errorf("original")
	ee := New(original).Build()

	if Unwrap(ee) != original {
		t.Error("Unwrap should return the original error")
	}
	if !Is(ee, original) {
		t.Error("Is should match the original error through the wrapper")
	}
}

func TestDetectCategoryHeuristics(t *testing.T) {
	tests := []struct {
		name      string
		msg       string
		component string
		want      ErrorCategory
	}{
		{"csv message", "csv missing required column", "", CategoryCSVParsing},
		{"chart message", "chart render produced no series", "", CategoryChartRender},
		{"file message", "failed to open dataset", "", CategoryFileIO},
		{"network message", "connection refused", "", CategoryNetwork},
		{"datastore component", "boom", "datastore", CategoryDatabase},
		{"image cache", "cache miss persisted", "plantimages", CategoryImageCache},
		{"image fetch", "fetch gave status 503", "plantimages", CategoryImageFetch},
		{"fallback", "boom", "", CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectCategory(fmt.Errorf("%s", tt.msg), tt.component)
			if got != tt.want {
				t.Errorf("detectCategory(%q, %q) = %s, want %s", tt.msg, tt.component, got, tt.want)
			}
		})
	}
}

func TestBasicScrub(t *testing.T) {
	scrubbed := basicScrub("Error at https://api.example.com?api_key=secret123&token=abc")
	if strings.Contains(scrubbed, "secret123") {
		t.Errorf("URL query scrubbing failed: %s", scrubbed)
	}

	scrubbed = basicScrub("Config error: password=hunter2 is invalid")
	if strings.Contains(scrubbed, "hunter2") {
		t.Errorf("Credential scrubbing failed: %s", scrubbed)
	}

	scrubbed = basicScrub("daylight lookup failed for lat=60.1699 lon=24.9384")
	if strings.Contains(scrubbed, "60.1699") || strings.Contains(scrubbed, "24.9384") {
		t.Errorf("Coordinate scrubbing failed: %s", scrubbed)
	}
}

type recordingReporter struct {
	reported []*EnhancedError
}

func (r *recordingReporter) ReportError(ee *EnhancedError) {
	r.reported = append(r.reported, ee)
	ee.MarkReported()
}

func (r *recordingReporter) IsEnabled() bool { return true }

func TestBuildReportsWhenReporterActive(t *testing.T) {
	reporter := &recordingReporter{}
	SetTelemetryReporter(reporter)
	defer SetTelemetryReporter(nil)

	ee := Newf("fetch gave status 503").Component("plantimages").Build()

	if len(reporter.reported) != 1 {
		t.Fatalf("Expected 1 reported error, got %d", len(reporter.reported))
	}
	if !ee.IsReported() {
		t.Error("Error should be marked reported")
	}
	// Category auto-detection runs on the reporting path.
	if ee.Category != CategoryImageFetch {
		t.Errorf("Expected auto-detected category 'image-fetch', got '%s'", ee.Category)
	}
}

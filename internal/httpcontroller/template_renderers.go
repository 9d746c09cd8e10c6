package httpcontroller

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/verdantlabs/bloomcal/internal/observability/metrics"
)

// TemplateRenderer is a custom HTML template renderer for the Echo framework.
// Every render is timed into the template metrics.
type TemplateRenderer struct {
	templates *template.Template
	metrics   *metrics.HTTPMetrics
	logger    echo.Logger
}

// Render renders a template with the given data.
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	// Execute into a buffer first so a template error never leaves a
	// half-written response.
	start := time.Now()
	var buf bytes.Buffer
	err := t.templates.ExecuteTemplate(&buf, name, data)

	if t.metrics != nil {
		t.metrics.RecordTemplateRender(name, time.Since(start).Seconds())
		if err != nil {
			t.metrics.RecordTemplateRenderError(name, "execute")
		}
	}
	if err != nil {
		t.logger.Errorf("Error executing template %s: %v", name, err)
		return err
	}

	_, err = buf.WriteTo(w)
	if err != nil {
		t.logger.Errorf("Error writing template result: %v", err)
		if t.metrics != nil {
			t.metrics.RecordTemplateRenderError(name, "write")
		}
	}
	return err
}

// setupTemplateRenderer configures the template renderer for the server
func (s *Server) setupTemplateRenderer() {
	funcMap := s.GetTemplateFunctions()

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(ViewsFs, "views/*.html")
	if err != nil {
		s.Echo.Logger.Fatal(err)
	}

	var httpMetrics *metrics.HTTPMetrics
	if s.Metrics != nil {
		httpMetrics = s.Metrics.HTTP
	}

	s.Echo.Renderer = &TemplateRenderer{
		templates: tmpl,
		metrics:   httpMetrics,
		logger:    s.Echo.Logger,
	}
}

// RenderContent renders the page content template named by the render data.
// The layout template calls it to place the per-page body.
func (s *Server) RenderContent(data interface{}) (template.HTML, error) {
	d, ok := data.(RenderData)
	if !ok {
		return "", fmt.Errorf("invalid render data type: %T", data)
	}

	c := d.C
	path := c.Path()
	if _, isPageRoute := s.pageRoutes[path]; !isPageRoute {
		return "", fmt.Errorf("no route found for path: %s", path)
	}

	buf := new(bytes.Buffer)
	err := s.Echo.Renderer.Render(buf, d.Page, d, c)
	if err != nil {
		return "", err
	}

	return template.HTML(buf.String()), nil
}

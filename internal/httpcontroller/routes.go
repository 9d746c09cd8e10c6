// internal/httpcontroller/routes.go
package httpcontroller

import (
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"net/http/pprof"

	"github.com/labstack/echo/v4"

	"github.com/verdantlabs/bloomcal/internal/conf"
)

// PageRouteConfig defines the structure for each full page route.
type PageRouteConfig struct {
	Path         string
	TemplateName string
	Title        string
}

// RenderData is the payload handed to the page templates.
type RenderData struct {
	C         echo.Context
	Page      string
	Title     string
	Settings  *conf.Settings
	Dashboard *DashboardData // populated on dashboard pages only
}

// initRoutes initializes the routes for the server.
func (s *Server) initRoutes() {
	// Full page routes
	s.pageRoutes = map[string]PageRouteConfig{
		"/":          {Path: "/", TemplateName: "dashboard", Title: "Bloom Calendar"},
		"/dashboard": {Path: "/dashboard", TemplateName: "dashboard", Title: "Bloom Calendar"},
		"/about":     {Path: "/about", TemplateName: "about", Title: "About"},
	}

	// Set up full page routes
	for _, route := range s.pageRoutes {
		s.Echo.GET(route.Path, s.WithErrorHandling(s.handlePageRequest))
	}

	// Setup Error handler
	s.Echo.HTTPErrorHandler = func(err error, c echo.Context) {
		if handleErr := s.HandleError(err, c); handleErr != nil {
			if !c.Response().Committed {
				if renderErr := c.String(http.StatusInternalServerError, "Internal Server Error"); renderErr != nil {
					log.Printf("ERROR writing fallback error response: %v", renderErr)
				}
			}
		}
	}

	// Prometheus exposition shares the web listener unless a dedicated
	// telemetry address is configured.
	if s.Settings.Telemetry.Enabled && s.Settings.Telemetry.Listen == "" && s.Metrics != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}

	// Add pprof endpoints if debug mode is enabled
	if s.Settings.Debug {
		s.Echo.GET("/debug/pprof/", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
		s.Echo.GET("/debug/pprof/cmdline", echo.WrapHandler(http.HandlerFunc(pprof.Cmdline)))
		s.Echo.GET("/debug/pprof/profile", echo.WrapHandler(http.HandlerFunc(pprof.Profile)))
		s.Echo.GET("/debug/pprof/symbol", echo.WrapHandler(http.HandlerFunc(pprof.Symbol)))
		s.Echo.GET("/debug/pprof/trace", echo.WrapHandler(http.HandlerFunc(pprof.Trace)))
		s.Echo.GET("/debug/pprof/allocs", echo.WrapHandler(pprof.Handler("allocs")))
		s.Echo.GET("/debug/pprof/goroutine", echo.WrapHandler(pprof.Handler("goroutine")))
		s.Echo.GET("/debug/pprof/heap", echo.WrapHandler(pprof.Handler("heap")))

		log.Printf("pprof debugging endpoints enabled at /debug/pprof/")
	}

	// Set up template renderer
	s.setupTemplateRenderer()

	// Set up static file serving
	s.setupStaticFileServing()
}

// handlePageRequest handles requests for full page routes
func (s *Server) handlePageRequest(c echo.Context) error {
	path := c.Path()

	pageRoute, isPageRoute := s.pageRoutes[path]
	if !isPageRoute {
		return s.NewHandlerError(
			fmt.Errorf("no route found for path: %s", path),
			"Page not found",
			http.StatusNotFound,
		)
	}

	data := RenderData{
		C:        c,
		Page:     pageRoute.TemplateName,
		Title:    pageRoute.Title,
		Settings: s.Settings,
	}

	// The dashboard renders the preview table, filter controls and chart
	// from live datastore state.
	if pageRoute.TemplateName == "dashboard" {
		dashboard, err := s.buildDashboardData(c)
		if err != nil {
			return s.NewHandlerError(err, "Failed to load dashboard data", http.StatusInternalServerError)
		}
		data.Dashboard = dashboard
	}

	return c.Render(http.StatusOK, "index", data)
}

// setupStaticFileServing configures static file serving for the server.
func (s *Server) setupStaticFileServing() {
	assetsFS, err := fs.Sub(AssetsFs, "assets")
	if err != nil {
		// Use standard log.Fatal for critical setup errors
		log.Fatalf("Failed to create sub FS for assets: %v", err)
	}
	s.Echo.StaticFS("/assets", echo.MustSubFS(assetsFS, ""))
}

// internal/httpcontroller/server.go
package httpcontroller

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/acme/autocert"

	"github.com/verdantlabs/bloomcal/internal/api"
	"github.com/verdantlabs/bloomcal/internal/chart"
	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/datastore"
	"github.com/verdantlabs/bloomcal/internal/logging"
	"github.com/verdantlabs/bloomcal/internal/observability"
	"github.com/verdantlabs/bloomcal/internal/plantimages"
	"github.com/verdantlabs/bloomcal/internal/suncalc"
)

// shutdownTimeout bounds how long in-flight requests may run once a stop
// has been requested.
const shutdownTimeout = 10 * time.Second

// Server encapsulates the Echo server and related configurations.
type Server struct {
	Echo     *echo.Echo
	DS       datastore.Interface
	Settings *conf.Settings
	Images   *plantimages.PlantImageCache
	SunCalc  *suncalc.SunCalc
	Metrics  *observability.Metrics
	APIV1    *api.Controller

	charts *chart.Renderer

	// Full page routes served from the embedded templates
	pageRoutes map[string]PageRouteConfig

	webLogger      *slog.Logger // Structured logger for web operations
	webLoggerClose func() error // Function to close the log file
}

// New initializes a new HTTP server with the given datastore and caches.
func New(settings *conf.Settings, dataStore datastore.Interface, images *plantimages.PlantImageCache, metrics *observability.Metrics) *Server {
	configureDefaultSettings(settings)

	s := &Server{
		Echo:     echo.New(),
		DS:       dataStore,
		Settings: settings,
		Images:   images,
		Metrics:  metrics,
	}

	// Configure an IP extractor so RealIP sees through proxies
	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()

	// Initialize SunCalc for calculating sun event times
	s.SunCalc = suncalc.NewSunCalc(settings.Garden.Latitude, settings.Garden.Longitude)

	if metrics != nil {
		s.charts = chart.NewRenderer(metrics.Chart)
	} else {
		s.charts = chart.NewRenderer(nil)
	}

	s.initializeServer()
	return s
}

// initializeServer configures and initializes the server.
func (s *Server) initializeServer() {
	s.Echo.HideBanner = true
	s.initLogger()
	s.configureMiddleware()
	s.initRoutes()

	// Initialize the JSON API v1
	s.Debug("Initializing JSON API v1")
	s.APIV1 = api.InitializeAPI(
		s.Echo,
		s.DS,
		s.Settings,
		s.Images,
		s.SunCalc,
		s.charts,
		log.Default(),
		s.Metrics,
	)
}

// Start begins listening and serving HTTP requests.
func (s *Server) Start() {
	errChan := make(chan error)

	go func() {
		var err error

		if s.Settings.Security.AutoTLS {
			configPaths, configErr := conf.GetDefaultConfigPaths()
			if configErr != nil {
				errChan <- fmt.Errorf("failed to get config paths: %w", configErr)
				return
			}

			s.Echo.AutoTLSManager.Prompt = autocert.AcceptTOS
			s.Echo.AutoTLSManager.Cache = autocert.DirCache(configPaths[0])
			s.Echo.AutoTLSManager.HostPolicy = autocert.HostWhitelist(s.Settings.Security.Host)

			err = s.Echo.StartAutoTLS(":" + s.Settings.WebServer.Port)
		} else {
			err = s.Echo.Start(":" + s.Settings.WebServer.Port)
		}

		if err != nil {
			errChan <- err
		}
	}()

	go handleServerError(errChan)

	fmt.Printf("HTTP server started on port %s (AutoTLS: %v)\n", s.Settings.WebServer.Port, s.Settings.Security.AutoTLS)
}

// Shutdown drains in-flight requests and stops the server gracefully.
func (s *Server) Shutdown() error {
	// Close the web logger if it was initialized
	if s.webLoggerClose != nil {
		if err := s.webLoggerClose(); err != nil {
			log.Printf("Error closing web log file: %v", err)
		}
	}

	if s.APIV1 != nil {
		s.APIV1.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Echo.Shutdown(ctx)
}

// configureDefaultSettings sets default values for server settings.
func configureDefaultSettings(settings *conf.Settings) {
	if settings.WebServer.Port == "" {
		settings.WebServer.Port = "8080"
	}
}

// handleServerError listens for server errors and handles them.
func handleServerError(errChan chan error) {
	for err := range errChan {
		log.Printf("Server error: %v", err)
	}
}

// initLogger initializes the structured web logger.
func (s *Server) initLogger() {
	if !s.Settings.WebServer.Log.Enabled {
		return
	}

	webLogPath := "logs/web.log"
	webLogger, closeFunc, err := logging.NewFileLogger(webLogPath, "web", slog.LevelInfo)
	if err != nil {
		log.Printf("Warning: Failed to initialize web structured logger: %v", err)
		// Continue without structured logging rather than failing completely
		return
	}
	s.webLogger = webLogger
	s.webLoggerClose = closeFunc
	log.Printf("Web structured logging initialized to %s", webLogPath)

	// Discard Echo's default log output, rely on middleware
	s.Echo.Logger.SetOutput(io.Discard)
	s.Echo.Logger.SetLevel(99)
}

// Debug logs debug messages if debug mode is enabled
func (s *Server) Debug(format string, v ...interface{}) {
	if s.Settings.WebServer.Debug {
		switch len(v) {
		case 0:
			log.Print(format)
		default:
			log.Printf(format, v...)
		}

		if s.webLogger != nil {
			var msg string
			switch len(v) {
			case 0:
				msg = format
			default:
				msg = fmt.Sprintf(format, v...)
			}
			s.webLogger.Debug(msg)
		}
	}
}

// LogError logs an error with structured information
func (s *Server) LogError(c echo.Context, err error, message string) {
	log.Printf("ERROR: %s: %v", message, err)

	if s.webLogger != nil {
		req := c.Request()
		s.webLogger.Error("Error",
			"message", message,
			"error", err.Error(),
			"path", req.URL.Path,
			"method", req.Method,
			"ip", c.RealIP(),
			"user_agent", req.UserAgent(),
		)
	}
}

// LoggingMiddleware creates a middleware function that logs HTTP requests
// with detailed structured information.
func (s *Server) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			// Skip if structured logger is not available
			if s.webLogger == nil {
				return next(ctx)
			}
			// The API group logs its own requests
			if strings.HasPrefix(ctx.Request().URL.Path, "/api/v1/") {
				return next(ctx)
			}

			// Record the start time to calculate latency
			start := time.Now()

			err := next(ctx)

			req := ctx.Request()
			res := ctx.Response()

			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"query", req.URL.RawQuery,
				"status", res.Status,
				"ip", ctx.RealIP(),
				"user_agent", req.UserAgent(),
				"latency_ms", time.Since(start).Milliseconds(),
				"bytes_out", res.Size,
			}

			switch {
			case err != nil:
				attrs = append(attrs, "error", err.Error())
				s.webLogger.Error("HTTP Request", attrs...)
			case res.Status >= 400:
				// No explicit error but status code indicates an error
				s.webLogger.Warn("HTTP Request", attrs...)
			default:
				s.webLogger.Info("HTTP Request", attrs...)
			}

			return err
		}
	}
}

// config.go: settings struct for the bloomcal application plus the functions
// that load, cache and save it.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

// GardenSettings locates the garden the dataset describes. The
// coordinates drive daylight calculations for sun requirement advice.
type GardenSettings struct {
	Name      string  // display name for the garden
	Latitude  float64 `validate:"gte=-90,lte=90"`  // observer latitude in decimal degrees
	Longitude float64 `validate:"gte=-180,lte=180"` // observer longitude in decimal degrees
}

// DatasetSettings controls CSV ingestion.
type DatasetSettings struct {
	Path        string // path to the plant records CSV
	PreviewRows int    `validate:"gte=0"` // rows shown in the dashboard preview table
}

// ImageProviderSettings controls plant thumbnail fetching.
type ImageProviderSettings struct {
	Provider          string  `validate:"oneof=none wikimedia"` // "none" disables thumbnails
	CacheTTLHours     int     `validate:"gte=1"`                // hours before a cached image is considered stale
	RequestsPerSecond float64 `validate:"gt=0"`                 // outbound request rate limit
	Burst             int     `validate:"gte=1"`                // rate limiter burst size
	WarmUp            bool    // prefetch images for all plants at startup
	WarmUpWorkers     int     `validate:"gte=1"` // concurrent fetches during warm-up
}

// Security contains the TLS settings for the web server.
type Security struct {
	Host            string // fully qualified domain name for AutoTLS certificates
	AutoTLS         bool   // true to obtain certificates via Let's Encrypt
	RedirectToHTTPS bool   // true to redirect plain HTTP to HTTPS
}

// TelemetrySettings controls the Prometheus exposition endpoint.
type TelemetrySettings struct {
	Enabled bool   // true to expose /metrics
	Listen  string // host:port for a standalone metrics listener, empty to share the web server
}

// SentrySettings controls optional error reporting.
type SentrySettings struct {
	Enabled bool   // true to report enhanced errors to Sentry
	DSN     string // project DSN, supports ${VAR} expansion, required when enabled
	DSNFile string // path to a file holding the DSN, takes precedence over DSN
}

// Settings contains all configuration options for the bloomcal application.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version   string `yaml:"-"` // Version from build
	BuildDate string `yaml:"-"` // Build date from build
	SystemID  string `yaml:"-"` // anonymous installation ID for telemetry

	Main struct {
		Name      string    // name of this bloomcal node
		TimeAs24h bool      // true 24-hour time format, false 12-hour time format
		Log       LogConfig // logging configuration
	}

	Garden  GardenSettings  // garden location
	Dataset DatasetSettings // CSV dataset configuration
	Images  ImageProviderSettings

	WebServer struct {
		Debug   bool      // true to enable debug mode
		Enabled bool      // true to enable web server
		Port    string    // port for web server
		Log     LogConfig // logging configuration for web server
	}

	Security Security // TLS configuration

	Output struct {
		SQLite struct {
			Enabled bool   // true to enable sqlite output
			Path    string // path to sqlite database
		}

		MySQL struct {
			Enabled      bool   // true to enable mysql output
			Username     string // username for mysql database
			Password     string // password, supports ${VAR} expansion
			PasswordFile string // path to a file holding the password, takes precedence over Password
			Database     string // database name for mysql database
			Host         string // host for mysql database
			Port         string // port for mysql database
		}
	}

	Telemetry TelemetrySettings
	Sentry    SentrySettings
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled     bool         // true to enable this log
	Path        string       // Path to the log file
	Rotation    RotationType // Type of log rotation
	MaxSize     int64        // Max size in bytes for RotationSize
	RotationDay string       // Day of the week for RotationWeekly
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a
// fresh Settings value, validates it and stores it as the process-wide
// instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := resolveSecrets(settings); err != nil {
		return nil, fmt.Errorf("error resolving secrets: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Defaults defined in defaults.go, env overrides in env.go.
	setDefaultConfig()
	if err := bindEnvVars(); err != nil {
		return fmt.Errorf("error binding environment variables: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config to the first
// default config path and loads it.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(getDefaultConfig()), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading embedded config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance. It may be nil when
// Load has not run yet; callers that need guaranteed settings should use
// Setting instead.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// SaveSettings saves the current settings to the configuration file.
// It uses SaveYAMLConfig to handle the atomic write process.
func SaveSettings() error {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()

	settingsCopy := *settingsInstance

	configPath, err := FindConfigFile()
	if err != nil {
		return fmt.Errorf("error finding config file: %w", err)
	}

	if err := SaveYAMLConfig(configPath, &settingsCopy); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	log.Printf("Settings saved successfully to %s", configPath)
	return nil
}

// SaveYAMLConfig updates the YAML configuration file with new settings.
// It overwrites the existing file, not preserving comments or structure.
// The write goes through a temporary file so the replacement is atomic
// on filesystems where rename is atomic.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		// Rename can fail across filesystems; fall back to copy and delete.
		if err := moveFile(tempFileName, configPath); err != nil {
			return fmt.Errorf("error copying config file: %w", err)
		}
	}

	return nil
}

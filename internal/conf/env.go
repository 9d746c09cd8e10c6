// env.go - Environment variable bindings for container deployments
package conf

import (
	"fmt"
	"strconv"

	"github.com/spf13/viper"
)

// envBinding ties a viper config key to an environment variable with an
// optional validation function applied when the variable is set.
type envBinding struct {
	ConfigKey string
	EnvVar    string
	Validate  func(string) error
}

func getEnvBindings() []envBinding {
	return []envBinding{
		{"garden.latitude", "BLOOMCAL_LATITUDE", validateEnvLatitude},
		{"garden.longitude", "BLOOMCAL_LONGITUDE", validateEnvLongitude},
		{"dataset.path", "BLOOMCAL_DATASET", nil},
		{"webserver.port", "BLOOMCAL_PORT", validateEnvPort},
		{"output.sqlite.path", "BLOOMCAL_SQLITE_PATH", nil},
		{"output.mysql.password", "BLOOMCAL_MYSQL_PASSWORD", nil},
		{"sentry.dsn", "BLOOMCAL_SENTRY_DSN", nil},
		{"debug", "BLOOMCAL_DEBUG", validateEnvBool},
	}
}

// bindEnvVars sets up environment variable bindings with validation.
// Invalid values fail the load rather than silently falling back, since
// a typoed coordinate would otherwise shift every daylight calculation.
func bindEnvVars() error {
	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			return fmt.Errorf("failed to bind %s: %w", binding.EnvVar, err)
		}
		if binding.Validate == nil {
			continue
		}
		if value := viper.GetString(binding.ConfigKey); value != "" {
			if err := binding.Validate(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", binding.EnvVar, err)
			}
		}
	}
	return nil
}

func validateEnvLatitude(value string) error {
	lat, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", value)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	return nil
}

func validateEnvLongitude(value string) error {
	lon, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", value)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", lon)
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("not a number: %q", value)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port %d out of range [1, 65535]", port)
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("not a boolean: %q", value)
	}
	return nil
}

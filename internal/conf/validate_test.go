package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validSettings returns a settings struct that passes validation. Tests
// mutate single fields to probe individual rules.
func validSettings() *Settings {
	settings := &Settings{}
	settings.Main.Name = "bloomcal"
	settings.Garden.Name = "Test Garden"
	settings.Garden.Latitude = 60.17
	settings.Garden.Longitude = 24.94
	settings.Dataset.Path = "plants.csv"
	settings.Dataset.PreviewRows = 5
	settings.Images.Provider = "wikimedia"
	settings.Images.CacheTTLHours = 336
	settings.Images.RequestsPerSecond = 2.0
	settings.Images.Burst = 4
	settings.Images.WarmUpWorkers = 4
	settings.WebServer.Enabled = true
	settings.WebServer.Port = "8080"
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = "bloomcal.db"
	return settings
}

func TestValidateSettingsValid(t *testing.T) {
	assert.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettingsStructTags(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		errPart string
	}{
		{
			name:    "latitude out of range",
			mutate:  func(s *Settings) { s.Garden.Latitude = 91 },
			errPart: "Garden.Latitude",
		},
		{
			name:    "longitude out of range",
			mutate:  func(s *Settings) { s.Garden.Longitude = -181 },
			errPart: "Garden.Longitude",
		},
		{
			name:    "unknown image provider",
			mutate:  func(s *Settings) { s.Images.Provider = "flickr" },
			errPart: "Images.Provider",
		},
		{
			name:    "zero rate limit",
			mutate:  func(s *Settings) { s.Images.RequestsPerSecond = 0 },
			errPart: "Images.RequestsPerSecond",
		},
		{
			name:    "negative preview rows",
			mutate:  func(s *Settings) { s.Dataset.PreviewRows = -1 },
			errPart: "Dataset.PreviewRows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := validSettings()
			tt.mutate(settings)

			err := ValidateSettings(settings)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestValidateWebServerPort(t *testing.T) {
	tests := []struct {
		name    string
		port    string
		enabled bool
		wantErr bool
	}{
		{"valid port", "8080", true, false},
		{"max port", "65535", true, false},
		{"port zero", "0", true, true},
		{"port too large", "65536", true, true},
		{"not a number", "http", true, true},
		{"empty port", "", true, true},
		{"ignored when disabled", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := validSettings()
			settings.WebServer.Enabled = tt.enabled
			settings.WebServer.Port = tt.port

			err := ValidateSettings(settings)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "port")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateOutput(t *testing.T) {
	t.Run("both outputs enabled", func(t *testing.T) {
		settings := validSettings()
		settings.Output.MySQL.Enabled = true

		err := ValidateSettings(settings)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not both")
	})

	t.Run("sqlite without path", func(t *testing.T) {
		settings := validSettings()
		settings.Output.SQLite.Path = ""

		err := ValidateSettings(settings)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database path")
	})

	t.Run("mysql missing fields", func(t *testing.T) {
		settings := validSettings()
		settings.Output.SQLite.Enabled = false
		settings.Output.MySQL.Enabled = true
		settings.Output.MySQL.Username = "bloomcal"
		settings.Output.MySQL.Host = "localhost"

		err := ValidateSettings(settings)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database")
		assert.Contains(t, err.Error(), "port")
		assert.NotContains(t, err.Error(), "username")
	})

	t.Run("neither output enabled is allowed", func(t *testing.T) {
		// Valid at the settings level; the serve command falls back to the
		// in-memory store in this case.
		settings := validSettings()
		settings.Output.SQLite.Enabled = false

		assert.NoError(t, ValidateSettings(settings))
	})
}

func TestValidateSecurity(t *testing.T) {
	settings := validSettings()
	settings.Security.AutoTLS = true

	err := ValidateSettings(settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "security.host")

	settings.Security.Host = "bloom.example.com"
	assert.NoError(t, ValidateSettings(settings))
}

func TestValidateSentry(t *testing.T) {
	settings := validSettings()
	settings.Sentry.Enabled = true

	err := ValidateSettings(settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dsn")

	settings.Sentry.DSN = "https://key@sentry.example.com/42"
	assert.NoError(t, ValidateSettings(settings))
}

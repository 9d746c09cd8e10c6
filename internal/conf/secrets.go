// secrets.go - credential resolution for loaded settings
package conf

import (
	"fmt"

	"github.com/verdantlabs/bloomcal/internal/secrets"
)

// resolveSecrets replaces credential fields with their resolved values.
// The config file may carry ${VAR} references or point at secret files
// (Docker/Kubernetes mounts); after this step the rest of the application
// sees plain values. Resolution runs once at load, so SaveSettings would
// persist resolved values rather than the original references.
//
// Fields belonging to disabled features are left untouched, so a disabled
// MySQL output with an unset ${VAR} reference does not fail the load.
func resolveSecrets(settings *Settings) error {
	if settings.Output.MySQL.Enabled {
		password, err := secrets.Resolve(settings.Output.MySQL.PasswordFile, settings.Output.MySQL.Password)
		if err != nil {
			return fmt.Errorf("mysql password: %w", err)
		}
		settings.Output.MySQL.Password = password
	}

	if settings.Sentry.Enabled {
		dsn, err := secrets.Resolve(settings.Sentry.DSNFile, settings.Sentry.DSN)
		if err != nil {
			return fmt.Errorf("sentry dsn: %w", err)
		}
		settings.Sentry.DSN = dsn
	}

	return nil
}

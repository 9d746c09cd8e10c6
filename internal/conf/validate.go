// validate.go - settings validation run on every load
package conf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/verdantlabs/bloomcal/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateSettings checks a loaded settings struct before it becomes the
// process-wide instance. Struct tag validation catches range errors;
// the targeted checks below cover rules that span multiple fields.
func ValidateSettings(settings *Settings) error {
	if err := validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return errors.Newf("invalid settings: %s", strings.Join(fields, ", ")).
				Category(errors.CategoryValidation).
				Context("operation", "validate-settings").
				Build()
		}
		return err
	}

	if err := validateWebServer(settings); err != nil {
		return err
	}
	if err := validateOutput(settings); err != nil {
		return err
	}
	if err := validateSecurity(settings); err != nil {
		return err
	}
	if err := validateSentry(settings); err != nil {
		return err
	}
	return nil
}

func validateWebServer(settings *Settings) error {
	if !settings.WebServer.Enabled {
		return nil
	}
	port, err := strconv.Atoi(settings.WebServer.Port)
	if err != nil || port < 1 || port > 65535 {
		return errors.Newf("invalid web server port: %q", settings.WebServer.Port).
			Category(errors.CategoryValidation).
			Context("operation", "validate-webserver").
			Build()
	}
	return nil
}

func validateOutput(settings *Settings) error {
	sqlite := settings.Output.SQLite
	mysql := settings.Output.MySQL

	if sqlite.Enabled && mysql.Enabled {
		return errors.Newf("enable either sqlite or mysql output, not both").
			Category(errors.CategoryValidation).
			Context("operation", "validate-output").
			Build()
	}
	if sqlite.Enabled && sqlite.Path == "" {
		return errors.Newf("sqlite output requires a database path").
			Category(errors.CategoryValidation).
			Context("operation", "validate-output").
			Build()
	}
	if mysql.Enabled {
		var missing []string
		if mysql.Username == "" {
			missing = append(missing, "username")
		}
		if mysql.Database == "" {
			missing = append(missing, "database")
		}
		if mysql.Host == "" {
			missing = append(missing, "host")
		}
		if mysql.Port == "" {
			missing = append(missing, "port")
		}
		if len(missing) > 0 {
			return errors.Newf("mysql output missing required settings: %s", strings.Join(missing, ", ")).
				Category(errors.CategoryValidation).
				Context("operation", "validate-output").
				Context("missing", strings.Join(missing, ",")).
				Build()
		}
	}
	return nil
}

func validateSecurity(settings *Settings) error {
	if settings.Security.AutoTLS && settings.Security.Host == "" {
		return errors.Newf("autotls requires security.host to be set").
			Category(errors.CategoryValidation).
			Context("operation", "validate-security").
			Build()
	}
	return nil
}

func validateSentry(settings *Settings) error {
	if settings.Sentry.Enabled && settings.Sentry.DSN == "" {
		return errors.Newf("sentry reporting requires a dsn").
			Category(errors.CategoryValidation).
			Context("operation", "validate-sentry").
			Build()
	}
	return nil
}

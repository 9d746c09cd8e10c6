package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verdantlabs/bloomcal/internal/privacy"
)

// systemIDFile is the name of the file holding the anonymous install ID.
const systemIDFile = ".system_id"

// LoadOrCreateSystemID loads an existing system ID from the config
// directory or creates and persists a new one. The ID identifies an
// installation anonymously in telemetry events.
func LoadOrCreateSystemID(configDir string) (string, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	idFile := filepath.Join(configDir, systemIDFile)

	if data, err := os.ReadFile(idFile); err == nil { //nolint:gosec // G304: path is derived from the config directory
		id := strings.TrimSpace(string(data))
		if id != "" && privacy.IsValidSystemID(id) {
			return id, nil
		}
	}

	id, err := privacy.GenerateSystemID()
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(idFile, []byte(id), 0o644); err != nil { //nolint:gosec // G306: ID is not a secret
		return "", fmt.Errorf("failed to save system ID: %w", err)
	}

	return id, nil
}

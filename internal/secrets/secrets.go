// Package secrets resolves credential values from environment variables and
// secret files. The configuration loader runs MySQL passwords and the Sentry
// DSN through it, so a config file can carry "${BLOOMCAL_DB_PASSWORD}" or
// point at a Docker secret instead of a plaintext credential.
//
// Secret values never appear in error messages or log output.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// maxSecretFileSize caps secret file reads. Credentials are short
	// strings; anything larger is a misconfigured path.
	maxSecretFileSize = 64 * 1024
)

// ExpandString resolves ${VAR} and ${VAR:-default} references in s against
// the environment. Text without references passes through unchanged. A
// reference without a fallback whose variable is unset or empty is an error,
// and the error names the variable rather than any partial expansion.
func ExpandString(s string) (string, error) {
	if s == "" {
		return "", nil
	}

	var missingVars []string

	expanded := os.Expand(s, func(key string) string {
		varName := key
		defaultValue := ""
		fallbackProvided := false

		if idx := strings.Index(key, ":-"); idx != -1 {
			varName = key[:idx]
			defaultValue = key[idx+2:]
			fallbackProvided = true
		}

		value := os.Getenv(varName)
		if value == "" {
			if fallbackProvided {
				return defaultValue
			}
			missingVars = append(missingVars, varName)
			return ""
		}
		return value
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing required environment variable(s): %s", strings.Join(missingVars, ", "))
	}

	return expanded, nil
}

// ReadFile reads a secret from a file, typically a Docker secret under
// /run/secrets or a mounted Kubernetes secret. Trailing newlines are
// trimmed since secret files usually end with one; interior and leading
// whitespace is preserved. Files readable by group or other produce a
// warning on stderr but still load.
func ReadFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("secret file path is empty")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("secret file not found: %s", cleanPath)
		}
		return "", fmt.Errorf("failed to stat secret file %s: %w", cleanPath, err)
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret path is not a regular file: %s", cleanPath)
	}

	if info.Size() > maxSecretFileSize {
		return "", fmt.Errorf("secret file too large (max %d bytes): %s", maxSecretFileSize, cleanPath)
	}

	// This package stays dependency-free so the config loader can use it,
	// which rules out the structured logger here.
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		fmt.Fprintf(os.Stderr, "WARNING: secret file has group/other permissions (perms: %04o): %s\n", perm, cleanPath)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", cleanPath, err)
	}

	secret := strings.TrimRight(string(data), "\r\n")
	if secret == "" {
		return "", fmt.Errorf("secret file is empty: %s", cleanPath)
	}

	return secret, nil
}

// Resolve returns the secret from filePath when one is set, otherwise the
// value with environment references expanded. Both empty yields an empty
// secret without error; whether that is acceptable is the caller's call.
func Resolve(filePath, value string) (string, error) {
	if filePath != "" {
		secret, err := ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read secret from file: %w", err)
		}
		return secret, nil
	}

	if value != "" {
		expanded, err := ExpandString(value)
		if err != nil {
			return "", err
		}
		return expanded, nil
	}

	return "", nil
}

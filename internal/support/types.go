// Package support collects diagnostic bundles for troubleshooting. Bundles
// hold recent logs, a scrubbed copy of the configuration and basic system
// information, packaged as a zip archive the operator can attach to a bug
// report.
package support

import (
	"time"
)

// SupportDump is one collected diagnostic bundle.
type SupportDump struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	SystemID   string         `json:"system_id"`
	Version    string         `json:"version"`
	Logs       []LogEntry     `json:"logs"`
	Config     map[string]any `json:"config"`
	SystemInfo SystemInfo     `json:"system_info"`
}

// LogEntry is a single log line from the application logs or the system
// journal.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
}

// SystemInfo describes the host environment so deployment context travels
// with the bundle.
type SystemInfo struct {
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	GoVersion    string `json:"go_version"`
	CPUCount     int    `json:"cpu_count"`
	MemoryMB     uint64 `json:"memory_mb"`
	Hostname     string `json:"hostname"`
	Platform     string `json:"platform"`
	Container    bool   `json:"container"`
}

// CollectorOptions controls which sections a bundle includes. Operators can
// drop sections they consider sensitive.
type CollectorOptions struct {
	IncludeLogs       bool          `json:"include_logs"`
	IncludeConfig     bool          `json:"include_config"`
	IncludeSystemInfo bool          `json:"include_system_info"`
	LogDuration       time.Duration `json:"log_duration"`
	MaxLogSize        int64         `json:"max_log_size"`
	ScrubSensitive    bool          `json:"scrub_sensitive"`
}

// DefaultCollectorOptions includes every section, a one week log window and
// sensitive-data scrubbing.
func DefaultCollectorOptions() CollectorOptions {
	return CollectorOptions{
		IncludeLogs:       true,
		IncludeConfig:     true,
		IncludeSystemInfo: true,
		LogDuration:       7 * 24 * time.Hour,
		MaxLogSize:        20 * 1024 * 1024,
		ScrubSensitive:    true,
	}
}

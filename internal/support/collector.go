package support

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"gopkg.in/yaml.v3"

	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/errors"
	"github.com/verdantlabs/bloomcal/internal/privacy"
)

// sensitiveConfigKeys are redacted from collected configuration. Coordinates
// count because they locate the operator's garden.
var sensitiveConfigKeys = []string{
	"password", "dsn", "token", "secret", "apikey", "api_key",
	"username", "latitude", "longitude", "host",
}

// Collector gathers support data from the config and data directories.
type Collector struct {
	configDir string
	dataDir   string
	systemID  string
	version   string
}

// NewCollector creates a support data collector. Empty directories default
// to the current directory.
func NewCollector(configDir, dataDir, systemID, version string) *Collector {
	if configDir == "" {
		configDir = "."
	}
	if dataDir == "" {
		dataDir = "."
	}

	return &Collector{
		configDir: configDir,
		dataDir:   dataDir,
		systemID:  systemID,
		version:   version,
	}
}

// Collect gathers the sections selected in opts into a SupportDump.
func (c *Collector) Collect(ctx context.Context, opts CollectorOptions) (*SupportDump, error) {
	if !opts.IncludeLogs && !opts.IncludeConfig && !opts.IncludeSystemInfo {
		return nil, errors.Newf("at least one section must be included in a support dump").
			Component("support").
			Category(errors.CategoryValidation).
			Context("operation", "validate_collect_options").
			Build()
	}

	dump := &SupportDump{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		SystemID:  c.systemID,
		Version:   c.version,
	}

	if opts.IncludeSystemInfo {
		dump.SystemInfo = c.collectSystemInfo()
	}

	if opts.IncludeConfig {
		config, err := c.collectConfig(opts.ScrubSensitive)
		if err != nil {
			return nil, err
		}
		dump.Config = config
	}

	if opts.IncludeLogs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dump.Logs = c.collectLogs(opts.LogDuration, opts.MaxLogSize, opts.ScrubSensitive)
	}

	return dump, nil
}

// CreateArchive packages the dump as a zip archive with one JSON file per
// section.
func (c *Collector) CreateArchive(ctx context.Context, dump *SupportDump, opts CollectorOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	sections := []struct {
		name    string
		include bool
		payload any
	}{
		{"metadata.json", true, dump},
		{"logs.json", opts.IncludeLogs && len(dump.Logs) > 0, dump.Logs},
		{"config.json", opts.IncludeConfig && dump.Config != nil, dump.Config},
		{"system_info.json", opts.IncludeSystemInfo, dump.SystemInfo},
	}
	for _, section := range sections {
		if !section.include {
			continue
		}
		file, err := w.Create(section.name)
		if err == nil {
			err = json.NewEncoder(file).Encode(section.payload)
		}
		if err != nil {
			return nil, errors.New(err).
				Component("support").
				Category(errors.CategoryFileIO).
				Context("operation", "write_archive_section").
				Context("section", section.name).
				Context("dump_id", dump.ID).
				Build()
		}
	}

	if err := w.Close(); err != nil {
		return nil, errors.New(err).
			Component("support").
			Category(errors.CategoryFileIO).
			Context("operation", "close_archive").
			Context("archive_size", buf.Len()).
			Build()
	}

	return buf.Bytes(), nil
}

// collectSystemInfo gathers host details. Failures leave fields at their
// zero values rather than aborting the bundle.
func (c *Collector) collectSystemInfo() SystemInfo {
	info := SystemInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		GoVersion:    runtime.Version(),
		CPUCount:     runtime.NumCPU(),
		Container:    conf.RunningInContainer(),
	}

	if hostname, err := os.Hostname(); err == nil {
		info.Hostname = hostname
	}
	if hostInfo, err := host.Info(); err == nil {
		info.Platform = strings.TrimSpace(hostInfo.Platform + " " + hostInfo.PlatformVersion)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemoryMB = vm.Total / 1024 / 1024
	}

	return info
}

// collectConfig loads config.yaml from the config directory and redacts
// sensitive values.
func (c *Collector) collectConfig(scrub bool) (map[string]any, error) {
	configPath := filepath.Join(c.configDir, "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.New(err).
			Component("support").
			Category(errors.CategoryFileIO).
			Context("operation", "read_config_file").
			Context("config_path", configPath).
			Build()
	}

	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.New(err).
			Component("support").
			Category(errors.CategoryConfiguration).
			Context("operation", "parse_config_yaml").
			Context("file_size", len(data)).
			Build()
	}

	if scrub {
		config = scrubConfig(config)
	}

	return config, nil
}

// scrubConfig redacts sensitive keys at every nesting level.
func scrubConfig(config map[string]any) map[string]any {
	scrubbed := make(map[string]any, len(config))
	for k, v := range config {
		scrubbed[k] = scrubValue(k, v)
	}
	return scrubbed
}

func scrubValue(key string, value any) any {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range sensitiveConfigKeys {
		if strings.Contains(lowerKey, sensitive) {
			return "[REDACTED]"
		}
	}

	switch v := value.(type) {
	case map[string]any:
		return scrubConfig(v)
	case []any:
		scrubbed := make([]any, len(v))
		for i, item := range v {
			scrubbed[i] = scrubValue(key, item)
		}
		return scrubbed
	default:
		return value
	}
}

// collectLogs gathers recent entries from the system journal and the log
// files written by the logging package. Collection problems yield a smaller
// bundle, never an error.
func (c *Collector) collectLogs(duration time.Duration, maxSize int64, scrub bool) []LogEntry {
	logs := c.collectJournalLogs(duration)

	cutoff := time.Now().Add(-duration)
	var totalSize int64
	logDirs := []string{
		"logs",
		filepath.Join(c.dataDir, "logs"),
		filepath.Join(c.configDir, "logs"),
	}
	seen := make(map[string]bool)
	for _, dir := range logDirs {
		abs, err := filepath.Abs(dir)
		if err == nil {
			if seen[abs] {
				continue
			}
			seen[abs] = true
		}

		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, file := range files {
			if !strings.HasSuffix(file.Name(), ".log") {
				continue
			}
			fileLogs, size := parseLogFile(filepath.Join(dir, file.Name()), cutoff, maxSize-totalSize)
			logs = append(logs, fileLogs...)
			totalSize += size
			if totalSize >= maxSize {
				break
			}
		}
		if totalSize >= maxSize {
			break
		}
	}

	if scrub {
		for i := range logs {
			logs[i].Message = privacy.ScrubMessage(logs[i].Message)
		}
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Timestamp.Before(logs[j].Timestamp)
	})

	return logs
}

// collectJournalLogs reads the service journal on systemd hosts. Missing
// journalctl or a missing unit just yields no entries.
func (c *Collector) collectJournalLogs(duration time.Duration) []LogEntry {
	var logs []LogEntry

	since := time.Now().Add(-duration).Format(time.DateTime)
	cmd := exec.Command("journalctl",
		"-u", "bloomcal.service",
		"--since", since,
		"--no-pager",
		"-o", "json",
		"--no-hostname")

	output, err := cmd.Output()
	if err != nil {
		return logs
	}

	for line := range strings.Lines(string(output)) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}

		message, _ := entry["MESSAGE"].(string)
		priority, _ := entry["PRIORITY"].(string)
		timestamp, _ := entry["__REALTIME_TIMESTAMP"].(string)

		var ts time.Time
		if usec, err := strconv.ParseInt(timestamp, 10, 64); err == nil {
			ts = time.Unix(0, usec*1000)
		}

		logs = append(logs, LogEntry{
			Timestamp: ts,
			Level:     journalPriorityLevel(priority),
			Message:   message,
			Source:    "journald",
		})
	}

	return logs
}

func journalPriorityLevel(priority string) string {
	switch priority {
	case "0", "1", "2", "3":
		return "ERROR"
	case "4":
		return "WARNING"
	case "7":
		return "DEBUG"
	default:
		return "INFO"
	}
}

// parseLogFile extracts entries newer than cutoff, stopping once maxSize
// bytes have been read.
func parseLogFile(path string, cutoff time.Time, maxSize int64) ([]LogEntry, int64) {
	var logs []LogEntry
	var totalSize int64

	file, err := os.Open(path)
	if err != nil {
		return logs, 0
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		totalSize += int64(len(line))
		if totalSize > maxSize {
			break
		}

		entry := parseLogLine(line)
		if entry != nil && entry.Timestamp.After(cutoff) {
			logs = append(logs, *entry)
		}
	}

	return logs, totalSize
}

// parseLogLine understands the JSON lines the logging package writes, with
// a fallback for plain "2006-01-02 15:04:05 [LEVEL] message" text.
func parseLogLine(line string) *LogEntry {
	var jsonLog map[string]any
	if err := json.Unmarshal([]byte(line), &jsonLog); err == nil {
		entry := &LogEntry{Source: "file"}

		if timeStr, ok := jsonLog["time"].(string); ok {
			if t, err := time.Parse(time.RFC3339, timeStr); err == nil {
				entry.Timestamp = t
			}
		}
		if level, ok := jsonLog["level"].(string); ok {
			entry.Level = strings.ToUpper(level)
		}
		if msg, ok := jsonLog["msg"].(string); ok {
			entry.Message = msg
		}
		if service, ok := jsonLog["service"].(string); ok {
			entry.Source = service
		}

		if entry.Message != "" {
			return entry
		}
		return nil
	}

	parts := strings.SplitN(line, " ", 4)
	if len(parts) < 4 {
		return nil
	}
	timestamp, err := time.Parse(time.DateTime, parts[0]+" "+parts[1])
	if err != nil {
		return nil
	}

	return &LogEntry{
		Timestamp: timestamp,
		Level:     strings.Trim(parts[2], "[]"),
		Message:   parts[3],
		Source:    "file",
	}
}

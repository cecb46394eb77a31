package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir        string `toml:"work_dir"`
	DestinationDir string `toml:"destination_dir"`
	EditedDir      string `toml:"edited_dir"`
	LogDir         string `toml:"log_dir"`
}

// Device describes how to reach the networked recorder.
type Device struct {
	Address        string `toml:"address"`
	Username       string `toml:"username"`
	MediaAccessKey string `toml:"media_access_key"`
	InsecureTLS    bool   `toml:"insecure_tls"`
	PageSize       int    `toml:"page_size"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Decoder configures the external process that turns the raw recorder stream
// into a playable file.
type Decoder struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// Transcoder configures the external process that produces the edit-ready
// output.
type Transcoder struct {
	Command   string   `toml:"command"`
	Args      []string `toml:"args"`
	Extension string   `toml:"extension"`
}

// Selection holds the recording filters applied before a run.
type Selection struct {
	Include string `toml:"include"`
	Exclude string `toml:"exclude"`
	Force   bool   `toml:"force"`
}

// Workflow contains configuration for worker timing and stage hand-off.
type Workflow struct {
	PollInterval int    `toml:"poll_interval"`
	FetchPacing  int    `toml:"fetch_pacing"`
	Handoff      string `toml:"handoff"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Config encapsulates all configuration values for nropster.
//
// Configuration sections by subsystem:
//   - Paths: work, destination, edited, and log directories
//   - Device: recorder address and credentials
//   - Decoder: stream decoder command template
//   - Transcoder: edit-format transcoder command template
//   - Selection: include/exclude patterns and the force flag
//   - Workflow: poll interval, fetch pacing, and stage hand-off mode
//   - Logging: log format and level
//   - Notifications: ntfy push notification settings
type Config struct {
	Paths         Paths         `toml:"paths"`
	Device        Device        `toml:"device"`
	Decoder       Decoder       `toml:"decoder"`
	Transcoder    Transcoder    `toml:"transcoder"`
	Selection     Selection     `toml:"selection"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("nropster.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into. The edited
// directory is only read, so it is created on a best-effort basis.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.DestinationDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.EditedDir) != "" {
		_ = os.MkdirAll(c.Paths.EditedDir, 0o755)
	}
	return nil
}

// CatalogCachePath is where the last retrieved recorder listing is kept.
func (c *Config) CatalogCachePath() string {
	return filepath.Join(c.Paths.WorkDir, "now_playing.xml")
}

// LockPath is the file guarding a work directory against concurrent runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.WorkDir, "nropster.lock")
}

// LogPath is the appended run log.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "nropster.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	enc := toml.NewEncoder(&b)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}

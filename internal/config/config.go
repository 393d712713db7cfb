// Package config loads electron-types settings from a TOML file, a .env file,
// ELECTRON_TYPES_* environment variables and command-line flags, in that order
// of increasing precedence.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrInvalid wraps every load or validation failure caused by user input.
var ErrInvalid = errors.New("invalid configuration")

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "electron-types.toml"

// Registry names the upstream and self packages and where to find them.
type Registry struct {
	URL       string `toml:"url" validate:"required,url"`
	Upstream  string `toml:"upstream" validate:"required,purl"`
	Published string `toml:"published" validate:"required,purl"`
}

// Feed is the upstream release list.
type Feed struct {
	URL string `toml:"url" validate:"required,url"`
}

// Catalog controls which releases are targets.
type Catalog struct {
	TopMajors int `toml:"top_majors" validate:"min=1"`
}

// Output describes the mirrored artifact and where it goes.
type Output struct {
	Dir                  string   `toml:"dir" validate:"required"`
	ArtifactPath         string   `toml:"artifact_path" validate:"required"`
	ArtifactName         string   `toml:"artifact_name" validate:"required"`
	MetadataName         string   `toml:"metadata_name" validate:"required"`
	MinArtifactBytes     int64    `toml:"min_artifact_bytes" validate:"min=0"`
	RequiredDeclarations []string `toml:"required_declarations"`
	Manifest             string   `toml:"manifest" validate:"required"`
}

// HTTP tunes the registry client and the tarball fetcher.
type HTTP struct {
	UserAgent              string `toml:"user_agent" validate:"required"`
	TimeoutSeconds         int    `toml:"timeout_seconds" validate:"min=1"`
	DownloadTimeoutSeconds int    `toml:"download_timeout_seconds" validate:"min=1"`
	MaxRetries             int    `toml:"max_retries" validate:"min=0,max=20"`
	RetryDelayMillis       int    `toml:"retry_delay_ms" validate:"min=1"`
	BreakerThreshold       int    `toml:"breaker_threshold" validate:"min=1"`
}

// Workspace controls run scratch directories.
type Workspace struct {
	BaseDir         string `toml:"base_dir"`
	StaleAfterHours int    `toml:"stale_after_hours" validate:"min=0"`
}

// Logging controls log output.
type Logging struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=console json"`
}

// Config is the full electron-types configuration.
type Config struct {
	Registry  Registry  `toml:"registry"`
	Feed      Feed      `toml:"feed"`
	Catalog   Catalog   `toml:"catalog"`
	Output    Output    `toml:"output"`
	HTTP      HTTP      `toml:"http"`
	Workspace Workspace `toml:"workspace"`
	Logging   Logging   `toml:"logging"`
}

// Load reads the configuration. An explicit path must exist; without one,
// DefaultFileName in the working directory is used when present. A .env file
// next to the working directory is loaded first without overriding variables
// already set. Returns the config, the file consulted, and whether it existed.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolved, exists, err := resolvePath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		if err := cfg.decodeFile(resolved); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// Sample returns an annotated configuration file with default values.
func Sample() string {
	return sampleConfig
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	return nil
}

func resolvePath(path string) (string, bool, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultFileName
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		return "", false, fmt.Errorf("%w: %s is a directory", ErrInvalid, abs)
	case err == nil:
		return abs, true, nil
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		return abs, false, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", false, fmt.Errorf("%w: config file %s does not exist", ErrInvalid, abs)
	default:
		return "", false, fmt.Errorf("stat config: %w", err)
	}
}

func (c *Config) decodeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Registry.URL = strings.TrimRight(strings.TrimSpace(c.Registry.URL), "/")
	c.Feed.URL = strings.TrimSpace(c.Feed.URL)
	c.Output.Dir = strings.TrimSpace(c.Output.Dir)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Output.RequiredDeclarations == nil {
		c.Output.RequiredDeclarations = append([]string(nil), defaultRequiredDeclarations...)
	}
}

// Timeout is the per-request timeout for registry and feed calls.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// RetryDelay is the first backoff interval between retried requests.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.HTTP.RetryDelayMillis) * time.Millisecond
}

// DownloadTimeout bounds a whole tarball download.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.HTTP.DownloadTimeoutSeconds) * time.Second
}

// StaleAfter is the age past which leftover workspaces are removed; zero disables cleanup.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Workspace.StaleAfterHours) * time.Hour
}

// ArtifactFile is the path of the mirrored declaration file.
func (c *Config) ArtifactFile() string {
	return filepath.Join(c.Output.Dir, c.Output.ArtifactName)
}

// LockFile is the advisory lock guarding the output directory.
func (c *Config) LockFile() string {
	return filepath.Clean(c.Output.Dir) + ".lock"
}

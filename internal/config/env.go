package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "ELECTRON_TYPES_"

func (c *Config) applyEnv() error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"REGISTRY_URL", &c.Registry.URL},
		{"UPSTREAM", &c.Registry.Upstream},
		{"PUBLISHED", &c.Registry.Published},
		{"FEED_URL", &c.Feed.URL},
		{"OUTPUT_DIR", &c.Output.Dir},
		{"MANIFEST", &c.Output.Manifest},
		{"USER_AGENT", &c.HTTP.UserAgent},
		{"WORKSPACE_DIR", &c.Workspace.BaseDir},
		{"LOG_LEVEL", &c.Logging.Level},
		{"LOG_FORMAT", &c.Logging.Format},
	}
	for _, s := range strs {
		if value, ok := getenvTrim(EnvPrefix + s.name); ok {
			*s.dst = value
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"TOP_MAJORS", &c.Catalog.TopMajors},
		{"MAX_RETRIES", &c.HTTP.MaxRetries},
		{"RETRY_DELAY_MS", &c.HTTP.RetryDelayMillis},
		{"TIMEOUT_SECONDS", &c.HTTP.TimeoutSeconds},
	}
	for _, i := range ints {
		value, ok := getenvTrim(EnvPrefix + i.name)
		if !ok {
			continue
		}
		parsed, err := parseIntEnv(EnvPrefix+i.name, value)
		if err != nil {
			return err
		}
		*i.dst = parsed
	}

	if value, ok := getenvTrim(EnvPrefix + "MIN_ARTIFACT_BYTES"); ok {
		parsed, err := parseIntEnv(EnvPrefix+"MIN_ARTIFACT_BYTES", value)
		if err != nil {
			return err
		}
		c.Output.MinArtifactBytes = int64(parsed)
	}
	return nil
}

func getenvTrim(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func parseIntEnv(name, raw string) (int, error) {
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %s as integer: %v", ErrInvalid, name, err)
	}
	return parsed, nil
}

package config

import (
	"fmt"

	"github.com/git-pkgs/electron-types/internal/core"
)

// Identity is a package resolved from a configured PURL.
type Identity struct {
	Ecosystem   string
	Name        string
	RegistryURL string
}

// UpstreamIdentity is the package the declaration file is extracted from.
func (c *Config) UpstreamIdentity() (Identity, error) {
	return c.identity(c.Registry.Upstream)
}

// PublishedIdentity is the mirror package whose published versions gate the worklist.
func (c *Config) PublishedIdentity() (Identity, error) {
	return c.identity(c.Registry.Published)
}

// identity parses raw; a repository_url qualifier overrides the configured registry.
func (c *Config) identity(raw string) (Identity, error) {
	p, err := core.ParsePURL(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %q: %v", ErrInvalid, raw, err)
	}
	id := Identity{
		Ecosystem:   p.Type,
		Name:        p.FullName(),
		RegistryURL: c.Registry.URL,
	}
	if repo := p.Qualifiers.Map()["repository_url"]; repo != "" {
		id.RegistryURL = repo
	}
	return id, nil
}

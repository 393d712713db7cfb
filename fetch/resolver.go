package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/git-pkgs/electron-types/internal/core"
)

// ErrNoDownloadURL is returned when neither the registry document nor the
// URL convention yields a tarball location.
var ErrNoDownloadURL = errors.New("no download URL available")

// Registry is the slice of core.Registry the resolver needs.
type Registry interface {
	FetchVersion(ctx context.Context, name, version string) (*core.Version, error)
	URLs() core.URLBuilder
}

// Resolver turns a package name and version spec into a downloadable tarball.
type Resolver struct {
	registry Registry
}

// NewResolver creates a resolver backed by reg.
func NewResolver(reg Registry) *Resolver {
	return &Resolver{registry: reg}
}

// ArtifactInfo describes a resolved tarball.
type ArtifactInfo struct {
	Version   string // concrete version, never a dist-tag
	URL       string
	Filename  string
	Integrity string // sha512-... or sha1-...; empty if the registry published none
}

// Resolve looks up spec (a concrete version or a dist-tag such as "latest")
// and returns where its tarball lives. The registry's dist.tarball wins; the
// conventional "<name>/-/<short>-<version>.tgz" path is the fallback.
func (r *Resolver) Resolve(ctx context.Context, name, spec string) (*ArtifactInfo, error) {
	v, err := r.registry.FetchVersion(ctx, name, spec)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("%s@%s: %w", name, spec, errors.Join(ErrNotFound, err))
		}
		return nil, fmt.Errorf("resolving %s@%s: %w", name, spec, err)
	}

	url := v.Tarball
	if url == "" {
		url = r.registry.URLs().Download(name, v.Number)
	}
	if url == "" {
		return nil, fmt.Errorf("%s@%s: %w", name, v.Number, ErrNoDownloadURL)
	}

	return &ArtifactInfo{
		Version:   v.Number,
		URL:       url,
		Filename:  filenameFromURL(url),
		Integrity: v.Integrity,
	}, nil
}

func filenameFromURL(url string) string {
	url, _, _ = strings.Cut(url, "?")
	if idx := strings.LastIndex(url, "/"); idx >= 0 {
		return url[idx+1:]
	}
	return url
}

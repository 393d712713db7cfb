// Package npm provides a registry client for npmjs.com.
package npm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/git-pkgs/electron-types/internal/core"
)

const (
	DefaultURL = "https://registry.npmjs.org"
	ecosystem  = "npm"
)

func init() {
	core.Register(ecosystem, DefaultURL, func(baseURL string, client *core.Client) core.Registry {
		return New(baseURL, client)
	})
}

type Registry struct {
	baseURL string
	client  *core.Client
	urls    *URLs
}

func New(baseURL string, client *core.Client) *Registry {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if client == nil {
		client = core.DefaultClient()
	}
	r := &Registry{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
	r.urls = &URLs{baseURL: r.baseURL}
	return r
}

func (r *Registry) Ecosystem() string {
	return ecosystem
}

func (r *Registry) URLs() core.URLBuilder {
	return r.urls
}

type packageResponse struct {
	ID          string                 `json:"_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Versions    map[string]versionInfo `json:"versions"`
	Time        map[string]string      `json:"time"`
	DistTags    map[string]string      `json:"dist-tags"`
}

type versionInfo struct {
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	Deprecated string            `json:"deprecated"`
	Dist       distInfo          `json:"dist"`
	Types      string            `json:"types"`
	Engines    map[string]string `json:"engines"`
}

type distInfo struct {
	Shasum    string `json:"shasum"`
	Tarball   string `json:"tarball"`
	Integrity string `json:"integrity"`
}

// FetchPackage loads the packument. Published version numbers come back sorted
// so callers get a stable listing regardless of map order.
func (r *Registry) FetchPackage(ctx context.Context, name string) (*core.Package, error) {
	var resp packageResponse
	if err := r.client.GetJSON(ctx, r.urls.Packument(name), &resp); err != nil {
		return nil, notFound(err, name, "")
	}

	versions := make([]string, 0, len(resp.Versions))
	for num := range resp.Versions {
		versions = append(versions, num)
	}
	sort.Strings(versions)

	pkg := &core.Package{
		Name:          coalesceString(resp.ID, resp.Name, name),
		Description:   resp.Description,
		LatestVersion: resp.DistTags[core.LatestTag],
		DistTags:      resp.DistTags,
		Versions:      versions,
		Metadata: map[string]any{
			"time": resp.Time,
		},
	}

	return pkg, nil
}

// FetchVersion loads the single-version document. version may be a dist-tag;
// the registry resolves it and the returned Number is the concrete version.
func (r *Registry) FetchVersion(ctx context.Context, name, version string) (*core.Version, error) {
	var v versionInfo
	if err := r.client.GetJSON(ctx, r.urls.Metadata(name, version), &v); err != nil {
		return nil, notFound(err, name, version)
	}
	if v.Version == "" {
		return nil, fmt.Errorf("npm: %s@%s: response has no version field", name, version)
	}

	var status core.VersionStatus
	if v.Deprecated != "" {
		status = core.StatusDeprecated
	}

	integrity := v.Dist.Integrity
	if integrity == "" && v.Dist.Shasum != "" {
		integrity = "sha1-" + v.Dist.Shasum
	}

	return &core.Version{
		Number:    v.Version,
		Tarball:   v.Dist.Tarball,
		Integrity: integrity,
		Status:    status,
		Metadata: map[string]any{
			"deprecated": v.Deprecated,
			"types":      v.Types,
			"engines":    v.Engines,
		},
	}, nil
}

func notFound(err error, name, version string) error {
	var httpErr *core.HTTPError
	if errors.As(err, &httpErr) && httpErr.IsNotFound() {
		return &core.NotFoundError{Ecosystem: ecosystem, Name: name, Version: version}
	}
	return err
}

func coalesceString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type URLs struct {
	baseURL string
}

// escapeName keeps the scope separator of "@scope/name" literal, as the registry expects.
func escapeName(name string) string {
	if strings.HasPrefix(name, "@") && strings.Contains(name, "/") {
		parts := strings.SplitN(name, "/", 2)
		return url.PathEscape(parts[0]) + "/" + url.PathEscape(parts[1])
	}
	return url.PathEscape(name)
}

func (u *URLs) Metadata(name, version string) string {
	if version == "" {
		version = core.LatestTag
	}
	return fmt.Sprintf("%s/%s/%s", u.baseURL, escapeName(name), url.PathEscape(version))
}

func (u *URLs) Packument(name string) string {
	return fmt.Sprintf("%s/%s", u.baseURL, escapeName(name))
}

func (u *URLs) Download(name, version string) string {
	if version == "" {
		return ""
	}
	shortName := name
	if strings.Contains(name, "/") {
		parts := strings.SplitN(name, "/", 2)
		shortName = parts[1]
	}
	return fmt.Sprintf("%s/%s/-/%s-%s.tgz", u.baseURL, name, shortName, version)
}

func (u *URLs) Documentation(name, version string) string {
	if version != "" {
		return fmt.Sprintf("https://www.npmjs.com/package/%s/v/%s", name, version)
	}
	return fmt.Sprintf("https://www.npmjs.com/package/%s", name)
}

func (u *URLs) PURL(name, version string) string {
	namespace := ""
	pkgName := name
	if strings.HasPrefix(name, "@") && strings.Contains(name, "/") {
		parts := strings.SplitN(name, "/", 2)
		namespace = "%40" + strings.TrimPrefix(parts[0], "@")
		pkgName = parts[1]
	}

	if namespace != "" {
		if version != "" {
			return fmt.Sprintf("pkg:npm/%s/%s@%s", namespace, pkgName, version)
		}
		return fmt.Sprintf("pkg:npm/%s/%s", namespace, pkgName)
	}

	if version != "" {
		return fmt.Sprintf("pkg:npm/%s@%s", pkgName, version)
	}
	return fmt.Sprintf("pkg:npm/%s", pkgName)
}

// Package electrontypes mirrors the TypeScript declarations shipped inside the
// electron npm package so they can be published as a standalone package.
//
// The two entry points are Check, which compares the upstream release feed
// with what has already been published, and Extract, which downloads one
// electron release and copies its electron.d.ts into an output directory:
//
//	client := electrontypes.DefaultClient()
//
//	res, err := electrontypes.Check(ctx, electrontypes.CheckOptions{Client: client})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, v := range res.VersionsToPublish {
//		out, err := electrontypes.Extract(ctx, electrontypes.ExtractOptions{Client: client, OutputDir: "dist"}, v)
//		...
//	}
package electrontypes

import (
	"context"

	"github.com/git-pkgs/purl"

	"github.com/git-pkgs/electron-types/client"
	"github.com/git-pkgs/electron-types/fetch"
	"github.com/git-pkgs/electron-types/internal/catalog"
	"github.com/git-pkgs/electron-types/internal/check"
	"github.com/git-pkgs/electron-types/internal/core"
	"github.com/git-pkgs/electron-types/internal/extract"
	"github.com/git-pkgs/electron-types/internal/npm"
	"github.com/git-pkgs/electron-types/internal/releases"
)

// Re-export types from internal/core
type (
	// Registry is the interface implemented by registry clients.
	Registry = core.Registry

	// Package represents metadata about a package from a registry.
	Package = core.Package

	// Version represents a specific version of a package.
	Version = core.Version

	// Release is one entry of the upstream release feed.
	Release = core.Release
)

// Re-export types from client
type (
	// Client is an HTTP client with retry logic for registry APIs.
	Client = client.Client

	// Option configures a Client.
	Option = client.Option

	// URLBuilder constructs URLs for a registry.
	URLBuilder = client.URLBuilder
)

// Result types
type (
	CheckResult   = check.Result
	ExtractResult = extract.Result
	Metadata      = extract.Metadata
)

// Error types
type (
	HTTPError             = client.HTTPError
	NotFoundError         = client.NotFoundError
	RateLimitError        = client.RateLimitError
	MalformedVersionError = core.MalformedVersionError
	UpstreamFetchError    = core.UpstreamFetchError
	ArtifactMissingError  = core.ArtifactMissingError
	OutputValidationError = core.OutputValidationError
)

// Re-export errors
var (
	ErrNotFound         = client.ErrNotFound
	ErrMalformedVersion = core.ErrMalformedVersion
	ErrUpstreamFetch    = core.ErrUpstreamFetch
	ErrArtifactMissing  = core.ErrArtifactMissing
	ErrOutputValidation = core.ErrOutputValidation
)

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - 5 retries with exponential backoff
// - Retry on 429 and 5xx responses
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	return client.NewClient(opts...)
}

// WithTimeout sets the HTTP client timeout.
var WithTimeout = client.WithTimeout

// WithMaxRetries sets the maximum number of retries; zero or less disables them.
var WithMaxRetries = client.WithMaxRetries

// NewRegistry returns an npm registry client. Empty baseURL uses the public registry.
func NewRegistry(baseURL string, c *Client) Registry {
	return npm.New(baseURL, c)
}

// BuildURLs returns a map of all non-empty URLs for a package.
// Keys are "metadata", "packument", "download", "docs", and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	return client.BuildURLs(urls, name, version)
}

// PURL represents a parsed Package URL.
type PURL = purl.PURL

// ParsePURL parses a Package URL string such as pkg:npm/electron@33.2.0.
func ParsePURL(purlStr string) (*PURL, error) {
	return purl.Parse(purlStr)
}

// LatestStablePerMajor returns the newest stable version of each of the topN
// highest major lines in feed, highest major first.
func LatestStablePerMajor(feed []Release, topN int) []string {
	return catalog.LatestStablePerMajor(catalog.SortNewestFirst(feed), topN)
}

// LatestPrereleasePerMajor returns the newest prerelease of every major line
// above floor, highest major first.
func LatestPrereleasePerMajor(feed []Release, floor int) []string {
	return catalog.LatestPrereleasePerMajor(catalog.SortNewestFirst(feed), floor)
}

// CheckOptions configures Check. Zero values use the public feed, the public
// npm registry, the electron-types package and three major lines.
type CheckOptions struct {
	Client        *Client
	FeedURL       string
	RegistryURL   string
	PublishedName string
	TopMajors     int
}

// Check lists the target versions and those not yet published.
func Check(ctx context.Context, opts CheckOptions) (*CheckResult, error) {
	return check.Run(ctx, check.Options{
		Releases:      releases.New(opts.FeedURL, opts.Client),
		Published:     npm.New(opts.RegistryURL, opts.Client),
		PublishedName: opts.PublishedName,
		TopMajors:     opts.TopMajors,
	})
}

// ExtractOptions configures Extract. Zero values extract package/electron.d.ts
// from the electron package on the public npm registry into dist.
type ExtractOptions struct {
	Client      *Client
	RegistryURL string
	OutputDir   string
}

// Extract resolves spec ("latest" or an exact version), downloads that
// release and writes electron.d.ts plus version.json into OutputDir.
func Extract(ctx context.Context, opts ExtractOptions, spec string) (*ExtractResult, error) {
	p, err := extract.New(extract.Options{
		Registry:  npm.New(opts.RegistryURL, opts.Client),
		Fetcher:   fetch.NewBreakerFetcher(fetch.NewFetcher()),
		OutputDir: opts.OutputDir,

		MinArtifactBytes: extract.DefaultMinArtifactBytes,
	})
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, spec)
}

// Verify checks an extracted declaration file for size and the core Electron declarations.
func Verify(path string) error {
	return extract.Verify(path, extract.DefaultMinArtifactBytes, extract.DefaultRequiredDeclarations)
}

// ReadMetadata loads a version.json written by Extract.
func ReadMetadata(path string) (*Metadata, error) {
	return extract.ReadMetadata(path)
}

// Package check decides which upstream releases still need a mirrored package.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/git-pkgs/electron-types/internal/catalog"
	"github.com/git-pkgs/electron-types/internal/core"
	"github.com/git-pkgs/electron-types/internal/publish"
)

// DefaultPublishedName is the package whose published versions gate the worklist.
const DefaultPublishedName = "electron-types"

// ReleaseLister returns the upstream release stream, newest first.
type ReleaseLister interface {
	FetchReleases(ctx context.Context) ([]core.Release, error)
}

// Options configures a check.
type Options struct {
	Releases      ReleaseLister
	Published     publish.PackageFetcher
	PublishedName string
	TopMajors     int
	Logger        *slog.Logger
}

// Result is the outcome of a check. The JSON field names are consumed by CI.
type Result struct {
	VersionsToPublish  []string          `json:"versionsToPublish"`
	StableVersions     []string          `json:"stableVersions"`
	PrereleaseVersions []string          `json:"prereleaseVersions"`
	Tarballs           map[string]string `json:"tarballs,omitempty"`
}

// Run fetches the release stream and the published set concurrently, then
// computes the snapshot and the worklist. Either fetch failing fails the run.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Releases == nil || opts.Published == nil {
		return nil, errors.New("check: release lister and published registry are required")
	}
	if opts.PublishedName == "" {
		opts.PublishedName = DefaultPublishedName
	}
	if opts.TopMajors == 0 {
		opts.TopMajors = catalog.DefaultTopMajors
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var (
		releases  []core.Release
		published publish.Set
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := opts.Releases.FetchReleases(gCtx)
		if err != nil {
			return fmt.Errorf("release feed: %w", err)
		}
		releases = r
		return nil
	})
	g.Go(func() error {
		s, err := publish.FetchPublished(gCtx, opts.Published, opts.PublishedName)
		if err != nil {
			return fmt.Errorf("published versions of %s: %w", opts.PublishedName, err)
		}
		published = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("published versions", "package", opts.PublishedName, "versions", published.Sorted())

	snap := catalog.Compute(releases, opts.TopMajors)
	work := publish.Worklist(snap.Targets(), published)

	logger.Info("version check complete",
		"releases", len(releases),
		"published", len(published),
		"stable", snap.Stable,
		"prerelease", snap.Prerelease,
		"to_publish", work,
	)

	return &Result{
		VersionsToPublish:  work,
		StableVersions:     snap.Stable,
		PrereleaseVersions: snap.Prerelease,
	}, nil
}

// AttachTarballs looks up the upstream tarball of every version in the
// worklist. Versions the registry cannot describe are left out.
func (r *Result) AttachTarballs(ctx context.Context, reg core.Registry, name string) {
	if len(r.VersionsToPublish) == 0 {
		return
	}
	found := core.BulkFetchVersions(ctx, reg, name, r.VersionsToPublish)
	r.Tarballs = make(map[string]string, len(found))
	for v, meta := range found {
		url := meta.Tarball
		if url == "" {
			url = reg.URLs().Download(name, v)
		}
		r.Tarballs[v] = url
	}
}

package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/git-pkgs/electron-types/fetch"
	"github.com/git-pkgs/electron-types/internal/core"
	"github.com/git-pkgs/electron-types/internal/version"
)

const (
	DefaultPackage          = "electron"
	DefaultArtifactPath     = "package/electron.d.ts"
	DefaultArtifactName     = "electron.d.ts"
	DefaultMetadataName     = "version.json"
	DefaultMinArtifactBytes = 1000
)

// Options configures a Pipeline. Registry is required; everything else has a default.
type Options struct {
	Registry fetch.Registry
	Fetcher  fetch.FetcherInterface

	Package      string // upstream package name
	ArtifactPath string // slash-separated path inside the unpacked tarball

	OutputDir        string
	ArtifactName     string
	MetadataName     string
	MinArtifactBytes int64

	WorkspaceBase string // parent of run workspaces; empty means os.TempDir()

	Now    func() time.Time
	Logger *slog.Logger

	// OnTransition, when set, is called on every state change.
	OnTransition func(from, to State)
}

// Result describes a completed run.
type Result struct {
	ResolvedVersion string    `json:"resolvedVersion"`
	ArtifactPath    string    `json:"artifactPath"`
	MetadataPath    string    `json:"metadataPath"`
	ExtractedAt     time.Time `json:"extractedAt"`
}

// Metadata is the record written next to the artifact.
type Metadata struct {
	ElectronVersion string `json:"electronVersion"`
	ExtractedAt     string `json:"extractedAt"`
}

// Pipeline extracts the declaration file of one release per Run.
type Pipeline struct {
	opts     Options
	resolver *fetch.Resolver
}

// New validates opts and fills in defaults.
func New(opts Options) (*Pipeline, error) {
	if opts.Registry == nil {
		return nil, errors.New("extract: registry is required")
	}
	if opts.Fetcher == nil {
		opts.Fetcher = fetch.NewFetcher()
	}
	if opts.Package == "" {
		opts.Package = DefaultPackage
	}
	if opts.ArtifactPath == "" {
		opts.ArtifactPath = DefaultArtifactPath
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "dist"
	}
	if opts.ArtifactName == "" {
		opts.ArtifactName = DefaultArtifactName
	}
	if opts.MetadataName == "" {
		opts.MetadataName = DefaultMetadataName
	}
	if opts.MinArtifactBytes < 0 {
		opts.MinArtifactBytes = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{opts: opts, resolver: fetch.NewResolver(opts.Registry)}, nil
}

// run carries per-invocation state.
type run struct {
	p      *Pipeline
	logger *slog.Logger
	state  State
}

// enter moves the run to next. A run that reached Done or Failed stays there.
func (r *run) enter(next State) {
	if r.state.Terminal() {
		return
	}
	prev := r.state
	r.state = next
	r.logger.Debug("pipeline state", "from", prev.String(), "state", next.String())
	if r.p.opts.OnTransition != nil {
		r.p.opts.OnTransition(prev, next)
	}
}

func (r *run) fail(err error) error {
	failedIn := r.state
	r.enter(Failed)
	r.logger.Warn("extraction failed", "state", failedIn.String(), "error", err)
	return err
}

// Run mirrors the release named by spec ("latest", empty, or a concrete
// version) into the output directory. The workspace is removed before Run
// returns, whatever the outcome. Output already written is not rolled back.
func (p *Pipeline) Run(ctx context.Context, spec string) (*Result, error) {
	r := &run{
		p:      p,
		logger: p.opts.Logger.With("run_id", uuid.NewString(), "package", p.opts.Package, "spec", spec),
		state:  Resolving,
	}
	r.logger.Debug("pipeline state", "state", Resolving.String())

	info, err := p.resolve(ctx, spec)
	if err != nil {
		return nil, r.fail(err)
	}
	r.logger = r.logger.With("version", info.Version)

	r.enter(Fetching)
	ws, err := NewWorkspace(p.opts.WorkspaceBase, info.Version)
	if err != nil {
		return nil, r.fail(err)
	}
	defer func() {
		if err := ws.Close(); err != nil {
			r.logger.Warn("workspace cleanup failed", "dir", ws.Dir, "error", err)
		}
	}()

	tarball := ws.Path(info.Filename)
	n, err := fetch.DownloadFile(ctx, p.opts.Fetcher, info.URL, tarball, info.Integrity)
	if err != nil {
		return nil, r.fail(&core.UpstreamFetchError{Endpoint: info.URL, StatusCode: fetchStatus(err), Err: err})
	}
	r.logger.Info("tarball downloaded", "url", info.URL, "bytes", n)

	r.enter(Unpacking)
	unpacked := ws.Path("unpacked")
	if err := Untar(tarball, unpacked); err != nil {
		return nil, r.fail(fmt.Errorf("unpacking %s: %w", info.Filename, err))
	}

	r.enter(Validating)
	src := filepath.Join(unpacked, filepath.FromSlash(p.opts.ArtifactPath))
	if st, err := os.Stat(src); err != nil || !st.Mode().IsRegular() {
		return nil, r.fail(&core.ArtifactMissingError{Version: info.Version, Path: p.opts.ArtifactPath})
	}

	r.enter(Writing)
	res, err := p.write(src, info.Version)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(Done)
	r.logger.Info("extraction complete", "artifact", res.ArtifactPath, "metadata", res.MetadataPath)
	return res, nil
}

// resolve turns spec into a concrete, semver-valid version plus its tarball location.
func (p *Pipeline) resolve(ctx context.Context, spec string) (*fetch.ArtifactInfo, error) {
	query := core.LatestTag
	if !core.IsLatest(spec) {
		query = strings.TrimSpace(spec)
		if _, err := version.Parse(query); err != nil {
			return nil, err
		}
	}

	info, err := p.resolver.Resolve(ctx, p.opts.Package, query)
	if err != nil {
		return nil, &core.UpstreamFetchError{
			Endpoint:   p.opts.Registry.URLs().Metadata(p.opts.Package, query),
			StatusCode: core.StatusCode(err),
			Err:        err,
		}
	}

	if _, err := version.Parse(info.Version); err != nil {
		return nil, err
	}
	return info, nil
}

// write copies the artifact and then writes the metadata record. The two steps
// are not atomic: a failure between them leaves the new artifact beside the
// previous metadata.
func (p *Pipeline) write(src, resolved string) (*Result, error) {
	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	artifact := filepath.Join(p.opts.OutputDir, p.opts.ArtifactName)
	if err := copyFile(src, artifact); err != nil {
		return nil, fmt.Errorf("writing %s: %w", artifact, err)
	}

	extractedAt := p.opts.Now().UTC()
	meta := Metadata{
		ElectronVersion: resolved,
		ExtractedAt:     extractedAt.Format(time.RFC3339Nano),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	metadata := filepath.Join(p.opts.OutputDir, p.opts.MetadataName)
	if err := os.WriteFile(metadata, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", metadata, err)
	}

	st, err := os.Stat(artifact)
	if err != nil {
		return nil, &core.OutputValidationError{Path: artifact, Reason: "artifact missing after write"}
	}
	if st.Size() < p.opts.MinArtifactBytes {
		return nil, &core.OutputValidationError{
			Path:   artifact,
			Reason: fmt.Sprintf("artifact is %d bytes, want at least %d", st.Size(), p.opts.MinArtifactBytes),
		}
	}

	return &Result{
		ResolvedVersion: resolved,
		ArtifactPath:    artifact,
		MetadataPath:    metadata,
		ExtractedAt:     extractedAt,
	}, nil
}

// ReadMetadata loads a metadata record written by a previous run.
func ReadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

func fetchStatus(err error) int {
	var statusErr *fetch.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

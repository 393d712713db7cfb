package extract

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/git-pkgs/electron-types/fetch"
	"github.com/git-pkgs/electron-types/internal/core"
	"github.com/git-pkgs/electron-types/internal/npm"
)

func declarations() string {
	var b strings.Builder
	b.WriteString("declare namespace Electron {\n")
	for _, name := range []string{"App", "BrowserWindow", "WebContents", "IpcMain", "IpcRenderer"} {
		fmt.Fprintf(&b, "  interface %s extends NodeJS.EventEmitter {\n", name)
		for i := 0; i < 8; i++ {
			fmt.Fprintf(&b, "    method%d(arg: string): void;\n", i)
		}
		b.WriteString("  }\n")
	}
	b.WriteString("}\n")
	return b.String()
}

type entry struct {
	name     string
	body     string
	typeflag byte
	linkname string
}

func tarball(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		flag := e.typeflag
		if flag == 0 {
			flag = tar.TypeReg
		}
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.body)), Typeflag: flag, Linkname: e.linkname}
		if flag != tar.TypeReg {
			hdr.Size = 0
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if flag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// upstream fakes the npm registry for one version of electron.
type upstream struct {
	*httptest.Server
	version   string
	tgz       []byte
	integrity string
	tgzStatus int
	requests  atomic.Int32
}

func newUpstream(t *testing.T, version string, tgz []byte) *upstream {
	t.Helper()
	sum := sha512.Sum512(tgz)
	u := &upstream{
		version:   version,
		tgz:       tgz,
		integrity: "sha512-" + base64.StdEncoding.EncodeToString(sum[:]),
		tgzStatus: http.StatusOK,
	}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) serve(w http.ResponseWriter, r *http.Request) {
	u.requests.Add(1)
	tgzPath := fmt.Sprintf("/electron/-/electron-%s.tgz", u.version)
	switch r.URL.Path {
	case "/electron/latest", "/electron/" + u.version:
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":    "electron",
			"version": u.version,
			"dist": map[string]string{
				"tarball":   u.URL + tgzPath,
				"integrity": u.integrity,
			},
		})
	case tgzPath:
		if u.tgzStatus != http.StatusOK {
			w.WriteHeader(u.tgzStatus)
			return
		}
		_, _ = w.Write(u.tgz)
	default:
		http.NotFound(w, r)
	}
}

type harness struct {
	pipeline    *Pipeline
	out         string
	workspaces  string
	transitions []State
}

func newHarness(t *testing.T, u *upstream, tweak func(*Options)) *harness {
	t.Helper()
	h := &harness{out: filepath.Join(t.TempDir(), "dist"), workspaces: t.TempDir()}
	opts := Options{
		Registry:         npm.New(u.URL, nil),
		Fetcher:          fetch.NewFetcher(fetch.WithMaxRetries(0)),
		OutputDir:        h.out,
		MinArtifactBytes: DefaultMinArtifactBytes,
		WorkspaceBase:    h.workspaces,
		OnTransition: func(_, to State) {
			h.transitions = append(h.transitions, to)
		},
	}
	if tweak != nil {
		tweak(&opts)
	}
	p, err := New(opts)
	require.NoError(t, err)
	h.pipeline = p
	return h
}

func (h *harness) assertWorkspaceGone(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.workspaces)
	require.NoError(t, err)
	assert.Empty(t, entries, "workspace must be removed")
}

func TestRunLatest(t *testing.T) {
	decl := declarations()
	u := newUpstream(t, "33.2.0", tarball(t,
		entry{name: "package/package.json", body: `{"name":"electron"}`},
		entry{name: "package/electron.d.ts", body: decl},
	))
	fixed := time.Date(2024, 11, 12, 22, 1, 53, 123456789, time.UTC)
	h := newHarness(t, u, func(o *Options) { o.Now = func() time.Time { return fixed } })

	res, err := h.pipeline.Run(context.Background(), "latest")
	require.NoError(t, err)

	assert.Equal(t, "33.2.0", res.ResolvedVersion)
	assert.Equal(t, filepath.Join(h.out, "electron.d.ts"), res.ArtifactPath)
	assert.Equal(t, filepath.Join(h.out, "version.json"), res.MetadataPath)
	assert.True(t, res.ExtractedAt.Equal(fixed))

	got, err := os.ReadFile(res.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, decl, string(got))

	meta, err := ReadMetadata(res.MetadataPath)
	require.NoError(t, err)
	assert.Equal(t, "33.2.0", meta.ElectronVersion)
	assert.Equal(t, "2024-11-12T22:01:53.123456789Z", meta.ExtractedAt)

	raw, err := os.ReadFile(res.MetadataPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"electronVersion\": \"33.2.0\",\n  \"extractedAt\": "))

	assert.Equal(t, []State{Fetching, Unpacking, Validating, Writing, Done}, h.transitions)
	h.assertWorkspaceGone(t)
	assert.NoError(t, Verify(res.ArtifactPath, DefaultMinArtifactBytes, DefaultRequiredDeclarations))
}

func TestRunExplicitVersion(t *testing.T) {
	u := newUpstream(t, "34.0.0-beta.7", tarball(t, entry{name: "package/electron.d.ts", body: declarations()}))
	h := newHarness(t, u, nil)

	res, err := h.pipeline.Run(context.Background(), "34.0.0-beta.7")
	require.NoError(t, err)
	assert.Equal(t, "34.0.0-beta.7", res.ResolvedVersion)
}

func TestRunMissingArtifact(t *testing.T) {
	u := newUpstream(t, "33.2.0", tarball(t, entry{name: "package/index.js", body: "module.exports = {}"}))
	h := newHarness(t, u, nil)

	_, err := h.pipeline.Run(context.Background(), "33.2.0")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrArtifactMissing)

	var missing *core.ArtifactMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "33.2.0", missing.Version)
	assert.Equal(t, "package/electron.d.ts", missing.Path)

	assert.Equal(t, Failed, h.transitions[len(h.transitions)-1])
	h.assertWorkspaceGone(t)

	_, statErr := os.Stat(filepath.Join(h.out, "electron.d.ts"))
	assert.True(t, os.IsNotExist(statErr), "nothing is written when validation fails")
}

func TestRunTwiceIsIdempotent(t *testing.T) {
	u := newUpstream(t, "33.2.0", tarball(t, entry{name: "package/electron.d.ts", body: declarations()}))
	clock := time.Date(2024, 11, 12, 0, 0, 0, 0, time.UTC)
	h := newHarness(t, u, func(o *Options) {
		o.Now = func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}
	})

	first, err := h.pipeline.Run(context.Background(), "latest")
	require.NoError(t, err)
	firstArtifact, err := os.ReadFile(first.ArtifactPath)
	require.NoError(t, err)
	firstMeta, err := ReadMetadata(first.MetadataPath)
	require.NoError(t, err)

	second, err := h.pipeline.Run(context.Background(), "latest")
	require.NoError(t, err)
	secondArtifact, err := os.ReadFile(second.ArtifactPath)
	require.NoError(t, err)
	secondMeta, err := ReadMetadata(second.MetadataPath)
	require.NoError(t, err)

	assert.Equal(t, firstArtifact, secondArtifact)
	assert.Equal(t, firstMeta.ElectronVersion, secondMeta.ElectronVersion)
	assert.True(t, second.ExtractedAt.After(first.ExtractedAt))
	assert.NotEqual(t, firstMeta.ExtractedAt, secondMeta.ExtractedAt)
}

func TestRunTarballNotFound(t *testing.T) {
	u := newUpstream(t, "33.2.0", tarball(t, entry{name: "package/electron.d.ts", body: declarations()}))
	u.tgzStatus = http.StatusNotFound
	h := newHarness(t, u, nil)

	_, err := h.pipeline.Run(context.Background(), "33.2.0")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUpstreamFetch)

	var upErr *core.UpstreamFetchError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusNotFound, upErr.StatusCode)
	assert.Contains(t, upErr.Endpoint, "/electron/-/electron-33.2.0.tgz")

	h.assertWorkspaceGone(t)
}

func TestRunUnknownVersion(t *testing.T) {
	u := newUpstream(t, "33.2.0", nil)
	h := newHarness(t, u, nil)

	_, err := h.pipeline.Run(context.Background(), "99.0.0")

	var upErr *core.UpstreamFetchError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusNotFound, upErr.StatusCode)
	assert.Equal(t, u.URL+"/electron/99.0.0", upErr.Endpoint)
	assert.Equal(t, []State{Failed}, h.transitions)
}

func TestRunMalformedVersion(t *testing.T) {
	u := newUpstream(t, "33.2.0", nil)
	h := newHarness(t, u, nil)

	_, err := h.pipeline.Run(context.Background(), "thirty-three")
	assert.ErrorIs(t, err, core.ErrMalformedVersion)
	assert.Zero(t, u.requests.Load(), "no upstream request for a malformed version")
}

func TestRunIntegrityMismatch(t *testing.T) {
	u := newUpstream(t, "33.2.0", tarball(t, entry{name: "package/electron.d.ts", body: declarations()}))
	sum := sha512.Sum512([]byte("a different tarball"))
	u.integrity = "sha512-" + base64.StdEncoding.EncodeToString(sum[:])
	h := newHarness(t, u, nil)

	_, err := h.pipeline.Run(context.Background(), "latest")
	assert.ErrorIs(t, err, core.ErrUpstreamFetch)
	assert.ErrorIs(t, err, fetch.ErrIntegrityMismatch)
	h.assertWorkspaceGone(t)
}

func TestRunArtifactTooSmall(t *testing.T) {
	u := newUpstream(t, "33.2.0", tarball(t, entry{name: "package/electron.d.ts", body: "declare namespace Electron {}"}))
	h := newHarness(t, u, nil)

	_, err := h.pipeline.Run(context.Background(), "latest")
	assert.ErrorIs(t, err, core.ErrOutputValidation)

	// Partial output is left in place.
	_, statErr := os.Stat(filepath.Join(h.out, "version.json"))
	assert.NoError(t, statErr)
}

func TestNewRequiresRegistry(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unpacking", Unpacking.String())
	assert.True(t, Failed.Terminal())
	assert.False(t, Writing.Terminal())
	assert.True(t, errors.Is(&core.ArtifactMissingError{}, core.ErrArtifactMissing))
}

func TestRunTrimsVersion(t *testing.T) {
	u := newUpstream(t, "33.2.0", tarball(t, entry{name: "package/electron.d.ts", body: declarations()}))
	h := newHarness(t, u, nil)

	res, err := h.pipeline.Run(context.Background(), " 33.2.0\n")
	require.NoError(t, err)
	assert.Equal(t, "33.2.0", res.ResolvedVersion)
}

func TestTerminalStateIsFinal(t *testing.T) {
	var transitions []State
	p, err := New(Options{
		Registry:     npm.New("http://127.0.0.1:0", nil),
		OnTransition: func(_, to State) { transitions = append(transitions, to) },
	})
	require.NoError(t, err)

	r := &run{p: p, logger: p.opts.Logger, state: Writing}
	_ = r.fail(errors.New("disk full"))
	r.enter(Writing)
	r.enter(Done)

	assert.Equal(t, Failed, r.state)
	assert.Equal(t, []State{Failed}, transitions)
}

// Package releases reads the upstream Electron release feed.
package releases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/git-pkgs/electron-types/internal/core"
)

// DefaultURL is the public release feed.
const DefaultURL = "https://releases.electronjs.org/releases.json"

// Feed fetches the release list.
type Feed struct {
	url    string
	client *core.Client
}

// New returns a Feed for url. Empty url uses DefaultURL; nil client uses core.DefaultClient.
func New(url string, client *core.Client) *Feed {
	if url == "" {
		url = DefaultURL
	}
	if client == nil {
		client = core.DefaultClient()
	}
	return &Feed{url: url, client: client}
}

// URL returns the feed endpoint.
func (f *Feed) URL() string {
	return f.url
}

type releaseRecord struct {
	Version string `json:"version"`
	Date    string `json:"date"`
}

// FetchReleases returns the feed in the order upstream serves it
// (newest first by convention). Records without a version are dropped;
// unparseable dates are left zero.
func (f *Feed) FetchReleases(ctx context.Context) ([]core.Release, error) {
	var records []releaseRecord
	if err := f.client.GetJSON(ctx, f.url, &records); err != nil {
		return nil, &core.UpstreamFetchError{Endpoint: f.url, StatusCode: core.StatusCode(err), Err: err}
	}

	out := make([]core.Release, 0, len(records))
	for _, rec := range records {
		v := strings.TrimSpace(rec.Version)
		if v == "" {
			continue
		}
		out = append(out, core.Release{Version: v, Date: parseDate(rec.Date)})
	}
	return out, nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// String implements fmt.Stringer for log output.
func (f *Feed) String() string {
	return fmt.Sprintf("releases(%s)", f.url)
}

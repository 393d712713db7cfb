package electrontypes_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	electrontypes "github.com/git-pkgs/electron-types"
)

// largeFeed mimics the shape of the real release feed: nightlies, betas and
// stable patches across many majors, newest first.
func largeFeed() []electrontypes.Release {
	var feed []electrontypes.Release
	for major := 35; major >= 1; major-- {
		for n := 20; n >= 1; n-- {
			feed = append(feed, electrontypes.Release{Version: fmt.Sprintf("%d.0.0-nightly.202401%02d", major+1, n)})
		}
		for n := 10; n >= 1; n-- {
			feed = append(feed, electrontypes.Release{Version: fmt.Sprintf("%d.0.0-beta.%d", major+1, n)})
		}
		for patch := 9; patch >= 0; patch-- {
			feed = append(feed, electrontypes.Release{Version: fmt.Sprintf("%d.%d.%d", major, patch%3, patch)})
		}
	}
	return feed
}

func BenchmarkLatestStablePerMajor(b *testing.B) {
	feed := largeFeed()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = electrontypes.LatestStablePerMajor(feed, 3)
	}
}

func BenchmarkLatestPrereleasePerMajor(b *testing.B) {
	feed := largeFeed()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = electrontypes.LatestPrereleasePerMajor(feed, 33)
	}
}

func BenchmarkCheck(b *testing.B) {
	feed := make([]map[string]string, 0)
	for _, r := range largeFeed() {
		feed = append(feed, map[string]string{"version": r.Version})
	}
	feedJSON, _ := json.Marshal(feed)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/releases.json" {
			_, _ = w.Write(feedJSON)
			return
		}
		_, _ = w.Write([]byte(`{"name":"electron-types","versions":{"35.9.9":{}}}`))
	}))
	defer server.Close()

	opts := electrontypes.CheckOptions{
		Client:      electrontypes.DefaultClient(),
		FeedURL:     server.URL + "/releases.json",
		RegistryURL: server.URL,
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = electrontypes.Check(ctx, opts)
	}
}

func BenchmarkURLBuilder(b *testing.B) {
	urls := electrontypes.NewRegistry("", nil).URLs()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = urls.Metadata("electron", "33.2.0")
		_ = urls.Download("electron", "33.2.0")
		_ = urls.PURL("electron", "33.2.0")
	}
}

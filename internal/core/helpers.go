package core

import (
	"context"
	"strings"
	"sync"
)

const defaultConcurrency = 15

// IsLatest reports whether spec asks for the registry's latest alias.
// An empty specifier means latest.
func IsLatest(spec string) bool {
	spec = strings.TrimSpace(spec)
	return spec == "" || spec == LatestTag
}

// BulkFetchVersions fetches metadata for several versions of one package in parallel.
// Individual fetch errors are silently ignored - those versions are omitted from results.
func BulkFetchVersions(ctx context.Context, reg Registry, name string, versions []string) map[string]*Version {
	return BulkFetchVersionsWithConcurrency(ctx, reg, name, versions, defaultConcurrency)
}

// BulkFetchVersionsWithConcurrency fetches versions with a custom concurrency limit.
func BulkFetchVersionsWithConcurrency(ctx context.Context, reg Registry, name string, versions []string, concurrency int) map[string]*Version {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	results := make(map[string]*Version)
	var mu sync.Mutex
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, version := range versions {
		wg.Add(1)
		go func(v string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			meta, err := reg.FetchVersion(ctx, name, v)
			if err == nil && meta != nil {
				mu.Lock()
				results[v] = meta
				mu.Unlock()
			}
		}(version)
	}

	wg.Wait()
	return results
}

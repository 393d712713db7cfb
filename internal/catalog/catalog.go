// Package catalog decides which upstream releases are current: the newest
// stable release of each of the top N major lines, plus the newest
// prerelease of every major line that has not shipped a stable release yet.
//
// Every function here is pure so it can be replayed against a captured feed.
package catalog

import (
	"sort"

	"github.com/git-pkgs/electron-types/internal/core"
	"github.com/git-pkgs/electron-types/internal/version"
)

// DefaultTopMajors matches the number of supported lines upstream advertises.
const DefaultTopMajors = 3

// Snapshot is the set of versions worth mirroring, newest major first.
type Snapshot struct {
	Stable     []string `json:"stableVersions"`
	Prerelease []string `json:"prereleaseVersions"`
}

// Targets returns stable versions followed by prerelease versions.
func (s Snapshot) Targets() []string {
	out := make([]string, 0, len(s.Stable)+len(s.Prerelease))
	out = append(out, s.Stable...)
	return append(out, s.Prerelease...)
}

type entry struct {
	major   int
	version string
}

// firstPerMajor keeps the first release seen for each major among those
// accepted by keep. Releases with an unparseable major are skipped.
func firstPerMajor(releases []core.Release, keep func(version.Tag) bool) []entry {
	seen := make(map[int]struct{})
	var out []entry
	for _, r := range releases {
		tag, err := version.TagOf(r.Version)
		if err != nil {
			continue
		}
		if !keep(tag) {
			continue
		}
		if _, ok := seen[tag.Major]; ok {
			continue
		}
		seen[tag.Major] = struct{}{}
		out = append(out, entry{major: tag.Major, version: r.Version})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].major > out[j].major })
	return out
}

func versions(entries []entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.version
	}
	return out
}

// LatestStablePerMajor returns the first stable version seen for each major,
// majors descending, truncated to topN. releases must be newest-first.
func LatestStablePerMajor(releases []core.Release, topN int) []string {
	if topN <= 0 {
		return []string{}
	}
	entries := firstPerMajor(releases, func(t version.Tag) bool {
		return t.Channel == version.Stable
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	return versions(entries)
}

// LatestPrereleasePerMajor returns the first prerelease seen for each major
// strictly above latestStableMajor, majors descending. Prereleases of lines
// that already shipped stable are excluded. releases must be newest-first.
func LatestPrereleasePerMajor(releases []core.Release, latestStableMajor int) []string {
	entries := firstPerMajor(releases, func(t version.Tag) bool {
		return t.Channel == version.Prerelease && t.Major > latestStableMajor
	})
	return versions(entries)
}

// SortNewestFirst returns a copy of releases ordered by date, newest first.
// The sort is stable, so releases sharing a date (or lacking one) keep feed order.
func SortNewestFirst(releases []core.Release) []core.Release {
	out := make([]core.Release, len(releases))
	copy(out, releases)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Compute builds a Snapshot from an upstream feed in any order.
func Compute(releases []core.Release, topN int) Snapshot {
	sorted := SortNewestFirst(releases)

	stable := LatestStablePerMajor(sorted, topN)

	latestStableMajor := 0
	if len(stable) > 0 {
		// stable entries were produced from parseable versions
		latestStableMajor, _ = version.Major(stable[0])
	}

	return Snapshot{
		Stable:     stable,
		Prerelease: LatestPrereleasePerMajor(sorted, latestStableMajor),
	}
}

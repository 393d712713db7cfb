// Package version classifies upstream release identifiers into channels
// and extracts the major version used to group release lines.
package version

import (
	"strconv"
	"strings"

	semver "github.com/Masterminds/semver/v3"

	"github.com/git-pkgs/electron-types/internal/core"
)

// Channel is the release stream a version belongs to.
type Channel int

const (
	Stable Channel = iota
	Prerelease
	Nightly
)

func (c Channel) String() string {
	switch c {
	case Stable:
		return "stable"
	case Prerelease:
		return "prerelease"
	case Nightly:
		return "nightly"
	}
	return "unknown"
}

const (
	nightlyMarker = "nightly"
	alphaMarker   = "-alpha"
	betaMarker    = "-beta"
)

// Tag is the derived classification of a version string.
type Tag struct {
	Major   int
	Channel Channel
}

// Classify returns the channel of v. Nightly markers win over alpha/beta
// markers, so a nightly build is never a prerelease candidate.
func Classify(v string) Channel {
	switch {
	case strings.Contains(v, nightlyMarker):
		return Nightly
	case strings.Contains(v, alphaMarker), strings.Contains(v, betaMarker):
		return Prerelease
	default:
		return Stable
	}
}

// Major returns the integer before the first ".".
func Major(v string) (int, error) {
	head, _, _ := strings.Cut(v, ".")
	n, err := strconv.Atoi(head)
	if err != nil || n < 0 {
		return 0, &core.MalformedVersionError{Version: v, Reason: "major component is not a non-negative integer"}
	}
	return n, nil
}

// TagOf classifies v and extracts its major version.
func TagOf(v string) (Tag, error) {
	major, err := Major(v)
	if err != nil {
		return Tag{}, err
	}
	return Tag{Major: major, Channel: Classify(v)}, nil
}

// Parse strictly validates v as a semantic version. Used for a single
// explicitly requested version, where a bad string must abort the run.
func Parse(v string) (*semver.Version, error) {
	parsed, err := semver.StrictNewVersion(strings.TrimSpace(v))
	if err != nil {
		return nil, &core.MalformedVersionError{Version: v, Reason: err.Error()}
	}
	return parsed, nil
}

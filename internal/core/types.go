// Package core provides shared types and the registry system.
package core

import "time"

// Release is one entry of the upstream release feed.
type Release struct {
	Version string
	Date    time.Time
}

// Package represents the registry document listing every published version.
type Package struct {
	Name          string
	Description   string
	LatestVersion string
	DistTags      map[string]string
	Versions      []string
	Metadata      map[string]any // registry-specific data
}

// Version represents a specific version of a package.
type Version struct {
	Number      string
	PublishedAt time.Time
	Tarball     string
	Integrity   string        // sha512-..., sha256-..., sha1-...
	Status      VersionStatus // "", "deprecated"
	Metadata    map[string]any
}

// VersionStatus represents the status of a package version.
type VersionStatus string

const (
	StatusNone       VersionStatus = ""
	StatusDeprecated VersionStatus = "deprecated"
)

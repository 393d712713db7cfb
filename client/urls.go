package client

import "fmt"

// URLBuilder constructs URLs for a registry.
type URLBuilder interface {
	// Metadata is the single-version document URL; version may be a dist-tag.
	Metadata(name, version string) string
	// Packument is the full package document listing every published version.
	Packument(name string) string
	Download(name, version string) string
	Documentation(name, version string) string
	PURL(name, version string) string
}

// BaseURLs provides a default URLBuilder implementation.
type BaseURLs struct {
	MetadataFn      func(name, version string) string
	PackumentFn     func(name string) string
	DownloadFn      func(name, version string) string
	DocumentationFn func(name, version string) string
	PURLFn          func(name, version string) string
}

func (b *BaseURLs) Metadata(name, version string) string {
	if b.MetadataFn != nil {
		return b.MetadataFn(name, version)
	}
	return ""
}

func (b *BaseURLs) Packument(name string) string {
	if b.PackumentFn != nil {
		return b.PackumentFn(name)
	}
	return ""
}

func (b *BaseURLs) Download(name, version string) string {
	if b.DownloadFn != nil {
		return b.DownloadFn(name, version)
	}
	return ""
}

func (b *BaseURLs) Documentation(name, version string) string {
	if b.DocumentationFn != nil {
		return b.DocumentationFn(name, version)
	}
	return ""
}

func (b *BaseURLs) PURL(name, version string) string {
	if b.PURLFn != nil {
		return b.PURLFn(name, version)
	}
	if version != "" {
		return fmt.Sprintf("pkg:%s/%s@%s", "generic", name, version)
	}
	return fmt.Sprintf("pkg:%s/%s", "generic", name)
}

// BuildURLs returns a map of all non-empty URLs for a package version.
// Keys are "metadata", "packument", "download", "docs", and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	result := make(map[string]string)
	if v := urls.Metadata(name, version); v != "" {
		result["metadata"] = v
	}
	if v := urls.Packument(name); v != "" {
		result["packument"] = v
	}
	if v := urls.Download(name, version); v != "" {
		result["download"] = v
	}
	if v := urls.Documentation(name, version); v != "" {
		result["docs"] = v
	}
	if v := urls.PURL(name, version); v != "" {
		result["purl"] = v
	}
	return result
}

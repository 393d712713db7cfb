package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedVersion is returned when a version string cannot be parsed.
	ErrMalformedVersion = errors.New("malformed version")

	// ErrUpstreamFetch is returned when an upstream endpoint cannot be read.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrArtifactMissing is returned when the unpacked archive lacks the artifact.
	ErrArtifactMissing = errors.New("artifact missing")

	// ErrOutputValidation is returned when written output fails its sanity check.
	ErrOutputValidation = errors.New("output validation failed")
)

// MalformedVersionError reports a version string that could not be parsed.
type MalformedVersionError struct {
	Version string
	Reason  string
}

func (e *MalformedVersionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("malformed version %q", e.Version)
	}
	return fmt.Sprintf("malformed version %q: %s", e.Version, e.Reason)
}

func (e *MalformedVersionError) Unwrap() error {
	return ErrMalformedVersion
}

// UpstreamFetchError reports a failed request to an upstream endpoint.
// StatusCode is zero when no HTTP response was received.
type UpstreamFetchError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

// Error names the status only when the cause does not already carry it.
func (e *UpstreamFetchError) Error() string {
	if e.StatusCode != 0 {
		status := fmt.Sprintf("HTTP %d", e.StatusCode)
		if e.Err == nil || !strings.Contains(e.Err.Error(), status) {
			return fmt.Sprintf("fetching %s: %s: %v", e.Endpoint, status, e.Err)
		}
	}
	return fmt.Sprintf("fetching %s: %v", e.Endpoint, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *UpstreamFetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstreamFetch}
	}
	return []error{ErrUpstreamFetch, e.Err}
}

// ArtifactMissingError reports that the expected file was absent after unpacking.
type ArtifactMissingError struct {
	Version string
	Path    string
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("%s not found in %s", e.Path, e.Version)
}

func (e *ArtifactMissingError) Unwrap() error {
	return ErrArtifactMissing
}

// OutputValidationError reports written output that failed a sanity check.
type OutputValidationError struct {
	Path   string
	Reason string
}

func (e *OutputValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *OutputValidationError) Unwrap() error {
	return ErrOutputValidation
}

// Package publish compares the versions worth mirroring with the versions
// already published and produces the worklist of versions still to publish.
package publish

import (
	"context"
	"errors"
	"sort"

	"github.com/git-pkgs/electron-types/internal/core"
)

// Set holds published version strings.
type Set map[string]struct{}

// NewSet builds a Set from a list of versions.
func NewSet(versions ...string) Set {
	s := make(Set, len(versions))
	for _, v := range versions {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set. A nil Set is empty.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Worklist returns the targets not yet published, in target order.
// An empty result means there is nothing to publish.
func Worklist(targets []string, published Set) []string {
	out := make([]string, 0, len(targets))
	for _, v := range targets {
		if !published.Has(v) {
			out = append(out, v)
		}
	}
	return out
}

// PackageFetcher is the part of a registry needed to list published versions.
type PackageFetcher interface {
	FetchPackage(ctx context.Context, name string) (*core.Package, error)
}

// FetchPublished lists the versions of name already in the registry.
// A package that was never published yields an empty set, not an error.
func FetchPublished(ctx context.Context, reg PackageFetcher, name string) (Set, error) {
	pkg, err := reg.FetchPackage(ctx, name)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Set{}, nil
		}
		return nil, err
	}
	return NewSet(pkg.Versions...), nil
}

package core

import (
	"github.com/git-pkgs/electron-types/client"
)

// Type aliases so registry implementations only import core.
type (
	Client        = client.Client
	Option        = client.Option
	URLBuilder    = client.URLBuilder
	BaseURLs      = client.BaseURLs
	HTTPError     = client.HTTPError
	NotFoundError = client.NotFoundError
)

// Function aliases.
var (
	DefaultClient  = client.DefaultClient
	NewClient      = client.NewClient
	WithTimeout    = client.WithTimeout
	WithMaxRetries = client.WithMaxRetries
	WithBaseDelay  = client.WithBaseDelay
	WithLogger     = client.WithLogger
	BuildURLs      = client.BuildURLs
	StatusCode     = client.StatusCode
)

// ErrNotFound is returned when a package or version is not found.
var ErrNotFound = client.ErrNotFound

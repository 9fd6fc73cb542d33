// Package acquire is the facade over the feed clients, protocol
// selector, disk cache, downloader and archive handler: it exposes
// GetVersions, GetPackageDetails and DownloadPackage to the
// dependency-resolution collaborator.
package acquire

import (
	"github.com/willibrandon/gonuget-acquire/auth"
	"github.com/willibrandon/gonuget-acquire/feed"
)

// SourceKind tags a PackageSource as remote or local.
type SourceKind int

const (
	// RemoteNuGet is a network-addressable feed (V3, V2 OData, V2 JSON).
	RemoteNuGet SourceKind = iota
	// LocalPath is a directory of .nupkg files on disk.
	LocalPath
)

// PackageSource is the tagged RemoteNuget{url, authentication?} /
// LocalPath{path} variant from the data model.
type PackageSource struct {
	Kind   SourceKind
	URL    string
	Path   string
	Auth   auth.Authenticator
	Name   string // display name, e.g. nuget.org; defaults to URL/Path
}

// NewRemoteSource builds a RemoteNuget source, optionally authenticated.
func NewRemoteSource(url string, authenticator auth.Authenticator) PackageSource {
	return PackageSource{Kind: RemoteNuGet, URL: url, Auth: authenticator, Name: url}
}

// NewLocalSource builds a LocalPath source.
func NewLocalSource(path string) PackageSource {
	return PackageSource{Kind: LocalPath, Path: path, Name: path}
}

// IsLocal reports whether s is a LocalPath source.
func (s PackageSource) IsLocal() bool { return s.Kind == LocalPath }

// String identifies the source for diagnostics.
func (s PackageSource) String() string {
	if s.IsLocal() {
		return s.Path
	}
	return s.URL
}

// PackageDetails is the public result of GetPackageDetails: the
// resolved identity, origin, download coordinates and direct
// dependencies of one (name, version) pair.
type PackageDetails struct {
	Name               string
	Source             PackageSource
	DownloadLink       string
	Unlisted           bool
	LicenseURL         string
	DirectDependencies []feed.Dependency
}

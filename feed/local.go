package feed

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/willibrandon/gonuget-acquire/observability"
	"github.com/willibrandon/gonuget-acquire/packaging"
)

// LocalClient adapts a filesystem directory of .nupkg files to the same
// listVersions / fetchMetadata surface as the network feed clients.
type LocalClient struct {
	root string
}

// NewLocalClient roots a client at a filesystem directory.
func NewLocalClient(root string) *LocalClient {
	return &LocalClient{root: root}
}

// ListVersions recursively scans root for files matching
// name.<version>.nupkg (case-insensitive). A missing root directory is
// fatal, unlike a network feed's None outcome, since a local source is
// expected to always be reachable.
func (c *LocalClient) ListVersions(ctx context.Context, name string) ([]string, error) {
	_, span := observability.StartMetadataFetchSpan(ctx, name, "local")
	defer span.End()

	if _, err := os.Stat(c.root); err != nil {
		err = fmt.Errorf("%w: local source %s: %v", ErrNotServed, c.root, err)
		observability.EndSpanWithError(span, err)
		return nil, err
	}

	pattern, err := regexp.Compile(`(?i)^` + regexp.QuoteMeta(name) + `\.(\d.*)\.nupkg$`)
	if err != nil {
		return nil, err
	}

	var versions []string
	err = filepath.WalkDir(c.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if m := pattern.FindStringSubmatch(d.Name()); m != nil {
			versions = append(versions, m[1])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %v", ErrProtocol, c.root, err)
	}

	if versions == nil {
		versions = []string{}
	}
	return versions, nil
}

// FetchMetadata resolves a package to its .nupkg path using three
// strategies in order: the exact raw-version filename, the exact
// normalized-version filename, then a recursive scan for a filename that
// carries both the package name and either version string. The returned
// metadata's DownloadURL is the sentinel value name itself: a local
// source needs no network fetch, only ResolvePath to find the archive
// again for the copy step.
func (c *LocalClient) FetchMetadata(ctx context.Context, name, rawVersion, normalizedVersion string) (PackageMetadata, error) {
	_, span := observability.StartMetadataFetchSpan(ctx, name, "local")
	defer span.End()

	path, err := c.ResolvePath(name, rawVersion, normalizedVersion)
	if err != nil {
		observability.EndSpanWithError(span, err)
		return PackageMetadata{}, err
	}

	return c.readPackageMetadata(path, name)
}

// ResolvePath finds the .nupkg backing (name, rawVersion) using the same
// three strategies FetchMetadata uses, without parsing it. The download
// step calls this directly since FetchMetadata's DownloadURL carries only
// the local sentinel, not a path.
func (c *LocalClient) ResolvePath(name, rawVersion, normalizedVersion string) (string, error) {
	candidates := []string{
		filepath.Join(c.root, name+"."+rawVersion+".nupkg"),
		filepath.Join(c.root, name+"."+normalizedVersion+".nupkg"),
	}

	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	return c.scanForPackage(name, rawVersion, normalizedVersion)
}

func (c *LocalClient) scanForPackage(name, rawVersion, normalizedVersion string) (string, error) {
	lowerName := strings.ToLower(name)
	var found string

	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || found != "" {
			return nil
		}

		lower := strings.ToLower(d.Name())
		if !strings.HasSuffix(lower, ".nupkg") || !strings.Contains(lower, lowerName) {
			return nil
		}
		if containsVersionToken(lower, strings.ToLower(rawVersion)) || containsVersionToken(lower, strings.ToLower(normalizedVersion)) {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: scan %s: %v", ErrProtocol, c.root, err)
	}
	if found == "" {
		return "", fmt.Errorf("%w: %s %s in %s", ErrNotFound, name, rawVersion, c.root)
	}
	return found, nil
}

// containsVersionToken reports whether version occurs in haystack as its
// own token rather than as a substring of a longer one. The left boundary
// rejects a digit (so "1.0.0" doesn't match inside "21.0.0"); the right
// boundary rejects both a digit and a hyphen, since a hyphen immediately
// following the match would continue it into a pre-release label (e.g.
// "1.0.0" must not match the "1.0.0" inside "1.0.0-beta" — that file's
// real version is "1.0.0-beta", not "1.0.0").
func containsVersionToken(haystack, version string) bool {
	if version == "" {
		return false
	}

	for start := 0; ; {
		idx := strings.Index(haystack[start:], version)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(version)

		leftOK := idx == 0 || !isASCIIDigit(haystack[idx-1])
		rightOK := end == len(haystack) || (!isASCIIDigit(haystack[end]) && haystack[end] != '-')
		if leftOK && rightOK {
			return true
		}
		start = idx + 1
	}
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func (c *LocalClient) readPackageMetadata(path, name string) (PackageMetadata, error) {
	reader, err := packaging.OpenPackage(path)
	if err != nil {
		return PackageMetadata{}, fmt.Errorf("%w: open %s: %v", ErrProtocol, path, err)
	}
	defer func() { _ = reader.Close() }()

	nuspec, err := reader.GetNuspec()
	if err != nil {
		return PackageMetadata{}, fmt.Errorf("%w: read nuspec from %s: %v", ErrProtocol, path, err)
	}

	groups, err := nuspec.GetDependencyGroups()
	if err != nil {
		return PackageMetadata{}, fmt.Errorf("%w: parse dependencies in %s: %v", ErrProtocol, path, err)
	}

	return PackageMetadata{
		PackageName:  nuspec.Metadata.ID,
		SourceURL:    c.root,
		DownloadURL:  name,
		LicenseURL:   nuspec.Metadata.LicenseURL,
		Unlisted:     false,
		Dependencies: dependenciesFromGroups(groups),
		CacheVersion: CurrentCacheVersion,
	}, nil
}

// dependenciesFromGroups flattens a nuspec's per-framework dependency
// groups into the feed package's flat Dependency list, attaching an
// Exactly(framework) restriction per group (AnyFramework yields none).
func dependenciesFromGroups(groups []packaging.ParsedDependencyGroup) []Dependency {
	var deps []Dependency
	for _, g := range groups {
		var restrictions []FrameworkRestriction
		if g.TargetFramework != nil && !g.TargetFramework.IsAny() {
			restrictions = []FrameworkRestriction{{Kind: FrameworkExactly, Framework: g.TargetFramework}}
		}

		for _, d := range g.Dependencies {
			vr := VersionRequirement{unbounded: true, raw: "0"}
			if d.VersionRange != nil {
				vr = VersionRequirement{raw: d.VersionRange.String(), rng: d.VersionRange}
			}
			deps = append(deps, Dependency{
				Name:                  NewPackageName(d.ID),
				VersionRequirement:    vr,
				FrameworkRestrictions: restrictions,
			})
		}
	}
	return deps
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

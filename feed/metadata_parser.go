package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// isDownloadableContentType reports whether an Atom content @type attribute
// identifies an archive payload rather than inline markup.
func isDownloadableContentType(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "application/zip", "binary/octet-stream":
		return true
	default:
		return false
	}
}

// resolveEntry decodes doc preferring a feed/entry root, falling back to
// a bare entry document.
func resolveEntry(doc []byte) (*Entry, error) {
	var f Feed
	if err := xml.Unmarshal(doc, &f); err == nil && len(f.Entries) > 0 {
		return &f.Entries[0], nil
	}

	var e Entry
	if err := xml.Unmarshal(doc, &e); err != nil {
		return nil, fmt.Errorf("%w: decode entry: %v", ErrProtocol, err)
	}
	return &e, nil
}

// parsePublishDate parses an ISO-8601 publish date, defaulting to the Go
// zero time (the domain's epoch-minimum) on any parse failure.
func parsePublishDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseEntry decodes a single OData entry document into the canonical
// PackageMetadata record.
func ParseEntry(ctx EntryContext, doc []byte) (PackageMetadata, error) {
	entry, err := resolveEntry(doc)
	if err != nil {
		return PackageMetadata{}, err
	}

	officialName := entry.Properties.ID
	if officialName == "" {
		officialName = entry.Title
	}
	if officialName == "" {
		return PackageMetadata{}, fmt.Errorf("%w: entry has no Id or title for %s", ErrProtocol, ctx.Name)
	}

	publishDate := parsePublishDate(entry.Properties.Published)

	if !isDownloadableContentType(entry.Content.Type) || entry.Content.Src == "" {
		return PackageMetadata{}, fmt.Errorf("%w: entry %s missing a downloadable content link", ErrProtocol, officialName)
	}

	deps, err := ParseDependencyList(entry.Properties.Dependencies)
	if err != nil {
		return PackageMetadata{}, fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	return PackageMetadata{
		PackageName:  officialName,
		SourceURL:    ctx.FeedURL,
		DownloadURL:  entry.Content.Src,
		LicenseURL:   entry.Properties.LicenseURL,
		Unlisted:     publishDate.Equal(MagicUnlistingDate),
		Dependencies: optimizeDependencies(deps),
		CacheVersion: CurrentCacheVersion,
	}, nil
}

// optimizeDependencies collapses exact duplicate (name, versionSpec) pairs.
// The full overlap-merging pass (combining distinct framework restrictions
// for the same package into one entry) is an external resolver concern and
// stays out of scope here.
func optimizeDependencies(deps []Dependency) []Dependency {
	if len(deps) < 2 {
		return deps
	}

	seen := make(map[string]bool, len(deps))
	out := make([]Dependency, 0, len(deps))
	for _, d := range deps {
		key := d.Name.CompareKey() + "\x00" + d.VersionRequirement.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}

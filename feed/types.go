// Package feed implements the protocol adapters that talk to the four
// NuGet feed flavors (V3 registration JSON, V2 OData in its filter and
// FindPackagesById shapes, the V2 JSON package-versions fast endpoint)
// plus a local filesystem layout, behind one small listVersions /
// fetchMetadata surface per client.
package feed

import (
	"encoding/xml"
	"errors"
	"strings"
	"time"

	"github.com/willibrandon/gonuget-acquire/frameworks"
	"github.com/willibrandon/gonuget-acquire/version"
)

// Sentinel error kinds. A feed client converts these into a None result
// when racing against peers; callers that see every source fail surface
// one of these through a MultiSourceError.
var (
	ErrNotServed = errors.New("feed: protocol not served at this endpoint")
	ErrProtocol  = errors.New("feed: protocol error")
	ErrNotFound  = errors.New("feed: package or version not found")
)

// CurrentCacheVersion is the schema-version literal stamped on every
// PackageMetadata this package produces.
const CurrentCacheVersion = "2.0"

// MagicUnlistingDate is the sentinel publish date a feed reports for an
// unlisted package.
var MagicUnlistingDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// PackageName is a case-preserving package identifier with a memoized
// lowercase comparison key.
type PackageName struct {
	raw string
	key string
}

// NewPackageName wraps a raw package identifier.
func NewPackageName(s string) PackageName {
	return PackageName{raw: s, key: strings.ToLower(s)}
}

// String returns the feed's authoritative casing.
func (n PackageName) String() string { return n.raw }

// CompareKey returns the normalized lowercase key used for equality.
func (n PackageName) CompareKey() string { return n.key }

// Equals compares two package names by their normalized key.
func (n PackageName) Equals(other PackageName) bool { return n.key == other.key }

// FrameworkRestrictionKind tags the two shapes a dependency's framework
// restriction can take.
type FrameworkRestrictionKind int

const (
	// FrameworkExactly restricts the dependency to one parsed TFM.
	FrameworkExactly FrameworkRestrictionKind = iota
	// FrameworkPortable restricts the dependency to a PCL profile string.
	FrameworkPortable
)

// FrameworkRestriction is the tagged Exactly(framework) / Portable(profile)
// variant the metadata parser emits and the resolver consumes opaquely.
type FrameworkRestriction struct {
	Kind      FrameworkRestrictionKind
	Framework *frameworks.NuGetFramework // set when Kind == FrameworkExactly
	Profile   string                     // set when Kind == FrameworkPortable
}

func (r FrameworkRestriction) String() string {
	switch r.Kind {
	case FrameworkPortable:
		return "Portable(" + r.Profile + ")"
	default:
		if r.Framework != nil {
			return "Exactly(" + r.Framework.String() + ")"
		}
		return "Exactly()"
	}
}

// VersionRequirement is a parsed dependency version spec. An empty or
// "0" input is unbounded, matching the dependency mini-grammar. A spec
// containing a "*" wildcard (e.g. "1.0.*") is a floating range rather
// than a bracketed interval, matching NuGet.Client's PackageReference
// floating-version syntax.
type VersionRequirement struct {
	raw       string
	rng       *version.Range
	float     *version.FloatRange
	unbounded bool
}

// ParseVersionRequirement parses a dependency-list version spec token.
func ParseVersionRequirement(s string) (VersionRequirement, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return VersionRequirement{raw: "0", unbounded: true}, nil
	}

	if strings.Contains(s, "*") {
		fr, err := version.ParseFloatRange(s)
		if err != nil {
			return VersionRequirement{}, err
		}
		return VersionRequirement{raw: s, float: fr}, nil
	}

	r, err := version.ParseVersionRange(s)
	if err != nil {
		return VersionRequirement{}, err
	}

	return VersionRequirement{raw: s, rng: r}, nil
}

// Satisfies reports whether v meets this requirement.
func (r VersionRequirement) Satisfies(v *version.NuGetVersion) bool {
	if r.unbounded {
		return true
	}
	if r.float != nil {
		return r.float.Satisfies(v)
	}
	if r.rng == nil {
		return true
	}
	return r.rng.Satisfies(v)
}

// String returns the original spec text, or "0" for an unbounded requirement.
func (r VersionRequirement) String() string {
	if r.raw == "" {
		return "0"
	}
	return r.raw
}

// Dependency is one entry of the dependency-list mini-grammar:
// name:versionSpec:frameworkSpec.
type Dependency struct {
	Name                  PackageName
	VersionRequirement    VersionRequirement
	FrameworkRestrictions []FrameworkRestriction
}

// AppliesTo reports whether this dependency is pulled in for target. A
// dependency with no restrictions at all applies unconditionally; one
// restricted to specific TFMs or PCL profiles applies only if at least
// one restriction is compatible with target, mirroring NuGet.Client's
// per-group dependency-resolution filter.
func (d Dependency) AppliesTo(target *frameworks.NuGetFramework) bool {
	if len(d.FrameworkRestrictions) == 0 {
		return true
	}
	if target == nil {
		return true
	}

	for _, r := range d.FrameworkRestrictions {
		switch r.Kind {
		case FrameworkExactly:
			if r.Framework != nil && r.Framework.IsCompatible(target) {
				return true
			}
		case FrameworkPortable:
			if target.IsPCL() {
				return true
			}
		}
	}
	return false
}

// PackageMetadata is the canonical record produced by the metadata
// parser or the local adapter, and persisted by the disk cache.
type PackageMetadata struct {
	PackageName  string       `json:"packageName"`
	SourceURL    string       `json:"sourceUrl"`
	DownloadURL  string       `json:"downloadUrl"`
	LicenseURL   string       `json:"licenseUrl"`
	Unlisted     bool         `json:"unlisted"`
	Dependencies []Dependency `json:"dependencies"`
	CacheVersion string       `json:"cacheVersion"`
}

// EntryContext carries the request coordinates a single OData entry is
// parsed against.
type EntryContext struct {
	FeedURL string
	Name    string
	Version string
}

// --- OData Atom XML wire shapes, adapted from the V2 feed's service
// document and entry schema, with link-based pagination added. ---

// Service represents the OData service document.
type Service struct {
	XMLName   xml.Name  `xml:"service"`
	Workspace Workspace `xml:"workspace"`
	Base      string    `xml:"base,attr"`
}

// Workspace contains collections in the OData service.
type Workspace struct {
	Title       string       `xml:"title"`
	Collections []Collection `xml:"collection"`
}

// Collection represents an OData collection.
type Collection struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title"`
}

// Feed represents an Atom feed response, including next-page links.
type Feed struct {
	XMLName xml.Name `xml:"feed"`
	Title   string   `xml:"title"`
	ID      string   `xml:"id"`
	Updated string   `xml:"updated"`
	Links   []Link   `xml:"link"`
	Entries []Entry  `xml:"entry"`
}

// Link is an Atom <link> element; rel="next" carries OData pagination.
type Link struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// NextHref returns the href of the rel="next" link, or "" if absent.
func (f *Feed) NextHref() string {
	for _, l := range f.Links {
		if strings.EqualFold(l.Rel, "next") {
			return l.Href
		}
	}
	return ""
}

// Entry represents a single Atom entry, possibly a root document on its own.
type Entry struct {
	XMLName    xml.Name   `xml:"entry"`
	ID         string     `xml:"id"`
	Title      string     `xml:"title"`
	Updated    string     `xml:"updated"`
	Properties Properties `xml:"properties"`
	Content    Content    `xml:"content"`
}

// Properties carries the OData package metadata payload.
type Properties struct {
	XMLName                  xml.Name `xml:"properties"`
	ID                       string   `xml:"Id"`
	Version                  string   `xml:"Version"`
	NormalizedVersion        string   `xml:"NormalizedVersion"`
	Description              string   `xml:"Description"`
	Authors                  string   `xml:"Authors"`
	IconURL                  string   `xml:"IconUrl"`
	LicenseURL               string   `xml:"LicenseUrl"`
	ProjectURL               string   `xml:"ProjectUrl"`
	Tags                     string   `xml:"Tags"`
	Dependencies             string   `xml:"Dependencies"`
	DownloadCount            int64    `xml:"DownloadCount"`
	IsPrerelease             bool     `xml:"IsPrerelease"`
	Published                string   `xml:"Published"`
	RequireLicenseAcceptance bool     `xml:"RequireLicenseAcceptance"`
}

// Content carries the package download link and its declared media type.
type Content struct {
	Type string `xml:"type,attr"`
	Src  string `xml:"src,attr"`
}

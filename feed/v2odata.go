package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/willibrandon/gonuget-acquire/observability"

	nugethttp "github.com/willibrandon/gonuget-acquire/http"
)

// maxV2Pages bounds next-link pagination so a misbehaving feed can't loop
// this client forever.
const maxV2Pages = 10000

// V2ODataClient talks to a V2 OData feed in both its $filter and
// FindPackagesById() shapes.
type V2ODataClient struct {
	httpClient *nugethttp.Client
}

// NewV2ODataClient creates a client over the given HTTP transport.
func NewV2ODataClient(httpClient *nugethttp.Client) *V2ODataClient {
	return &V2ODataClient{httpClient: httpClient}
}

// ListVersionsFilter lists versions via GET {feed}/Packages?$filter=Id eq '{name}',
// following rel="next" links until the feed stops paginating.
func (c *V2ODataClient) ListVersionsFilter(ctx context.Context, feedURL, name string) ([]string, error) {
	filter := fmt.Sprintf("Id eq '%s'", odataEscape(name))
	first := strings.TrimSuffix(feedURL, "/") + "/Packages?$filter=" + url.QueryEscape(filter)
	return c.listVersionsPaged(ctx, feedURL, name, first)
}

// ListVersionsFindById lists versions via GET {feed}/FindPackagesById()?id='{name}',
// with the same pagination contract as ListVersionsFilter.
func (c *V2ODataClient) ListVersionsFindById(ctx context.Context, feedURL, name string) ([]string, error) {
	first := strings.TrimSuffix(feedURL, "/") + "/FindPackagesById()?id=" + url.QueryEscape("'"+odataEscape(name)+"'")
	return c.listVersionsPaged(ctx, feedURL, name, first)
}

// listVersionsPaged fetches pageURL and transitively follows rel="next"
// links, concatenating each page's entry versions. The next page's URL is
// only known after the current page has been parsed, so the walk is
// sequential rather than literally concurrent.
func (c *V2ODataClient) listVersionsPaged(ctx context.Context, feedURL, name, pageURL string) ([]string, error) {
	ctx, span := observability.StartMetadataFetchV2Span(ctx, name, feedURL)
	defer span.End()

	var versions []string
	next := pageURL

	for page := 0; next != "" && page < maxV2Pages; page++ {
		f, err := c.fetchFeedPage(ctx, next)
		if err != nil {
			return nil, nil
		}

		for _, e := range f.Entries {
			v := e.Properties.NormalizedVersion
			if v == "" {
				v = e.Properties.Version
			}
			if v != "" {
				versions = append(versions, v)
			}
		}

		next = f.NextHref()
	}

	if versions == nil {
		versions = []string{}
	}
	return versions, nil
}

func (c *V2ODataClient) fetchFeedPage(ctx context.Context, pageURL string) (*Feed, error) {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.DoWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: feed page returned %d", ErrProtocol, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var f Feed
	if err := xml.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("%w: decode feed page: %v", ErrProtocol, err)
	}
	return &f, nil
}

// FetchMetadataFast attempts the fast $filter form, first on NormalizedVersion
// then falling back to the raw Version property, per the feed's dual
// version-property schema.
func (c *V2ODataClient) FetchMetadataFast(ctx context.Context, feedURL, name, rawVersion, normalizedVersion string) (PackageMetadata, error) {
	ctx, span := observability.StartMetadataFetchV2Span(ctx, name, feedURL)
	defer span.End()

	filter := fmt.Sprintf("Id eq '%s' and NormalizedVersion eq '%s'", odataEscape(name), odataEscape(normalizedVersion))
	pageURL := strings.TrimSuffix(feedURL, "/") + "/Packages?$filter=" + url.QueryEscape(filter)

	md, err := c.fetchSingleEntry(ctx, feedURL, name, rawVersion, pageURL)
	if err == nil {
		return md, nil
	}

	filter = fmt.Sprintf("Id eq '%s' and Version eq '%s'", odataEscape(name), odataEscape(rawVersion))
	pageURL = strings.TrimSuffix(feedURL, "/") + "/Packages?$filter=" + url.QueryEscape(filter)
	return c.fetchSingleEntry(ctx, feedURL, name, rawVersion, pageURL)
}

// FetchMetadataCanonical is the slow-path fallback used when the fast
// $filter form fails entirely: the canonical Packages(Id=,Version=) key
// form, then its /odata/ prefixed variant.
func (c *V2ODataClient) FetchMetadataCanonical(ctx context.Context, feedURL, name, rawVersion string) (PackageMetadata, error) {
	base := strings.TrimSuffix(feedURL, "/")
	key := fmt.Sprintf("Packages(Id='%s',Version='%s')", odataEscape(name), odataEscape(rawVersion))

	md, err := c.fetchEntryDoc(ctx, feedURL, name, rawVersion, base+"/"+key)
	if err == nil {
		return md, nil
	}
	return c.fetchEntryDoc(ctx, feedURL, name, rawVersion, base+"/odata/"+key)
}

func (c *V2ODataClient) fetchSingleEntry(ctx context.Context, feedURL, name, rawVersion, pageURL string) (PackageMetadata, error) {
	f, err := c.fetchFeedPage(ctx, pageURL)
	if err != nil {
		return PackageMetadata{}, err
	}
	if len(f.Entries) == 0 {
		return PackageMetadata{}, fmt.Errorf("%w: %s %s", ErrNotFound, name, rawVersion)
	}

	doc, err := xml.Marshal(&f.Entries[0])
	if err != nil {
		return PackageMetadata{}, err
	}
	return ParseEntry(EntryContext{FeedURL: feedURL, Name: name, Version: rawVersion}, doc)
}

func (c *V2ODataClient) fetchEntryDoc(ctx context.Context, feedURL, name, rawVersion, entryURL string) (PackageMetadata, error) {
	req, err := http.NewRequest("GET", entryURL, nil)
	if err != nil {
		return PackageMetadata{}, err
	}

	resp, err := c.httpClient.DoWithRetry(ctx, req)
	if err != nil {
		return PackageMetadata{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return PackageMetadata{}, fmt.Errorf("%w: %s returned %d", ErrProtocol, entryURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PackageMetadata{}, err
	}

	return ParseEntry(EntryContext{FeedURL: feedURL, Name: name, Version: rawVersion}, body)
}

// odataEscape doubles embedded single quotes per OData string-literal syntax.
func odataEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

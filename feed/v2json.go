package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/willibrandon/gonuget-acquire/observability"

	nugethttp "github.com/willibrandon/gonuget-acquire/http"
)

// V2JSONClient talks to the V2 "package-versions" fast listVersions
// endpoint some V2 feeds expose alongside the OData surface.
type V2JSONClient struct {
	httpClient *nugethttp.Client
}

// NewV2JSONClient creates a client over the given HTTP transport.
func NewV2JSONClient(httpClient *nugethttp.Client) *V2JSONClient {
	return &V2JSONClient{httpClient: httpClient}
}

// ListVersions fetches GET {feed}/package-versions/{name}?includePrerelease=true,
// returning None on any non-2xx response or malformed JSON body.
func (c *V2JSONClient) ListVersions(ctx context.Context, feedURL, name string) ([]string, error) {
	ctx, span := observability.StartMetadataFetchV2Span(ctx, name, feedURL)
	defer span.End()

	reqURL := strings.TrimSuffix(feedURL, "/") + "/package-versions/" + name + "?includePrerelease=true"

	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return nil, nil
	}

	resp, err := c.httpClient.DoWithRetry(ctx, req)
	if err != nil {
		return nil, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return []string{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil
	}

	var versions []string
	if err := json.NewDecoder(resp.Body).Decode(&versions); err != nil {
		return nil, nil
	}

	if versions == nil {
		versions = []string{}
	}
	return versions, nil
}

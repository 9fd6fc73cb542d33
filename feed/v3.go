package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/willibrandon/gonuget-acquire/cache"
	nugethttp "github.com/willibrandon/gonuget-acquire/http"
	"github.com/willibrandon/gonuget-acquire/observability"
)

// maxV3Versions caps registration-index pagination; a feed advertising
// more than this many versions for one package is treated as exhausted
// rather than walked indefinitely.
const maxV3Versions = 100000

// Well-known V3 service index resource types.
const (
	ResourceTypeSearchQueryService        = "SearchQueryService"
	ResourceTypeSearchAutocompleteService = "SearchAutocompleteService"
	ResourceTypeRegistrationsBaseURL      = "RegistrationsBaseUrl"
	ResourceTypePackageBaseAddress        = "PackageBaseAddress"
	ResourceTypePackagePublish            = "PackagePublish"
	ResourceTypeCatalog                   = "Catalog/3.0.0"
)

// ServiceIndexCacheTTL matches the 40-minute TTL NuGet.Client uses for
// service index documents.
const ServiceIndexCacheTTL = 40 * time.Minute

// ServiceIndex is the NuGet V3 service index document.
// See https://docs.microsoft.com/en-us/nuget/api/service-index
type ServiceIndex struct {
	Version   string      `json:"version"`
	Resources []Resource  `json:"resources"`
	Context   interface{} `json:"@context,omitempty"`
}

// Resource is one entry in a service index.
type Resource struct {
	ID      string `json:"@id"`
	Type    string `json:"@type"`
	Comment string `json:"comment,omitempty"`
}

// RegistrationIndex is the top-level registration document for a package ID.
type RegistrationIndex struct {
	Count int                `json:"count"`
	Items []RegistrationPage `json:"items"`
}

// RegistrationPage is one paged range of the registration index, either
// inlined or referenced by @id and fetched lazily.
type RegistrationPage struct {
	ID    string             `json:"@id"`
	Lower string             `json:"lower"`
	Upper string             `json:"upper"`
	Count int                `json:"count"`
	Items []RegistrationLeaf `json:"items"`
}

// RegistrationLeaf wraps a single version's catalog entry.
type RegistrationLeaf struct {
	CatalogEntry *CatalogEntry `json:"catalogEntry"`
}

// CatalogEntry is the per-version registration payload.
type CatalogEntry struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Listed      bool   `json:"listed"`
	Published   string `json:"published"`
}

// V3Client talks to the V3 JSON registration API.
type V3Client struct {
	httpClient *nugethttp.Client
	diskCache  *cache.MultiTierCache // optional L2 tier; nil disables it

	mu    sync.RWMutex
	index map[string]cachedIndex
}

type cachedIndex struct {
	index     *ServiceIndex
	expiresAt time.Time
}

// NewV3Client creates a client over the given HTTP transport with no
// disk-backed service index cache (memory tier only).
func NewV3Client(httpClient *nugethttp.Client) *V3Client {
	return NewV3ClientWithCache(httpClient, nil)
}

// NewV3ClientWithCache creates a client whose service index lookups also
// consult diskCache (L2) on a memory-cache (L1) miss, so the index
// survives past process restarts within ServiceIndexCacheTTL.
func NewV3ClientWithCache(httpClient *nugethttp.Client, diskCache *cache.MultiTierCache) *V3Client {
	return &V3Client{
		httpClient: httpClient,
		diskCache:  diskCache,
		index:      make(map[string]cachedIndex),
	}
}

const serviceIndexDiskCacheKey = "service_index"

// getServiceIndex fetches (and memoizes) the service index document for
// sourceURL, checking the in-memory L1 tier then the optional disk L2
// tier before issuing a network request.
func (c *V3Client) getServiceIndex(ctx context.Context, sourceURL string) (*ServiceIndex, error) {
	ctx, span := observability.StartServiceIndexFetchSpan(ctx, sourceURL)
	defer span.End()

	c.mu.RLock()
	cached, ok := c.index[sourceURL]
	c.mu.RUnlock()
	if ok && time.Now().Before(cached.expiresAt) {
		span.SetAttributes(attribute.Bool("cache.hit", true), attribute.String("cache.tier", "memory"))
		return cached.index, nil
	}

	if c.diskCache != nil {
		if data, found, err := c.diskCache.Get(ctx, sourceURL, serviceIndexDiskCacheKey, ServiceIndexCacheTTL); err == nil && found {
			var idx ServiceIndex
			if err := json.Unmarshal(data, &idx); err == nil {
				span.SetAttributes(attribute.Bool("cache.hit", true), attribute.String("cache.tier", "disk"))
				c.memoize(sourceURL, &idx)
				return &idx, nil
			}
		}
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))

	req, err := http.NewRequest("GET", sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build service index request: %v", ErrProtocol, err)
	}

	resp, err := c.httpClient.DoWithRetry(ctx, req)
	if err != nil {
		observability.EndSpanWithError(span, err)
		return nil, fmt.Errorf("fetch service index: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("%w: service index returned %d: %s", ErrProtocol, resp.StatusCode, body)
		observability.EndSpanWithError(span, err)
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("%w: read service index: %v", ErrProtocol, err)
		observability.EndSpanWithError(span, err)
		return nil, err
	}

	var idx ServiceIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		err = fmt.Errorf("%w: decode service index: %v", ErrProtocol, err)
		observability.EndSpanWithError(span, err)
		return nil, err
	}

	c.memoize(sourceURL, &idx)
	if c.diskCache != nil {
		_ = c.diskCache.Set(ctx, sourceURL, serviceIndexDiskCacheKey, bytes.NewReader(raw), ServiceIndexCacheTTL, nil)
	}

	return &idx, nil
}

func (c *V3Client) memoize(sourceURL string, idx *ServiceIndex) {
	c.mu.Lock()
	c.index[sourceURL] = cachedIndex{index: idx, expiresAt: time.Now().Add(ServiceIndexCacheTTL)}
	c.mu.Unlock()
}

// resourceURL finds the first resource of resourceType, matching with or
// without a trailing version suffix (e.g. "PackageBaseAddress/3.0.0").
func resourceURL(idx *ServiceIndex, resourceType string) (string, bool) {
	for _, r := range idx.Resources {
		if r.Type == resourceType {
			return r.ID, true
		}
		if len(r.Type) > len(resourceType) && strings.HasPrefix(r.Type, resourceType) && r.Type[len(resourceType)] == '/' {
			return r.ID, true
		}
	}
	return "", false
}

// HasSearchEndpoint reports whether sourceURL advertises a V3 search
// endpoint, the condition under which the Version Aggregator attempts a
// V3 listVersions race for a feed.
func (c *V3Client) HasSearchEndpoint(ctx context.Context, sourceURL string) bool {
	idx, err := c.getServiceIndex(ctx, sourceURL)
	if err != nil {
		return false
	}
	_, ok := resourceURL(idx, ResourceTypeSearchQueryService)
	return ok
}

// ListVersions walks the registration index for name, returning (nil, nil)
// on any network or parse failure (the "None" outcome) and ([]string{}, nil)
// for a feed that answers but lists nothing.
func (c *V3Client) ListVersions(ctx context.Context, sourceURL, name string) ([]string, error) {
	ctx, span := observability.StartMetadataFetchV3Span(ctx, name, sourceURL)
	defer span.End()

	idx, err := c.getServiceIndex(ctx, sourceURL)
	if err != nil {
		return nil, nil
	}

	baseURL, ok := resourceURL(idx, ResourceTypeRegistrationsBaseURL)
	if !ok {
		return nil, nil
	}

	lowerID := strings.ToLower(name)
	registrationURL := strings.TrimSuffix(baseURL, "/") + "/" + lowerID + "/index.json"

	req, err := http.NewRequest("GET", registrationURL, nil)
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
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var regIndex RegistrationIndex
	if err := json.NewDecoder(resp.Body).Decode(&regIndex); err != nil {
		return nil, nil
	}

	versions := make([]string, 0, regIndex.Count)
	for i := range regIndex.Items {
		page := &regIndex.Items[i]
		if len(page.Items) == 0 && page.ID != "" {
			fetched, err := c.fetchRegistrationPage(ctx, page.ID)
			if err != nil {
				continue
			}
			page = fetched
		}

		for _, leaf := range page.Items {
			if leaf.CatalogEntry == nil {
				continue
			}
			versions = append(versions, leaf.CatalogEntry.Version)
			if len(versions) >= maxV3Versions {
				return versions, nil
			}
		}
	}

	return versions, nil
}

func (c *V3Client) fetchRegistrationPage(ctx context.Context, pageURL string) (*RegistrationPage, error) {
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
		return nil, fmt.Errorf("%w: registration page returned %d", ErrProtocol, resp.StatusCode)
	}

	var page RegistrationPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

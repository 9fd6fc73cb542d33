package acquire

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/willibrandon/gonuget-acquire/cache"
	nugethttp "github.com/willibrandon/gonuget-acquire/http"
	"github.com/willibrandon/gonuget-acquire/observability"
	"github.com/willibrandon/gonuget-acquire/selector"
)

// serviceIndexCacheMaxEntries and serviceIndexCacheMaxBytes bound the L1
// memory tier backing the V3 service index cache; one process rarely
// talks to more than a handful of distinct feeds.
const (
	serviceIndexCacheMaxEntries = 32
	serviceIndexCacheMaxBytes   = 4 << 20
	serviceIndexDiskCacheBytes  = 16 << 20
)

// ProxyProvider resolves the proxy (if any) to use for a given request
// URL. Injected rather than read from the environment, consistent with
// the Non-goal on proxy configuration discovery.
type ProxyProvider func(requestURL *url.URL) (*url.URL, error)

// Environment bundles the process-wide mutable state and capability
// flags the core needs: the Protocol Selector memo, the cache root, a
// verbosity flag, the runtime-timestamp-bug capability flag and an
// injected proxy provider. A single value is constructed once per
// process and threaded through the facade; test doubles replace it
// wholesale rather than poking at package-level globals.
type Environment struct {
	CacheRoot              string
	Verbose                bool
	HasArchiveTimestampBug bool
	ProxyProvider          ProxyProvider
	Logger                 observability.Logger
	HTTPClient             *nugethttp.Client
	Selector               *selector.Selector
	MaxArchiveErrorBytes   int

	// ServiceIndexCache is the optional L1/L2 cache the V3 client uses to
	// avoid re-fetching a feed's index.json within ServiceIndexCacheTTL.
	// Nil disables the disk tier; construction failures (e.g. an
	// unwritable cache root) are non-fatal and leave this nil.
	ServiceIndexCache *cache.MultiTierCache
}

// Option configures an Environment, mirroring the teacher's http.Option
// functional-options pattern.
type Option func(*Environment)

// WithCacheRoot overrides the default {UserCacheDir}/NuGet/Cache root.
func WithCacheRoot(root string) Option {
	return func(e *Environment) { e.CacheRoot = root }
}

// WithVerbose sets Environment.Verbose. Nothing in this module reads
// that flag; tracing and logging behave the same either way.
func WithVerbose(verbose bool) Option {
	return func(e *Environment) { e.Verbose = verbose }
}

// WithArchiveTimestampBug sets the capability flag that triggers the
// Archive Handler's timestamp-repair pass. The core never probes the
// runtime itself for this; callers who know their target runtime has
// the bug set it explicitly.
func WithArchiveTimestampBug(buggy bool) Option {
	return func(e *Environment) { e.HasArchiveTimestampBug = buggy }
}

// WithProxyProvider injects a per-URL proxy resolver.
func WithProxyProvider(p ProxyProvider) Option {
	return func(e *Environment) { e.ProxyProvider = p }
}

// WithLogger overrides the default null logger.
func WithLogger(logger observability.Logger) Option {
	return func(e *Environment) { e.Logger = logger }
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *nugethttp.Client) Option {
	return func(e *Environment) { e.HTTPClient = client }
}

// defaultCacheRoot mirrors spec.md's "{LocalAppData}/NuGet/Cache/";
// os.UserCacheDir is the portable equivalent of LocalAppData.
func defaultCacheRoot() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "NuGet", "Cache")
}

// NewEnvironment builds an Environment with the spec's defaults, applying opts.
func NewEnvironment(opts ...Option) *Environment {
	env := &Environment{
		CacheRoot:            defaultCacheRoot(),
		Logger:               observability.NewNullLogger(),
		HTTPClient:           nugethttp.GetGlobalClient(),
		Selector:             selector.New(),
		MaxArchiveErrorBytes: 4096,
	}
	for _, opt := range opts {
		opt(env)
	}
	env.ServiceIndexCache = newServiceIndexCache(env.CacheRoot)
	return env
}

// newServiceIndexCache builds the multi-tier cache backing V3 service
// index lookups, matching the teacher's memory-then-disk layering. A
// disk tier that fails to initialize (e.g. read-only cache root) simply
// leaves the cache memory-only rather than failing environment setup.
func newServiceIndexCache(cacheRoot string) *cache.MultiTierCache {
	l1 := cache.NewMemoryCache(serviceIndexCacheMaxEntries, serviceIndexCacheMaxBytes)

	l2, err := cache.NewDiskCache(filepath.Join(cacheRoot, "service-index"), serviceIndexDiskCacheBytes)
	if err != nil {
		return nil
	}
	return cache.NewMultiTierCache(l1, l2)
}

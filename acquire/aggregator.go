package acquire

import (
	"context"
	"fmt"
	"sync"

	"github.com/willibrandon/gonuget-acquire/auth"
	"github.com/willibrandon/gonuget-acquire/feed"
	"github.com/willibrandon/gonuget-acquire/version"
)

// versionVariant names one of the racing listVersions attempts within a
// remote source, for logging and the Protocol Selector's memo key.
type versionVariant struct {
	key string
	run func(ctx context.Context) ([]string, error)
}

// listVersionsForSource races every applicable variant for one source
// and returns the first successful non-None result, or nil if every
// variant yielded None or failed.
func listVersionsForSource(ctx context.Context, env *Environment, clients *clientSet, source PackageSource, name string) []string {
	if source.IsLocal() {
		local := feed.NewLocalClient(source.Path)
		versions, err := local.ListVersions(ctx, name)
		if err != nil {
			env.Logger.WarnContext(ctx, "local listVersions failed for {Source}: {Error}", source.Path, err)
			return nil
		}
		return versions
	}

	authKey := authMemoKey(source.Auth)
	variants := []versionVariant{
		{key: "v2-findById", run: func(ctx context.Context) ([]string, error) {
			return clients.v2odata.ListVersionsFindById(ctx, source.URL, name)
		}},
		{key: "v2-filter", run: func(ctx context.Context) ([]string, error) {
			return clients.v2odata.ListVersionsFilter(ctx, source.URL, name)
		}},
		{key: "v2-json", run: func(ctx context.Context) ([]string, error) {
			return clients.v2json.ListVersions(ctx, source.URL, name)
		}},
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		versions []string
	}
	resultCh := make(chan result, len(variants)+1)
	var wg sync.WaitGroup

	for _, v := range variants {
		wg.Add(1)
		go func(v versionVariant) {
			defer wg.Done()
			versions, err := env.Selector.Guard(authKey, source.URL, v.key, func() ([]string, error) {
				return v.run(ctx)
			})
			if err != nil || versions == nil {
				return
			}
			select {
			case resultCh <- result{versions: versions}:
			case <-ctx.Done():
			}
		}(v)
	}

	if clients.v3.HasSearchEndpoint(ctx, source.URL) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			versions, err := clients.v3.ListVersions(ctx, source.URL, name)
			if err != nil || versions == nil {
				return
			}
			select {
			case resultCh <- result{versions: versions}:
			case <-ctx.Done():
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for r := range resultCh {
		cancel()
		return r.versions
	}
	return nil
}

// GetVersions fans out listVersions across every source in parallel,
// unions the per-source winners and de-duplicates by SemVer identity.
// Fails with a MultiSourceError if no source produced anything.
func GetVersions(ctx context.Context, env *Environment, sources []PackageSource, name string) ([]*version.NuGetVersion, error) {
	clients := newClientSet(env)

	type sourceResult struct {
		source   PackageSource
		versions []string
	}
	results := make([]sourceResult, len(sources))

	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func(i int, source PackageSource) {
			defer wg.Done()
			results[i] = sourceResult{source: source, versions: listVersionsForSource(ctx, env, clients, source, name)}
		}(i, source)
	}
	wg.Wait()

	seen := make(map[string]*version.NuGetVersion)
	var failures []SourceFailure

	for _, r := range results {
		if len(r.versions) == 0 {
			failures = append(failures, SourceFailure{Source: r.source})
			continue
		}
		for _, raw := range r.versions {
			v, err := version.Parse(raw)
			if err != nil {
				continue
			}
			key := v.Normalize()
			if _, ok := seen[key]; !ok {
				seen[key] = v
			}
		}
	}

	if len(seen) == 0 {
		return nil, &MultiSourceError{Operation: "GetVersions(" + name + ")", Failures: failures}
	}

	out := make([]*version.NuGetVersion, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	return out, nil
}

// clientSet bundles one instance of each remote feed client so a single
// GetVersions/getDetailsFromNuGet call reuses the same service-index
// memo and HTTP client across sources.
type clientSet struct {
	v2odata *feed.V2ODataClient
	v2json  *feed.V2JSONClient
	v3      *feed.V3Client
}

func newClientSet(env *Environment) *clientSet {
	return &clientSet{
		v2odata: feed.NewV2ODataClient(env.HTTPClient),
		v2json:  feed.NewV2JSONClient(env.HTTPClient),
		v3:      feed.NewV3ClientWithCache(env.HTTPClient, env.ServiceIndexCache),
	}
}

// authMemoKey derives the Protocol Selector's auth component of its
// (auth, url) key from an authenticator's identity, treating nil (no
// auth) as its own stable key distinct from any credentialed one.
func authMemoKey(a auth.Authenticator) string {
	if a == nil {
		return "none"
	}
	return fmt.Sprintf("%p", a)
}

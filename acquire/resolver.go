package acquire

import (
	"context"
	"fmt"
	"sync"

	"github.com/willibrandon/gonuget-acquire/cache"
	"github.com/willibrandon/gonuget-acquire/feed"
	"github.com/willibrandon/gonuget-acquire/version"
)

// getDetailsFromNuGet implements spec.md §4.5's single-source metadata
// algorithm: consult the sticky-error marker, then the JSON disk cache,
// falling back to a live V2 OData fetch (fast then canonical) on a miss
// or a schema-version mismatch.
func getDetailsFromNuGet(ctx context.Context, env *Environment, metaCache *MetadataCache, clients *clientSet, force bool, source PackageSource, name, rawVersion string) (feed.PackageMetadata, error) {
	v, err := version.Parse(rawVersion)
	if err != nil {
		return feed.PackageMetadata{}, fmt.Errorf("%w: parse version %q: %v", ErrProtocolError, rawVersion, err)
	}
	normalizedURL := NormalizeURL(source.URL)

	// A caller-attached SourceCacheContext can force a bypass the same
	// way the --force flag does, without every call site threading an
	// extra bool through GetPackageDetails.
	if cacheCtx := cache.FromContext(ctx); cacheCtx != nil && cacheCtx.NoCache {
		force = true
	}

	if !force && metaCache.HasStickyError(name, v, normalizedURL) {
		return feed.PackageMetadata{}, fmt.Errorf("%w: %s %s previously failed at %s", ErrStickyError, name, rawVersion, source.URL)
	}

	metadata, cached, err := loadFromCacheOrOData(ctx, env, metaCache, clients, force, source, name, rawVersion, v, normalizedURL)
	if err != nil {
		metaCache.RecordFailure(name, v, normalizedURL, err.Error())
		return feed.PackageMetadata{}, err
	}

	metaCache.ClearStickyError(name, v, normalizedURL)
	if !cached {
		metaCache.Store(name, v, normalizedURL, metadata)
	}

	return metadata, nil
}

// loadFromCacheOrOData is the "deserialize if fresh, else refetch" half
// of §4.5 step 3.
func loadFromCacheOrOData(ctx context.Context, env *Environment, metaCache *MetadataCache, clients *clientSet, force bool, source PackageSource, name, rawVersion string, v *version.NuGetVersion, normalizedURL string) (feed.PackageMetadata, bool, error) {
	if !force {
		if metadata, ok := metaCache.Load(name, v, normalizedURL); ok {
			return metadata, true, nil
		}
	}

	metadata, err := clients.v2odata.FetchMetadataFast(ctx, source.URL, name, rawVersion, v.Normalize())
	if err == nil {
		return metadata, false, nil
	}

	metadata, err = clients.v2odata.FetchMetadataCanonical(ctx, source.URL, name, rawVersion)
	if err != nil {
		env.Logger.WarnContext(ctx, "metadata fetch failed for {Name} {Version} at {Source}: {Error}", name, rawVersion, source.URL, err)
		return feed.PackageMetadata{}, false, fmt.Errorf("%w: %s %s at %s: %v", ErrNetworkError, name, rawVersion, source.URL, err)
	}
	return metadata, false, nil
}

// GetPackageDetails races every source in parallel and returns the
// first successful PackageDetails, per §4.5's GetPackageDetails. Local
// sources bypass the JSON cache entirely since the archive itself is
// the source of truth.
func GetPackageDetails(ctx context.Context, env *Environment, force bool, sources []PackageSource, name, rawVersion string) (PackageDetails, error) {
	metaCache, err := NewMetadataCache(env.CacheRoot)
	if err != nil {
		return PackageDetails{}, err
	}
	clients := newClientSet(env)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type winner struct {
		source   PackageSource
		metadata feed.PackageMetadata
	}
	resultCh := make(chan winner, len(sources))
	failureCh := make(chan SourceFailure, len(sources))

	var wg sync.WaitGroup
	for _, source := range sources {
		wg.Add(1)
		go func(source PackageSource) {
			defer wg.Done()

			var metadata feed.PackageMetadata
			var err error
			if source.IsLocal() {
				local := feed.NewLocalClient(source.Path)
				metadata, err = local.FetchMetadata(ctx, name, rawVersion, rawVersion)
			} else {
				metadata, err = getDetailsFromNuGet(ctx, env, metaCache, clients, force, source, name, rawVersion)
			}

			if err != nil {
				select {
				case failureCh <- SourceFailure{Source: source, Err: err}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case resultCh <- winner{source: source, metadata: metadata}:
			case <-ctx.Done():
			}
		}(source)
	}

	go func() {
		wg.Wait()
		close(resultCh)
		close(failureCh)
	}()

	select {
	case w, ok := <-resultCh:
		if ok {
			cancel()
			return toPackageDetails(w.source, w.metadata), nil
		}
	case <-ctx.Done():
	}

	var failures []SourceFailure
	for f := range failureCh {
		failures = append(failures, f)
	}
	for range resultCh {
	}

	// A total failure still clears any sticky marker this attempt left
	// behind, so a future retry is not blocked by the failure it just
	// reported — the diagnostic below is the record of this attempt.
	if v, err := version.Parse(rawVersion); err == nil {
		for _, source := range sources {
			if !source.IsLocal() {
				metaCache.ClearStickyError(name, v, NormalizeURL(source.URL))
			}
		}
	}

	return PackageDetails{}, &MultiSourceError{Operation: fmt.Sprintf("GetPackageDetails(%s %s)", name, rawVersion), Failures: failures}
}

func toPackageDetails(source PackageSource, metadata feed.PackageMetadata) PackageDetails {
	return PackageDetails{
		Name:               metadata.PackageName,
		Source:             source,
		DownloadLink:       metadata.DownloadURL,
		Unlisted:           metadata.Unlisted,
		LicenseURL:         metadata.LicenseURL,
		DirectDependencies: metadata.Dependencies,
	}
}


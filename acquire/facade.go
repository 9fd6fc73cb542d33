package acquire

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/willibrandon/gonuget-acquire/archivehandler"
	"github.com/willibrandon/gonuget-acquire/version"
)

// GetVersions is the first public operation from spec.md §6: enumerate
// available versions of packageName across sources.
func (env *Environment) GetVersions(ctx context.Context, sources []PackageSource, packageName string) ([]*version.NuGetVersion, error) {
	return GetVersions(ctx, env, sources, packageName)
}

// GetPackageDetails is the second public operation from spec.md §6.
func (env *Environment) GetPackageDetails(ctx context.Context, force bool, sources []PackageSource, packageName, versionStr string) (PackageDetails, error) {
	return GetPackageDetails(ctx, env, force, sources, packageName, versionStr)
}

// DownloadPackage is the public procedure from spec.md §6: download the
// archive (and its license) then extract it into the per-package target
// directory named by layoutFn.
func (env *Environment) DownloadPackage(ctx context.Context, source PackageSource, group, packageName, versionStr string, includeVersionInPath, force bool, layoutFn func(root, group, name, version string, includeVersionInPath bool) string) (string, error) {
	installer := func(archivePath, licensePath string) (string, error) {
		targetFolder := layoutFn(env.CacheRoot, group, packageName, versionStr, includeVersionInPath)
		return archivehandler.CopyFromCache(archivehandler.CopyOptions{
			ArchivePath:            archivePath,
			LicensePath:            licensePath,
			TargetFolder:           targetFolder,
			PackageName:            packageName,
			Version:                versionStr,
			Force:                  force,
			HasArchiveTimestampBug: env.HasArchiveTimestampBug,
			MaxErrorBytes:          env.MaxArchiveErrorBytes,
		})
	}

	return DownloadPackage(ctx, env, force, source, packageName, versionStr, installer)
}

// GetLibFiles returns every file under folder/lib (case-insensitive,
// recursive), per spec.md §6's disk-based file accessors.
func (env *Environment) GetLibFiles(folder string) ([]string, error) {
	return filesUnderSubdir(folder, "lib")
}

// GetTargetsFiles returns every file under folder/build.
func (env *Environment) GetTargetsFiles(folder string) ([]string, error) {
	return filesUnderSubdir(folder, "build")
}

// GetAnalyzerFiles returns every file under folder/analyzers.
func (env *Environment) GetAnalyzerFiles(folder string) ([]string, error) {
	return filesUnderSubdir(folder, "analyzers")
}

// filesUnderSubdir walks folder's immediate children, matching
// subdirName case-insensitively, and returns every file beneath the
// match relative to folder.
func filesUnderSubdir(folder, subdirName string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var matched string
	for _, e := range entries {
		if e.IsDir() && strings.EqualFold(e.Name(), subdirName) {
			matched = e.Name()
			break
		}
	}
	if matched == "" {
		return []string{}, nil
	}

	var files []string
	root := filepath.Join(folder, matched)
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(folder, path)
		if relErr != nil {
			rel = path
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

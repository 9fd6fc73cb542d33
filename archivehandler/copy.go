package archivehandler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyOptions bundles everything CopyFromCache needs to finish installing
// a package that DownloadPackage has already staged in the cache.
type CopyOptions struct {
	ArchivePath  string
	LicensePath  string
	TargetFolder string
	PackageName  string
	Version      string
	Force        bool

	HasArchiveTimestampBug bool
	MaxErrorBytes          int
}

// CopyFromCache implements spec.md §4.7's CopyFromCache: skip if the
// target already holds the archive and Force is not set, otherwise clear
// the target folder, copy the archive in, extract it, and copy the
// license alongside it. Any failed step unwinds the copy and target
// folder before the error is returned.
func CopyFromCache(opts CopyOptions) (string, error) {
	archiveName := filepath.Base(opts.ArchivePath)
	installedArchive := filepath.Join(opts.TargetFolder, archiveName)

	if !opts.Force {
		if info, err := os.Stat(installedArchive); err == nil && info.Size() > 0 {
			return opts.TargetFolder, nil
		}
	}

	if err := os.RemoveAll(opts.TargetFolder); err != nil {
		return "", fmt.Errorf("%w: clear target folder %s: %v", ErrExtraction, opts.TargetFolder, err)
	}

	if err := os.MkdirAll(opts.TargetFolder, 0o755); err != nil {
		return "", fmt.Errorf("%w: create target folder %s: %v", ErrExtraction, opts.TargetFolder, err)
	}

	if err := copyFile(opts.ArchivePath, installedArchive); err != nil {
		_ = os.RemoveAll(opts.TargetFolder)
		return "", err
	}

	if err := ExtractPackage(installedArchive, opts.TargetFolder, opts.PackageName, opts.Version, opts.HasArchiveTimestampBug, opts.MaxErrorBytes); err != nil {
		_ = os.RemoveAll(opts.TargetFolder)
		return "", err
	}

	if opts.LicensePath != "" {
		if info, err := os.Stat(opts.LicensePath); err == nil && info.Size() > 0 {
			dest := filepath.Join(opts.TargetFolder, "license.html")
			if _, statErr := os.Stat(dest); statErr != nil {
				if err := copyFile(opts.LicensePath, dest); err != nil {
					_ = os.RemoveAll(opts.TargetFolder)
					return "", err
				}
			}
		}
	}

	return opts.TargetFolder, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrExtraction, src, err)
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrExtraction, filepath.Dir(dest), err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrExtraction, dest, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("%w: copy %s to %s: %v", ErrExtraction, src, dest, err)
	}

	return nil
}

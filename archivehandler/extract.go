// Package archivehandler extracts downloaded .nupkg archives into a
// per-package target directory, repairing runtime-dependent timestamp
// bugs and sanitizing entry names along the way.
package archivehandler

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/willibrandon/gonuget-acquire/packaging"
)

// maxErrorSnippetBytes bounds how much of a corrupt archive's bytes are
// echoed into an extraction error, useful when a feed served an HTML
// error page disguised as a package.
const maxErrorSnippetBytes = 4096

// ExtractPackage implements spec.md §4.7's ExtractPackage: idempotent
// re-extraction guard, timestamp repair on buggy runtimes, safe
// extraction via archive/zip, then a post-extraction URL-decode rename
// walk. maxErrorBytes bounds the archive snippet echoed into extraction
// errors; a value <= 0 falls back to maxErrorSnippetBytes.
func ExtractPackage(archivePath, targetFolder, name, version string, hasTimestampBug bool, maxErrorBytes int) error {
	if maxErrorBytes <= 0 {
		maxErrorBytes = maxErrorSnippetBytes
	}
	alreadyExtracted, err := hasExtractedContents(targetFolder, archivePath)
	if err != nil {
		return err
	}
	if alreadyExtracted {
		return nil
	}

	if err := os.MkdirAll(targetFolder, 0o755); err != nil {
		return fmt.Errorf("%w: create target folder %s: %v", ErrExtraction, targetFolder, err)
	}

	zipPath := archivePath
	if strings.HasSuffix(strings.ToLower(archivePath), ".nupkg.xz") {
		decompressed, err := decompressXZ(archivePath, maxErrorBytes)
		if err != nil {
			_ = os.RemoveAll(targetFolder)
			return err
		}
		defer func() { _ = os.Remove(decompressed) }()
		zipPath = decompressed
	}

	reader, err := packaging.OpenPackage(zipPath)
	if err != nil {
		_ = os.RemoveAll(targetFolder)
		return extractionError(archivePath, maxErrorBytes, fmt.Errorf("open archive: %w", err))
	}
	defer func() { _ = reader.Close() }()

	now := time.Now()
	for _, f := range reader.Files() {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		if err := packaging.ValidatePackagePath(f.Name); err != nil {
			_ = os.RemoveAll(targetFolder)
			return extractionError(archivePath, maxErrorBytes, fmt.Errorf("invalid entry %q: %w", f.Name, err))
		}

		destPath := filepath.Join(targetFolder, f.Name)
		if err := extractEntry(reader, f.Name, destPath); err != nil {
			_ = os.RemoveAll(targetFolder)
			return extractionError(archivePath, maxErrorBytes, fmt.Errorf("extract %q: %w", f.Name, err))
		}

		mtime := f.Modified
		if hasTimestampBug || mtime.IsZero() || mtime.Year() < 1980 {
			mtime = now
		}
		_ = os.Chtimes(destPath, mtime, mtime)
	}

	if err := renameURLDecoded(targetFolder); err != nil {
		_ = os.RemoveAll(targetFolder)
		return extractionError(archivePath, maxErrorBytes, fmt.Errorf("post-extraction rename: %w", err))
	}

	return nil
}

func extractEntry(reader *packaging.PackageReader, zipPath, destPath string) error {
	return reader.ExtractFile(zipPath, destPath)
}

// hasExtractedContents reports whether targetFolder already holds files
// other than a copy of the archive itself, per §4.7 step 1.
func hasExtractedContents(targetFolder, archivePath string) (bool, error) {
	entries, err := os.ReadDir(targetFolder)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat target folder %s: %v", ErrExtraction, targetFolder, err)
	}

	archiveBase := filepath.Base(archivePath)
	for _, e := range entries {
		if e.Name() != archiveBase {
			return true, nil
		}
	}
	return false, nil
}

// renameURLDecoded walks targetFolder depth-first and renames every
// directory and file whose name URL-decodes to something different,
// skipping a rename whose destination already exists, per §4.7 step 5
// and scenario 6.
func renameURLDecoded(targetFolder string) error {
	var paths []string
	err := filepath.WalkDir(targetFolder, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == targetFolder {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return err
	}

	// Deepest paths first, so a directory rename doesn't invalidate the
	// already-collected paths of its children.
	sort.Slice(paths, func(i, j int) bool {
		return strings.Count(paths[i], string(filepath.Separator)) > strings.Count(paths[j], string(filepath.Separator))
	})

	for _, path := range paths {
		dir := filepath.Dir(path)
		base := filepath.Base(path)

		decoded, err := url.QueryUnescape(strings.ReplaceAll(base, "+", "%2B"))
		if err != nil || decoded == base {
			continue
		}

		dest := filepath.Join(dir, decoded)
		if _, err := os.Stat(dest); err == nil {
			continue
		}
		if err := os.Rename(path, dest); err != nil {
			return fmt.Errorf("rename %q to %q: %w", path, dest, err)
		}
	}

	return nil
}

func decompressXZ(archivePath string, maxErrorBytes int) (string, error) {
	in, err := os.Open(archivePath)
	if err != nil {
		return "", extractionError(archivePath, maxErrorBytes, fmt.Errorf("open xz archive: %w", err))
	}
	defer func() { _ = in.Close() }()

	xzReader, err := xz.NewReader(in)
	if err != nil {
		return "", extractionError(archivePath, maxErrorBytes, fmt.Errorf("open xz stream: %w", err))
	}

	out, err := os.CreateTemp("", "nupkg-*.zip")
	if err != nil {
		return "", extractionError(archivePath, maxErrorBytes, fmt.Errorf("create temp file: %w", err))
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, xzReader); err != nil {
		_ = os.Remove(out.Name())
		return "", extractionError(archivePath, maxErrorBytes, fmt.Errorf("decompress: %w", err))
	}

	return out.Name(), nil
}

// extractionError reads up to maxErrorBytes of archivePath and appends
// it to err as text, useful when a feed returned an HTML error page
// disguised as a package.
func extractionError(archivePath string, maxErrorBytes int, err error) error {
	snippet := readSnippet(archivePath, maxErrorBytes)
	if snippet == "" {
		return fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return fmt.Errorf("%w: %v (archive begins: %q)", ErrExtraction, err, snippet)
}

func readSnippet(path string, maxBytes int) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, maxBytes)
	n, _ := f.Read(buf)
	return string(buf[:n])
}

// SPDX-License-Identifier: MPL-2.0

package update

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxExtractedBytes is the upper bound on the total extracted size (500 MB).
// Prevents decompression bombs when unpacking an update archive.
const maxExtractedBytes = 500 << 20

// Extractor is the archive-extraction capability consumed by the installer.
// The archive format is opaque to the rest of the core; anything that yields
// a directory tree under destDir satisfies the contract.
type Extractor interface {
	Unzip(archivePath, destDir string) error
}

// ZipExtractor extracts standard zip archives. It is the default Extractor.
type ZipExtractor struct{}

// Unzip extracts the archive at archivePath into destDir, preserving the
// directory structure of the entries. Entries that would escape destDir are
// rejected, and the cumulative extracted size is capped at maxExtractedBytes.
func (ZipExtractor) Unzip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer func() { _ = r.Close() }() // read-only archive handle

	var total int64
	for _, f := range r.File {
		target, err := sanitizePath(destDir, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
			continue
		}

		remaining := maxExtractedBytes - total
		if remaining <= 0 {
			return fmt.Errorf("archive %s exceeds extraction size limit", archivePath)
		}

		written, err := extractFile(f, target, remaining)
		if err != nil {
			return err
		}
		total += written
	}
	return nil
}

// sanitizePath joins entry name onto destDir and rejects traversal outside it
// (zip-slip).
func sanitizePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return target, nil
}

// extractFile writes one zip entry to target, returning the number of bytes
// written. The limit caps how much may still be extracted; exceeding it fails
// the extraction.
func extractFile(f *zip.File, target string, limit int64) (_ int64, err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("creating directory for %s: %w", target, err)
	}

	src, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("opening archive entry %s: %w", f.Name, err)
	}
	defer func() { _ = src.Close() }() // read-only entry handle

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode().Perm()|0o200)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", target, err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	written, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if err != nil {
		return written, fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	if written > limit {
		return written, fmt.Errorf("archive entry %s exceeds extraction size limit", f.Name)
	}
	return written, nil
}

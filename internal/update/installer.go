// SPDX-License-Identifier: MPL-2.0

package update

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

// maxArchiveBytes is the upper bound on a downloaded archive (500 MB).
const maxArchiveBytes = 500 << 20

// backupSuffix is appended to the live script directory path to form the
// backup location during install.
const backupSuffix = ".bak"

type (
	// Installer downloads an update archive, stages its contents, and swaps
	// the live script directory for the staged one with a backup of the
	// previous version.
	//
	// The install itself is two renames in strict order: live → backup, then
	// staging → live. That is deliberately not a transaction — a crash
	// between the renames leaves the backup intact and the live path absent,
	// which is recoverable by hand (or via Rollback) but requires
	// intervention. BackupDir exposes the location for exactly that reason.
	Installer struct {
		scriptDir    string // live install location of the managed script
		stagingDir   string // where archive contents are unpacked
		archivePath  string // fixed temporary path for the downloaded archive
		archiveLimit int64  // upper bound on the downloaded archive size
		httpClient   *http.Client
		extractor    Extractor
	}

	// InstallerOption configures an Installer during construction.
	InstallerOption func(*Installer)
)

// WithInstallerHTTPClient sets a custom HTTP client for archive downloads.
func WithInstallerHTTPClient(c *http.Client) InstallerOption {
	return func(i *Installer) {
		i.httpClient = c
	}
}

// WithExtractor overrides the default zip extractor.
func WithExtractor(e Extractor) InstallerOption {
	return func(i *Installer) {
		i.extractor = e
	}
}

// WithStagingDir overrides the default staging directory (scriptDir +
// ".staging").
func WithStagingDir(dir string) InstallerOption {
	return func(i *Installer) {
		i.stagingDir = dir
	}
}

// WithArchivePath overrides the default archive path (staging dir + ".zip").
func WithArchivePath(path string) InstallerOption {
	return func(i *Installer) {
		i.archivePath = path
	}
}

// NewInstaller creates an Installer for the script living at scriptDir.
func NewInstaller(scriptDir string, opts ...InstallerOption) *Installer {
	i := &Installer{
		scriptDir:    scriptDir,
		archiveLimit: maxArchiveBytes,
		httpClient:   http.DefaultClient,
		extractor:    ZipExtractor{},
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.stagingDir == "" {
		i.stagingDir = scriptDir + ".staging"
	}
	if i.archivePath == "" {
		i.archivePath = i.stagingDir + ".zip"
	}
	return i
}

// BackupDir returns the path the previous live directory is moved to during
// Install. External recovery procedures should look here.
func (i *Installer) BackupDir() string {
	return i.scriptDir + backupSuffix
}

// StagingDir returns the staging directory holding unpacked archive contents.
func (i *Installer) StagingDir() string {
	return i.stagingDir
}

// Download fetches the archive at url, unpacks it into the staging directory,
// and returns the recursive listing of the staged files (paths relative to
// the staging directory). A non-success response yields a *DownloadError
// before anything touches the file system; a body that cannot be read into a
// buffer, or that exceeds the archive size limit, yields a *ConversionError.
func (i *Installer) Download(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DownloadError{URL: url, Status: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}

	buf, err := io.ReadAll(io.LimitReader(resp.Body, i.archiveLimit+1))
	if err != nil {
		return nil, &ConversionError{URL: url, Cause: err}
	}
	if int64(len(buf)) > i.archiveLimit {
		return nil, &ConversionError{URL: url, Cause: fmt.Errorf("archive exceeds the %d byte download limit", i.archiveLimit)}
	}

	if err := os.MkdirAll(i.stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging directory %s: %w", i.stagingDir, err)
	}
	if err := os.WriteFile(i.archivePath, buf, 0o644); err != nil {
		return nil, fmt.Errorf("writing archive %s: %w", i.archivePath, err)
	}
	if err := i.extractor.Unzip(i.archivePath, i.stagingDir); err != nil {
		return nil, err
	}

	return listFiles(i.stagingDir)
}

// Install promotes the staged version: the live directory is renamed to the
// backup path first, then the staging directory is renamed into the live
// path. The ordering is the whole safety story — a failure after the first
// rename leaves a populated backup and an absent live path instead of
// destroying both versions.
func (i *Installer) Install() error {
	backup := i.BackupDir()

	if err := os.Rename(i.scriptDir, backup); err != nil {
		return fmt.Errorf("moving current version to backup: %w", err)
	}
	if err := os.Rename(i.stagingDir, i.scriptDir); err != nil {
		return fmt.Errorf("promoting staged version (previous version preserved at %s): %w", backup, err)
	}
	return nil
}

// Rollback restores the backup directory to the live path, discarding
// whatever occupies the live path. It fails when no backup exists.
func (i *Installer) Rollback() error {
	backup := i.BackupDir()
	if _, err := os.Stat(backup); err != nil {
		return fmt.Errorf("no backup to restore at %s: %w", backup, err)
	}

	if err := os.RemoveAll(i.scriptDir); err != nil {
		return fmt.Errorf("removing broken version: %w", err)
	}
	if err := os.Rename(backup, i.scriptDir); err != nil {
		return fmt.Errorf("restoring backup: %w", err)
	}
	return nil
}

// Cleanup removes the backup directory, the staging directory, and the
// downloaded archive, independently of one another. Absence of any of them
// is not an error, so Cleanup is idempotent. Call it once the promoted
// version is confirmed working.
func (i *Installer) Cleanup() error {
	if err := os.RemoveAll(i.BackupDir()); err != nil {
		return fmt.Errorf("removing backup directory: %w", err)
	}
	if err := os.RemoveAll(i.stagingDir); err != nil {
		return fmt.Errorf("removing staging directory: %w", err)
	}
	if err := os.Remove(i.archivePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing downloaded archive: %w", err)
	}
	return nil
}

// listFiles returns all regular files under root, as slash-separated paths
// relative to root, in lexical order.
func listFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing staged files: %w", err)
	}
	return files, nil
}

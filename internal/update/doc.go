// SPDX-License-Identifier: MPL-2.0

// Package update implements the self-update core for a managed script
// directory: interval-gated manifest checks, a persisted check cache, and the
// download → unpack → install → cleanup file transition with a backup path.
//
// The package is organized into five concerns:
//   - manifest.go: HTTP client for the remote version manifest
//   - cache.go: persisted record of the last check and known versions
//   - checker.go: staleness decision and newer-than-current filtering
//   - installer.go: archive download, staging, and the two-rename install
//   - extract.go: zip extraction capability with traversal and size guards
package update

// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error presentation: ActionableError
// carries operation/resource/suggestion context for CLI output, and the issue
// catalog renders markdown remediation guides for known failure situations.
package issue

// SPDX-License-Identifier: MPL-2.0

// Package version compares dotted-numeric version strings as published in a
// script's release manifest. The accepted grammar is one to four dot-separated
// non-negative integer components (e.g. "1", "1.2", "1.2.3.4"). Pre-release
// suffixes are deliberately rejected: a manifest that needs "1.2.0-beta.1"
// should not be comparing leniently against installed versions.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// maxComponents is the upper bound on dot-separated components in a version
// string. Four covers every release scheme the manifest format supports.
const maxComponents = 4

// ValidationError reports a version string that does not match the
// dotted-numeric grammar. Param names the offending argument so callers can
// tell a bad manifest entry from a bad locally-configured version.
type ValidationError struct {
	Param string // argument name, e.g. "currentVersion"
	Value string // the rejected version string
}

// Error formats the validation failure with the offending parameter and value.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid version in %s: %q does not match the dotted-numeric grammar (1-4 integer components)", e.Param, e.Value)
}

// Compare returns a negative, zero, or positive integer when a is less than,
// equal to, or greater than b, making it usable as a total-order comparator.
// The shorter operand is padded with trailing zero components before the
// component-wise numeric comparison, so "1.2" and "1.2.0" compare equal.
// A *ValidationError is returned when either operand fails the grammar.
func Compare(a, b string) (int, error) {
	av, err := parse(a, "a")
	if err != nil {
		return 0, err
	}
	bv, err := parse(b, "b")
	if err != nil {
		return 0, err
	}
	return compareParts(av, bv), nil
}

// CompareAs is Compare with caller-supplied parameter names for error
// reporting. The checker uses it to surface "currentVersion" instead of the
// comparator's positional names.
func CompareAs(a, aParam, b, bParam string) (int, error) {
	av, err := parse(a, aParam)
	if err != nil {
		return 0, err
	}
	bv, err := parse(b, bParam)
	if err != nil {
		return 0, err
	}
	return compareParts(av, bv), nil
}

// Newer reports whether candidate is strictly newer than current.
func Newer(candidate, current string) (bool, error) {
	c, err := CompareAs(candidate, "candidate", current, "current")
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// Valid reports whether v matches the dotted-numeric grammar.
func Valid(v string) bool {
	_, err := parse(v, "v")
	return err == nil
}

// Validate checks v against the grammar, carrying the caller-supplied
// parameter name into the *ValidationError on failure.
func Validate(v, param string) error {
	_, err := parse(v, param)
	return err
}

// parse splits v into its integer components, enforcing the grammar. The
// param name is carried into the ValidationError on failure.
func parse(v, param string) ([]int, error) {
	segments := strings.Split(v, ".")
	if v == "" || len(segments) > maxComponents {
		return nil, &ValidationError{Param: param, Value: v}
	}
	parts := make([]int, 0, len(segments))
	for _, seg := range segments {
		// strconv.Atoi alone would accept "+1" and "-0"; restrict to
		// plain digit runs first.
		if seg == "" || !digitsOnly(seg) {
			return nil, &ValidationError{Param: param, Value: v}
		}
		n, err := strconv.Atoi(seg)
		if err != nil {
			return nil, &ValidationError{Param: param, Value: v}
		}
		parts = append(parts, n)
	}
	return parts, nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// compareParts compares two component slices, zero-padding the shorter one,
// and returns the first non-zero signed difference.
func compareParts(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			return av - bv
		}
	}
	return 0
}

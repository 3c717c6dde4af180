package assembly

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

const (
	CompareLexical = "lexical"
	CompareNumeric = "numeric"

	// python3Version is the first assembler release that runs under python3.
	python3Version = "3.6.2"
)

// VersionAtLeast reports whether version >= threshold. The lexical mode compares the
// raw strings, so "3.10.0" sorts before "3.6.2"; existing runs were built that way.
// The numeric mode compares dotted release numbers and rejects anything else.
func VersionAtLeast(version, threshold, mode string) (bool, error) {
	if mode != CompareNumeric {
		return version >= threshold, nil
	}
	v, err := canonicalVersion(version)
	if err != nil {
		return false, err
	}
	t, err := canonicalVersion(threshold)
	if err != nil {
		return false, err
	}
	return semver.Compare(v, t) >= 0, nil
}

// canonicalVersion turns "3.15.5" or "v3.15.5" into the "v3.15.5" form semver expects.
func canonicalVersion(s string) (string, error) {
	v := "v" + strings.TrimPrefix(strings.TrimSpace(s), "v")
	if !semver.IsValid(v) {
		return "", fmt.Errorf("invalid assembler version %q", s)
	}
	return v, nil
}

// CheckVersion validates a version for the given comparison mode.
func CheckVersion(version, mode string) error {
	_, err := VersionAtLeast(version, python3Version, mode)
	return err
}

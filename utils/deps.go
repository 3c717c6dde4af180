package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
)

var ErrAssemblerNotFound = errors.New("assembler executable not found")

var versionPattern = regexp.MustCompile(`v?(\d+(?:\.\d+)+)`)

// CheckDeps resolves the assembler executable to an absolute path.
func CheckDeps(spades string) (string, error) {
	if spades == "" {
		spades = "spades.py"
	}
	path, err := exec.LookPath(spades)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrAssemblerNotFound, spades, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// AssemblerVersion asks the assembler for its version, e.g. "SPAdes genome assembler v3.15.5".
func AssemblerVersion(ctx context.Context, spades string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, spades, "--version")
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("probing %s version: %w", spades, err)
	}
	return ParseVersion(out.String())
}

func ParseVersion(s string) (string, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("no version number in %q", s)
	}
	return m[1], nil
}

package common

import (
	"fmt"
	"strings"
)

// Version is set via ldflags at build time: -ldflags "-X github.com/Alia5/factorygen/internal/codegen/common.Version=x.y.z"
var Version = ""

// GetVersion returns the version string that was set at build time via ldflags.
// Returns "0.0.1-dev" if Version is empty (development builds only).
func GetVersion() (string, error) {
	if Version == "" {
		return "0.0.1-dev", nil
	}

	version := strings.TrimPrefix(Version, "v")
	baseVersion := strings.SplitN(version, "-", 2)[0]
	if !strings.Contains(baseVersion, ".") {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z)", Version)
	}

	return version, nil
}

// GeneratedHeader is the first line of every file factorygen writes. The
// wording is recognized by go vet and editors as marking generated code.
func GeneratedHeader(version string) string {
	return fmt.Sprintf("// Code generated by factorygen %s. DO NOT EDIT.", version)
}

// IsGenerated reports whether src starts with a factorygen header, so a
// hand-written file of the same name is never overwritten.
func IsGenerated(src []byte) bool {
	return strings.HasPrefix(string(src), "// Code generated by factorygen ")
}

// Package jvm validates that a supported Java runtime is installed.
package jvm

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/meshworks/meshbox/internal/errors"
	"github.com/meshworks/meshbox/internal/system"
)

const (
	// supportedVendor is the vendor token reported by the Oracle JVM.
	supportedVendor = "java"

	minSupportedMajor = 1
	minSupportedMinor = 8
)

// Validate probes `java -version` and fails fast when the local JVM is
// missing, from an unsupported vendor, or older than 1.8.
func Validate(ctx context.Context, exec system.CommandExecutor, log *slog.Logger) error {
	raw, err := exec.Execute(ctx, "java", "-version")
	if err != nil {
		return errors.JavaCall(err)
	}

	rawOutput := string(raw)
	firstLine, _, _ := strings.Cut(rawOutput, "\n")

	// The first line is expected to read `<vendor> version "<major.minor...>"`.
	parts := strings.Split(strings.TrimRight(firstLine, "\r"), " ")
	if len(parts) != 3 {
		return errors.JavaVersionParse(rawOutput)
	}

	vendor := parts[0]
	if vendor != supportedVendor {
		return errors.JavaUnsupportedVendor(vendor)
	}

	version := strings.Trim(parts[2], `"`)
	major, minor, ok := splitVersion(version)
	if !ok {
		return errors.JavaVersionParse(rawOutput)
	}

	if major < minSupportedMajor || (major == minSupportedMajor && minor < minSupportedMinor) {
		return errors.JavaUnsupportedVersion(version)
	}

	log.Debug("JVM validated", "vendor", vendor, "version", version)
	return nil
}

// splitVersion extracts the leading (major, minor) pair from a dotted
// version string such as 1.8.0_144.
func splitVersion(version string) (major, minor int, ok bool) {
	components := strings.Split(version, ".")
	if len(components) < 2 {
		return 0, 0, false
	}

	major, err := strconv.Atoi(components[0])
	if err != nil {
		return 0, 0, false
	}

	// The minor component may carry an update suffix, e.g. 8u144 styles
	// are normalized upstream, so a plain parse is sufficient here.
	minor, err = strconv.Atoi(components[1])
	if err != nil {
		return 0, 0, false
	}

	return major, minor, true
}

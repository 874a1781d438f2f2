// Package errors defines the error kinds surfaced by meshbox.
//
// Every failure the sandbox can hit maps to a distinct kind with its own
// exit code and an actionable message; nothing is funneled through a
// generic catch-all.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes for meshbox
const (
	ExitSuccess             = 0
	ExitGeneralError        = 1
	ExitInstanceCount       = 2
	ExitJava                = 3
	ExitBindAddress         = 4
	ExitArtifactUnreachable = 5
	ExitArtifactNotFound    = 6
	ExitLaunch              = 7
	ExitConfigError         = 8
)

// MeshboxError is the base error type for meshbox
type MeshboxError struct {
	Code    int
	Message string
	Cause   error
}

func (e *MeshboxError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MeshboxError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *MeshboxError) ExitCode() int {
	return e.Code
}

// New creates a new MeshboxError
func New(code int, message string) *MeshboxError {
	return &MeshboxError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a MeshboxError
func Wrap(code int, message string, cause error) *MeshboxError {
	return &MeshboxError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Constructors, one per failure kind

// InstanceCount returns an error for an unparseable instance expression.
func InstanceCount(expression string) *MeshboxError {
	return New(ExitInstanceCount, fmt.Sprintf(
		"invalid instance expression %q: must be an integer or an instance expression like 2:3, "+
			"which translates to 2 core instances and 3 agent instances", expression))
}

// JavaCall returns an error for a failed java -version invocation.
func JavaCall(cause error) *MeshboxError {
	return Wrap(ExitJava, "failure calling `java -version`", cause)
}

// JavaVersionParse returns an error for unparseable java -version output.
// The raw output is carried in the message for diagnostics.
func JavaVersionParse(rawOutput string) *MeshboxError {
	return New(ExitJava, fmt.Sprintf("unable to parse JVM version from `java -version` output:\n%s", rawOutput))
}

// JavaUnsupportedVendor returns an error for a JVM from an unsupported vendor.
func JavaUnsupportedVendor(vendor string) *MeshboxError {
	return New(ExitJava, fmt.Sprintf("unsupported JVM vendor %q: the Oracle JVM is required", vendor))
}

// JavaUnsupportedVersion returns an error for a JVM below the minimum version.
func JavaUnsupportedVersion(version string) *MeshboxError {
	return New(ExitJava, fmt.Sprintf("unsupported JVM version %s: version 1.8 or newer is required", version))
}

// BindAddressNotFound returns an error when too few addresses were bindable.
// The remediation text contains the alias commands for the missing addresses.
func BindAddressNotFound(remediation string) *MeshboxError {
	return New(ExitBindAddress, fmt.Sprintf(
		"not enough bindable addresses in the configured range\n%s", remediation))
}

// ArtifactUnreachable returns an error for a network-level failure contacting
// the artifact service. Retryable once connectivity is restored.
func ArtifactUnreachable(cause error) *MeshboxError {
	return Wrap(ExitArtifactUnreachable, "the artifact service is unreachable, check your internet connection and retry", cause)
}

// ArtifactNotFound returns an error when the requested version does not exist
// on the artifact service. Not retryable.
func ArtifactNotFound(kind, version string) *MeshboxError {
	return New(ExitArtifactNotFound, fmt.Sprintf("mesh %s version %s does not exist on the artifact service", kind, version))
}

// LaunchFailed returns an error for a failed process spawn.
func LaunchFailed(role string, index int, cause error) *MeshboxError {
	return Wrap(ExitLaunch, fmt.Sprintf("failed to launch %s instance %d", role, index), cause)
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *MeshboxError {
	if cause == nil {
		return New(ExitConfigError, message)
	}
	return Wrap(ExitConfigError, message, cause)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var mbErr *MeshboxError
	if errors.As(err, &mbErr) {
		return mbErr.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}

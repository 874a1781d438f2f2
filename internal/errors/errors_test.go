package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestGetExitCode_KnownKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"instance count", InstanceCount("abc"), ExitInstanceCount},
		{"java call", JavaCall(stderrors.New("exit 1")), ExitJava},
		{"java parse", JavaVersionParse("garbage"), ExitJava},
		{"java vendor", JavaUnsupportedVendor("openjdk"), ExitJava},
		{"java version", JavaUnsupportedVersion("1.7.0"), ExitJava},
		{"bind address", BindAddressNotFound("sudo ifconfig lo0 alias ..."), ExitBindAddress},
		{"artifact unreachable", ArtifactUnreachable(stderrors.New("dial tcp: no route")), ExitArtifactUnreachable},
		{"artifact not found", ArtifactNotFound("core", "2.1.0"), ExitArtifactNotFound},
		{"launch", LaunchFailed("agent", 2, stderrors.New("no such file")), ExitLaunch},
		{"config", ConfigError("missing credentials", nil), ExitConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetExitCode_UnknownError(t *testing.T) {
	if got := GetExitCode(stderrors.New("boom")); got != ExitGeneralError {
		t.Errorf("GetExitCode() = %d, want %d", got, ExitGeneralError)
	}
}

func TestGetExitCode_WrappedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", ArtifactNotFound("agent", "2.0.0"))
	if got := GetExitCode(err); got != ExitArtifactNotFound {
		t.Errorf("GetExitCode() = %d, want %d", got, ExitArtifactNotFound)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := ArtifactUnreachable(cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected wrapped cause to be found with errors.Is")
	}
}

func TestMessages(t *testing.T) {
	err := LaunchFailed("core", 1, stderrors.New("exec format error"))
	if !strings.Contains(err.Error(), "core instance 1") {
		t.Errorf("message %q should name the role and index", err.Error())
	}

	nf := ArtifactNotFound("core", "2.1.0")
	if !strings.Contains(nf.Error(), "2.1.0") {
		t.Errorf("message %q should name the version", nf.Error())
	}
}

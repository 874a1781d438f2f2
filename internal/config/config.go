// Package config holds meshbox defaults and filesystem locations.
package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultAddrRange is the CIDR block scanned for bindable sandbox addresses.
	DefaultAddrRange = "192.168.10.0/24"

	appDirName      = ".meshbox"
	imagesDirName   = "images"
	stateFileName   = "sandbox.yml"
	credentialsName = "credentials.toml"
)

// Paths locates the meshbox working files under the user's home directory.
type Paths struct {
	// Home is the meshbox application directory, ~/.meshbox.
	Home string

	// ImageDir caches downloaded core/agent archives and their extractions.
	ImageDir string

	// StateFile records the pids of the running sandbox.
	StateFile string

	// CredentialsFile holds the artifact service credentials (TOML).
	CredentialsFile string
}

// DefaultPaths returns the standard meshbox paths for the current user.
func DefaultPaths() *Paths {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	app := filepath.Join(home, appDirName)
	return &Paths{
		Home:            app,
		ImageDir:        filepath.Join(app, imagesDirName),
		StateFile:       filepath.Join(app, stateFileName),
		CredentialsFile: filepath.Join(app, credentialsName),
	}
}

package artifact

import (
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"

	"github.com/meshworks/meshbox/internal/errors"
	"github.com/meshworks/meshbox/internal/system"
)

// DownloadRealm is the authentication realm of the artifact service.
const DownloadRealm = "Mesh Artifact Realm"

// Credentials authenticate downloads against the artifact service.
type Credentials struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// LoadCredentials reads the artifact service credentials from a TOML file,
// typically ~/.meshbox/credentials.toml:
//
//	username = "jane"
//	password = "s3cret"
func LoadCredentials(filesystem system.FileSystem, path string) (Credentials, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, errors.ConfigError(
				fmt.Sprintf("artifact service credentials not found, create %s with username and password entries", path), nil)
		}
		return Credentials{}, errors.ConfigError(fmt.Sprintf("unable to read credentials file %s", path), err)
	}

	var creds Credentials
	if err := toml.Unmarshal(data, &creds); err != nil {
		return Credentials{}, errors.ConfigError(fmt.Sprintf("malformed credentials file %s", path), err)
	}

	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, errors.ConfigError(
			fmt.Sprintf("credentials file %s must set both username and password", path), nil)
	}

	return creds, nil
}

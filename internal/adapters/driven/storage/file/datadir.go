package file

import (
	"os"
	"path/filepath"
)

// DefaultDataDirName is the directory under the user home where
// sitechat keeps its state.
const DefaultDataDirName = ".sitechat"

// resolveDataDir expands an empty dir to ~/.sitechat and ensures it
// exists with owner-only permissions.
func resolveDataDir(dataDir string) (string, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, DefaultDataDirName)
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", err
	}
	return dataDir, nil
}

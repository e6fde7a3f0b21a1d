package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the per-project config file looked up in the project root.
const ConfigFileName = ".koharu.toml"

// Paths are the locations koharu starts from, before any config is read.
type Paths struct {
	ProjectRoot string
	ConfigPath  string
	Home        string
}

// ResolvePaths returns the default locations, checking environment variables first:
//   - KOHARU_PROJECT_ROOT: the site checkout (default: working directory)
//   - KOHARU_CONFIG_PATH: config file (default: <project root>/.koharu.toml)
//   - KOHARU_HOME: history, logs and keys (default: ~/.local/share/koharu)
func ResolvePaths() (Paths, error) {
	root, err := projectRoot()
	if err != nil {
		return Paths{}, err
	}

	home, err := homeDir()
	if err != nil {
		return Paths{}, err
	}

	configPath := os.Getenv("KOHARU_CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join(root, ConfigFileName)
	}

	return Paths{ProjectRoot: root, ConfigPath: configPath, Home: home}, nil
}

func projectRoot() (string, error) {
	root := os.Getenv("KOHARU_PROJECT_ROOT")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("cannot determine working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving KOHARU_PROJECT_ROOT: %w", err)
	}
	return abs, nil
}

func homeDir() (string, error) {
	if path := os.Getenv("KOHARU_HOME"); path != "" {
		return path, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(userHome, ".local", "share", "koharu"), nil
}

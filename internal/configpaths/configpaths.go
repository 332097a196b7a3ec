// Package configpaths resolves the candidate configuration file locations
// searched at startup.
package configpaths

import (
	"os"
	"path/filepath"
)

const appDir = "padlink"

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDir), nil
}

// ConfigCandidatePaths returns the configuration files to try, grouped by
// format, lowest priority first. An explicit user path (from --config or the
// environment) is appended last in every group so it wins.
func ConfigCandidatePaths(userConfig string) (jsonPaths, yamlPaths, tomlPaths []string) {
	var dirs []string
	if d, err := DefaultConfigDir(); err == nil {
		dirs = append(dirs, d)
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	for _, d := range dirs {
		jsonPaths = append(jsonPaths, filepath.Join(d, "config.json"))
		yamlPaths = append(yamlPaths,
			filepath.Join(d, "config.yaml"),
			filepath.Join(d, "config.yml"))
		tomlPaths = append(tomlPaths, filepath.Join(d, "config.toml"))
	}
	if userConfig != "" {
		switch filepath.Ext(userConfig) {
		case ".json":
			jsonPaths = append(jsonPaths, userConfig)
		case ".toml":
			tomlPaths = append(tomlPaths, userConfig)
		default:
			yamlPaths = append(yamlPaths, userConfig)
		}
	}
	return jsonPaths, yamlPaths, tomlPaths
}

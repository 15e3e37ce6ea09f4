package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns where dms keeps its files. Lookup order, first hit wins:
//
//	config_path: $DMS_CONFIG_PATH, $XDG_CONFIG_HOME/dms.toml, ~/.config/dms.toml
//	base_dir:    $DMS_HOME, $XDG_DATA_HOME/dms, ~/.local/share/dms
//
// log_dir, session_path and export_dir live under base_dir.
func GetDefaults() (map[string]string, error) {
	configPath, err := lookupPath("DMS_CONFIG_PATH", "XDG_CONFIG_HOME", "dms.toml", ".config")
	if err != nil {
		return nil, err
	}
	baseDir, err := lookupPath("DMS_HOME", "XDG_DATA_HOME", "dms", ".local", "share")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path":  configPath,
		"base_dir":     baseDir,
		"log_dir":      filepath.Join(baseDir, "log"),
		"session_path": filepath.Join(baseDir, "session", "token"),
		"export_dir":   filepath.Join(baseDir, "export"),
	}, nil
}

// lookupPath returns $override, else $xdgVar/name, else ~/<homeParts...>/name.
func lookupPath(override, xdgVar, name string, homeParts ...string) (string, error) {
	if p := os.Getenv(override); p != "" {
		return p, nil
	}
	if dir := os.Getenv(xdgVar); dir != "" && filepath.IsAbs(dir) {
		return filepath.Join(dir, name), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append(append([]string{home}, homeParts...), name)...), nil
}

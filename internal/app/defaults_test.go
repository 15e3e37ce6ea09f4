package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		name       string
		env        map[string]string
		wantConfig string
		wantBase   string
	}{
		{
			name:       "dms overrides win",
			env:        map[string]string{"DMS_CONFIG_PATH": "/custom/config.toml", "DMS_HOME": "/custom/dms", "XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			wantConfig: "/custom/config.toml",
			wantBase:   "/custom/dms",
		},
		{
			name:       "xdg directories",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			wantConfig: "/xdg/config/dms.toml",
			wantBase:   "/xdg/data/dms",
		},
		{
			name:       "relative xdg paths are ignored",
			env:        map[string]string{"XDG_CONFIG_HOME": "rel/config", "XDG_DATA_HOME": "rel/data"},
			wantConfig: filepath.Join(home, ".config", "dms.toml"),
			wantBase:   filepath.Join(home, ".local", "share", "dms"),
		},
		{
			name:       "home directory fallback",
			wantConfig: filepath.Join(home, ".config", "dms.toml"),
			wantBase:   filepath.Join(home, ".local", "share", "dms"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"DMS_CONFIG_PATH", "DMS_HOME", "XDG_CONFIG_HOME", "XDG_DATA_HOME"} {
				t.Setenv(k, tt.env[k])
			}

			defaults, err := GetDefaults()
			if err != nil {
				t.Fatalf("GetDefaults() error = %v", err)
			}

			want := map[string]string{
				"config_path":  tt.wantConfig,
				"base_dir":     tt.wantBase,
				"log_dir":      filepath.Join(tt.wantBase, "log"),
				"session_path": filepath.Join(tt.wantBase, "session", "token"),
				"export_dir":   filepath.Join(tt.wantBase, "export"),
			}
			for k, v := range want {
				if defaults[k] != v {
					t.Errorf("%s = %q, want %q", k, defaults[k], v)
				}
			}
		})
	}
}

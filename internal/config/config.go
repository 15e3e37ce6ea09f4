package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultServerURL is the backend a fresh config points at.
const DefaultServerURL = "http://localhost:8080/api"

// Config represents the main configuration for dms.
type Config struct {
	ServerURL string          `toml:"server_url"`
	BaseDir   string          `toml:"base_dir"`
	LogDir    string          `toml:"log_dir"`
	LogLevel  string          `toml:"log_level"` // "debug", "info", "warn" or "error"
	HTTP      HTTPConfig      `toml:"http"`
	Session   SessionConfig   `toml:"session"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Vaults    []VaultConfig   `toml:"vaults"`
}

// HTTPConfig tunes the API client's transport.
type HTTPConfig struct {
	TimeoutSeconds int     `toml:"timeout_seconds"` // wait for response headers; 0 disables
	RateLimit      float64 `toml:"rate_limit"`      // requests per second; 0 disables
	Burst          int     `toml:"burst"`
	UserAgent      string  `toml:"user_agent,omitempty"`
}

// SessionConfig selects where the bearer token is kept between runs.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type SessionConfig struct {
	Type    string `toml:"type"`               // "memory", "file", "age" or "sqlite"
	Path    string `toml:"path,omitempty"`     // token file; only used for type=file and type=age
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// TelemetryConfig controls tracing and the metrics textfile.
type TelemetryConfig struct {
	Tracing         bool   `toml:"tracing"`
	ServiceName     string `toml:"service_name,omitempty"`
	MetricsTextfile string `toml:"metrics_textfile,omitempty"` // written on exit when set
}

// VaultConfig represents configuration for an export vault.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", "s3" or "minio"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"` // S3-compatible services; enables path-style addressing
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`

	// MinIO-specific fields (only used when Type == "minio")
	MinIOEndpoint  string `toml:"minio_endpoint,omitempty"`
	MinIOBucket    string `toml:"minio_bucket,omitempty"`
	MinIOAccessKey string `toml:"minio_access_key,omitempty"`
	MinIOSecretKey string `toml:"minio_secret_key,omitempty"`
	MinIOUseSSL    bool   `toml:"minio_use_ssl,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// NewConfig creates a Config with defaults rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		ServerURL: DefaultServerURL,
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		LogLevel:  "info",
		HTTP: HTTPConfig{
			TimeoutSeconds: 30,
			Burst:          1,
		},
		Session: SessionConfig{
			Type: "file",
			Path: filepath.Join(baseDir, "session", "token"),
		},
		Telemetry: TelemetryConfig{
			ServiceName: "dms-cli",
		},
		Vaults: []VaultConfig{
			{
				Type:        "filesystem",
				Name:        "local",
				FSVaultRoot: filepath.Join(baseDir, "export"),
			},
		},
	}
}

// Vault returns the vault config with the given name. An empty name
// selects the first configured vault.
func (c *Config) Vault(name string) (VaultConfig, error) {
	if len(c.Vaults) == 0 {
		return VaultConfig{}, errors.New("no vaults configured")
	}
	if name == "" {
		return c.Vaults[0], nil
	}
	for _, v := range c.Vaults {
		if v.Name == name {
			return v, nil
		}
	}
	return VaultConfig{}, fmt.Errorf("no vault named %q", name)
}

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides file values with DMS_SERVER_URL, DMS_LOG_LEVEL and
// DMS_SESSION_TYPE when they are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DMS_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("DMS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DMS_SESSION_TYPE"); v != "" {
		c.Session.Type = v
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes cfg with owner-only permissions since it may hold
// storage credentials.
func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

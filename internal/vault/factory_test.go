package vault

import (
	"context"
	"path/filepath"
	"testing"

	"dms-go/internal/config"
)

func TestNewVaultFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.VaultConfig
		wantErr bool
	}{
		{
			name: "memory vault",
			cfg:  config.VaultConfig{Type: "memory", Name: "test-memory"},
		},
		{
			name: "filesystem vault",
			cfg: config.VaultConfig{
				Type:        "filesystem",
				Name:        "test-fs",
				FSVaultRoot: filepath.Join(t.TempDir(), "export"),
			},
		},
		{
			name:    "filesystem vault without root",
			cfg:     config.VaultConfig{Type: "filesystem", Name: "test-fs"},
			wantErr: true,
		},
		{
			name:    "s3 vault without bucket",
			cfg:     config.VaultConfig{Type: "s3", Name: "test-s3"},
			wantErr: true,
		},
		{
			name:    "minio vault without endpoint",
			cfg:     config.VaultConfig{Type: "minio", Name: "test-minio", MinIOBucket: "docs"},
			wantErr: true,
		},
		{
			name:    "minio vault without bucket",
			cfg:     config.VaultConfig{Type: "minio", Name: "test-minio", MinIOEndpoint: "localhost:9000"},
			wantErr: true,
		},
		{
			name:    "unknown vault type",
			cfg:     config.VaultConfig{Type: "unknown", Name: "test-unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewVaultFromConfig(context.Background(), tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Fatalf("NewVaultFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && got != nil {
				t.Errorf("NewVaultFromConfig() = %v, want nil on error", got)
			}
			if !tt.wantErr && got == nil {
				t.Error("NewVaultFromConfig() returned nil vault")
			}
		})
	}
}

func TestNewMinIOVault_RequiresCredentials(t *testing.T) {
	t.Setenv("MINIO_ACCESS_KEY", "")
	t.Setenv("MINIO_SECRET_KEY", "")

	_, err := NewMinIOVault(context.Background(), config.VaultConfig{
		Type:          "minio",
		Name:          "lab",
		MinIOEndpoint: "localhost:9000",
		MinIOBucket:   "docs",
	})
	if err == nil {
		t.Error("NewMinIOVault() expected error without credentials")
	}
}

func TestS3Vault_ObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{prefix: "", key: "documents/1/2-a.txt", want: "documents/1/2-a.txt"},
		{prefix: "dms", key: "documents/1/2-a.txt", want: "dms/documents/1/2-a.txt"},
		{prefix: "dms/", key: "documents/1/2-a.txt", want: "dms/documents/1/2-a.txt"},
	}

	for _, tt := range tests {
		v := &S3Vault{prefix: tt.prefix}
		if got := v.objectKey(tt.key); got != tt.want {
			t.Errorf("objectKey(%q) with prefix %q = %q, want %q", tt.key, tt.prefix, got, tt.want)
		}
	}
}

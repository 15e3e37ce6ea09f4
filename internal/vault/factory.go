package vault

import (
	"context"
	"fmt"

	"dms-go/internal/config"
	"dms-go/internal/dms"
)

// NewVaultFromConfig creates a Vault implementation based on the vault config type.
func NewVaultFromConfig(ctx context.Context, cfg config.VaultConfig) (dms.Vault, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryVault(cfg.Name), nil
	case "filesystem":
		if cfg.FSVaultRoot == "" {
			return nil, fmt.Errorf("filesystem vault requires fs_vault_root to be set")
		}
		return NewFileSystemVault(cfg.Name, cfg.FSVaultRoot)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 vault requires s3_bucket to be set")
		}
		return NewS3Vault(ctx, cfg)
	case "minio":
		if cfg.MinIOEndpoint == "" {
			return nil, fmt.Errorf("minio vault requires minio_endpoint to be set")
		}
		if cfg.MinIOBucket == "" {
			return nil, fmt.Errorf("minio vault requires minio_bucket to be set")
		}
		return NewMinIOVault(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown vault type: %s", cfg.Type)
	}
}

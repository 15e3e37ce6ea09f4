package vault

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"dms-go/internal/config"
	"dms-go/internal/dms"
)

// MinIOVault stores exported objects in a MinIO (or other S3-compatible)
// bucket, creating the bucket on first use.
type MinIOVault struct {
	name   string
	bucket string
	client *minio.Client
}

// NewMinIOVault connects to cfg.MinIOEndpoint. Credentials missing from the
// config are read from MINIO_ACCESS_KEY and MINIO_SECRET_KEY.
func NewMinIOVault(ctx context.Context, cfg config.VaultConfig) (*MinIOVault, error) {
	accessKey := firstNonEmpty(cfg.MinIOAccessKey, os.Getenv("MINIO_ACCESS_KEY"))
	secretKey := firstNonEmpty(cfg.MinIOSecretKey, os.Getenv("MINIO_SECRET_KEY"))
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("minio vault %q requires credentials", cfg.Name)
	}

	cli, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	v := &MinIOVault{name: cfg.Name, bucket: cfg.MinIOBucket, client: cli}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return v, nil
}

// Put uploads exactly size bytes. Any surplus in r counts as a size mismatch.
func (v *MinIOVault) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	cr := &countingReader{r: r}
	info, err := v.client.PutObject(ctx, v.bucket, key, cr, size, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}

	if n, err := cr.drain(); err != nil || n != size || info.Size != size {
		if rerr := v.client.RemoveObject(ctx, v.bucket, key, minio.RemoveObjectOptions{}); rerr != nil {
			return fmt.Errorf("removing mismatched object %s: %w", key, rerr)
		}
		if err != nil {
			return fmt.Errorf("failed to read object: %w", err)
		}
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, n)
	}
	return nil
}

func (v *MinIOVault) Get(ctx context.Context, key string, w io.Writer) error {
	obj, err := v.client.GetObject(ctx, v.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("getting %s: %w", key, err)
	}
	defer obj.Close()

	if _, err := io.Copy(w, obj); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return fmt.Errorf("object not found: %s", key)
		}
		return fmt.Errorf("reading %s: %w", key, err)
	}
	return nil
}

func (v *MinIOVault) Exists(ctx context.Context, key string) (bool, error) {
	_, err := v.client.StatObject(ctx, v.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", key, err)
	}
	return true, nil
}

func (v *MinIOVault) ValidateSetup(ctx context.Context) error {
	ok, err := v.client.BucketExists(ctx, v.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", v.bucket, err)
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", v.bucket)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

var _ dms.Vault = (*MinIOVault)(nil)

package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"engagehub/pkg/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("storage",
	fx.Provide(registerClient, NewBucket),
)

func registerClient(c *config.Config) *minio.Client {
	client, err := minio.New(c.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Minio.AccessKey, c.Minio.SecretKey, ""),
		Secure: c.Minio.Secure,
	})
	if err != nil {
		zap.L().Fatal("failed to create MinIO client", zap.Error(err))
	}

	exists, errBucketExists := client.BucketExists(context.Background(), c.Minio.BucketName)
	if errBucketExists != nil {
		zap.L().Warn("failed to check if bucket exists", zap.Error(errBucketExists))
	}
	zap.L().Info("MinIO client initialized", zap.String("endpoint", c.Minio.Endpoint), zap.Bool("bucketExists", exists))
	return client
}

// Bucket uploads submission attachments and hands back their public URLs.
type Bucket struct {
	client *minio.Client
	cfg    *config.Config
}

type BucketParams struct {
	fx.In

	Client *minio.Client
	Config *config.Config
}

func NewBucket(p BucketParams) *Bucket {
	return &Bucket{client: p.Client, cfg: p.Config}
}

// UploadAttachment stores the file under "<campaignID>/<uuid>.<ext>".
func (b *Bucket) UploadAttachment(ctx context.Context, campaignID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	objectName := fmt.Sprintf("%s/%s.%s", campaignID, uuid.NewString(), ext)

	if _, err := b.client.PutObject(ctx, b.cfg.Minio.BucketName, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", err
	}

	scheme := "http"
	if b.cfg.Minio.Secure {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s/%s/%s", scheme, b.cfg.Minio.Endpoint, b.cfg.Minio.BucketName, objectName), nil
}

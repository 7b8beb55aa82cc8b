package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mrogers/photofolio/internal/config"
)

// Minio stores blobs in a MinIO (or any S3-protocol) bucket through the
// native client.
type Minio struct {
	client    *minio.Client
	bucket    string
	endpoint  string
	secure    bool
	publicURL string
}

func NewMinio(cfg *config.Config) (*Minio, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
	}

	return &Minio{
		client:    client,
		bucket:    cfg.MinioBucket,
		endpoint:  cfg.MinioEndpoint,
		secure:    cfg.MinioUseSSL,
		publicURL: strings.TrimSuffix(cfg.MinioPublicURL, "/"),
	}, nil
}

func (m *Minio) Write(key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(context.Background(), m.bucket, key, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (m *Minio) Read(key string) (io.ReadCloser, int64, error) {
	obj, err := m.client.GetObject(context.Background(), m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("get %s: %w", key, err)
	}
	// GetObject is lazy; Stat forces the first request so a missing key
	// fails here instead of on the first read.
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, fmt.Errorf("get %s: %w", key, err)
	}
	return obj, info.Size, nil
}

func (m *Minio) Delete(key string) error {
	return m.client.RemoveObject(context.Background(), m.bucket, key, minio.RemoveObjectOptions{})
}

func (m *Minio) Exists(key string) (bool, error) {
	_, err := m.client.StatObject(context.Background(), m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *Minio) PublicURL(key string) string {
	base := m.publicURL
	if base == "" {
		scheme := "http"
		if m.secure {
			scheme = "https"
		}
		base = scheme + "://" + m.endpoint + "/" + m.bucket
	}
	return base + "/" + key + "?token=" + downloadToken()
}

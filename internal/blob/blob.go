// Package blob abstracts where the watermarked photos live: local disk for
// development, MinIO or S3-compatible object storage for deployments.
package blob

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/mrogers/photofolio/internal/config"
)

// ErrInvalidKey flags keys that climb out of the store's namespace.
var ErrInvalidKey = errors.New("invalid storage key")

// Store is one object-storage backend. Keys are slash-separated paths like
// "landscape/3f2a….jpg". PublicURL returns a shareable URL for a key; the
// remote backends mint a fresh access token per call, so call it once per
// object and persist the result.
type Store interface {
	Write(key string, r io.Reader, size int64, contentType string) error
	Read(key string) (io.ReadCloser, int64, error)
	Delete(key string) error
	Exists(key string) (bool, error)
	PublicURL(key string) string
}

// Open returns the backend selected by cfg.StorageKind.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.StorageKind {
	case "local", "":
		return NewLocal(cfg.UploadDir, cfg.MediaPrefix)
	case "minio":
		return NewMinio(cfg)
	case "s3":
		return NewS3(cfg)
	default:
		return nil, fmt.Errorf("unknown storage kind %q", cfg.StorageKind)
	}
}

// downloadToken mints the random token carried by shareable URLs.
func downloadToken() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

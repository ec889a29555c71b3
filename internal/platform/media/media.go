package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/skydeals/skydeals-api/internal/config"
	"github.com/skydeals/skydeals-api/internal/platform/logger"
)

// ErrUpload wraps media-host failures so the error boundary can classify
// them as upload failures rather than generic internals.
var ErrUpload = errors.New("media upload failed")

// Asset is an in-memory file destined for the media host.
type Asset struct {
	// Folder groups objects by purpose, e.g. "skydeals/images".
	Folder string

	// ContentType is the sniffed MIME type, e.g. "image/png".
	ContentType string

	Data []byte
}

// Uploader stores an asset durably and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, asset Asset) (string, error)
}

// Client is an S3-compatible Uploader backed by MinIO.
type Client struct {
	mc            *minio.Client
	bucket        string
	publicBaseURL string
}

var _ Uploader = (*Client)(nil)

// NewClient creates a media client from application configuration.
func NewClient(cfg config.MediaConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Client{
		mc:            mc,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// EnsureBucket creates the media bucket if it does not exist (idempotent).
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
}

// Upload stores the asset under a fresh key inside its folder and returns
// the durable public URL.
func (c *Client) Upload(ctx context.Context, asset Asset) (string, error) {
	log := logger.FromContext(ctx)

	key := objectKey(asset.Folder, asset.ContentType)
	_, err := c.mc.PutObject(ctx, c.bucket, key,
		bytes.NewReader(asset.Data), int64(len(asset.Data)),
		minio.PutObjectOptions{ContentType: asset.ContentType})
	if err != nil {
		log.Error("media upload failed",
			"error", err,
			"bucket", c.bucket,
			"key", key)
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.bucket, key), nil
}

// objectKey builds "<folder>/<uuid>.<ext>" from the asset's content type.
func objectKey(folder, contentType string) string {
	ext := "bin"
	switch contentType {
	case "image/png":
		ext = "png"
	case "image/jpeg":
		ext = "jpg"
	case "video/mp4":
		ext = "mp4"
	}
	return fmt.Sprintf("%s/%s.%s", strings.Trim(folder, "/"), uuid.New().String(), ext)
}

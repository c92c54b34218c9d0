package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Mirror uploads audio files to an S3 compatible bucket.
type S3Mirror struct {
	client *minio.Client
	bucket string
	host   string
	prefix string
}

type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

func NewS3Mirror(ctx context.Context, opts S3Options) (*S3Mirror, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", opts.Bucket)
	}

	scheme := "http"
	if opts.UseSSL {
		scheme = "https"
	}
	return &S3Mirror{
		client: client,
		bucket: opts.Bucket,
		host:   fmt.Sprintf("%s://%s", scheme, opts.Endpoint),
		prefix: opts.Prefix,
	}, nil
}

// PutObject uploads r under key and returns the object URL.
func (m *S3Mirror) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	objectKey := path.Join(m.prefix, key)
	_, err := m.client.PutObject(ctx, m.bucket, objectKey, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "no-store",
		UserMetadata: map[string]string{"uploaded-at": time.Now().Format(time.RFC3339)},
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", m.host, m.bucket, url.PathEscape(objectKey)), nil
}

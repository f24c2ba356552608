package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"ci-mirrors/core/storage"

	"github.com/minio/minio-go/v7"
)

// Bucket reads and writes mirrored files directly in the object store.
type Bucket struct {
	client storage.Client
	bucket string
}

// NewBucket creates a Writer over bucket.
func NewBucket(client storage.Client, bucket string) *Bucket {
	return &Bucket{client: client, bucket: bucket}
}

// GetText implements Reader.
func (b *Bucket) GetText(ctx context.Context, key string) (string, bool, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer obj.Close()

	// GetObject is lazy, a missing key only shows up on the first read.
	body, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(body), true, nil
}

// Exists implements Reader.
func (b *Bucket) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return true, nil
}

// Put implements Writer. The request carries If-None-Match: * so the store
// rejects it when key exists; the bucket policy may also require the header.
func (b *Bucket) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	opts := minio.PutObjectOptions{ContentType: "application/octet-stream"}
	opts.SetMatchETagExcept("*")

	if _, err := b.client.PutObject(ctx, b.bucket, key, r, size, opts); err != nil {
		if isPreconditionFailed(err) {
			return fmt.Errorf("failed to upload %s: %w", key, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchBucket" {
		return false
	}
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound" || resp.StatusCode == http.StatusNotFound
}

func isPreconditionFailed(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "PreconditionFailed" || resp.StatusCode == http.StatusPreconditionFailed
}

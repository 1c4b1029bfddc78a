package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ErrStorageDisabled means no object store is configured.
var ErrStorageDisabled = errors.New("object storage not configured")

// ImageStore saves uploaded product images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, prefix, filename string, r io.Reader, size int64, contentType string) (string, error)
}

type MinioImageStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinioImageStore(client *minio.Client, bucket string) *MinioImageStore {
	s := &MinioImageStore{client: client, bucket: bucket}
	if client != nil {
		s.baseURL = client.EndpointURL().String()
	}
	return s
}

func (s *MinioImageStore) Upload(ctx context.Context, prefix, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrStorageDisabled
	}
	object := ObjectName(prefix, filename)

	_, err := s.client.PutObject(ctx, s.bucket, object, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	u, err := url.JoinPath(s.baseURL, s.bucket, object)
	if err != nil {
		return "", err
	}
	return u, nil
}

// ObjectName builds a collision-free key that keeps the file extension.
func ObjectName(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(filename)))
	return path.Join(prefix, uuid.NewString()+ext)
}

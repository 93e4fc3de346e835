package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"snipdrop/internal/config"
)

// minioStorage stores file bytes in an S3-compatible bucket (MinIO, AWS S3).
// Safe for concurrent use.
type minioStorage struct {
	client *minio.Client
	bucket string
}

var _ Storage = (*minioStorage)(nil)

// NewMinIO creates an S3-compatible byte storage. It validates connectivity
// and ensures the bucket exists.
func NewMinIO(cfg config.MinIOConfig) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &minioStorage{client: cli, bucket: cfg.Bucket}, nil
}

// objectKey derives a fresh key for an upload: uuid plus the original
// extension, under the files/ prefix.
func objectKey(filename string) string {
	return "files/" + uuid.NewString() + filepath.Ext(filename)
}

func (m *minioStorage) Upload(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (UploadResult, error) {
	key := objectKey(filename)
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return UploadResult{}, err
	}
	return UploadResult{
		URL:      m.objectURL(key),
		Pathname: key,
	}, nil
}

func (m *minioStorage) objectURL(key string) string {
	u := *m.client.EndpointURL()
	u.Path = "/" + m.bucket + "/" + key
	return u.String()
}

func (m *minioStorage) Open(ctx context.Context, ref string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, err
	}
	return obj, ObjectInfo{Size: st.Size, ContentType: st.ContentType}, nil
}

func (m *minioStorage) Delete(ctx context.Context, ref string) error {
	return m.client.RemoveObject(ctx, m.bucket, ref, minio.RemoveObjectOptions{})
}

// PresignPut issues the client-to-store handshake: a presigned PUT bound to
// one fresh key. The server never sees the bytes; the client records the
// metadata afterwards through the normal catalog create.
func (m *minioStorage) PresignPut(ctx context.Context, filename string, expiry time.Duration) (UploadResult, error) {
	key := objectKey(filename)
	u, err := m.client.PresignedPutObject(ctx, m.bucket, key, expiry)
	if err != nil {
		return UploadResult{}, err
	}
	return UploadResult{URL: u.String(), Pathname: key}, nil
}

func (m *minioStorage) Remote() bool { return true }

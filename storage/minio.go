package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"mediagate/config"
	"mediagate/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	// ErrNotFound means the requested key does not exist in the bucket.
	ErrNotFound = errors.New("object not found")
	// ErrStoreUnavailable covers network, credential and bucket failures.
	ErrStoreUnavailable = errors.New("object store unavailable")
)

// Credentials describe an authorized session against the store.
type Credentials struct {
	Endpoint     string
	Bucket       string
	AuthorizedAt time.Time
}

// UploadTarget is where, and under which upload session, objects are written.
type UploadTarget struct {
	Bucket string
	URL    string
	Token  string
}

// ObjectStore is the subset of object storage the services need.
type ObjectStore interface {
	Authorize(ctx context.Context) (Credentials, error)
	UploadTarget(ctx context.Context, bucket string) (UploadTarget, error)
	Upload(ctx context.Context, target UploadTarget, key string, r io.Reader, size int64, contentType string) error
	SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Bucket() string
}

// MinioStore 封装了 MinIO 客户端
type MinioStore struct {
	client *minio.Client
	bucket string
	region string
}

var _ ObjectStore = (*MinioStore)(nil)

// NewMinioStore 创建一个新的 MinIO 客户端
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.MinioBucket, region: cfg.MinioRegion}, nil
}

// Bucket returns the configured bucket name.
func (s *MinioStore) Bucket() string { return s.bucket }

// EnsureBucket 检查存储桶是否存在，不存在则创建
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return classify(err)
	}
	if exists {
		logger.Info("[Storage] bucket exists", logger.String("bucket", s.bucket))
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return classify(err)
	}
	logger.Info("[Storage] bucket created", logger.String("bucket", s.bucket))
	return nil
}

// Authorize verifies the credentials can reach the bucket.
func (s *MinioStore) Authorize(ctx context.Context) (Credentials, error) {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return Credentials{}, classify(err)
	}
	if !exists {
		return Credentials{}, fmt.Errorf("%w: bucket %s does not exist", ErrStoreUnavailable, s.bucket)
	}
	return Credentials{
		Endpoint:     s.client.EndpointURL().String(),
		Bucket:       s.bucket,
		AuthorizedAt: time.Now(),
	}, nil
}

// UploadTarget opens an upload session. The token is recorded on every object
// written through the target.
func (s *MinioStore) UploadTarget(ctx context.Context, bucket string) (UploadTarget, error) {
	if bucket == "" {
		bucket = s.bucket
	}
	if err := ctx.Err(); err != nil {
		return UploadTarget{}, err
	}
	return UploadTarget{
		Bucket: bucket,
		URL:    s.client.EndpointURL().JoinPath(bucket).String(),
		Token:  uuid.NewString(),
	}, nil
}

// Upload 上传对象
func (s *MinioStore) Upload(ctx context.Context, target UploadTarget, key string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, target.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"upload-session": target.Token},
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

// SignedURL returns a presigned GET URL valid for ttl. The object must exist.
func (s *MinioStore) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if bucket == "" {
		bucket = s.bucket
	}
	if _, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		return "", classify(err)
	}
	u, err := s.client.PresignedGetObject(ctx, bucket, key, ttl, url.Values{})
	if err != nil {
		return "", classify(err)
	}
	return u.String(), nil
}

// Exists reports whether key is present in the configured bucket.
func (s *MinioStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if err = classify(err); errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// classify maps minio errors onto ErrNotFound / ErrStoreUnavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NotFound":
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket":
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"dronesearch-sim/internal/scan"
)

// objectClient is the part of *minio.Client the store needs.
type objectClient interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioStore uploads frames to an S3 compatible bucket.
type MinioStore struct {
	client objectClient
	bucket string
	prefix string
}

// NewMinioStore connects to endpoint with static credentials.
func NewMinioStore(endpoint, accessKey, secretKey string, secure bool, bucket, prefix string) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return newMinioStore(client, bucket, prefix), nil
}

func newMinioStore(c objectClient, bucket, prefix string) *MinioStore {
	return &MinioStore{client: c, bucket: bucket, prefix: prefix}
}

// Prefix is the key prefix put in front of every object.
func (s *MinioStore) Prefix() string { return s.prefix }

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if ok {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Save implements scan.Store. The returned path is bucket/key.
func (s *MinioStore) Save(ctx context.Context, f scan.Frame) (string, error) {
	key := ObjectName(f)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(f.Image), int64(len(f.Image)), minio.PutObjectOptions{
		ContentType: "image/png",
		UserMetadata: map[string]string{
			"drone":  f.DroneID,
			"target": f.Target.ID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to save capture to S3: %w", err)
	}
	return s.bucket + "/" + key, nil
}

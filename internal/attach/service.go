// Package attach stores decision record attachments in S3-compatible
// object storage. The governance core treats this as an external
// collaborator: metadata lives in Postgres, bytes live in the bucket.
package attach

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type Service struct {
	client *minio.Client
	bucket string
}

// NewService connects to the object store and ensures the bucket exists.
func NewService(ctx context.Context, cfg Config) (*Service, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &Service{client: client, bucket: cfg.Bucket}, nil
}

func objectKey(recordID, attachmentID, fileName string) string {
	return recordID + "/" + attachmentID + "/" + fileName
}

// Put streams an attachment into the bucket.
func (s *Service) Put(ctx context.Context, recordID, attachmentID, fileName, contentType string, size int64, body io.Reader) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectKey(recordID, attachmentID, fileName), body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put attachment: %w", err)
	}
	return nil
}

// PresignedURL returns a short-lived download link for an attachment.
func (s *Service) PresignedURL(ctx context.Context, recordID, attachmentID, fileName string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey(recordID, attachmentID, fileName), 15*time.Minute, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign attachment: %w", err)
	}
	return u.String(), nil
}

// Remove deletes the stored object for an attachment.
func (s *Service) Remove(ctx context.Context, recordID, attachmentID, fileName string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectKey(recordID, attachmentID, fileName), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove attachment: %w", err)
	}
	return nil
}

// Package evidence validates violation photos and stores them in the object
// store, handing back the public URL that gets persisted on the violation.
package evidence

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"trafficwatch/internal/platform/metrics"
	dErrors "trafficwatch/pkg/domain-errors"
	"trafficwatch/pkg/requestcontext"
)

// MaxImageSize is the upload limit in bytes (1 MiB). The HTTP layer checks
// it against the multipart header before buffering the part.
const MaxImageSize = 1_048_576

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// S3API is the slice of the S3 client the service uses. *s3.Client satisfies
// it; tests substitute a fake.
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutBucketPolicy(ctx context.Context, params *s3.PutBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Image is an uploaded file as received from the multipart request.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// Service uploads validated images to a fixed bucket.
type Service struct {
	client        S3API
	bucket        string
	publicBaseURL string
	logger        *slog.Logger
	metrics       *metrics.Metrics

	mu          sync.Mutex
	bucketReady bool
}

func New(client S3API, bucket, publicBaseURL string, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		client:        client,
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
		logger:        logger,
		metrics:       m,
	}
}

// StoreImage validates img, uploads it under an epoch-millis-prefixed key and
// returns the public URL. The first successful call bootstraps the bucket
// (create + public-read policy); later calls skip the check.
func (s *Service) StoreImage(ctx context.Context, img Image) (string, error) {
	if _, ok := allowedTypes[img.ContentType]; !ok {
		return "", dErrors.New(dErrors.CodeUnprocessable, "Picture must be JPEG or PNG")
	}
	if img.Size > MaxImageSize {
		return "", dErrors.New(dErrors.CodeUnprocessable, "Picture size exceeds 1MB")
	}

	if err := s.ensureBucket(ctx); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to upload image")
	}

	key := fmt.Sprintf("%d-%s", requestcontext.Now(ctx).UnixMilli(), img.Filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(img.ContentType),
		Body:        bytes.NewReader(img.Data),
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to upload image")
	}

	s.logger.InfoContext(ctx, "evidence image stored",
		"bucket", s.bucket,
		"key", key,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.EvidenceUploads.Inc()
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key), nil
}

// ensureBucket creates the bucket with a public-read policy the first time the
// process uploads. The in-process flag keeps subsequent calls cheap; the
// existence check keeps the bootstrap idempotent across restarts.
func (s *Service) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bucketReady {
		return nil
	}

	buckets, err := s.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return fmt.Errorf("list buckets: %w", err)
	}
	exists := false
	for _, b := range buckets.Buckets {
		if aws.ToString(b.Name) == s.bucket {
			exists = true
			break
		}
	}

	if !exists {
		if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		if _, err := s.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
			Bucket: aws.String(s.bucket),
			Policy: aws.String(publicReadPolicy(s.bucket)),
		}); err != nil {
			return fmt.Errorf("put bucket policy: %w", err)
		}
		s.logger.InfoContext(ctx, "evidence bucket created", "bucket", s.bucket)
	}

	s.bucketReady = true
	return nil
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": "*",
      "Action": ["s3:GetObject"],
      "Resource": ["arn:aws:s3:::%s/*"]
    }
  ]
}`, bucket)
}

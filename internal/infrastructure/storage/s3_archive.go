// Package storage provides object storage implementations for raw page
// archival.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	ingestionapp "github.com/shopsync/backend/internal/application/ingestion"
	"github.com/shopsync/backend/internal/domain/ingestion"
	infraconfig "github.com/shopsync/backend/internal/infrastructure/config"
)

// Ensure S3PageArchive implements PageArchiver
var _ ingestionapp.PageArchiver = (*S3PageArchive)(nil)

// s3API is the subset of the S3 client used by the archive, extracted so
// tests can substitute a fake.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3PageArchive stores the raw response pages pulled during sync runs in an
// S3-compatible bucket. It works with AWS S3, MinIO and other S3-compatible
// backends.
type S3PageArchive struct {
	client s3API
	bucket string
	logger *zap.Logger
}

// S3PageArchiveOption is a functional option for configuring S3PageArchive
type S3PageArchiveOption func(*S3PageArchive)

// WithLogger sets a custom logger for S3PageArchive
func WithLogger(logger *zap.Logger) S3PageArchiveOption {
	return func(a *S3PageArchive) {
		a.logger = logger
	}
}

// withClient substitutes the S3 client, for tests
func withClient(client s3API) S3PageArchiveOption {
	return func(a *S3PageArchive) {
		a.client = client
	}
}

// NewS3PageArchive creates a new S3PageArchive from configuration. It
// supports any S3-compatible storage backend.
func NewS3PageArchive(cfg *infraconfig.StorageConfig, opts ...S3PageArchiveOption) (*S3PageArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	archive := &S3PageArchive{
		client: client,
		bucket: cfg.Bucket,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(archive)
	}
	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (a *S3PageArchive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("Creating archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		// Another instance may have created it between the check and here.
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// ArchivePage stores one raw response page under a key derived from the
// tenant, run, collection and page number.
func (a *S3PageArchive) ArchivePage(ctx context.Context, tenantID, runID uuid.UUID, kind ingestion.EntityKind, pageNo int, raw []byte) error {
	if len(raw) == 0 {
		return errors.New("raw page payload is empty")
	}

	key := PageKey(tenantID, runID, kind, pageNo)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive page %s: %w", key, err)
	}

	a.logger.Debug("Archived raw page",
		zap.String("key", key),
		zap.Int("bytes", len(raw)))
	return nil
}

// Bucket returns the bucket name
func (a *S3PageArchive) Bucket() string {
	return a.bucket
}

// PageKey builds the object key for one archived page
func PageKey(tenantID, runID uuid.UUID, kind ingestion.EntityKind, pageNo int) string {
	return fmt.Sprintf("sync/%s/%s/%s/page-%04d.json", tenantID, runID, kind, pageNo)
}

package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/ingestion"
	"github.com/shopsync/backend/internal/infrastructure/config"
)

type fakeS3 struct {
	objects     map[string][]byte
	putErr      error
	headErr     error
	createErr   error
	createCalls int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	payload, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*params.Key] = payload
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(_ context.Context, _ *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &s3.CreateBucketOutput{}, nil
}

func newTestArchive(t *testing.T, client s3API) *S3PageArchive {
	t.Helper()
	archive, err := NewS3PageArchive(&config.StorageConfig{
		Bucket:          "shopsync-raw",
		Region:          "us-east-1",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
	}, WithLogger(zap.NewNop()), withClient(client))
	require.NoError(t, err)
	return archive
}

func TestNewS3PageArchive_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3PageArchive(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3PageArchive(&config.StorageConfig{
			AccessKeyID:     "k",
			SecretAccessKey: "s",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		_, err := NewS3PageArchive(&config.StorageConfig{
			Bucket:          "b",
			SecretAccessKey: "s",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		_, err := NewS3PageArchive(&config.StorageConfig{
			Bucket:      "b",
			AccessKeyID: "k",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config creates archive", func(t *testing.T) {
		archive, err := NewS3PageArchive(&config.StorageConfig{
			Bucket:          "shopsync-raw",
			Endpoint:        "localhost:9000",
			AccessKeyID:     "k",
			SecretAccessKey: "s",
			UsePathStyle:    true,
		})
		require.NoError(t, err)
		assert.Equal(t, "shopsync-raw", archive.Bucket())
	})
}

func TestS3PageArchive_ArchivePage(t *testing.T) {
	client := newFakeS3()
	archive := newTestArchive(t, client)

	tenantID := uuid.New()
	runID := uuid.New()
	payload := []byte(`{"orders":[{"id":1}]}`)

	err := archive.ArchivePage(context.Background(), tenantID, runID, ingestion.EntityOrders, 3, payload)
	require.NoError(t, err)

	key := PageKey(tenantID, runID, ingestion.EntityOrders, 3)
	assert.Equal(t, payload, client.objects[key])
}

func TestS3PageArchive_ArchivePage_EmptyPayload(t *testing.T) {
	archive := newTestArchive(t, newFakeS3())
	err := archive.ArchivePage(context.Background(), uuid.New(), uuid.New(), ingestion.EntityCustomers, 1, nil)
	assert.Error(t, err)
}

func TestS3PageArchive_ArchivePage_UploadFailure(t *testing.T) {
	client := newFakeS3()
	client.putErr = errors.New("access denied")
	archive := newTestArchive(t, client)

	err := archive.ArchivePage(context.Background(), uuid.New(), uuid.New(), ingestion.EntityProducts, 1, []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to archive page")
}

func TestS3PageArchive_EnsureBucket(t *testing.T) {
	t.Run("bucket exists", func(t *testing.T) {
		client := newFakeS3()
		archive := newTestArchive(t, client)
		require.NoError(t, archive.EnsureBucket(context.Background()))
		assert.Zero(t, client.createCalls)
	})

	t.Run("bucket missing is created", func(t *testing.T) {
		client := newFakeS3()
		client.headErr = &types.NotFound{}
		archive := newTestArchive(t, client)
		require.NoError(t, archive.EnsureBucket(context.Background()))
		assert.Equal(t, 1, client.createCalls)
	})

	t.Run("race on create is tolerated", func(t *testing.T) {
		client := newFakeS3()
		client.headErr = &types.NotFound{}
		client.createErr = &types.BucketAlreadyOwnedByYou{}
		archive := newTestArchive(t, client)
		require.NoError(t, archive.EnsureBucket(context.Background()))
	})

	t.Run("other head error surfaces", func(t *testing.T) {
		client := newFakeS3()
		client.headErr = errors.New("network unreachable")
		archive := newTestArchive(t, client)
		assert.Error(t, archive.EnsureBucket(context.Background()))
	})
}

func TestPageKey(t *testing.T) {
	tenantID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	runID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	key := PageKey(tenantID, runID, ingestion.EntityCustomers, 12)
	assert.Equal(t,
		"sync/11111111-1111-1111-1111-111111111111/22222222-2222-2222-2222-222222222222/customers/page-0012.json",
		key)
}

package testutil

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	localStackImage  = "localstack/localstack:3.8"
	localStackRegion = "us-east-1"
)

// LocalStack is a running LocalStack container with an SDK client used to
// seed and inspect buckets behind the code under test.
type LocalStack struct {
	Endpoint string
	Region   string
	S3       *s3.Client
}

// StartLocalStack starts LocalStack and terminates it when t ends. The test
// is skipped in -short mode or when no container runtime is reachable.
func StartLocalStack(t *testing.T) *LocalStack {
	t.Helper()
	if testing.Short() {
		t.Skip("LocalStack tests are skipped in short mode")
	}

	ctx := context.Background()
	container, err := localstack.Run(ctx, localStackImage,
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_localstack/health").
				WithPort("4566").
				WithStartupTimeout(2*time.Minute),
		),
	)
	if err != nil {
		t.Skipf("LocalStack unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate LocalStack: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, "4566/tcp", "http")
	if err != nil {
		t.Fatalf("LocalStack endpoint: %v", err)
	}

	return &LocalStack{
		Endpoint: endpoint,
		Region:   localStackRegion,
		S3: s3.New(s3.Options{
			Region:       localStackRegion,
			BaseEndpoint: aws.String(endpoint),
			UsePathStyle: true,
			Credentials:  credentials.NewStaticCredentialsProvider("test", "test", ""),
		}),
	}
}

// CreateBucket creates bucket and removes it, objects included, when t ends.
func (ls *LocalStack) CreateBucket(t *testing.T, bucket string) {
	t.Helper()
	if _, err := ls.S3.CreateBucket(context.Background(), &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		t.Fatalf("create bucket %s: %v", bucket, err)
	}
	ls.RemoveOnCleanup(t, bucket)
}

// RemoveOnCleanup deletes bucket and its objects when t ends. Use it for
// buckets the code under test creates.
func (ls *LocalStack) RemoveOnCleanup(t *testing.T, bucket string) {
	t.Helper()
	t.Cleanup(func() {
		if err := ls.removeBucket(context.Background(), bucket); err != nil {
			t.Logf("remove bucket %s: %v", bucket, err)
		}
	})
}

// PutObject seeds bucket/key with body.
func (ls *LocalStack) PutObject(t *testing.T, bucket, key string, body []byte) {
	t.Helper()
	_, err := ls.S3.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		t.Fatalf("put %s/%s: %v", bucket, key, err)
	}
}

func (ls *LocalStack) removeBucket(ctx context.Context, bucket string) error {
	pages := s3.NewListObjectsV2Paginator(ls.S3, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return err
		}
		if len(page.Contents) == 0 {
			continue
		}

		ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}
		if _, err := ls.S3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: ids},
		}); err != nil {
			return err
		}
	}

	_, err := ls.S3.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)})
	return err
}

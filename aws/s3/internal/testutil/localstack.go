package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/wait"
)

const localStackPort nat.Port = "4566/tcp"

// LocalStack is a running LocalStack container holding one test bucket.
type LocalStack struct {
	// Endpoint is the http URL of the edge port.
	Endpoint string

	// Bucket is the bucket created for the test.
	Bucket string

	// SDK is an aws-sdk-go-v2 client for cross-checking requests.
	SDK *s3.Client
}

// StartLocalStack starts LocalStack, creates bucket and registers cleanup
// with t. The test is skipped in short mode.
func StartLocalStack(t *testing.T, bucket string) *LocalStack {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := localstack.Run(ctx,
		"localstack/localstack:latest",
		testcontainers.WithEnv(map[string]string{"SERVICES": "s3"}),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_localstack/health").
				WithPort(localStackPort).
				WithStartupTimeout(2*time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start LocalStack: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate LocalStack: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, localStackPort, "http")
	if err != nil {
		t.Fatalf("Failed to resolve LocalStack endpoint: %v", err)
	}

	sdk, err := newSDKClient(ctx, endpoint)
	if err != nil {
		t.Fatalf("Failed to create SDK client: %v", err)
	}

	if _, err := sdk.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		t.Fatalf("Failed to create bucket %s: %v", bucket, err)
	}
	t.Cleanup(func() {
		if err := emptyBucket(context.Background(), sdk, bucket); err != nil {
			t.Logf("Failed to empty bucket %s: %v", bucket, err)
		}
	})

	return &LocalStack{Endpoint: endpoint, Bucket: bucket, SDK: sdk}
}

func newSDKClient(ctx context.Context, endpoint string) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(TestRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(TestAccessKey, TestSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}

// emptyBucket deletes every object in bucket. The bucket itself goes away
// with the container.
func emptyBucket(ctx context.Context, sdk *s3.Client, bucket string) error {
	pages := s3.NewListObjectsV2Paginator(sdk, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list objects: %w", err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}
		if _, err := sdk.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		}); err != nil {
			return fmt.Errorf("delete objects: %w", err)
		}
	}
	return nil
}

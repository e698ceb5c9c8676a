package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const minioPort nat.Port = "9000/tcp"

// Minio is a running MinIO server holding one test bucket.
type Minio struct {
	// Endpoint is the http URL of the S3 API.
	Endpoint string

	// Bucket is the bucket created for the test.
	Bucket string

	// Client is a minio-go client for bucket setup and cross-reads.
	Client *minio.Client
}

// StartMinio starts a MinIO server whose root credentials are TestAccessKey
// and TestSecretKey, creates bucket and registers cleanup with t. The test is
// skipped in short mode.
func StartMinio(t *testing.T, bucket string) *Minio {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			Cmd:          []string{"server", "/data"},
			ExposedPorts: []string{string(minioPort)},
			Env: map[string]string{
				"MINIO_ROOT_USER":     TestAccessKey,
				"MINIO_ROOT_PASSWORD": TestSecretKey,
				"MINIO_REGION":        TestRegion,
			},
			WaitingFor: wait.ForHTTP("/minio/health/live").
				WithPort(minioPort).
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MinIO: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate MinIO: %v", err)
		}
	})

	hostPort, err := container.PortEndpoint(ctx, minioPort, "")
	if err != nil {
		t.Fatalf("Failed to resolve MinIO endpoint: %v", err)
	}

	client, err := minio.New(hostPort, &minio.Options{
		Creds:  credentials.NewStaticV4(TestAccessKey, TestSecretKey, ""),
		Region: TestRegion,
	})
	if err != nil {
		t.Fatalf("Failed to create minio client: %v", err)
	}

	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: TestRegion}); err != nil {
		t.Fatalf("Failed to create bucket %s: %v", bucket, err)
	}

	return &Minio{Endpoint: "http://" + hostPort, Bucket: bucket, Client: client}
}

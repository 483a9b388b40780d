//go:build integration

package storage

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/condo/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupMinio(t *testing.T) *S3ObjectStorage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping object storage integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "http")
	require.NoError(t, err)

	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Endpoint:     endpoint,
		Bucket:       "condo-exports",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	require.NoError(t, s.EnsureBucket(ctx))
	require.NoError(t, s.EnsureBucket(ctx), "existing bucket is accepted")
	return s
}

func TestS3ObjectStorage_UploadAndDownload(t *testing.T) {
	s := setupMinio(t)
	ctx := context.Background()
	key := "exports/ledger/2025-01/test.csv"
	body := []byte("entry_id,amount\n1,150000.00\n")

	require.NoError(t, s.Upload(ctx, key, body, "text/csv"))

	exists, err := s.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	link, _, err := s.DownloadURL(ctx, key)
	require.NoError(t, err)
	resp, err := http.Get(link)
	require.NoError(t, err)
	defer resp.Body.Close()
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, body, got)

	require.NoError(t, s.DeleteObject(ctx, key))
	exists, err = s.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

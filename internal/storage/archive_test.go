package storage

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/andresuchdata/supplychain-engine/internal/config"
	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObjects struct {
	objects map[string][]byte
}

func newMemObjects() *memObjects {
	return &memObjects{objects: make(map[string][]byte)}
}

func (m *memObjects) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (m *memObjects) GetObject(ctx context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key %s", key)
	}
	return data, nil
}

func (m *memObjects) UploadObject(ctx context.Context, key string, data []byte) error {
	m.objects[key] = data
	return nil
}

func TestObjectArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	objects := newMemObjects()
	archive := NewObjectArchive(objects, "/weekly/")

	key, err := archive.Archive(ctx, &domain.OptimizationReport{CycleNumber: 7, Scope: "weekly"})
	require.NoError(t, err)
	assert.Equal(t, "weekly/cycle-00000007.json", key)

	loaded, err := archive.Load(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "weekly", loaded.Scope)

	_, err = archive.Load(ctx, 8)
	assert.Error(t, err)
}

func TestObjectArchiveListOrdered(t *testing.T) {
	ctx := context.Background()
	objects := newMemObjects()
	archive := NewObjectArchive(objects, "")

	for _, n := range []uint64{12, 3, 7} {
		_, err := archive.Archive(ctx, &domain.OptimizationReport{CycleNumber: n})
		require.NoError(t, err)
	}
	objects.objects["other/file.json"] = []byte("{}")

	listed, err := archive.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "reports/cycle-00000003.json", listed[0].Key)
	assert.Equal(t, "reports/cycle-00000012.json", listed[2].Key)
}

func TestNewReportArchiveDisabled(t *testing.T) {
	ctx := context.Background()
	archive, err := NewReportArchive(ctx, config.StorageConfig{})
	require.NoError(t, err)

	key, err := archive.Archive(ctx, &domain.OptimizationReport{CycleNumber: 1})
	require.NoError(t, err)
	assert.Empty(t, key)

	listed, err := archive.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestNewMinioClientValidation(t *testing.T) {
	_, err := NewMinioClient(config.StorageConfig{})
	assert.Error(t, err)

	_, err = NewMinioClient(config.StorageConfig{Endpoint: "s3.local:9000"})
	assert.Error(t, err)

	_, err = NewMinioClient(config.StorageConfig{Endpoint: "s3.local:9000", AccessKey: "a", SecretKey: "b"})
	assert.Error(t, err)

	client, err := NewMinioClient(config.StorageConfig{Endpoint: "https://s3.local:9000/", AccessKey: "a", SecretKey: "b", Bucket: "reports"})
	require.NoError(t, err)
	assert.Equal(t, "reports", client.bucket)
}

func TestEndpointHost(t *testing.T) {
	assert.Equal(t, "s3.local:9000", endpointHost("https://s3.local:9000/"))
	assert.Equal(t, "s3.local", endpointHost("http://s3.local"))
	assert.Equal(t, "s3.local", endpointHost("//s3.local"))
}

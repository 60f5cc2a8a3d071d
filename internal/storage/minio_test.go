package storage

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillvault/skillvault-service/internal/config"
)

type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	madeBucket      bool

	objects     map[string][]byte
	contentType string
	putErr      error

	presignedExpiry time.Duration
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}

func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	f.madeBucket = true
	return nil
}

func (f *fakeMinio) PutObject(_ context.Context, _ string, objectName string, data []byte, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[objectName] = data
	f.contentType = contentType
	return nil
}

func (f *fakeMinio) PresignedGetObject(_ context.Context, bucketName, objectName string, expiry time.Duration) (*url.URL, error) {
	f.presignedExpiry = expiry
	return url.Parse("https://minio.local/" + bucketName + "/" + objectName + "?X-Amz-Signature=abc")
}

func TestNewExportStore_Unconfigured(t *testing.T) {
	store, err := NewExportStore(context.Background(), config.StorageConfig{})
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestNewExportStoreWithAPI_CreatesBucket(t *testing.T) {
	api := &fakeMinio{}
	_, err := NewExportStoreWithAPI(context.Background(), api, "exports", 0)
	require.NoError(t, err)
	assert.True(t, api.madeBucket)
}

func TestNewExportStoreWithAPI_BucketError(t *testing.T) {
	api := &fakeMinio{bucketExistsErr: errors.New("boom")}
	store, err := NewExportStoreWithAPI(context.Background(), api, "exports", time.Minute)
	assert.Nil(t, store)
	assert.ErrorContains(t, err, "failed to ensure bucket exists")
}

func TestUpload(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	store, err := NewExportStoreWithAPI(context.Background(), api, "exports", 15*time.Minute)
	require.NoError(t, err)

	link, err := store.Upload(context.Background(), "certificates/c1.xlsx", []byte("data"), "application/octet-stream")
	require.NoError(t, err)
	assert.Contains(t, link, "exports/certificates/c1.xlsx")
	assert.Equal(t, []byte("data"), api.objects["certificates/c1.xlsx"])
	assert.Equal(t, 15*time.Minute, api.presignedExpiry)

	api.putErr = errors.New("denied")
	_, err = store.Upload(context.Background(), "x", nil, "")
	assert.ErrorContains(t, err, "failed to upload object")
}

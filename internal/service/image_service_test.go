package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storegate/internal/apperr"
	"storegate/internal/config"
	"storegate/internal/models"
)

type fakeStore struct {
	objects map[string][]byte
	puts    []string
	deletes []string
	putErr  error
	// putErrAfter fails Put only once n successful writes have happened,
	// which simulates the enhanced write failing after the original landed.
	putErrAfter int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, putErrAfter: -1}
}

func (f *fakeStore) Put(_ context.Context, key string, data []byte, contentType string) (models.StoredObject, error) {
	if f.putErr != nil {
		return models.StoredObject{}, f.putErr
	}
	if f.putErrAfter >= 0 && len(f.puts) >= f.putErrAfter {
		return models.StoredObject{}, apperr.New(apperr.Unavailable, "object store write failed")
	}
	f.puts = append(f.puts, key)
	f.objects[key] = data
	return models.StoredObject{
		Key:         key,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		UploadedAt:  time.Now().UTC(),
		ETag:        "etag",
	}, nil
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "object %s not found", key)
	}
	return data, nil
}

func (f *fakeStore) ListByPrefix(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	delete(f.objects, key)
	return nil
}

type fakeEnhancer struct {
	err    error
	output []byte
	mime   string
}

func (f *fakeEnhancer) ProcessImage(_ context.Context, data []byte, mimeType, _ string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	if f.output != nil {
		return f.output, f.mime, nil
	}
	return append([]byte("enhanced:"), data...), mimeType, nil
}

type fakeCDN struct {
	invalidated chan []string
}

func newFakeCDN() *fakeCDN {
	return &fakeCDN{invalidated: make(chan []string, 4)}
}

func (f *fakeCDN) URLFor(key string) string {
	return "https://cdn.test/" + key
}

func (f *fakeCDN) Invalidate(_ context.Context, keys []string) (string, error) {
	f.invalidated <- keys
	return "INV123", nil
}

func uploadConfig() config.UploadConfig {
	return config.UploadConfig{
		MaxBytes:          10 * 1024 * 1024,
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".webp"},
		AllowedMIMETypes:  []string{"image/jpeg", "image/jpg", "image/png", "image/webp"},
	}
}

func newService(store *fakeStore, enhancer *fakeEnhancer, cdn *fakeCDN) *ImageService {
	return NewImageService(store, enhancer, cdn, uploadConfig(), zerolog.Nop())
}

var u1 = models.Principal{UserID: "u1", Email: "u1@example.com", Role: models.RoleUser}

func jpegInput() IngestInput {
	return IngestInput{
		Data:        bytes.Repeat([]byte{0xff}, 2*1024*1024),
		FileName:    "chair.jpg",
		ContentType: "image/jpeg",
		Subject:     "oak chair",
	}
}

func TestIngestHappyPath(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeEnhancer{}, newFakeCDN())

	outcome, err := svc.Ingest(context.Background(), u1, jpegInput())
	require.NoError(t, err)

	assert.False(t, outcome.Degraded)
	require.NotNil(t, outcome.Enhanced)

	assert.True(t, strings.HasPrefix(outcome.Original.Key, "users/u1/original/"))
	assert.True(t, strings.HasPrefix(outcome.Enhanced.Key, "users/u1/enhanced/"))
	assert.NotEqual(t, outcome.Original.Key, outcome.Enhanced.Key)

	// The two CDN URLs differ only by key.
	assert.Equal(t, "https://cdn.test/"+outcome.Original.Key, outcome.OriginalURL)
	assert.Equal(t, "https://cdn.test/"+outcome.Enhanced.Key, outcome.EnhancedURL)

	assert.Equal(t, models.ObjectKindOriginal, outcome.Original.Kind)
	assert.Equal(t, models.ObjectKindEnhanced, outcome.Enhanced.Kind)
	assert.Len(t, store.puts, 2)
}

func TestIngestOversizedWritesNothing(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeEnhancer{}, newFakeCDN())

	in := jpegInput()
	in.Data = bytes.Repeat([]byte{0xff}, 11*1024*1024)

	_, err := svc.Ingest(context.Background(), u1, in)
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
	assert.Empty(t, store.puts, "validation failure must not reach the store")
}

func TestIngestRejectsExtensionAndMIME(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeEnhancer{}, newFakeCDN())

	in := jpegInput()
	in.FileName = "chair.gif"
	_, err := svc.Ingest(context.Background(), u1, in)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))

	in = jpegInput()
	in.ContentType = "application/pdf"
	_, err = svc.Ingest(context.Background(), u1, in)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))

	in = jpegInput()
	in.Data = nil
	_, err = svc.Ingest(context.Background(), u1, in)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))

	assert.Empty(t, store.puts)
}

func TestIngestOriginalStoreFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	store.putErr = apperr.New(apperr.Unavailable, "object store write failed")
	svc := newService(store, &fakeEnhancer{}, newFakeCDN())

	_, err := svc.Ingest(context.Background(), u1, jpegInput())
	require.Error(t, err)
	assert.Equal(t, apperr.Unavailable, apperr.KindOf(err))
}

func TestIngestEnhancementOutageDegrades(t *testing.T) {
	store := newFakeStore()
	enhancer := &fakeEnhancer{err: apperr.New(apperr.Unavailable, "process image failed")}
	svc := newService(store, enhancer, newFakeCDN())

	outcome, err := svc.Ingest(context.Background(), u1, jpegInput())
	require.NoError(t, err, "enhancement failure must not fail the upload")

	assert.True(t, outcome.Degraded)
	assert.Nil(t, outcome.Enhanced)
	assert.Empty(t, outcome.EnhancedURL)
	assert.NotEmpty(t, outcome.OriginalURL)
	assert.Len(t, store.puts, 1)
}

func TestIngestEnhancedStoreFailureDegrades(t *testing.T) {
	store := newFakeStore()
	store.putErrAfter = 1 // original lands, enhanced write fails
	svc := newService(store, &fakeEnhancer{}, newFakeCDN())

	outcome, err := svc.Ingest(context.Background(), u1, jpegInput())
	require.NoError(t, err)

	assert.True(t, outcome.Degraded)
	assert.Nil(t, outcome.Enhanced)
	assert.Len(t, store.puts, 1)
}

func TestIngestSameNameNeverCollides(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeEnhancer{}, newFakeCDN())

	first, err := svc.Ingest(context.Background(), u1, jpegInput())
	require.NoError(t, err)
	second, err := svc.Ingest(context.Background(), u1, jpegInput())
	require.NoError(t, err)

	assert.NotEqual(t, first.Original.Key, second.Original.Key)
	assert.Len(t, store.puts, 4)
}

func TestListUserImagesScopedToPrincipal(t *testing.T) {
	store := newFakeStore()
	store.objects["users/u1/original/chair_a.jpg"] = []byte("a")
	store.objects["users/u1/enhanced/chair_b.jpg"] = []byte("b")
	store.objects["users/u2/original/lamp_c.jpg"] = []byte("c")
	cdn := newFakeCDN()
	svc := newService(store, &fakeEnhancer{}, cdn)

	entries, err := svc.ListUserImages(context.Background(), u1)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.True(t, strings.HasPrefix(entry.Key, "users/u1/"))
		assert.Equal(t, cdn.URLFor(entry.Key), entry.URL)
	}
}

func TestDeleteUserImage(t *testing.T) {
	store := newFakeStore()
	store.objects["users/u1/original/chair_a.jpg"] = []byte("a")
	cdn := newFakeCDN()
	svc := newService(store, &fakeEnhancer{}, cdn)

	err := svc.DeleteUserImage(context.Background(), u1, "users/u1/original/chair_a.jpg")
	require.NoError(t, err)
	assert.NotContains(t, store.objects, "users/u1/original/chair_a.jpg")

	select {
	case keys := <-cdn.invalidated:
		assert.Equal(t, []string{"users/u1/original/chair_a.jpg"}, keys)
	case <-time.After(time.Second):
		t.Fatal("expected background cdn invalidation")
	}
}

func TestDeleteCrossUserDenied(t *testing.T) {
	store := newFakeStore()
	store.objects["users/u2/original/x.jpg"] = []byte("x")
	svc := newService(store, &fakeEnhancer{}, newFakeCDN())

	err := svc.DeleteUserImage(context.Background(), u1, "users/u2/original/x.jpg")
	require.Error(t, err)

	// PermissionDenied, not NotFound: existence of foreign keys must not leak.
	assert.Equal(t, apperr.PermissionDenied, apperr.KindOf(err))
	assert.Contains(t, store.objects, "users/u2/original/x.jpg")
	assert.Empty(t, store.deletes)
}

func TestDeleteMissingOwnKey(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeEnhancer{}, newFakeCDN())

	// Deleting an absent key inside the caller's own namespace is fine; the
	// store treats delete as idempotent.
	err := svc.DeleteUserImage(context.Background(), u1, "users/u1/original/gone.jpg")
	assert.NoError(t, err)
}

func TestIngestEnhancerSwapsMIME(t *testing.T) {
	store := newFakeStore()
	enhancer := &fakeEnhancer{output: []byte("png-bytes"), mime: "image/png"}
	svc := newService(store, enhancer, newFakeCDN())

	outcome, err := svc.Ingest(context.Background(), u1, jpegInput())
	require.NoError(t, err)
	require.NotNil(t, outcome.Enhanced)
	assert.Equal(t, "image/png", outcome.Enhanced.ContentType)
}

func TestIngestEnhancementUsesStoredOriginal(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeEnhancer{}, newFakeCDN())

	in := jpegInput()
	outcome, err := svc.Ingest(context.Background(), u1, in)
	require.NoError(t, err)

	enhanced := store.objects[outcome.Enhanced.Key]
	assert.Equal(t, append([]byte("enhanced:"), in.Data...), enhanced)
}

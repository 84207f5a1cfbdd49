package service

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"storegate/internal/apperr"
	"storegate/internal/config"
	"storegate/internal/models"
	"storegate/internal/storage"
)

// BlobStore is the slice of the object store the pipeline needs.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (models.StoredObject, error)
	Get(ctx context.Context, key string) ([]byte, error)
	ListByPrefix(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// Enhancer invokes the AI enhancement service.
type Enhancer interface {
	ProcessImage(ctx context.Context, data []byte, mimeType, subject string) ([]byte, string, error)
}

// CDN maps keys to edge URLs and purges cached copies.
type CDN interface {
	URLFor(key string) string
	Invalidate(ctx context.Context, keys []string) (string, error)
}

type IngestInput struct {
	Data        []byte
	FileName    string
	ContentType string
	Subject     string
}

// Outcome is the externally visible result of one ingestion. Degraded is set
// exactly when the enhanced object is absent.
type Outcome struct {
	Original    models.StoredObject  `json:"originalImage"`
	Enhanced    *models.StoredObject `json:"enhancedImage,omitempty"`
	OriginalURL string               `json:"originalUrl"`
	EnhancedURL string               `json:"enhancedUrl,omitempty"`
	Degraded    bool                 `json:"degraded"`
	Message     string               `json:"message"`
}

type ImageEntry struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ImageService drives the upload pipeline: validate, store the original,
// best-effort enhance, store the enhanced copy, assemble CDN URLs. Only
// validation and the original store write can fail a request; everything
// after downgrades the outcome instead.
type ImageService struct {
	store    BlobStore
	enhancer Enhancer
	cdn      CDN
	upload   config.UploadConfig
	log      zerolog.Logger
}

func NewImageService(store BlobStore, enhancer Enhancer, cdn CDN, upload config.UploadConfig, log zerolog.Logger) *ImageService {
	return &ImageService{
		store:    store,
		enhancer: enhancer,
		cdn:      cdn,
		upload:   upload,
		log:      log,
	}
}

func (s *ImageService) Ingest(ctx context.Context, principal models.Principal, in IngestInput) (*Outcome, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	original, err := s.storeOriginal(ctx, principal, in)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Original:    original,
		OriginalURL: original.URL,
		Degraded:    true,
		Message:     "image uploaded; enhancement failed, original is available",
	}

	enhanced, err := s.enhance(ctx, principal, in, original)
	if err != nil {
		// Enhancement is a value-add: the original is already durable, so the
		// request still succeeds.
		s.log.Warn().Err(err).
			Str("user_id", principal.UserID).
			Str("key", original.Key).
			Msg("enhancement degraded")
		return outcome, nil
	}

	outcome.Enhanced = &enhanced
	outcome.EnhancedURL = enhanced.URL
	outcome.Degraded = false
	outcome.Message = "image uploaded and enhanced"
	return outcome, nil
}

// validate runs entirely before any store write; a rejected upload must never
// reach the object store.
func (s *ImageService) validate(in IngestInput) error {
	if len(in.Data) == 0 {
		return apperr.New(apperr.InvalidArgument, "empty file")
	}
	if int64(len(in.Data)) > s.upload.MaxBytes {
		return apperr.Newf(apperr.InvalidArgument, "file exceeds maximum size of %d bytes", s.upload.MaxBytes)
	}

	ext := strings.ToLower(filepath.Ext(in.FileName))
	if !contains(s.upload.AllowedExtensions, ext) {
		return apperr.Newf(apperr.InvalidArgument, "file extension %q not allowed", ext)
	}

	if !contains(s.upload.AllowedMIMETypes, in.ContentType) {
		return apperr.Newf(apperr.InvalidArgument, "content type %q not allowed", in.ContentType)
	}

	return nil
}

func (s *ImageService) storeOriginal(ctx context.Context, principal models.Principal, in IngestInput) (models.StoredObject, error) {
	key := storage.BuildKey(principal.UserID, models.ObjectKindOriginal, in.FileName)

	obj, err := s.store.Put(ctx, key, in.Data, in.ContentType)
	if err != nil {
		return models.StoredObject{}, err
	}

	obj.UserID = principal.UserID
	obj.Kind = models.ObjectKindOriginal
	obj.FileName = in.FileName
	obj.URL = s.cdn.URLFor(obj.Key)
	return obj, nil
}

func (s *ImageService) enhance(ctx context.Context, principal models.Principal, in IngestInput, original models.StoredObject) (models.StoredObject, error) {
	data, err := s.store.Get(ctx, original.Key)
	if err != nil {
		return models.StoredObject{}, err
	}

	processed, mimeType, err := s.enhancer.ProcessImage(ctx, data, original.ContentType, in.Subject)
	if err != nil {
		return models.StoredObject{}, err
	}

	key := storage.BuildKey(principal.UserID, models.ObjectKindEnhanced, in.FileName)
	obj, err := s.store.Put(ctx, key, processed, mimeType)
	if err != nil {
		return models.StoredObject{}, err
	}

	obj.UserID = principal.UserID
	obj.Kind = models.ObjectKindEnhanced
	obj.FileName = in.FileName
	obj.URL = s.cdn.URLFor(obj.Key)
	return obj, nil
}

// ListUserImages lists the principal's own namespace. The prefix is derived
// from the principal, never from client input, so cross-user listing is
// impossible by construction.
func (s *ImageService) ListUserImages(ctx context.Context, principal models.Principal) ([]ImageEntry, error) {
	return s.ListImagesForUser(ctx, principal.UserID)
}

// ListImagesForUser lists an arbitrary user's namespace. Only the admin
// surface may reach this; everything user-facing goes through
// ListUserImages.
func (s *ImageService) ListImagesForUser(ctx context.Context, userID string) ([]ImageEntry, error) {
	keys, err := s.store.ListByPrefix(ctx, storage.UserPrefix(userID))
	if err != nil {
		return nil, err
	}

	entries := make([]ImageEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, ImageEntry{Key: key, URL: s.cdn.URLFor(key)})
	}
	return entries, nil
}

// DeleteUserImage removes one of the principal's objects and fires an edge
// purge in the background. A key outside the caller's namespace is
// PermissionDenied, not NotFound, so other users' keys stay unguessable.
func (s *ImageService) DeleteUserImage(ctx context.Context, principal models.Principal, key string) error {
	if !storage.OwnedBy(principal.UserID, key) {
		s.log.Warn().
			Str("user_id", principal.UserID).
			Str("key", key).
			Msg("cross-namespace delete rejected")
		return apperr.New(apperr.PermissionDenied, "access denied")
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}

	go s.invalidate(key)

	return nil
}

// invalidate purges one key at the edge. Failures are logged only; the object
// is already gone from the origin and the cache expires on its own.
func (s *ImageService) invalidate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.cdn.Invalidate(ctx, []string{key}); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("cdn invalidation failed")
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

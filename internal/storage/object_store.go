package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"storegate/internal/apperr"
	"storegate/internal/config"
	"storegate/internal/models"
)

// Objects are immutable once written, so edges may cache them for a year.
const objectCacheControl = "max-age=31536000"

type ObjectStore struct {
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	log        zerolog.Logger
}

func NewObjectStore(ctx context.Context, cfg config.StorageConfig, log zerolog.Logger) (*ObjectStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			// Custom endpoint for MinIO/LocalStack; path style required there.
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &ObjectStore{
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		bucket:     cfg.Bucket,
		log:        log,
	}, nil
}

// Put writes a blob under key. Callers supply pre-uniquified keys, so a
// repeated key is a caller bug and simply overwrites.
func (s *ObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) (models.StoredObject, error) {
	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
		CacheControl:         aws.String(objectCacheControl),
		Metadata: map[string]string{
			"upload-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("s3 put failed")
		return models.StoredObject{}, apperr.Wrap(apperr.Unavailable, "object store write failed", err)
	}

	s.log.Debug().Str("key", key).Int("size", len(data)).Msg("object stored")

	return models.StoredObject{
		Key:         key,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		UploadedAt:  time.Now().UTC(),
		ETag:        aws.ToString(result.ETag),
	}, nil
}

// Get reads a blob back, typically to feed the enhancement service.
func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer([]byte{})

	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, apperr.Newf(apperr.NotFound, "object %s not found", key)
		}
		s.log.Error().Err(err).Str("key", key).Msg("s3 get failed")
		return nil, apperr.Wrap(apperr.Unavailable, "object store read failed", err)
	}

	return buf.Bytes(), nil
}

// ListByPrefix returns every key under prefix.
func (s *ObjectStore) ListByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			s.log.Error().Err(err).Str("prefix", prefix).Msg("s3 list failed")
			return nil, apperr.Wrap(apperr.Unavailable, "object store list failed", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}

	return keys, nil
}

func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("s3 delete failed")
		return apperr.Wrap(apperr.Unavailable, "object store delete failed", err)
	}

	s.log.Info().Str("key", key).Msg("object deleted")
	return nil
}

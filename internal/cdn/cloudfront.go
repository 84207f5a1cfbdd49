// Package cdn maps object-store keys to publicly cacheable URLs and purges
// edge caches when objects are deleted.
package cdn

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/rs/zerolog"

	"storegate/internal/apperr"
	"storegate/internal/config"
)

type CloudFront struct {
	client         *cloudfront.Client
	distributionID string
	domain         string
	log            zerolog.Logger
}

func New(ctx context.Context, cfg config.CDNConfig, region string, log zerolog.Logger) (*CloudFront, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &CloudFront{
		client:         cloudfront.NewFromConfig(awsCfg),
		distributionID: cfg.DistributionID,
		domain:         cfg.Domain,
		log:            log,
	}, nil
}

// URLFor maps a store key to its distribution URL. Pure; no network call.
func (cf *CloudFront) URLFor(key string) string {
	return fmt.Sprintf("https://%s/%s", cf.domain, strings.TrimPrefix(key, "/"))
}

// Invalidate purges the given keys at the edge and returns the invalidation
// id. Completion is asynchronous on the CloudFront side.
func (cf *CloudFront) Invalidate(ctx context.Context, keys []string) (string, error) {
	paths := make([]string, 0, len(keys))
	for _, key := range keys {
		if !strings.HasPrefix(key, "/") {
			key = "/" + key
		}
		paths = append(paths, key)
	}

	result, err := cf.client.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(cf.distributionID),
		InvalidationBatch: &types.InvalidationBatch{
			CallerReference: aws.String(fmt.Sprintf("storegate-%d", time.Now().UnixNano())),
			Paths: &types.Paths{
				Quantity: aws.Int32(int32(len(paths))),
				Items:    paths,
			},
		},
	})
	if err != nil {
		return "", apperr.Wrap(apperr.Unavailable, "cdn invalidation failed", err)
	}

	id := aws.ToString(result.Invalidation.Id)
	cf.log.Info().Str("invalidation_id", id).Strs("paths", paths).Msg("cdn invalidation created")
	return id, nil
}

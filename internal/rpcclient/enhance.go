package rpcclient

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"storegate/internal/proto/imagepb"
)

// Enhancement runs a generative model, so it gets a longer deadline than the
// auth calls.
const enhanceTimeout = 60 * time.Second

// Enhanced images can exceed the default 4 MiB receive limit.
const maxEnhancedMessageBytes = 32 << 20

type EnhanceClient struct {
	client imagepb.ImageServiceClient
	conn   *grpc.ClientConn
	log    zerolog.Logger
}

func NewEnhanceClient(address string, log zerolog.Logger) (*EnhanceClient, error) {
	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxEnhancedMessageBytes)),
	)
	if err != nil {
		return nil, fmt.Errorf("dial enhancement service %s: %w", address, err)
	}

	log.Info().Str("address", address).Msg("enhancement service channel created")

	return &EnhanceClient{
		client: imagepb.NewImageServiceClient(conn),
		conn:   conn,
		log:    log,
	}, nil
}

func (c *EnhanceClient) Close() error {
	return c.conn.Close()
}

// State reports the channel's connectivity state for health surfaces.
func (c *EnhanceClient) State() string {
	return c.conn.GetState().String()
}

// ProcessImage sends image bytes for AI enhancement and returns the enhanced
// bytes plus their MIME type. The subject hint steers the model toward the
// pictured product.
func (c *EnhanceClient) ProcessImage(ctx context.Context, data []byte, mimeType, subject string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, enhanceTimeout)
	defer cancel()

	resp, err := c.client.ProcessImage(ctx, &imagepb.ProcessImageRequest{
		ImageData:   data,
		MimeType:    mimeType,
		ProductName: subject,
	})
	if err != nil {
		c.log.Error().Err(err).Int("size", len(data)).Msg("process image rpc failed")
		return nil, "", translate("process image", err)
	}

	c.log.Debug().
		Int("input_size", len(data)).
		Int("output_size", len(resp.ProcessedImageData)).
		Str("mime_type", resp.MimeType).
		Msg("image processed")

	return resp.ProcessedImageData, resp.MimeType, nil
}

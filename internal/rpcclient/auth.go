// Package rpcclient wraps the long-lived gRPC channels to the auth and
// enhancement services. Each method applies its own deadline and translates
// failures into the apperr taxonomy; retries are left to callers.
package rpcclient

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"storegate/internal/proto/authpb"
)

const (
	validateTimeout = 10 * time.Second
	authTimeout     = 30 * time.Second
)

type AuthClient struct {
	client authpb.AuthServiceClient
	conn   *grpc.ClientConn
	log    zerolog.Logger
}

func NewAuthClient(address string, log zerolog.Logger) (*AuthClient, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial auth service %s: %w", address, err)
	}

	log.Info().Str("address", address).Msg("auth service channel created")

	return &AuthClient{
		client: authpb.NewAuthServiceClient(conn),
		conn:   conn,
		log:    log,
	}, nil
}

func (c *AuthClient) Close() error {
	return c.conn.Close()
}

// State reports the channel's connectivity state for health surfaces.
func (c *AuthClient) State() string {
	return c.conn.GetState().String()
}

func (c *AuthClient) Register(ctx context.Context, req *authpb.RegisterRequest) (*authpb.AuthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	resp, err := c.client.Register(ctx, req)
	if err != nil {
		c.log.Error().Err(err).Str("email", req.Email).Msg("register rpc failed")
		return nil, translate("register", err)
	}
	return resp, nil
}

func (c *AuthClient) Login(ctx context.Context, req *authpb.LoginRequest) (*authpb.AuthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	resp, err := c.client.Login(ctx, req)
	if err != nil {
		c.log.Error().Err(err).Str("email", req.Email).Msg("login rpc failed")
		return nil, translate("login", err)
	}
	return resp, nil
}

// TokenValidation is the gateway-side view of a validated token.
type TokenValidation struct {
	Valid     bool
	UserID    string
	Email     string
	Role      string
	ExpiresAt int64
	Message   string
}

func (c *AuthClient) ValidateToken(ctx context.Context, token string) (*TokenValidation, error) {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	resp, err := c.client.ValidateToken(ctx, &authpb.ValidateTokenRequest{Token: token})
	if err != nil {
		c.log.Error().Err(err).Msg("validate token rpc failed")
		return nil, translate("validate token", err)
	}

	return &TokenValidation{
		Valid:     resp.Valid,
		UserID:    resp.UserId,
		Email:     resp.Email,
		Role:      resp.Role,
		ExpiresAt: resp.Exp,
		Message:   resp.Message,
	}, nil
}

func (c *AuthClient) RefreshToken(ctx context.Context, refreshToken string) (*authpb.AuthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	resp, err := c.client.RefreshToken(ctx, &authpb.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		c.log.Error().Err(err).Msg("refresh token rpc failed")
		return nil, translate("refresh token", err)
	}
	return resp, nil
}

func (c *AuthClient) GetProfile(ctx context.Context, userID string) (*authpb.UserProfileResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	resp, err := c.client.GetProfile(ctx, &authpb.GetProfileRequest{UserId: userID})
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("get profile rpc failed")
		return nil, translate("get profile", err)
	}
	return resp, nil
}

package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"storegate/internal/apperr"
	"storegate/internal/config"
	"storegate/internal/middleware"
	"storegate/internal/models"
	"storegate/internal/proto/authpb"
	"storegate/internal/rpcclient"
	"storegate/internal/service"
)

// AuthGateway is the auth service surface the handlers depend on. The
// production implementation is rpcclient.AuthClient.
type AuthGateway interface {
	Register(ctx context.Context, req *authpb.RegisterRequest) (*authpb.AuthResponse, error)
	Login(ctx context.Context, req *authpb.LoginRequest) (*authpb.AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*rpcclient.TokenValidation, error)
	RefreshToken(ctx context.Context, refreshToken string) (*authpb.AuthResponse, error)
	GetProfile(ctx context.Context, userID string) (*authpb.UserProfileResponse, error)
	State() string
}

// EnhanceGateway is the slice of the enhancement client the handlers see;
// the pipeline holds the real calling surface.
type EnhanceGateway interface {
	State() string
}

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	images     *service.ImageService
	auth       AuthGateway
	enhance    EnhanceGateway
	rateLimits *redis.Client
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	images *service.ImageService,
	auth AuthGateway,
	enhance EnhanceGateway,
	rateLimits *redis.Client,
) HandlerSet {
	return HandlerSet{
		log:        log,
		cfg:        cfg,
		images:     images,
		auth:       auth,
		enhance:    enhance,
		rateLimits: rateLimits,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	if h.cfg.RateLimit.Enabled {
		v1.Use(middleware.RateLimit(h.rateLimits, h.cfg.RateLimit.RequestsPerMinute, h.log))
	}

	auth := v1.Group("/auth")
	auth.POST("/register", h.RegisterUser)
	auth.POST("/login", h.Login)
	auth.POST("/validate", h.ValidateToken)
	auth.POST("/refresh", h.Refresh)

	authed := v1.Group("/auth")
	authed.Use(middleware.Auth(h.auth))
	authed.GET("/profile", h.Profile)

	images := v1.Group("/images")
	images.Use(middleware.Auth(h.auth))
	images.POST("/upload", h.UploadImage)
	images.GET("/list", h.ListImages)
	images.DELETE("/delete/*imageId", h.DeleteImage)

	admin := v1.Group("/admin")
	admin.Use(
		middleware.Auth(h.auth),
		middleware.RequireRoles(models.RoleAdmin),
	)
	admin.GET("/images/:userId", h.AdminListImages)
}

// respondError renders an error through the gateway taxonomy. Server-side
// kinds get logged with the cause but never echo it to the client.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal || kind == apperr.Unavailable {
		h.log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	c.JSON(kind.HTTPStatus(), gin.H{
		"kind":  kind.String(),
		"error": apperr.SafeMessage(err),
	})
}

package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type ServiceConfig struct {
	Host string
	Port int
}

func (c ServiceConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type ServicesConfig struct {
	Auth    ServiceConfig
	Enhance ServiceConfig
}

type StorageConfig struct {
	Bucket   string
	Region   string
	Endpoint string
}

type CDNConfig struct {
	Domain         string
	DistributionID string
}

type UploadConfig struct {
	MaxBytes          int64
	AllowedExtensions []string
	AllowedMIMETypes  []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Services         ServicesConfig
	Storage          StorageConfig
	CDN              CDNConfig
	Upload           UploadConfig
	Redis            RedisConfig
	RateLimit        RateLimitConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("STOREGATE")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "30s")
	v.SetDefault("http.writetimeout", "30s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("services.auth.host", "auth-service")
	v.SetDefault("services.auth.port", 50051)
	v.SetDefault("services.enhance.host", "image-service")
	v.SetDefault("services.enhance.port", 50061)

	v.SetDefault("storage.bucket", "storegate-images")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")

	v.SetDefault("cdn.domain", "")
	v.SetDefault("cdn.distributionid", "")

	v.SetDefault("upload.maxbytes", 10*1024*1024)
	v.SetDefault("upload.allowedextensions", []string{".jpg", ".jpeg", ".png", ".webp"})
	v.SetDefault("upload.allowedmimetypes", []string{"image/jpeg", "image/jpg", "image/png", "image/webp"})

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.enabled", false)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requestsperminute", 120)
}

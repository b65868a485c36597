package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/campusradio/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	secret           = configVar[string]{"SERVER_SECRET", "secret", "", "Secret used to sign admin tokens"}
	host             = configVar[string]{"SERVER_HOST", "host", "0.0.0.0", "Server host"}
	port             = configVar[int]{"SERVER_PORT", "port", 80, "Server port"}
	logLevel         = configVar[string]{"SERVER_LOG_LEVEL", "log-level", "INFO", "Logging level"}
	defaultStreamURL = configVar[string]{"SERVER_DEFAULT_STREAM_URL", "default-stream-url", "", "Stream url used when none is configured"}
	defaultTitle     = configVar[string]{"SERVER_DEFAULT_TITLE", "default-title", "Campus Radio", "Player title used when none is configured"}
	loadingTimeout   = configVar[time.Duration]{"SERVER_LOADING_TIMEOUT", "loading-timeout", 5 * time.Second, "How long radio may stay loading before it is reset"}
	sessionTTL       = configVar[time.Duration]{"SERVER_SESSION_TTL", "session-ttl", 24 * time.Hour, "Expiry of idle session state"}
	configCacheTTL   = configVar[time.Duration]{"SERVER_CONFIG_CACHE_TTL", "config-cache-ttl", time.Minute, "Expiry of cached station settings"}
	tokenTTL         = configVar[time.Duration]{"SERVER_TOKEN_TTL", "token-ttl", 12 * time.Hour, "Lifetime of admin tokens"}
	seedPath         = configVar[string]{"SERVER_SEED_PATH", "seed-path", "", "YAML file applied to the database on startup"}

	redisHost     = configVar[string]{"REDIS_HOST", "redis-host", "localhost", "Redis host"}
	redisPort     = configVar[int]{"REDIS_PORT", "redis-port", 6379, "Redis port"}
	redisPassword = configVar[string]{"REDIS_PASSWORD", "redis-password", "", "Redis password"}
	redisDB       = configVar[int]{"REDIS_DB", "redis-db", 0, "Redis database"}

	databaseDSN = configVar[string]{"DB_DSN", "db-dsn", "sqlite://data/radio.db", "sqlite:// or postgres:// database url"}

	r2Endpoint        = configVar[string]{"R2_ENDPOINT", "r2-endpoint", "", "S3 compatible endpoint of the podcast bucket"}
	r2Region          = configVar[string]{"R2_REGION", "r2-region", "auto", "Bucket region"}
	r2AccessKeyId     = configVar[string]{"R2_ACCESS_KEY_ID", "r2-access-key-id", "", "Bucket access key id"}
	r2SecretAccessKey = configVar[string]{"R2_SECRET_ACCESS_KEY", "r2-secret-access-key", "", "Bucket secret access key"}
	r2Bucket          = configVar[string]{"R2_BUCKET", "r2-bucket", "", "Podcast bucket, storage is disabled when empty"}
	r2Prefix          = configVar[string]{"R2_PREFIX", "r2-prefix", "", "Key prefix of podcast audio"}
	r2PublicBaseURL   = configVar[string]{"R2_PUBLIC_BASE_URL", "r2-public-base-url", "", "Public url of the bucket, audio is presigned when empty"}
	r2PresignExpiry   = configVar[time.Duration]{"R2_PRESIGN_EXPIRY", "r2-presign-expiry", time.Hour, "Lifetime of presigned audio urls"}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	for _, v := range []configVar[string]{secret, host, logLevel, defaultStreamURL, defaultTitle, seedPath,
		redisHost, redisPassword, databaseDSN,
		r2Endpoint, r2Region, r2AccessKeyId, r2SecretAccessKey, r2Bucket, r2Prefix, r2PublicBaseURL} {
		pflag.String(v.flagKey, v.defaultValue, v.usage)
		bind(v)
	}
	for _, v := range []configVar[int]{port, redisPort, redisDB} {
		pflag.Int(v.flagKey, v.defaultValue, v.usage)
		bind(v)
	}
	for _, v := range []configVar[time.Duration]{loadingTimeout, sessionTTL, configCacheTTL, tokenTTL, r2PresignExpiry} {
		pflag.Duration(v.flagKey, v.defaultValue, v.usage)
		bind(v)
	}
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	return &app.AppConfig{
		Secret:            viper.GetString(secret.flagKey),
		Host:              viper.GetString(host.flagKey),
		Port:              viper.GetInt(port.flagKey),
		LogLevel:          viper.GetString(logLevel.flagKey),
		RedisHost:         viper.GetString(redisHost.flagKey),
		RedisPort:         viper.GetInt(redisPort.flagKey),
		RedisPassword:     viper.GetString(redisPassword.flagKey),
		RedisDB:           viper.GetInt(redisDB.flagKey),
		DatabaseDSN:       viper.GetString(databaseDSN.flagKey),
		SeedPath:          viper.GetString(seedPath.flagKey),
		R2Endpoint:        viper.GetString(r2Endpoint.flagKey),
		R2Region:          viper.GetString(r2Region.flagKey),
		R2AccessKeyId:     viper.GetString(r2AccessKeyId.flagKey),
		R2SecretAccessKey: viper.GetString(r2SecretAccessKey.flagKey),
		R2Bucket:          viper.GetString(r2Bucket.flagKey),
		R2Prefix:          viper.GetString(r2Prefix.flagKey),
		R2PublicBaseURL:   viper.GetString(r2PublicBaseURL.flagKey),
		PresignExpiry:     viper.GetDuration(r2PresignExpiry.flagKey),
		DefaultStreamURL:  viper.GetString(defaultStreamURL.flagKey),
		DefaultTitle:      viper.GetString(defaultTitle.flagKey),
		LoadingTimeout:    viper.GetDuration(loadingTimeout.flagKey),
		SessionTTL:        viper.GetDuration(sessionTTL.flagKey),
		ConfigCacheTTL:    viper.GetDuration(configCacheTTL.flagKey),
		TokenTTL:          viper.GetDuration(tokenTTL.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}

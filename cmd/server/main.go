package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/watchroom/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 8080,
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	reapInterval = configVar[time.Duration]{
		envKey:       "SERVER_REAP_INTERVAL",
		flagKey:      "reap-interval",
		defaultValue: 10 * time.Minute,
	}
	idleThreshold = configVar[time.Duration]{
		envKey:       "SERVER_IDLE_THRESHOLD",
		flagKey:      "idle-threshold",
		defaultValue: 10 * time.Minute,
	}
	providerTimeout = configVar[time.Duration]{
		envKey:       "SERVER_PROVIDER_TIMEOUT",
		flagKey:      "provider-timeout",
		defaultValue: 10 * time.Second,
	}
	metadataCacheTTL = configVar[time.Duration]{
		envKey:       "SERVER_METADATA_CACHE_TTL",
		flagKey:      "metadata-cache-ttl",
		defaultValue: 24 * time.Hour,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Duration(reapInterval.flagKey, reapInterval.defaultValue, "How often the inactive-rooms reaper runs")
	pflag.Duration(idleThreshold.flagKey, idleThreshold.defaultValue, "How long an empty room survives since its last join")
	pflag.Duration(providerTimeout.flagKey, providerTimeout.defaultValue, "Timeout for video metadata lookups")
	pflag.Duration(metadataCacheTTL.flagKey, metadataCacheTTL.defaultValue, "TTL for cached video metadata")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host (empty disables metadata caching)")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(reapInterval.flagKey, reapInterval.envKey)
	viper.BindEnv(idleThreshold.flagKey, idleThreshold.envKey)
	viper.BindEnv(providerTimeout.flagKey, providerTimeout.envKey)
	viper.BindEnv(metadataCacheTTL.flagKey, metadataCacheTTL.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(reapInterval.flagKey, reapInterval.defaultValue)
	viper.SetDefault(idleThreshold.flagKey, idleThreshold.defaultValue)
	viper.SetDefault(providerTimeout.flagKey, providerTimeout.defaultValue)
	viper.SetDefault(metadataCacheTTL.flagKey, metadataCacheTTL.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	return &app.AppConfig{
		Host:             viper.GetString(host.flagKey),
		Port:             viper.GetInt(port.flagKey),
		LogLevel:         viper.GetString(logLevel.flagKey),
		ReapInterval:     viper.GetDuration(reapInterval.flagKey),
		IdleThreshold:    viper.GetDuration(idleThreshold.flagKey),
		ProviderTimeout:  viper.GetDuration(providerTimeout.flagKey),
		MetadataCacheTTL: viper.GetDuration(metadataCacheTTL.flagKey),
		RedisHost:        viper.GetString(redisHost.flagKey),
		RedisPort:        viper.GetInt(redisPort.flagKey),
		RedisPassword:    viper.GetString(redisPassword.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}

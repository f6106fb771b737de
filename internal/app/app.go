package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/watchroom/server/internal/controller"
	"github.com/watchroom/server/internal/provider"
	"github.com/watchroom/server/internal/provider/rediscache"
	"github.com/watchroom/server/internal/provider/youtube"
	connInmemory "github.com/watchroom/server/internal/repository/connection/inmemory"
	roomInmemory "github.com/watchroom/server/internal/repository/room/inmemory"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/ctxlogger"
	"github.com/watchroom/server/pkg/redisclient"
	"github.com/watchroom/server/pkg/taskrunner"
)

type AppConfig struct {
	Host             string        `json:"host"`
	Port             int           `json:"port"`
	LogLevel         string        `json:"log_level"`
	ReapInterval     time.Duration `json:"reap_interval"`
	IdleThreshold    time.Duration `json:"idle_threshold"`
	ProviderTimeout  time.Duration `json:"provider_timeout"`
	MetadataCacheTTL time.Duration `json:"metadata_cache_ttl"`
	RedisHost        string        `json:"redis_host"`
	RedisPort        int           `json:"redis_port"`
	RedisPassword    string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.ReapInterval <= 0 {
		return fmt.Errorf("reap interval must be positive")
	}
	if cfg.IdleThreshold <= 0 {
		return fmt.Errorf("idle threshold must be positive")
	}
	if cfg.ProviderTimeout <= 0 {
		return fmt.Errorf("provider timeout must be positive")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}),
	}
	logger := slog.New(&h)

	var videoProvider provider.Provider = youtube.NewProvider(cfg.ProviderTimeout, logger)
	if cfg.RedisHost != "" {
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer rc.Close()

		videoProvider = rediscache.New(rc, videoProvider, cfg.MetadataCacheTTL, logger)
	} else {
		logger.Info("no redis host configured, video metadata caching disabled")
	}

	roomRepo := roomInmemory.NewRepo(logger)
	connRepo := connInmemory.NewRepo(logger)

	roomService := room.NewService(roomRepo, videoProvider, &room.Config{
		IdleThreshold:   cfg.IdleThreshold,
		ProviderTimeout: cfg.ProviderTimeout,
	}, logger)

	ctrl := controller.NewController(roomService, connRepo, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: ctrl.Mux()}

	serverCtx, serverStopCtx := context.WithCancel(ctx)

	reaper := taskrunner.New("inactive-rooms-reaper", cfg.ReapInterval, roomService.ReapInactiveRooms, logger)
	reaper.Start(serverCtx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		reaper.Stop()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		roomRepo.Clear(shutdownCtx)
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/vecapi/internal/config"
	"github.com/xxxsen/vecapi/internal/db"
	"github.com/xxxsen/vecapi/internal/embedcache"
	"github.com/xxxsen/vecapi/internal/encoder"
	"github.com/xxxsen/vecapi/internal/fetch"
	"github.com/xxxsen/vecapi/internal/handler"
	"github.com/xxxsen/vecapi/internal/job"
	"github.com/xxxsen/vecapi/internal/middleware"
	"github.com/xxxsen/vecapi/internal/pkg/jwt"
	"github.com/xxxsen/vecapi/internal/repo"
	"github.com/xxxsen/vecapi/internal/schedule"
	"github.com/xxxsen/vecapi/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "vecapi",
		Short: "vector encoding api server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run vecapi server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			var conn *sql.DB
			if cfg.Database.Enable {
				conn, err = db.Open(cfg.Database)
				if err != nil {
					return fmt.Errorf("open db: %w", err)
				}
				if err := db.ApplyMigrations(conn); err != nil {
					return fmt.Errorf("migrations: %w", err)
				}
			}
			return runServer(cfg, conn)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	var tokenSecret string
	var tokenSubject string
	var tokenTTLHours int
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "mint a bearer token for jwt auth mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenSecret == "" {
				return fmt.Errorf("--secret is required")
			}
			token, err := jwt.GenerateToken(tokenSubject, []byte(tokenSecret), time.Duration(tokenTTLHours)*time.Hour)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "jwt secret (auth.jwt_secret)")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "client name embedded in the token")
	tokenCmd.Flags().IntVar(&tokenTTLHours, "ttl-hours", 72, "token lifetime in hours")
	rootCmd.AddCommand(tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.Int("text_providers", len(cfg.Text.Providers)),
		zap.Int("image_providers", len(cfg.Image.Providers)),
		zap.Bool("persistent_cache", conn != nil),
	)

	fetcher, err := fetch.NewClient(cfg.Fetch)
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}

	var cacheRepo *repo.EmbeddingCacheRepo
	if conn != nil {
		cacheRepo = repo.NewEmbeddingCacheRepo(conn)
	}
	stores := buildCacheStores(cfg.Cache, cacheRepo)

	textEncoder, err := buildTextEncoder(cfg.Text, stores)
	if err != nil {
		return fmt.Errorf("init text encoder: %w", err)
	}
	imageEncoder, err := buildImageEncoder(cfg.Image, stores)
	if err != nil {
		return fmt.Errorf("init image encoder: %w", err)
	}
	manager := encoder.NewManager(textEncoder, imageEncoder, encoder.ManagerConfig{
		TextTimeout:  time.Duration(cfg.Text.Timeout) * time.Second,
		ImageTimeout: time.Duration(cfg.Image.Timeout) * time.Second,
	})

	encodeService := service.NewEncodeService(manager, fetcher, cfg.Text, cfg.Image)

	deps := handler.RouterDeps{
		Health: handler.NewHealthHandler(encodeService),
		Encode: handler.NewEncodeHandler(encodeService),
		Auth:   middleware.Auth(cfg.Auth),
	}
	if cfg.RateLimitMS > 0 {
		deps.RateLimit = middleware.RateLimit(time.Duration(cfg.RateLimitMS) * time.Millisecond)
	}

	engine, err := webapi.NewEngine(
		"/",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
			middleware.NotFound(),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cacheRepo != nil {
		scheduler := schedule.NewCronScheduler()
		if err := scheduler.AddJob(job.NewCacheCleanupJob(cacheRepo, cfg.Cache.MaxAgeDays), cfg.Cache.CleanupCron); err != nil {
			return fmt.Errorf("schedule cleanup job: %w", err)
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

// buildCacheStores assembles the cache chain, innermost first: postgres,
// then redis, then the per-process LRU closest to the request.
func buildCacheStores(cfg config.CacheConfig, cacheRepo *repo.EmbeddingCacheRepo) []embedcache.Store {
	var stores []embedcache.Store
	if st := embedcache.NewRepoStore(cacheRepo); st != nil {
		stores = append(stores, st)
	}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if st := embedcache.NewRedisStore(client, time.Duration(cfg.Redis.TTLMinutes)*time.Minute); st != nil {
			stores = append(stores, st)
		}
	}
	if st := embedcache.NewLRUStore(cfg.LRUSize, time.Duration(cfg.LRUTTLMinutes)*time.Minute); st != nil {
		stores = append(stores, st)
	}
	return stores
}

func buildTextEncoder(cfg config.ModalityConfig, stores []embedcache.Store) (encoder.ITextEncoder, error) {
	entries := make([]encoder.TextEncoderEntry, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		provider, err := encoder.NewTextProvider(pc.Provider, pc.Data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, encoder.TextEncoderEntry{
			Name:    pc.Provider + "/" + pc.Model,
			Encoder: encoder.NewTextEncoder(provider, pc.Model),
		})
	}
	enc := encoder.NewGroupTextEncoder(entries)
	for _, st := range stores {
		enc = embedcache.WrapTextEncoder(enc, st)
	}
	return enc, nil
}

func buildImageEncoder(cfg config.ModalityConfig, stores []embedcache.Store) (encoder.IImageEncoder, error) {
	entries := make([]encoder.ImageEncoderEntry, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		provider, err := encoder.NewImageProvider(pc.Provider, pc.Data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, encoder.ImageEncoderEntry{
			Name:    pc.Provider + "/" + pc.Model,
			Encoder: encoder.NewImageEncoder(provider, pc.Model),
		})
	}
	enc := encoder.NewGroupImageEncoder(entries)
	for _, st := range stores {
		enc = embedcache.WrapImageEncoder(enc, st)
	}
	return enc, nil
}

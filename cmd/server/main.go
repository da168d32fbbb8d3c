package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/blog-app/backend/internal/auth"
	"github.com/ayush/blog-app/backend/internal/comments"
	"github.com/ayush/blog-app/backend/internal/config"
	"github.com/ayush/blog-app/backend/internal/logging"
	"github.com/ayush/blog-app/backend/internal/middleware"
	"github.com/ayush/blog-app/backend/internal/posts"
	"github.com/ayush/blog-app/backend/internal/server"
	"github.com/ayush/blog-app/backend/internal/store"
)

// userBackend is what auth and author resolution need from a user store.
type userBackend interface {
	auth.UserStore
	posts.AuthorResolver
}

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	fatal := func(msg string, err error) {
		logger.Error(ctx, msg, "err", err)
		os.Exit(1)
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := store.NewMongoClient(ctx, cfg.MongoURI)
	if err != nil {
		fatal("mongo connect", err)
	}
	defer mongoClient.Disconnect(context.Background())
	mongoDB := mongoClient.Database(cfg.MongoDB)
	if err := store.EnsureIndexes(ctx, mongoDB); err != nil {
		fatal("mongo indexes", err)
	}
	postStore := store.NewPostStore(mongoDB)
	commentStore := store.NewCommentStore(mongoDB)

	// ── Users ────────────────────────────────────────────────
	var users userBackend
	switch cfg.UserBackend {
	case config.UserBackendPostgres:
		pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			fatal("postgres connect", err)
		}
		defer pgPool.Close()
		pgStore := store.NewPostgresStore(pgPool)
		if err := pgStore.Migrate(ctx); err != nil {
			fatal("postgres migrate", err)
		}
		users = pgStore
	default:
		users = store.NewMongoUserStore(mongoDB)
	}
	logger.Info(ctx, "user backend selected", "backend", cfg.UserBackend)

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, store.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		fatal("redis connect", err)
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb, cfg.SessionTTL)

	// ── MinIO ────────────────────────────────────────────────
	var avatars auth.AvatarStore
	if cfg.MinioEndpoint != "" {
		minioStore, err := store.NewMinioStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			fatal("minio connect", err)
		}
		avatars = minioStore
	} else {
		logger.Warn(ctx, "MINIO_ENDPOINT not set, avatar uploads disabled")
	}

	// ── Services & handlers ──────────────────────────────────
	postSvc := posts.NewService(postStore, commentStore, users, logger, cfg.MaxPageSize)
	commentSvc := comments.NewService(commentStore, postStore, users)

	handler := server.NewRouter(server.Deps{
		Auth:        auth.NewHandler(users, sessions, avatars, logger),
		Posts:       posts.NewHandler(postSvc, logger),
		Comments:    comments.NewHandler(commentSvc, logger),
		Sessions:    sessions,
		RateLimit:   middleware.RateLimit(rdb, cfg.RateLimit, cfg.RateWindow, logger),
		CORSOrigins: cfg.CORSOrigins,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info(ctx, "backend listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error(ctx, "shutdown", "err", err)
	}
}

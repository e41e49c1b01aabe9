package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/ethos-labs/ethos-auth/adapters/events"
	"github.com/ethos-labs/ethos-auth/adapters/store"
	"github.com/ethos-labs/ethos-auth/adapters/tokenizer"
	"github.com/ethos-labs/ethos-auth/internal/config"
	"github.com/ethos-labs/ethos-auth/internal/logging"
	"github.com/ethos-labs/ethos-auth/ports"
	"github.com/ethos-labs/ethos-auth/service"
	transport "github.com/ethos-labs/ethos-auth/transport/http"
)

func main() {
	ctx := context.Background()

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	log := logging.NewSlogLogger(slogger)

	// Missing configuration (in particular the signing secret) is the one
	// fatal error class, and it happens before we accept any request.
	cfg, err := config.Load()
	if err != nil {
		slogger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slogger.Error("failed to parse redis URL", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slogger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
	}

	var walletStore ports.WalletStore
	switch {
	case cfg.DatabaseURL != "":
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			slogger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			slogger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := store.RunMigrations(ctx, db); err != nil {
			slogger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		walletStore = store.NewPostgresStore(db)
		log.Info(ctx, "using postgres wallet store")
	case redisClient != nil:
		walletStore = store.NewRedisStore(redisClient)
		log.Info(ctx, "using redis wallet store")
	default:
		log.Warn(ctx, "no database or redis configured, using in-memory wallet store")
		walletStore = store.NewMemoryStore()
	}

	var publisher ports.EventPublisher = events.NopPublisher{}
	if redisClient != nil {
		wmPublisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			slogger.Error("failed to create event publisher", "error", err)
			os.Exit(1)
		}
		publisher = events.NewWatermillPublisher(wmPublisher)
	}

	sessionTokenizer := tokenizer.NewJWTTokenizer([]byte(cfg.JWTSecret), cfg.SessionTTL)
	authService := service.NewAuthService(walletStore, sessionTokenizer, publisher, log)

	router := transport.SetupRouter(authService)

	log.Info(ctx, "starting server", "addr", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		slogger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sirpyerre/members-portal/internal/api/handler"
	"github.com/sirpyerre/members-portal/internal/core/ports"
	mongodb "github.com/sirpyerre/members-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/sirpyerre/members-portal/internal/infrastructure/db/redis"
	"github.com/sirpyerre/members-portal/internal/infrastructure/sessioncodec"
	"github.com/sirpyerre/members-portal/internal/pkg/config"
	"github.com/sirpyerre/members-portal/pkg/logger"
)

// infra holds the connected backing services for one process.
type infra struct {
	log         zerolog.Logger
	mongoClient *mongo.Client
	db          *mongo.Database
	redis       *goredis.Client

	users    *mongodb.UserRepository
	sessions ports.SessionStore
	checks   map[string]handler.DependencyCheck
}

func initLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "members-portal",
	})
}

// openInfra connects to MongoDB and, when sessions live there, Redis. Indexes
// are created before the stores are handed out.
func openInfra(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*infra, error) {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.ConnectionURI(),
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, err
	}
	in := &infra{
		log:         log,
		mongoClient: client,
		db:          db,
		users:       mongodb.NewUserRepository(db),
		checks:      map[string]handler.DependencyCheck{"mongodb": handler.MongoCheck(db)},
	}

	if err := in.users.EnsureIndexes(ctx); err != nil {
		in.Close(ctx)
		return nil, err
	}

	codec, err := sessioncodec.New(cfg.Session.StoreSecret)
	if err != nil {
		in.Close(ctx)
		return nil, err
	}
	if cfg.Session.StoreSecret == "" {
		log.Warn().Msg("SESSION_STORE_SECRET not set, session payloads are stored unencrypted")
	}

	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			in.Close(ctx)
			return nil, err
		}
		in.redis = rdb
		in.sessions = redisdb.NewSessionStore(rdb, codec)
		in.checks["redis"] = handler.RedisCheck(rdb)
	default:
		store := mongodb.NewSessionStore(client.Database(cfg.Mongo.SessionDB), codec)
		if err := store.EnsureIndexes(ctx); err != nil {
			in.Close(ctx)
			return nil, err
		}
		in.sessions = store
	}

	log.Info().
		Str("database", cfg.Mongo.Database).
		Str("session_backend", cfg.Session.Backend).
		Msg("backing services connected")
	return in, nil
}

func (in *infra) Close(ctx context.Context) {
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			in.log.Warn().Err(err).Msg("redis close")
		}
	}
	if err := in.mongoClient.Disconnect(ctx); err != nil {
		in.log.Warn().Err(err).Msg("mongo disconnect")
	}
}

// openUserRepository is the store used by the user maintenance commands.
func openUserRepository(ctx context.Context) (ports.UserRepository, func(), error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	log := initLogger(cfg)

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.ConnectionURI(),
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open user store: %w", err)
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}
	return mongodb.NewUserRepository(db), closeFn, nil
}

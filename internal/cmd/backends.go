package cmd

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/ispoms/oms-console/internal/core/ports"
	"github.com/ispoms/oms-console/internal/infrastructure/config"
	"github.com/ispoms/oms-console/internal/infrastructure/db/memory"
	"github.com/ispoms/oms-console/internal/infrastructure/db/mongo"
	"github.com/ispoms/oms-console/internal/infrastructure/db/redis"
)

// backends holds the storage selected by configuration.
type backends struct {
	persistence  ports.SessionPersistence
	accounts     ports.AccountRepository
	verification ports.VerificationStore

	mongo *mongodriver.Database
	redis *goredis.Client

	closers []func(context.Context) error
}

func openBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backends, error) {
	b := &backends{}

	if cfg.UsesRedis() {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		b.redis = client
		b.closers = append(b.closers, func(context.Context) error { return client.Close() })
		log.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("redis connected")
	}

	if cfg.UsesMongo() {
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			_ = b.close(ctx)
			return nil, err
		}
		b.mongo = db
		b.closers = append(b.closers, client.Disconnect)
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")
	}

	switch cfg.Session.Backend {
	case config.BackendRedis:
		b.persistence = redis.NewSessionPersistence(b.redis, cfg.Session.Retention)
	default:
		b.persistence = memory.NewSessionPersistence()
	}

	if !cfg.Directory.Enabled {
		return b, nil
	}

	switch cfg.Directory.Backend {
	case config.BackendMongo:
		repo := mongo.NewAccountRepository(b.mongo)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = b.close(ctx)
			return nil, fmt.Errorf("ensure account indexes: %w", err)
		}
		b.accounts = repo
	default:
		b.accounts = memory.NewAccountRepository()
	}

	if b.redis != nil {
		b.verification = redis.NewVerificationStore(b.redis)
	} else {
		b.verification = memory.NewVerificationStore()
	}
	return b, nil
}

// close releases connections in reverse order of opening.
func (b *backends) close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i](ctx))
	}
	return errors.Join(errs...)
}

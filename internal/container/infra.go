package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/slugly/internal/store"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// Redis wraps the client so the injector closes it on shutdown.
type Redis struct {
	redis.UniversalClient
}

func (r *Redis) Shutdown() error {
	return r.Close()
}

// Postgres wraps the pool so the injector closes it on shutdown.
type Postgres struct {
	*pgxpool.Pool
}

func (p *Postgres) Shutdown() error {
	p.Close()

	return nil
}

// RedisPackage provides the redis client used for rate limits and event streams.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)

		client := redis.NewClient(&redis.Options{
			Addr: opts.RedisAddr,
		})

		return &Redis{UniversalClient: client}, nil
	})
}

// PostgresPackage provides the connection pool and applies migrations when enabled.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}

		if opts.Migrate {
			if err := store.Migrate(ctx, pool, logger); err != nil {
				pool.Close()

				return nil, err
			}
		}

		return &Postgres{Pool: pool}, nil
	})
}

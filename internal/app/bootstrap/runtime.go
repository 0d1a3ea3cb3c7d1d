// Package bootstrap builds the shared clients cmd/api wires into handlers.
package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/didax-edu/site-api/internal/antispam"
	appconfig "github.com/didax-edu/site-api/internal/config"
	"github.com/didax-edu/site-api/internal/leads"
	"github.com/didax-edu/site-api/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildThrottle wraps the Redis client in the lead submission throttle. It
// returns nil when Redis is disabled so the service skips the check.
func BuildThrottle(client *redis.Client, cfg *appconfig.Config, logger *logging.Logger) leads.Throttler {
	if client == nil || cfg == nil {
		return nil
	}
	return antispam.NewThrottle(client, antispam.ThrottleConfig{
		Limit:  cfg.LeadRateLimit,
		Window: cfg.LeadRateWindow,
	}, logger)
}

// PoolConfig turns the database settings into a pgxpool config. The statement
// timeout is also sent to the server so runaway queries are cut there.
func PoolConfig(cfg *appconfig.Config) (*pgxpool.Config, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("bootstrap: DATABASE_URL is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: parse database url: %w", err)
	}
	if cfg.DBMaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.DBMaxConns)
	}
	if cfg.DBStatementTimeout > 0 {
		poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.DBStatementTimeout.Milliseconds(), 10)
	}
	return poolCfg, nil
}

// BuildPostgresPool opens the shared pool and checks connectivity.
func BuildPostgresPool(ctx context.Context, cfg *appconfig.Config) (*pgxpool.Pool, error) {
	poolCfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	return pool, nil
}

// LeadStores are the storage dependencies of the lead endpoints.
type LeadStores struct {
	Repository leads.Repository
	Catalog    leads.Catalog
}

// BuildLeadStores uses Postgres when a pool is given and falls back to the
// seeded in-memory store for local development.
func BuildLeadStores(pool *pgxpool.Pool, cfg *appconfig.Config, logger *logging.Logger) LeadStores {
	if pool == nil {
		if logger == nil {
			logger = logging.Default()
		}
		logger.Warn("DATABASE_URL not set; leads are kept in memory")
		mem := leads.NewSeededInMemoryRepository()
		return LeadStores{Repository: mem, Catalog: mem}
	}
	return LeadStores{
		Repository: leads.NewPostgresRepository(pool, cfg.DBStatementTimeout),
		Catalog:    leads.NewPostgresCatalog(pool, cfg.DBStatementTimeout),
	}
}

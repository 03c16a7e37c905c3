package database

import (
	"context"
	"fmt"
	"time"

	"dinely/internal/shared/config"
	applog "dinely/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB bundles the two stores the service uses. PostgreSQL is the system of
// record; Redis backs the availability cache and the rate limiter and is
// optional. Redis may be nil, and callers degrade to direct reads.
type DB struct {
	PostgreSQL *gorm.DB
	Redis      *redis.Client
}

// InitDB connects to PostgreSQL, runs migrations and attaches Redis when it
// is reachable. A missing Redis is logged and tolerated; a missing
// PostgreSQL is fatal.
func InitDB(cfg *config.Config) (*DB, error) {
	pg, err := openPostgres(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(pg); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db := &DB{PostgreSQL: pg}

	rdb, err := openRedis(cfg)
	if err != nil {
		applog.GetDefault().WithError(err).Warn("Redis unavailable, cache and rate limiting disabled")
	} else {
		db.Redis = rdb
	}
	return db, nil
}

func openPostgres(cfg *config.Config) (*gorm.DB, error) {
	gormLogMode := logger.Silent
	if cfg.IsDevelopment() {
		gormLogMode = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogMode),
		// All timestamps in the reservation ledger are UTC; lock-expiry
		// comparisons depend on it.
		NowFunc:     func() time.Time { return time.Now().UTC() },
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := pingWithTimeout(sqlDB.PingContext); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	applog.GetDefault().Info("PostgreSQL connected")
	return db, nil
}

func openRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := pingWithTimeout(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}); err != nil {
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.Redis.Addr, err)
	}

	applog.GetDefault().Info("Redis connected", "addr", cfg.Redis.Addr)
	return rdb, nil
}

func pingWithTimeout(ping func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ping(ctx)
}

// Close releases both connections; it reports the first error but still
// attempts every close.
func (db *DB) Close() error {
	var firstErr error

	if db.PostgreSQL != nil {
		if sqlDB, err := db.PostgreSQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				firstErr = fmt.Errorf("failed to close PostgreSQL: %w", err)
			}
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close Redis: %w", err)
		}
	}
	return firstErr
}

// HealthCheck pings whichever stores are attached.
func (db *DB) HealthCheck(ctx context.Context) error {
	sqlDB, err := db.PostgreSQL.DB()
	if err != nil {
		return fmt.Errorf("PostgreSQL health check failed: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("PostgreSQL ping failed: %w", err)
	}

	if db.Redis != nil {
		if err := db.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}
	return nil
}

func (db *DB) GetRedisClient() *redis.Client {
	return db.Redis
}

func (db *DB) GetPostgreSQL() *gorm.DB {
	return db.PostgreSQL
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrEthical07/goToken/internal/config"
	"github.com/MrEthical07/goToken/internal/obs"
	"github.com/MrEthical07/goToken/password"
	"github.com/MrEthical07/goToken/principal"
	"github.com/MrEthical07/goToken/revocation"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var errNoDSN = errors.New("db.dsn is required")

// runtime owns the process-wide resources opened for one command.
type runtime struct {
	cfg   *config.Config
	log   *zap.Logger
	redis redis.UniversalClient
	db    *sql.DB

	closers []func() error
}

func loadRuntime(path string) (*runtime, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log, err := obs.NewLogger(cfg.Log.AsLoggerConfig(cfg.App))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	rt := &runtime{cfg: cfg, log: log}
	rt.closers = append(rt.closers, func() error {
		_ = log.Sync()
		return nil
	})
	return rt, nil
}

func (rt *runtime) openRedis(ctx context.Context) (redis.UniversalClient, error) {
	if rt.redis != nil {
		return rt.redis, nil
	}
	rc := rt.cfg.Redis
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       rc.Addrs,
		Username:    rc.Username,
		Password:    rc.Password,
		DB:          rc.DB,
		DialTimeout: rc.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %v: %w", rc.Addrs, err)
	}
	rt.log.Info("redis connected", zap.Strings("addrs", rc.Addrs))
	rt.redis = client
	rt.closers = append(rt.closers, client.Close)
	return client, nil
}

func (rt *runtime) openDB(ctx context.Context) (*sql.DB, error) {
	if rt.db != nil {
		return rt.db, nil
	}
	dc := rt.cfg.DB
	if dc.DSN == "" {
		return nil, errNoDSN
	}
	db, err := principal.OpenPostgres(ctx, dc.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(dc.MaxOpenConns)
	db.SetMaxIdleConns(dc.MaxIdleConns)
	db.SetConnMaxLifetime(dc.ConnMaxLifetime)
	rt.db = db
	rt.closers = append(rt.closers, db.Close)
	return db, nil
}

func (rt *runtime) hasher() (*password.Hasher, error) {
	return password.New(rt.cfg.Password)
}

// revocationStore opens the configured store for operator commands. The
// memory backend lives inside the serving process and cannot be reached.
func (rt *runtime) revocationStore(ctx context.Context) (revocation.Store, error) {
	if rt.cfg.Revocation.Backend != "redis" {
		return nil, fmt.Errorf("revocation commands need the redis backend, configured %q", rt.cfg.Revocation.Backend)
	}
	client, err := rt.openRedis(ctx)
	if err != nil {
		return nil, err
	}
	return revocation.NewRedisStore(client, rt.cfg.Revocation.RedisPrefix), nil
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package store

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	EngineJSON   = "json"
	EngineSQLite = "sqlite"
	EngineRedis  = "redis"
)

type Options struct {
	Engine        string
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	QuotaBytes    int64
}

// NewByEngine opens the configured engine and applies the byte quota on top of it.
func NewByEngine(ctx context.Context, opts Options) (Store, error) {
	var (
		st  Store
		err error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Engine)) {
	case "", EngineJSON:
		st, err = NewJSONStore(opts.Path)
	case EngineSQLite:
		st, err = NewSQLiteStore(opts.Path)
	case EngineRedis:
		st, err = NewRedisStore(ctx, &redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
	default:
		return nil, errors.New("unsupported store engine: " + opts.Engine)
	}
	if err != nil {
		return nil, err
	}
	return WithQuota(st, opts.QuotaBytes), nil
}

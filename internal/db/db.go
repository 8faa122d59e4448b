package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	Addr         string
	MaxOpenConns int32
	MaxIdleTime  string
}

// New opens a pgx pool and pings it. Startup gives up after 30s.
func New(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("db address is empty")
	}

	config, err := pgxpool.ParseConfig(cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("parse db address: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		config.MaxConns = cfg.MaxOpenConns
	}

	idle, err := time.ParseDuration(cfg.MaxIdleTime)
	if err != nil {
		return nil, fmt.Errorf("parse max idle time: %w", err)
	}
	config.MaxConnIdleTime = idle

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

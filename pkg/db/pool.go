// Package db owns the connection pool and the query executor for the
// PostgreSQL backend. The pool is the only shared mutable state in the
// server and is internally synchronized; everything above it is per-request.
package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FreePeak/pg-mcp-server/internal/config"
	"github.com/FreePeak/pg-mcp-server/internal/logger"
)

// Pool is a bounded set of live PostgreSQL connections. MinConns sessions are
// opened eagerly by Connect; Acquire checks out at most MaxConns at a time and
// blocks callers beyond that.
type Pool struct {
	cfg       config.DatabaseConfig
	poolCfg   *pgxpool.Config
	pool      *pgxpool.Pool
	closeOnce sync.Once
}

// BuildDSN renders the connection string for the configured backend.
// The password is the only part not safe to log; use Pool.String for that.
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
}

// NewPool builds a pool from the validated configuration without connecting.
func NewPool(cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool configuration: %w", err)
	}
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	return &Pool{cfg: cfg, poolCfg: poolCfg}, nil
}

// Connect opens the pool and warms the minimum connection set. Failure here is
// fatal to startup: the server must not serve without its floor of sessions.
func (p *Pool) Connect(ctx context.Context) error {
	pool, err := pgxpool.NewWithConfig(ctx, p.poolCfg)
	if err != nil {
		return fmt.Errorf("failed to open connection pool: %w", err)
	}

	// Check out the full minimum set before releasing any of it, so startup
	// fails loudly when the backend cannot supply MinConns sessions.
	warm := make([]*pgxpool.Conn, 0, p.cfg.MinConns)
	for i := 0; i < p.cfg.MinConns; i++ {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			for _, c := range warm {
				c.Release()
			}
			pool.Close()
			return fmt.Errorf("failed to establish minimum pool of %d connections: %w", p.cfg.MinConns, err)
		}
		warm = append(warm, conn)
	}
	for _, c := range warm {
		c.Release()
	}

	p.pool = pool
	logger.Info("Connected to postgres database at %s:%d/%s (pool %d..%d)",
		p.cfg.Host, p.cfg.Port, p.cfg.Name, p.cfg.MinConns, p.cfg.MaxConns)
	return nil
}

// Acquire checks a connection out of the pool, blocking until one is free.
// With an acquire timeout configured, waiting past it yields a
// PoolExhaustionError instead of an unbounded stall.
func (p *Pool) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	if p.pool == nil {
		return nil, ErrNotConnected
	}

	acquireCtx := ctx
	if p.cfg.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, p.cfg.AcquireTimeout)
		defer cancel()
	}

	conn, err := p.pool.Acquire(acquireCtx)
	if err != nil {
		return nil, p.classifyAcquireError(ctx, err)
	}
	return conn, nil
}

// classifyAcquireError separates the pool's own acquire timeout from caller
// cancellation. Only a deadline the pool imposed itself counts as exhaustion;
// when the parent context is already done the error passes through unchanged.
func (p *Pool) classifyAcquireError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return &PoolExhaustionError{Timeout: p.cfg.AcquireTimeout}
	}
	return err
}

// Ping verifies the backend is reachable.
func (p *Pool) Ping(ctx context.Context) error {
	if p.pool == nil {
		return ErrNotConnected
	}
	return p.pool.Ping(ctx)
}

// Stat reports live pool counters. Nil until Connect succeeds.
func (p *Pool) Stat() *pgxpool.Stat {
	if p.pool == nil {
		return nil
	}
	return p.pool.Stat()
}

// Close terminates every connection. It is idempotent and safe to call while
// requests are draining: pgxpool waits for checked-out connections to be
// released before tearing them down.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		if p.pool != nil {
			p.pool.Close()
		}
	})
}

// String returns the connection target with the password masked.
func (p *Pool) String() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=*** dbname=%s sslmode=disable",
		p.cfg.Host, p.cfg.Port, p.cfg.User, p.cfg.Name)
}

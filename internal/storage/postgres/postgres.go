// Package postgres persists the command journal in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/stag/internal/config"
)

// DefaultCheckTimeout bounds one journal health check.
const DefaultCheckTimeout = 5 * time.Second

// Pool is the connection pool behind the command journal. Every connection
// reports the server name as its application_name so journal sessions can
// be told apart in pg_stat_activity.
type Pool struct {
	pool *pgxpool.Pool
	dsn  string
}

// PoolConfig builds the pgx configuration for the journal pool.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a config tagged with server as application_name, or
// a non-nil error.
func PoolConfig(server string, cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	if server != "" {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = "stag-journal/" + server
	}
	return poolCfg, nil
}

// OpenJournal migrates the journal schema and connects the pool.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool whose schema is current, or a
// non-nil error.
func OpenJournal(ctx context.Context, server string, cfg config.DatabaseConfig) (*Pool, error) {
	if err := Migrate(cfg.DSN()); err != nil {
		return nil, err
	}
	return NewPool(ctx, server, cfg)
}

// NewPool connects the journal pool without touching the schema.
//
// Postcondition: Returns a pinged Pool or a non-nil error.
func NewPool(ctx context.Context, server string, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := PoolConfig(server, cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Pool{pool: pool, dsn: cfg.DSN()}, nil
}

// Journal returns a repository writing through this pool.
func (p *Pool) Journal() *JournalRepository {
	return NewJournalRepository(p.pool)
}

// Check returns a health check that pings the database and confirms the
// journal table is readable, each attempt bounded by timeout.
func (p *Pool) Check(timeout time.Duration) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := p.pool.Ping(ctx); err != nil {
			return fmt.Errorf("pinging journal database: %w", err)
		}
		var exists bool
		if err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal)`).Scan(&exists); err != nil {
			return fmt.Errorf("reading journal table: %w", err)
		}
		return nil
	}
}

// Migrator opens a migrator against the database this pool is connected to.
func (p *Pool) Migrator() (*Migrator, error) {
	return NewMigrator(p.dsn)
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}

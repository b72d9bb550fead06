package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"agentskill/config"
	"agentskill/logger"
)

const (
	createTableQuery = `CREATE TABLE IF NOT EXISTS api_cache (
		key        TEXT PRIMARY KEY,
		body       BYTEA NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`
	selectQuery = `SELECT body FROM api_cache WHERE key = $1 AND expires_at > $2`
	upsertQuery = `INSERT INTO api_cache (key, body, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, expires_at = EXCLUDED.expires_at`
	purgeQuery = `DELETE FROM api_cache WHERE expires_at <= $1`
)

// Postgres is a Store shared between web replicas.
type Postgres struct {
	conn *sqlx.DB
	now  func() time.Time
	// Prepared statements cache
	stmtCache struct {
		sync.RWMutex
		statements map[string]*sqlx.Stmt
	}
}

// NewPostgres connects, applies the pool settings and ensures the cache table
// exists.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig) (*Postgres, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("%w: database name required", ErrInvalidInput)
	}

	logger.Info("Connecting to cache database",
		zap.String("host", cfg.Host),
		zap.String("port", cfg.Port),
		zap.String("database", cfg.Database))
	conn, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreConnection, err)
	}

	maxOpen, maxIdle, lifetime := cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime
	if maxOpen <= 0 {
		maxOpen = 25
	}
	if maxIdle <= 0 {
		maxIdle = 25
	}
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxIdle)
	conn.SetConnMaxLifetime(lifetime)

	store := newPostgres(conn)
	if err := store.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("Cache database connection established",
		zap.Int("max_open_conns", maxOpen),
		zap.Int("max_idle_conns", maxIdle),
		zap.Duration("conn_max_lifetime", lifetime))
	return store, nil
}

func newPostgres(conn *sqlx.DB) *Postgres {
	p := &Postgres{conn: conn, now: time.Now}
	p.stmtCache.statements = make(map[string]*sqlx.Stmt)
	return p
}

func (p *Postgres) migrate(ctx context.Context) error {
	if _, err := p.conn.ExecContext(ctx, createTableQuery); err != nil {
		return fmt.Errorf("%w: create api_cache: %v", ErrStoreConnection, err)
	}
	return nil
}

// getStmt returns a prepared statement from cache or creates a new one
func (p *Postgres) getStmt(ctx context.Context, query string) (*sqlx.Stmt, error) {
	p.stmtCache.RLock()
	stmt, exists := p.stmtCache.statements[query]
	p.stmtCache.RUnlock()

	if exists {
		return stmt, nil
	}

	p.stmtCache.Lock()
	defer p.stmtCache.Unlock()

	// Double-check after acquiring write lock
	if stmt, exists = p.stmtCache.statements[query]; exists {
		return stmt, nil
	}

	stmt, err := p.conn.PreparexContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	p.stmtCache.statements[query] = stmt
	return stmt, nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidInput)
	}
	stmt, err := p.getStmt(ctx, selectQuery)
	if err != nil {
		return nil, err
	}

	var body []byte
	if err := stmt.GetContext(ctx, &body, key, p.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreConnection, err)
	}
	return body, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" || ttl <= 0 {
		return fmt.Errorf("%w: key and positive ttl required", ErrInvalidInput)
	}
	stmt, err := p.getStmt(ctx, upsertQuery)
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, key, value, p.now().UTC().Add(ttl)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreConnection, err)
	}
	return nil
}

// PurgeExpired deletes rows past their expiry and returns how many went.
func (p *Postgres) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := p.conn.ExecContext(ctx, purgeQuery, p.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreConnection, err)
	}
	return res.RowsAffected()
}

// Close closes the database connection
func (p *Postgres) Close() error {
	p.stmtCache.Lock()
	for _, stmt := range p.stmtCache.statements {
		stmt.Close()
	}
	p.stmtCache.Unlock()

	return p.conn.Close()
}

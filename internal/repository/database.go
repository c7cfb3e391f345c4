package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sportsviz/etl/internal/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Database holds the database connection pool and provides access to repositories
type Database struct {
	Pool *pgxpool.Pool

	// Repositories
	Rankings *RankingRepository
	Matches  *MatchRepository
	Shooting *ShootingRepository
	Results  *ResultRepository
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

// DSN renders the connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}

// NewDatabase creates a new database connection pool and initializes repositories
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Successfully connected to database")

	return newDatabase(pool), nil
}

func newDatabase(pool *pgxpool.Pool) *Database {
	db := &Database{Pool: pool}
	db.Rankings = &RankingRepository{db: db}
	db.Matches = &MatchRepository{db: db}
	db.Shooting = &ShootingRepository{db: db}
	db.Results = &ResultRepository{db: db}
	return db
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// PoolStats returns database pool statistics
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.Pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}

// RecordPoolStats publishes the pool gauges.
func (db *Database) RecordPoolStats() {
	stat := db.Pool.Stat()
	metrics.UpdateDBConnectionStats(stat.AcquiredConns(), stat.IdleConns())
}

// query runs sql and hands every row to scan, recording the query metrics
// under op and table.
func (db *Database) query(ctx context.Context, op, table, sql string, scan func(pgx.Rows) error, args ...any) error {
	start := time.Now()
	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		metrics.RecordDBQuery(op, table, "error", time.Since(start).Seconds())
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			metrics.RecordDBQuery(op, table, "error", time.Since(start).Seconds())
			return err
		}
	}
	if err := rows.Err(); err != nil {
		metrics.RecordDBQuery(op, table, "error", time.Since(start).Seconds())
		return err
	}

	metrics.RecordDBQuery(op, table, "success", time.Since(start).Seconds())
	return nil
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agentx/internal/domain/repositories"
)

// RepositoryConfig holds shared dependencies for repository implementations.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names. Dev, test and prod share
// a database and are separated by prefix.
type TableNames struct {
	Users     string
	Projects  string
	Prompts   string
	Documents string
	Turns     string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Users:     fmt.Sprintf("%susers", prefix),
		Projects:  fmt.Sprintf("%sprojects", prefix),
		Prompts:   fmt.Sprintf("%sprompts", prefix),
		Documents: fmt.Sprintf("%sdocuments", prefix),
		Turns:     fmt.Sprintf("%sturns", prefix),
	}
}

// CreateConnectionPool creates a pgx connection pool.
//
// When the URL points at a transaction pooler (port 6543) prepared statements
// break with "prepared statement already exists" errors, so the exec mode is
// switched to cache_describe, which uses the extended protocol without
// server-side prepared statements. An explicit default_query_exec_mode in the
// connection string takes precedence.
//
// The dynamic table prefixes interpolated into SQL are safe with prepared
// statements: the prefix is fixed per process, so each environment ends up
// with its own statement set.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for transaction pooler", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the query executor for the context: the transaction if
// one is present, the pool otherwise. Repositories call this so they join
// transactions automatically.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}

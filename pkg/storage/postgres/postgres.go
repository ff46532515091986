// Package postgres implements storage.Storage on PostgreSQL. A single pgx
// pool backs both River (through riverpgxv5) and a database/sql wrapper used
// by goqu and goose.
package postgres

import (
	"context"
	"database/sql"
	"densitymap/pkg/storage"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const dialect = "postgres"

// Options defines the connection parameters of the pool.
type Options struct {
	Username string
	Password string
	Host     string
	// SslMode is passed as is, e.g. "disable" or "require".
	SslMode  string
	Port     int
	Database string
	// ConnMaxLifetime is the maximum amount of time a connection may be reused
	ConnMaxLifetime time.Duration
	// ConnMaxIdleTime is the maximum amount of time a connection may be idle
	ConnMaxIdleTime time.Duration
	// MaxOpenConnections caps the pool size
	MaxOpenConnections int
	// MaxIdleConnections is kept open even when idle
	MaxIdleConnections int
}

// DSN returns the keyword/value connection string of the options.
func (o Options) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s password=%s sslmode=%s",
		o.Host, o.Port, o.Username, o.Database, o.Password, o.SslMode)
}

// DB is the subset of database/sql shared by *sql.DB and *sql.Tx, so the
// same queries run inside and outside transactions.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Builder is the subset of goqu shared by a database and a transaction handle.
type Builder interface {
	From(table ...interface{}) *goqu.SelectDataset
	Insert(table interface{}) *goqu.InsertDataset
	Update(table interface{}) *goqu.UpdateDataset
	Delete(table interface{}) *goqu.DeleteDataset
}

// PgSQL implements storage.Storage for PostgreSQL using database/sql and goqu.
type PgSQL struct {
	// DB is a *sql.DB outside a transaction and a *sql.Tx inside one.
	DB DB
	// Builder constructs queries bound to DB.
	Builder Builder
	// Pool is nil on transactional handles.
	Pool *pgxpool.Pool
}

// Close closes the pool and its database/sql wrapper.
func (p *PgSQL) Close() error {
	if db, ok := p.DB.(*sql.DB); ok {
		_ = db.Close()
	}
	if p.Pool != nil {
		p.Pool.Close()
	}

	return nil
}

// Ping checks that the database answers.
func (p *PgSQL) Ping(ctx context.Context) error {
	var one int
	if err := p.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("could not ping pg: %w", err)
	}

	return nil
}

// Commit returns storage.ErrNotInTx outside a transaction.
func (p *PgSQL) Commit() error {
	tx, ok := p.DB.(*sql.Tx)
	if !ok {
		return storage.ErrNotInTx
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit tx: %w", err)
	}

	return nil
}

// Rollback returns storage.ErrNotInTx outside a transaction.
func (p *PgSQL) Rollback() error {
	tx, ok := p.DB.(*sql.Tx)
	if !ok {
		return storage.ErrNotInTx
	}
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("could not rollback tx: %w", err)
	}

	return nil
}

// Begin starts a transaction. Nested transactions are refused with
// storage.ErrAlreadyInTx.
func (p *PgSQL) Begin(ctx context.Context) (storage.TxStorage, error) {
	db, ok := p.DB.(*sql.DB)
	if !ok {
		return nil, storage.ErrAlreadyInTx
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin tx: %w", err)
	}

	return &PgSQL{DB: tx, Builder: goqu.NewTx(dialect, tx)}, nil
}

// WithTx runs cb in a transaction, committing when it returns nil and
// rolling back otherwise.
func (p *PgSQL) WithTx(ctx context.Context, cb func(storage storage.AllStorage) error) error {
	tx, err := p.Begin(ctx)
	if err != nil {
		return err
	}

	if err := cb(tx); err != nil {
		_ = tx.Rollback()

		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit tx: %w", err)
	}

	return nil
}

// New opens a pgx pool and wraps it in a *sql.DB for goqu and goose.
func New(ctx context.Context, options Options) (*PgSQL, error) {
	cfg, err := pgxpool.ParseConfig(options.DSN())
	if err != nil {
		return nil, fmt.Errorf("could not parse pgxpool config: %w", err)
	}
	if options.MaxOpenConnections > 0 {
		cfg.MaxConns = int32(options.MaxOpenConnections) //nolint: gosec
	}
	if options.MaxIdleConnections > 0 {
		cfg.MinConns = int32(options.MaxIdleConnections) //nolint: gosec
	}
	if options.ConnMaxLifetime > 0 {
		cfg.MaxConnLifetime = options.ConnMaxLifetime
	}
	if options.ConnMaxIdleTime > 0 {
		cfg.MaxConnIdleTime = options.ConnMaxIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create pgx Pool: %w", err)
	}
	sqlDB := stdlib.OpenDBFromPool(pool)

	return &PgSQL{
		DB:      sqlDB,
		Builder: goqu.Dialect(dialect).DB(sqlDB),
		Pool:    pool,
	}, nil
}

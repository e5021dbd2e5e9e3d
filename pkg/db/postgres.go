package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"
	"go.uber.org/zap"

	"familycal/pkg/config"
	"familycal/pkg/observability"
)

const defaultMaxConns = 5

// DB общий интерфейс пула и открытой транзакции
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Close()
}

// querier то, что умеют и pgxpool.Pool, и pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres поднимает пул, проверяет соединение и накатывает миграции
func NewPostgres(ctx context.Context, conf config.Postgres, logger *zap.SugaredLogger) (*Postgres, error) {
	poolCfg, err := poolConfig(conf, logger)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if err := migrateWith(poolCfg.ConnConfig, conf.MigrationsDir); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Infow("postgres ready", "max_conns", poolCfg.MaxConns, "migrations", conf.MigrationsDir)

	return &Postgres{Pool: pool}, nil
}

func poolConfig(conf config.Postgres, logger *zap.SugaredLogger) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(conf.ConnString)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = defaultMaxConns
	if conf.MaxConnections > 0 {
		poolCfg.MaxConns = conf.MaxConnections
	}
	poolCfg.ConnConfig.Tracer = observability.PgxTracer(logger.Named("pgx"))
	return poolCfg, nil
}

// migrateWith goose работает поверх database/sql, поэтому открываем отдельное соединение через pgx stdlib
func migrateWith(connCfg *pgx.ConnConfig, dir string) error {
	sqlDB := stdlib.OpenDB(*connCfg)
	defer sqlDB.Close()
	return Migrate(sqlDB, dir)
}

// Migrate накатывает goose-миграции из dir
func Migrate(sqlDB *sql.DB, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(sqlDB, dir); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

type txKey struct{}

func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFrom(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok && tx != nil
}

// conn транзакция из ctx, если она открыта, иначе пул
func (p *Postgres) conn(ctx context.Context) querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return p.Pool
}

func (p *Postgres) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	return p.conn(ctx).Exec(ctx, query, args...)
}

func (p *Postgres) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return p.conn(ctx).Query(ctx, query, args...)
}

func (p *Postgres) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return p.conn(ctx).QueryRow(ctx, query, args...)
}

// WithinTransaction вложенный вызов выполняется в уже открытой транзакции
func (p *Postgres) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}

	tx, err := p.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			return
		}
		err = tx.Commit(ctx)
	}()

	return fn(withTx(ctx, tx))
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

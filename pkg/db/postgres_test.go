package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"familycal/pkg/config"
)

type fakeTx struct{ pgx.Tx }

func TestWithinTransactionReusesOuterTx(t *testing.T) {
	p := &Postgres{}
	outer := fakeTx{}
	ctx := withTx(context.Background(), outer)

	var seen pgx.Tx
	err := p.WithinTransaction(ctx, func(ctx context.Context) error {
		seen, _ = txFrom(ctx)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, outer, seen)
}

func TestWithinTransactionNestedError(t *testing.T) {
	p := &Postgres{}
	ctx := withTx(context.Background(), fakeTx{})
	boom := errors.New("boom")

	err := p.WithinTransaction(ctx, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestTxFromEmpty(t *testing.T) {
	_, ok := txFrom(context.Background())
	assert.False(t, ok)
}

func TestConnPrefersTx(t *testing.T) {
	p := &Postgres{}
	tx := fakeTx{}
	assert.Equal(t, tx, p.conn(withTx(context.Background(), tx)))
}

func TestPoolConfig(t *testing.T) {
	logger := zap.NewNop().Sugar()

	cfg, err := poolConfig(config.Postgres{ConnString: "postgres://u:p@localhost:5432/familycal"}, logger)
	require.NoError(t, err)
	assert.EqualValues(t, defaultMaxConns, cfg.MaxConns)
	assert.IsType(t, &tracelog.TraceLog{}, cfg.ConnConfig.Tracer)

	cfg, err = poolConfig(config.Postgres{ConnString: "postgres://u:p@localhost:5432/familycal", MaxConnections: 20}, logger)
	require.NoError(t, err)
	assert.EqualValues(t, 20, cfg.MaxConns)

	_, err = poolConfig(config.Postgres{ConnString: "::not a dsn"}, logger)
	assert.Error(t, err)
}

package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return New(sqlx.NewDb(raw, "postgres")), mock
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	database, mock := newMockDatabase(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := database.WithinTx(context.Background(), func(ctx context.Context) error {
		_, isTx := database.Conn(ctx).(*sqlx.Tx)
		require.True(t, isTx)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	database, mock := newMockDatabase(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := database.WithinTx(context.Background(), func(ctx context.Context) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_NestedJoinsOuter(t *testing.T) {
	database, mock := newMockDatabase(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := database.WithinTx(context.Background(), func(outer context.Context) error {
		return database.WithinTx(outer, func(inner context.Context) error {
			require.Same(t, database.Conn(outer), database.Conn(inner))
			return nil
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_WithoutTxUsesPool(t *testing.T) {
	database, _ := newMockDatabase(t)
	_, isDB := database.Conn(context.Background()).(*sqlx.DB)
	require.True(t, isDB)
}

func TestAfterCommit_RunsOnlyAfterCommit(t *testing.T) {
	database, mock := newMockDatabase(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ran := false
	err := database.WithinTx(context.Background(), func(ctx context.Context) error {
		require.True(t, InTx(ctx))
		AfterCommit(ctx, func(context.Context) { ran = true })
		require.False(t, ran)
		return nil
	})
	require.NoError(t, err)
	require.True(t, ran)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAfterCommit_DroppedOnRollback(t *testing.T) {
	database, mock := newMockDatabase(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	ran := false
	err := database.WithinTx(context.Background(), func(ctx context.Context) error {
		AfterCommit(ctx, func(context.Context) { ran = true })
		return errors.New("boom")
	})
	require.Error(t, err)
	require.False(t, ran)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAfterCommit_WithoutTxRunsNow(t *testing.T) {
	ran := false
	require.False(t, InTx(context.Background()))
	AfterCommit(context.Background(), func(context.Context) { ran = true })
	require.True(t, ran)
}

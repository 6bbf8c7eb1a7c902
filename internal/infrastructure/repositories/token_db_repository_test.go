package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avatarctic/auth-workflow/internal/core/domain/token"
	"github.com/avatarctic/auth-workflow/internal/infrastructure/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*db.Database, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return db.New(sqlx.NewDb(raw, "postgres")), mock
}

var tokenRowColumns = []string{"id", "token_hash", "user_id", "type", "expires_at", "blacklisted", "created_at"}

func TestTokenDBRepository_CreateStoresHash(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewTokenDBRepository(database, nil)

	tok := &token.Token{
		ID:        uuid.New(),
		Value:     "raw-refresh-token",
		UserID:    uuid.New(),
		Type:      token.TypeRefresh,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tokens")).
		WithArgs(tok.ID, token.HashValue("raw-refresh-token"), tok.UserID, token.TypeRefresh, tok.ExpiresAt, false, tok.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), tok))
	require.Equal(t, token.HashValue("raw-refresh-token"), tok.Hash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenDBRepository_FindOneBuildsFilter(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewTokenDBRepository(database, nil)

	id, userID := uuid.New(), uuid.New()
	expires := time.Now().Add(time.Hour)

	query := regexp.QuoteMeta("SELECT " + tokenColumns + " FROM tokens WHERE token_hash = $1 AND type = $2 AND user_id = $3 AND blacklisted = $4 LIMIT 1")
	mock.ExpectQuery(query).
		WithArgs(token.HashValue("value"), token.TypeRefresh, userID, false).
		WillReturnRows(sqlmock.NewRows(tokenRowColumns).
			AddRow(id.String(), token.HashValue("value"), userID.String(), "refresh", expires, false, time.Now()))

	found, err := repo.FindOne(context.Background(), token.Filter{
		Value:       "value",
		Type:        token.TypeRefresh,
		UserID:      userID,
		Blacklisted: token.Blacklisted(false),
	})
	require.NoError(t, err)
	require.Equal(t, id, found.ID)
	require.Equal(t, userID, found.UserID)
	require.Equal(t, token.TypeRefresh, found.Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenDBRepository_FindOneNotFound(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewTokenDBRepository(database, nil)

	mock.ExpectQuery("SELECT .* FROM tokens WHERE token_hash = \\$1 LIMIT 1").
		WillReturnRows(sqlmock.NewRows(tokenRowColumns))

	_, err := repo.FindOne(context.Background(), token.Filter{Value: "missing"})
	require.ErrorIs(t, err, token.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenDBRepository_FindOneRequiresValue(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewTokenDBRepository(database, nil)

	_, err := repo.FindOne(context.Background(), token.Filter{
		Type:        token.TypeRefresh,
		Blacklisted: token.Blacklisted(false),
	})
	require.ErrorIs(t, err, token.ErrNotFound)
	// no query reaches the database
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenDBRepository_DeleteOne(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewTokenDBRepository(database, nil)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tokens WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteOne(context.Background(), id))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tokens WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.DeleteOne(context.Background(), id), token.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenDBRepository_DeleteMany(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewTokenDBRepository(database, nil)
	userID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tokens WHERE type = $1 AND user_id = $2")).
		WithArgs(token.TypeResetPassword, userID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteMany(context.Background(), token.Filter{UserID: userID, Type: token.TypeResetPassword})
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenDBRepository_DeleteManyRejectsEmptyFilter(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewTokenDBRepository(database, nil)

	_, err := repo.DeleteMany(context.Background(), token.Filter{})
	require.ErrorIs(t, err, errEmptyFilter)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenDBRepository_UsesAmbientTransaction(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewTokenDBRepository(database, nil)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tokens WHERE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := errors.New("user update failed")
	err := database.WithinTx(context.Background(), func(ctx context.Context) error {
		if _, err := repo.DeleteMany(ctx, token.Filter{UserID: userID, Type: token.TypeVerifyEmail}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenDBRepository_DeleteExpired(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewTokenDBRepository(database, nil)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tokens WHERE expires_at < NOW()")).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 7, n)
}

package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avatarctic/auth-workflow/internal/core/domain/user"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "name", "email", "password_hash", "role", "is_email_verified", "created_at", "updated_at"}

func sampleUser() *user.User {
	now := time.Now()
	return &user.User{
		ID:           uuid.New(),
		Name:         "Jane",
		Email:        "jane@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         user.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_Create(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewUserRepository(database, nil)
	u := sampleUser()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(u.ID, u.Name, u.Email, u.PasswordHash, u.Role, false, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewUserRepository(database, nil)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), sampleUser())
	require.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewUserRepository(database, nil)
	u := sampleUser()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE LOWER(email) = LOWER($1)")).
		WithArgs(u.Email).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(u.ID.String(), u.Name, u.Email, u.PasswordHash, "user", true, u.CreatedAt, u.UpdatedAt))

	found, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, found.ID)
	require.Equal(t, u.PasswordHash, found.PasswordHash)
	require.True(t, found.EmailVerified)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewUserRepository(database, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestUserRepository_UpdateMissingRow(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewUserRepository(database, nil)
	u := sampleUser()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs(u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.EmailVerified, u.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Update(context.Background(), u), user.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewUserRepository(database, nil)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}

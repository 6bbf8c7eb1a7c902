package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avatarctic/auth-workflow/internal/core/domain/token"
	"github.com/avatarctic/auth-workflow/internal/core/ports"
	"github.com/avatarctic/auth-workflow/internal/infrastructure/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const tokenColumns = `id, token_hash, user_id, type, expires_at, blacklisted, created_at`

// errEmptyFilter guards against an unbounded DELETE.
var errEmptyFilter = errors.New("token filter must constrain at least one field")

type TokenDBRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewTokenDBRepository creates a new token repository. Token values are
// stored as sha256 hashes and never in clear text.
func NewTokenDBRepository(database *db.Database, logger *logrus.Logger) ports.TokenRepository {
	return &TokenDBRepository{db: database, logger: logger}
}

func (r *TokenDBRepository) Create(ctx context.Context, t *token.Token) error {
	if t.Hash == "" {
		t.Hash = token.HashValue(t.Value)
	}
	query := `
		INSERT INTO tokens (id, token_hash, user_id, type, expires_at, blacklisted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Conn(ctx).ExecContext(ctx, query,
		t.ID, t.Hash, t.UserID, t.Type, t.ExpiresAt, t.Blacklisted, t.CreatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": t.UserID, "type": t.Type}).WithError(err).Error("db: failed to store token")
		}
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// FindOne returns the first record matching filter, or token.ErrNotFound.
func (r *TokenDBRepository) FindOne(ctx context.Context, filter token.Filter) (*token.Token, error) {
	if !filter.IsLookup() {
		return nil, token.ErrNotFound
	}
	where, args := buildTokenWhere(filter)
	query := `SELECT ` + tokenColumns + ` FROM tokens` + where + ` LIMIT 1`

	var t token.Token
	if err := sqlx.GetContext(ctx, r.db.Conn(ctx), &t, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, token.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	return &t, nil
}

func (r *TokenDBRepository) DeleteOne(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return requireAffected(res, token.ErrNotFound)
}

// DeleteMany removes every record matching filter and reports how many
// were removed. An empty filter is rejected.
func (r *TokenDBRepository) DeleteMany(ctx context.Context, filter token.Filter) (int64, error) {
	if filter.IsEmpty() {
		return 0, errEmptyFilter
	}
	where, args := buildTokenWhere(filter)

	res, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM tokens`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if r.logger != nil && n > 0 {
		r.logger.WithFields(logrus.Fields{"user_id": filter.UserID, "type": filter.Type, "deleted": n}).Debug("db: tokens deleted")
	}
	return n, nil
}

func (r *TokenDBRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return res.RowsAffected()
}

func buildTokenWhere(f token.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(column string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if f.Value != "" {
		add("token_hash", token.HashValue(f.Value))
	}
	if f.Type != "" {
		add("type", f.Type)
	}
	if f.UserID != uuid.Nil {
		add("user_id", f.UserID)
	}
	if f.Blacklisted != nil {
		add("blacklisted", *f.Blacklisted)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

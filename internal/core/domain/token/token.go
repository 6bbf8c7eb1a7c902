package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("token not found")
	ErrInvalid  = errors.New("invalid token")
)

// Type represents the purpose a token was issued for
type Type string

const (
	TypeAccess        Type = "access"
	TypeRefresh       Type = "refresh"
	TypeResetPassword Type = "resetPassword"
	TypeVerifyEmail   Type = "verifyEmail"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case TypeAccess, TypeRefresh, TypeResetPassword, TypeVerifyEmail:
		return true
	default:
		return false
	}
}

// IsPersisted reports whether tokens of this type are kept in the token store.
// Access tokens are stateless.
func (t Type) IsPersisted() bool {
	return t.IsValid() && t != TypeAccess
}

// Token is a stored token record. Only the hash of the token value is
// persisted; Value is populated when the token is created.
type Token struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Value       string    `json:"-" db:"-"`
	Hash        string    `json:"-" db:"token_hash"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Type        Type      `json:"type" db:"type"`
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
	Blacklisted bool      `json:"blacklisted" db:"blacklisted"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// IsExpired checks if the token has expired
func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// Filter selects token records. Zero-valued fields are ignored.
type Filter struct {
	Value       string
	Type        Type
	UserID      uuid.UUID
	Blacklisted *bool
}

// IsLookup reports whether the filter pins a single token value.
// FindOne only accepts lookup filters.
func (f Filter) IsLookup() bool {
	return f.Value != ""
}

// IsEmpty reports whether the filter would match every record.
func (f Filter) IsEmpty() bool {
	return f.Value == "" && f.Type == "" && f.UserID == uuid.Nil && f.Blacklisted == nil
}

// Matches reports whether t satisfies the filter.
func (f Filter) Matches(t *Token) bool {
	if t == nil {
		return false
	}
	if f.Value != "" && t.Hash != HashValue(f.Value) {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.UserID != uuid.Nil && t.UserID != f.UserID {
		return false
	}
	if f.Blacklisted != nil && t.Blacklisted != *f.Blacklisted {
		return false
	}
	return true
}

// Blacklisted returns a pointer for use in Filter.Blacklisted.
func Blacklisted(b bool) *bool {
	return &b
}

// HashValue returns the hex sha256 digest under which a token value is stored.
func HashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

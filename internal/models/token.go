package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates the two session artifact types.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"

	// TokenAll is a deactivation scope, never an issued kind.
	TokenAll TokenKind = "all"
)

// Token is one issued session credential row. At most one active row of a
// given kind exists per user; rows become inactive on logout, rotation or
// account deletion and are hard-deleted only by the purge operation.
type Token struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Kind      TokenKind `db:"kind" json:"kind"`
	Token     string    `db:"token" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TokenClaims is the signed JWT payload. The registered ID claim carries the
// issuance uuid that keeps re-issued tokens distinct.
type TokenClaims struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Kind     TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

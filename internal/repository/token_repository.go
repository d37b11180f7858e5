package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AriosJentu/PickerApp-sub000/internal/models"
)

// TokenRepository persists issued session credentials.
type TokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository creates a new instance of TokenRepository.
func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create inserts a freshly issued credential row with active=true.
func (r *TokenRepository) Create(ctx context.Context, token *models.Token) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	token.Active = true

	const query = `INSERT INTO tokens (id, user_id, kind, token, expires_at, active, created_at) VALUES (:id, :user_id, :kind, :token, :expires_at, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

// FindActive returns the active credential row matching the exact raw value
// and kind. sql.ErrNoRows is returned untouched so callers can translate it.
func (r *TokenRepository) FindActive(ctx context.Context, raw string, kind models.TokenKind) (*models.Token, error) {
	const query = `SELECT id, user_id, kind, token, expires_at, active, created_at FROM tokens WHERE token = $1 AND kind = $2 AND active = TRUE LIMIT 1`
	var token models.Token
	if err := r.db.GetContext(ctx, &token, query, raw, kind); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find active token: %w", err)
	}
	return &token, nil
}

// DeactivateForUser flips active=false on every matching row for the user.
// The models.TokenAll scope widens the update to both kinds. Idempotent.
func (r *TokenRepository) DeactivateForUser(ctx context.Context, userID string, kind models.TokenKind) error {
	if kind == models.TokenAll {
		const query = `UPDATE tokens SET active = FALSE WHERE user_id = $1 AND active = TRUE`
		if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("deactivate tokens: %w", err)
		}
		return nil
	}

	const query = `UPDATE tokens SET active = FALSE WHERE user_id = $1 AND kind = $2 AND active = TRUE`
	if _, err := r.db.ExecContext(ctx, query, userID, kind); err != nil {
		return fmt.Errorf("deactivate tokens: %w", err)
	}
	return nil
}

// PurgeInactive hard-deletes inactive rows, scoped to one user or global
// when userID is nil. Returns the number of rows removed.
func (r *TokenRepository) PurgeInactive(ctx context.Context, userID *string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if userID != nil {
		const query = `DELETE FROM tokens WHERE user_id = $1 AND active = FALSE`
		res, err = r.db.ExecContext(ctx, query, *userID)
	} else {
		const query = `DELETE FROM tokens WHERE active = FALSE`
		res, err = r.db.ExecContext(ctx, query)
	}
	if err != nil {
		return 0, fmt.Errorf("purge inactive tokens: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge inactive tokens: %w", err)
	}
	return removed, nil
}

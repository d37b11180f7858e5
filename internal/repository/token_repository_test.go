package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AriosJentu/PickerApp-sub000/internal/models"
)

func TestCreateToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTokenRepository(db)

	mock.ExpectExec("INSERT INTO tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	token := &models.Token{UserID: "u1", Kind: models.TokenAccess, Token: "raw", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(context.Background(), token))
	assert.NotEmpty(t, token.ID)
	assert.True(t, token.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTokenRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "kind", "token", "expires_at", "active", "created_at"}).
		AddRow("t1", "u1", string(models.TokenAccess), "raw", now.Add(time.Hour), true, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, kind, token, expires_at, active, created_at FROM tokens WHERE token = $1 AND kind = $2 AND active = TRUE LIMIT 1")).
		WithArgs("raw", string(models.TokenAccess)).
		WillReturnRows(rows)

	token, err := repo.FindActive(context.Background(), "raw", models.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", token.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveTokenMissingRowsPassThrough(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTokenRepository(db)

	mock.ExpectQuery("SELECT .* FROM tokens").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActive(context.Background(), "revoked", models.TokenAccess)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateForUserAllKinds(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTokenRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tokens SET active = FALSE WHERE user_id = $1 AND active = TRUE")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeactivateForUser(context.Background(), "u1", models.TokenAll))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateForUserSingleKind(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTokenRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tokens SET active = FALSE WHERE user_id = $1 AND kind = $2 AND active = TRUE")).
		WithArgs("u1", string(models.TokenAccess)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeactivateForUser(context.Background(), "u1", models.TokenAccess))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeInactiveScopedToUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTokenRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tokens WHERE user_id = $1 AND active = FALSE")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	userID := "u1"
	removed, err := repo.PurgeInactive(context.Background(), &userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeInactiveGlobal(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTokenRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tokens WHERE active = FALSE")).
		WillReturnResult(sqlmock.NewResult(0, 5))

	removed, err := repo.PurgeInactive(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

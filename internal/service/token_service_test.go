package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
)

type fakeTokenRepo struct {
	rows map[string]*models.Token
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{rows: make(map[string]*models.Token)}
}

func (f *fakeTokenRepo) Create(ctx context.Context, token *models.Token) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	token.Active = true
	copied := *token
	f.rows[token.Token] = &copied
	return nil
}

func (f *fakeTokenRepo) FindActive(ctx context.Context, raw string, kind models.TokenKind) (*models.Token, error) {
	row, ok := f.rows[raw]
	if !ok || !row.Active || row.Kind != kind {
		return nil, sql.ErrNoRows
	}
	copied := *row
	return &copied, nil
}

func (f *fakeTokenRepo) DeactivateForUser(ctx context.Context, userID string, kind models.TokenKind) error {
	for _, row := range f.rows {
		if row.UserID != userID {
			continue
		}
		if kind == models.TokenAll || row.Kind == kind {
			row.Active = false
		}
	}
	return nil
}

func (f *fakeTokenRepo) PurgeInactive(ctx context.Context, userID *string) (int64, error) {
	var removed int64
	for raw, row := range f.rows {
		if row.Active {
			continue
		}
		if userID != nil && row.UserID != *userID {
			continue
		}
		delete(f.rows, raw)
		removed++
	}
	return removed, nil
}

type fakeUserResolver struct {
	users map[string]*models.User
}

func (f *fakeUserResolver) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func newTokenFixture() (*TokenService, *fakeTokenRepo, *models.User) {
	user := &models.User{ID: "u1", Username: "alice", Role: models.RoleUser, Active: true}
	repo := newFakeTokenRepo()
	resolver := &fakeUserResolver{users: map[string]*models.User{user.ID: user}}
	svc := NewTokenService(repo, resolver, nil, TokenConfig{
		Secret:     "test-secret",
		Issuer:     "pickerapp",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	return svc, repo, user
}

func TestIssueValidateRoundTrip(t *testing.T) {
	svc, _, user := newTokenFixture()
	ctx := context.Background()

	raw, token, err := svc.Issue(ctx, user, models.TokenAccess, svc.TTLFor(models.TokenAccess))
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.True(t, token.Active)

	subject, err := svc.Validate(ctx, raw, models.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject.ID)
	assert.Equal(t, user.Username, subject.Username)
	assert.Equal(t, models.RoleUser, subject.Role)
}

func TestValidateMalformedToken(t *testing.T) {
	svc, _, _ := newTokenFixture()

	_, err := svc.Validate(context.Background(), "not-a-token", models.TokenAccess)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenInvalid.Code, appErrors.FromError(err).Code)
}

func TestValidateExpiredToken(t *testing.T) {
	svc, _, user := newTokenFixture()
	ctx := context.Background()

	raw, _, err := svc.Issue(ctx, user, models.TokenAccess, -time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, raw, models.TokenAccess)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenExpired.Code, appErrors.FromError(err).Code)
}

func TestValidateWrongKind(t *testing.T) {
	svc, _, user := newTokenFixture()
	ctx := context.Background()

	raw, _, err := svc.Issue(ctx, user, models.TokenRefresh, svc.TTLFor(models.TokenRefresh))
	require.NoError(t, err)

	_, err = svc.Validate(ctx, raw, models.TokenAccess)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenWrongType.Code, appErrors.FromError(err).Code)
}

func TestValidateRevokedToken(t *testing.T) {
	svc, _, user := newTokenFixture()
	ctx := context.Background()

	raw, _, err := svc.Issue(ctx, user, models.TokenAccess, svc.TTLFor(models.TokenAccess))
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, user.ID, models.TokenAll))

	_, err = svc.Validate(ctx, raw, models.TokenAccess)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenRevoked.Code, appErrors.FromError(err).Code)
}

func TestSecondSessionRevokesFirst(t *testing.T) {
	svc, _, user := newTokenFixture()
	ctx := context.Background()

	first, _, err := svc.Issue(ctx, user, models.TokenAccess, svc.TTLFor(models.TokenAccess))
	require.NoError(t, err)

	// a fresh login deactivates everything before issuing anew
	require.NoError(t, svc.Deactivate(ctx, user.ID, models.TokenAll))
	second, _, err := svc.Issue(ctx, user, models.TokenAccess, svc.TTLFor(models.TokenAccess))
	require.NoError(t, err)

	_, err = svc.Validate(ctx, first, models.TokenAccess)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenRevoked.Code, appErrors.FromError(err).Code)

	subject, err := svc.Validate(ctx, second, models.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject.ID)
}

func TestRefreshRotationKeepsRefreshValid(t *testing.T) {
	svc, _, user := newTokenFixture()
	ctx := context.Background()

	_, _, err := svc.Issue(ctx, user, models.TokenAccess, svc.TTLFor(models.TokenAccess))
	require.NoError(t, err)
	refresh, _, err := svc.Issue(ctx, user, models.TokenRefresh, svc.TTLFor(models.TokenRefresh))
	require.NoError(t, err)

	// rotation deactivates only the access credential
	require.NoError(t, svc.Deactivate(ctx, user.ID, models.TokenAccess))
	rotated, _, err := svc.Issue(ctx, user, models.TokenAccess, svc.TTLFor(models.TokenAccess))
	require.NoError(t, err)

	_, err = svc.Validate(ctx, refresh, models.TokenRefresh)
	require.NoError(t, err)
	_, err = svc.Validate(ctx, rotated, models.TokenAccess)
	require.NoError(t, err)
}

func TestDeactivateIsIdempotent(t *testing.T) {
	svc, _, user := newTokenFixture()
	ctx := context.Background()

	raw, _, err := svc.Issue(ctx, user, models.TokenAccess, svc.TTLFor(models.TokenAccess))
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, user.ID, models.TokenAll))
	require.NoError(t, svc.Deactivate(ctx, user.ID, models.TokenAll))

	_, err = svc.Validate(ctx, raw, models.TokenAccess)
	assert.Equal(t, appErrors.ErrTokenRevoked.Code, appErrors.FromError(err).Code)
}

func TestPurgeInactiveCounts(t *testing.T) {
	svc, _, user := newTokenFixture()
	ctx := context.Background()

	_, _, err := svc.Issue(ctx, user, models.TokenAccess, svc.TTLFor(models.TokenAccess))
	require.NoError(t, err)
	_, _, err = svc.Issue(ctx, user, models.TokenRefresh, svc.TTLFor(models.TokenRefresh))
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, user.ID, models.TokenAll))

	removed, err := svc.PurgeInactive(ctx, &user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = svc.PurgeInactive(ctx, &user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestPurgeLeavesActiveRows(t *testing.T) {
	svc, repo, user := newTokenFixture()
	ctx := context.Background()

	raw, _, err := svc.Issue(ctx, user, models.TokenAccess, svc.TTLFor(models.TokenAccess))
	require.NoError(t, err)

	removed, err := svc.PurgeInactive(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
	assert.Len(t, repo.rows, 1)

	_, err = svc.Validate(ctx, raw, models.TokenAccess)
	require.NoError(t, err)
}

func TestValidateInactiveAccount(t *testing.T) {
	svc, _, user := newTokenFixture()
	ctx := context.Background()

	raw, _, err := svc.Issue(ctx, user, models.TokenAccess, svc.TTLFor(models.TokenAccess))
	require.NoError(t, err)

	user.Active = false
	_, err = svc.Validate(ctx, raw, models.TokenAccess)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

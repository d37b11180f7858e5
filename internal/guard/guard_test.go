package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
)

func subjectWith(role models.Role) *models.Subject {
	return &models.Subject{ID: "u1", Username: "alice", Role: role}
}

func TestRequireOrdinalTable(t *testing.T) {
	cases := []struct {
		name     string
		role     models.Role
		required models.Role
		allowed  bool
	}{
		{"user meets user", models.RoleUser, models.RoleUser, true},
		{"user below moderator", models.RoleUser, models.RoleModerator, false},
		{"user below admin", models.RoleUser, models.RoleAdmin, false},
		{"moderator meets user", models.RoleModerator, models.RoleUser, true},
		{"moderator meets moderator", models.RoleModerator, models.RoleModerator, true},
		{"moderator below admin", models.RoleModerator, models.RoleAdmin, false},
		{"admin meets user", models.RoleAdmin, models.RoleUser, true},
		{"admin meets moderator", models.RoleAdmin, models.RoleModerator, true},
		{"admin meets admin", models.RoleAdmin, models.RoleAdmin, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Require(subjectWith(tc.role), tc.required)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
			}
		})
	}
}

func TestRequireNilSubject(t *testing.T) {
	err := Require(nil, models.RoleUser)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	assert.Error(t, RequireOr(nil, models.RoleUser, true))
	assert.Error(t, RequireAnd(nil, models.RoleUser, true))
}

func TestRequireOr(t *testing.T) {
	// ownership alone suffices
	assert.NoError(t, RequireOr(subjectWith(models.RoleUser), models.RoleModerator, true))
	// role alone suffices
	assert.NoError(t, RequireOr(subjectWith(models.RoleModerator), models.RoleModerator, false))
	// neither holds
	err := RequireOr(subjectWith(models.RoleUser), models.RoleModerator, false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestRequireAnd(t *testing.T) {
	assert.NoError(t, RequireAnd(subjectWith(models.RoleAdmin), models.RoleAdmin, true))
	assert.Error(t, RequireAnd(subjectWith(models.RoleAdmin), models.RoleAdmin, false))
	assert.Error(t, RequireAnd(subjectWith(models.RoleUser), models.RoleAdmin, true))
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	"github.com/AriosJentu/PickerApp-sub000/internal/query"
)

var userColumns = []string{"id", "username", "email", "password_hash", "role", "active", "created_at", "updated_at"}

// usersTable is the static filter specification for user listings. The
// "search" field carries no column of its own; the hook spreads it across
// username and email.
var usersTable = query.Table{
	Name:    "users",
	Columns: userColumns,
	Spec: query.Spec{
		"id":       query.Exact("id"),
		"username": query.ILike("username"),
		"email":    query.ILike("email").DependentOn("username"),
		"role":     query.Exact("role"),
		"active":   query.Exact("active").WithDefault(true),
		"search":   query.Ignored(),
	},
	Sorts: map[string]string{
		"username":   "username",
		"role":       "role",
		"created_at": "created_at",
	},
	Hook: func(ignored query.Filters) squirrel.Sqlizer {
		raw, ok := ignored["search"]
		if !ok || raw == nil {
			return nil
		}
		needle := "%" + fmt.Sprintf("%v", raw) + "%"
		return squirrel.Or{
			squirrel.ILike{"username": needle},
			squirrel.ILike{"email": needle},
		}
	},
}

// UserRepository provides database access for user management.
type UserRepository struct {
	db     *sqlx.DB
	engine *query.Engine
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB, engine *query.Engine) *UserRepository {
	return &UserRepository{db: db, engine: engine}
}

// FindByUsername returns a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	const q = `SELECT id, username, email, password_hash, role, active, created_at, updated_at FROM users WHERE username = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, q, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const q = `SELECT id, username, email, password_hash, role, active, created_at, updated_at FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const q = `INSERT INTO users (id, username, email, password_hash, role, active, created_at, updated_at) VALUES (:id, :username, :email, :password_hash, :role, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update updates mutable fields of a user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const q = `UPDATE users SET username = :username, email = :email, password_hash = :password_hash, role = :role, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, q, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdateRole changes the role of a user.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	const q = `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id, role, time.Now().UTC()); err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return nil
}

// Delete removes the user row. Credential cleanup happens in the service
// before this is called.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM users WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// List returns users matching the filter parameters.
func (r *UserRepository) List(ctx context.Context, p query.Params) ([]models.User, error) {
	var users []models.User
	if err := r.engine.List(ctx, usersTable, p, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of users matching the filters.
func (r *UserRepository) Count(ctx context.Context, filters query.Filters) (int, error) {
	return r.engine.Count(ctx, usersTable, filters)
}

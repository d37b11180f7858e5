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

var lobbyColumns = []string{"id", "host_id", "algorithm_id", "name", "status", "created_at", "updated_at"}

// lobbiesTable is the static filter specification for lobby listings.
// host_username resolves through a subquery and is suppressed whenever the
// caller already filters by host_id; archived lobbies are hidden unless the
// caller asks for a status explicitly.
var lobbiesTable = query.Table{
	Name:    "lobbies",
	Columns: lobbyColumns,
	Spec: query.Spec{
		"id":           query.Exact("id"),
		"host_id":      query.Exact("host_id"),
		"algorithm_id": query.Exact("algorithm_id"),
		"name":         query.ILike("name"),
		"status": query.Custom("status", func(column string, value any) squirrel.Sqlizer {
			if value == nil {
				return nil
			}
			return squirrel.Eq{column: value}
		}).WithDefault([]models.LobbyStatus{models.LobbyCreated, models.LobbyActive}),
		"host_username": query.Custom("host_id", func(column string, value any) squirrel.Sqlizer {
			if value == nil {
				return nil
			}
			return squirrel.Expr(column+" IN (SELECT id FROM users WHERE username ILIKE ?)", "%"+fmt.Sprintf("%v", value)+"%")
		}).DependentOn("host_id"),
		"search": query.Ignored(),
	},
	Sorts: map[string]string{
		"name":       "name",
		"status":     "status",
		"created_at": "created_at",
	},
	Hook: func(ignored query.Filters) squirrel.Sqlizer {
		raw, ok := ignored["search"]
		if !ok || raw == nil {
			return nil
		}
		needle := "%" + fmt.Sprintf("%v", raw) + "%"
		return squirrel.Or{
			squirrel.ILike{"name": needle},
			squirrel.ILike{"status": needle},
		}
	},
}

// LobbyRepository provides database access for lobbies.
type LobbyRepository struct {
	db     *sqlx.DB
	engine *query.Engine
}

// NewLobbyRepository creates a new instance of LobbyRepository.
func NewLobbyRepository(db *sqlx.DB, engine *query.Engine) *LobbyRepository {
	return &LobbyRepository{db: db, engine: engine}
}

// FindByID returns a lobby by identifier.
func (r *LobbyRepository) FindByID(ctx context.Context, id string) (*models.Lobby, error) {
	const q = `SELECT id, host_id, algorithm_id, name, status, created_at, updated_at FROM lobbies WHERE id = $1 LIMIT 1`
	var lobby models.Lobby
	if err := r.db.GetContext(ctx, &lobby, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find lobby by id: %w", err)
	}
	return &lobby, nil
}

// Create inserts a new lobby.
func (r *LobbyRepository) Create(ctx context.Context, lobby *models.Lobby) error {
	if lobby.ID == "" {
		lobby.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lobby.CreatedAt.IsZero() {
		lobby.CreatedAt = now
	}
	lobby.UpdatedAt = now
	if lobby.Status == "" {
		lobby.Status = models.LobbyCreated
	}

	const q = `INSERT INTO lobbies (id, host_id, algorithm_id, name, status, created_at, updated_at) VALUES (:id, :host_id, :algorithm_id, :name, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, lobby); err != nil {
		return fmt.Errorf("create lobby: %w", err)
	}
	return nil
}

// Update updates mutable fields of a lobby.
func (r *LobbyRepository) Update(ctx context.Context, lobby *models.Lobby) error {
	lobby.UpdatedAt = time.Now().UTC()
	const q = `UPDATE lobbies SET name = :name, algorithm_id = :algorithm_id, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, q, lobby); err != nil {
		return fmt.Errorf("update lobby: %w", err)
	}
	return nil
}

// Delete removes a lobby row.
func (r *LobbyRepository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM lobbies WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete lobby: %w", err)
	}
	return nil
}

// List returns lobbies matching the filter parameters.
func (r *LobbyRepository) List(ctx context.Context, p query.Params) ([]models.Lobby, error) {
	var lobbies []models.Lobby
	if err := r.engine.List(ctx, lobbiesTable, p, &lobbies); err != nil {
		return nil, err
	}
	return lobbies, nil
}

// Count returns the number of lobbies matching the filters.
func (r *LobbyRepository) Count(ctx context.Context, filters query.Filters) (int, error) {
	return r.engine.Count(ctx, lobbiesTable, filters)
}

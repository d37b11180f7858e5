package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	"github.com/AriosJentu/PickerApp-sub000/internal/query"
)

var teamColumns = []string{"id", "lobby_id", "name", "created_at", "updated_at"}

var teamsTable = query.Table{
	Name:    "teams",
	Columns: teamColumns,
	Spec: query.Spec{
		"id":       query.Exact("id"),
		"lobby_id": query.Exact("lobby_id"),
		"name":     query.ILike("name"),
	},
	Sorts: map[string]string{
		"name":       "name",
		"created_at": "created_at",
	},
}

// TeamRepository provides database access for teams.
type TeamRepository struct {
	db     *sqlx.DB
	engine *query.Engine
}

// NewTeamRepository creates a new instance of TeamRepository.
func NewTeamRepository(db *sqlx.DB, engine *query.Engine) *TeamRepository {
	return &TeamRepository{db: db, engine: engine}
}

// FindByID returns a team by identifier.
func (r *TeamRepository) FindByID(ctx context.Context, id string) (*models.Team, error) {
	const q = `SELECT id, lobby_id, name, created_at, updated_at FROM teams WHERE id = $1 LIMIT 1`
	var team models.Team
	if err := r.db.GetContext(ctx, &team, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find team by id: %w", err)
	}
	return &team, nil
}

// Create inserts a new team.
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if team.CreatedAt.IsZero() {
		team.CreatedAt = now
	}
	team.UpdatedAt = now

	const q = `INSERT INTO teams (id, lobby_id, name, created_at, updated_at) VALUES (:id, :lobby_id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, team); err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

// Update updates mutable fields of a team.
func (r *TeamRepository) Update(ctx context.Context, team *models.Team) error {
	team.UpdatedAt = time.Now().UTC()
	const q = `UPDATE teams SET name = :name, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, q, team); err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	return nil
}

// Delete removes a team row.
func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM teams WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	return nil
}

// List returns teams matching the filter parameters.
func (r *TeamRepository) List(ctx context.Context, p query.Params) ([]models.Team, error) {
	var teams []models.Team
	if err := r.engine.List(ctx, teamsTable, p, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// Count returns the number of teams matching the filters.
func (r *TeamRepository) Count(ctx context.Context, filters query.Filters) (int, error) {
	return r.engine.Count(ctx, teamsTable, filters)
}

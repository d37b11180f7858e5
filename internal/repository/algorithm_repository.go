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

var algorithmColumns = []string{"id", "owner_id", "name", "script", "teams_count", "maps_count", "created_at", "updated_at"}

var algorithmsTable = query.Table{
	Name:    "algorithms",
	Columns: algorithmColumns,
	Spec: query.Spec{
		"id":          query.Exact("id"),
		"owner_id":    query.Exact("owner_id"),
		"name":        query.ILike("name"),
		"teams_count": query.Exact("teams_count"),
		"maps_count":  query.Exact("maps_count"),
		"search":      query.Ignored(),
	},
	Sorts: map[string]string{
		"name":        "name",
		"teams_count": "teams_count",
		"created_at":  "created_at",
	},
	Hook: func(ignored query.Filters) squirrel.Sqlizer {
		raw, ok := ignored["search"]
		if !ok || raw == nil {
			return nil
		}
		needle := "%" + fmt.Sprintf("%v", raw) + "%"
		return squirrel.Or{
			squirrel.ILike{"name": needle},
			squirrel.ILike{"script": needle},
		}
	},
}

// AlgorithmRepository provides database access for pick/ban algorithms.
type AlgorithmRepository struct {
	db     *sqlx.DB
	engine *query.Engine
}

// NewAlgorithmRepository creates a new instance of AlgorithmRepository.
func NewAlgorithmRepository(db *sqlx.DB, engine *query.Engine) *AlgorithmRepository {
	return &AlgorithmRepository{db: db, engine: engine}
}

// FindByID returns an algorithm by identifier.
func (r *AlgorithmRepository) FindByID(ctx context.Context, id string) (*models.Algorithm, error) {
	const q = `SELECT id, owner_id, name, script, teams_count, maps_count, created_at, updated_at FROM algorithms WHERE id = $1 LIMIT 1`
	var algorithm models.Algorithm
	if err := r.db.GetContext(ctx, &algorithm, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find algorithm by id: %w", err)
	}
	return &algorithm, nil
}

// Create inserts a new algorithm.
func (r *AlgorithmRepository) Create(ctx context.Context, algorithm *models.Algorithm) error {
	if algorithm.ID == "" {
		algorithm.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if algorithm.CreatedAt.IsZero() {
		algorithm.CreatedAt = now
	}
	algorithm.UpdatedAt = now

	const q = `INSERT INTO algorithms (id, owner_id, name, script, teams_count, maps_count, created_at, updated_at) VALUES (:id, :owner_id, :name, :script, :teams_count, :maps_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, algorithm); err != nil {
		return fmt.Errorf("create algorithm: %w", err)
	}
	return nil
}

// Update updates mutable fields of an algorithm.
func (r *AlgorithmRepository) Update(ctx context.Context, algorithm *models.Algorithm) error {
	algorithm.UpdatedAt = time.Now().UTC()
	const q = `UPDATE algorithms SET name = :name, script = :script, teams_count = :teams_count, maps_count = :maps_count, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, q, algorithm); err != nil {
		return fmt.Errorf("update algorithm: %w", err)
	}
	return nil
}

// Delete removes an algorithm row.
func (r *AlgorithmRepository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM algorithms WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete algorithm: %w", err)
	}
	return nil
}

// List returns algorithms matching the filter parameters.
func (r *AlgorithmRepository) List(ctx context.Context, p query.Params) ([]models.Algorithm, error) {
	var algorithms []models.Algorithm
	if err := r.engine.List(ctx, algorithmsTable, p, &algorithms); err != nil {
		return nil, err
	}
	return algorithms, nil
}

// Count returns the number of algorithms matching the filters.
func (r *AlgorithmRepository) Count(ctx context.Context, filters query.Filters) (int, error) {
	return r.engine.Count(ctx, algorithmsTable, filters)
}

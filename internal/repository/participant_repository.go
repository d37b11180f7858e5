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

var participantColumns = []string{"id", "lobby_id", "user_id", "team_id", "created_at"}

// participantsTable is the static filter specification for participants.
// The unassigned flag only makes sense when no team filter is given, so it
// declares team_id as its dependency.
var participantsTable = query.Table{
	Name:    "participants",
	Columns: participantColumns,
	Spec: query.Spec{
		"id":       query.Exact("id"),
		"lobby_id": query.Exact("lobby_id"),
		"user_id":  query.Exact("user_id"),
		"team_id":  query.Exact("team_id"),
		"unassigned": query.Custom("team_id", func(column string, value any) squirrel.Sqlizer {
			flag, ok := value.(bool)
			if !ok {
				return nil
			}
			if flag {
				return squirrel.Eq{column: nil}
			}
			return squirrel.NotEq{column: nil}
		}).DependentOn("team_id"),
	},
	Sorts: map[string]string{
		"created_at": "created_at",
	},
}

// ParticipantRepository provides database access for lobby participants.
type ParticipantRepository struct {
	db     *sqlx.DB
	engine *query.Engine
}

// NewParticipantRepository creates a new instance of ParticipantRepository.
func NewParticipantRepository(db *sqlx.DB, engine *query.Engine) *ParticipantRepository {
	return &ParticipantRepository{db: db, engine: engine}
}

// FindByID returns a participant by identifier.
func (r *ParticipantRepository) FindByID(ctx context.Context, id string) (*models.Participant, error) {
	const q = `SELECT id, lobby_id, user_id, team_id, created_at FROM participants WHERE id = $1 LIMIT 1`
	var participant models.Participant
	if err := r.db.GetContext(ctx, &participant, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find participant by id: %w", err)
	}
	return &participant, nil
}

// FindByLobbyAndUser returns the participant row for a user inside a lobby.
func (r *ParticipantRepository) FindByLobbyAndUser(ctx context.Context, lobbyID, userID string) (*models.Participant, error) {
	const q = `SELECT id, lobby_id, user_id, team_id, created_at FROM participants WHERE lobby_id = $1 AND user_id = $2 LIMIT 1`
	var participant models.Participant
	if err := r.db.GetContext(ctx, &participant, q, lobbyID, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find participant: %w", err)
	}
	return &participant, nil
}

// Create inserts a new participant.
func (r *ParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	if participant.ID == "" {
		participant.ID = uuid.NewString()
	}
	if participant.CreatedAt.IsZero() {
		participant.CreatedAt = time.Now().UTC()
	}

	const q = `INSERT INTO participants (id, lobby_id, user_id, team_id, created_at) VALUES (:id, :lobby_id, :user_id, :team_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, q, participant); err != nil {
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

// AssignTeam moves the participant onto a team (or off, when teamID is nil).
func (r *ParticipantRepository) AssignTeam(ctx context.Context, id string, teamID *string) error {
	const q = `UPDATE participants SET team_id = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id, teamID); err != nil {
		return fmt.Errorf("assign participant team: %w", err)
	}
	return nil
}

// Delete removes a participant row.
func (r *ParticipantRepository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM participants WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return nil
}

// List returns participants matching the filter parameters.
func (r *ParticipantRepository) List(ctx context.Context, p query.Params) ([]models.Participant, error) {
	var participants []models.Participant
	if err := r.engine.List(ctx, participantsTable, p, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

// Count returns the number of participants matching the filters.
func (r *ParticipantRepository) Count(ctx context.Context, filters query.Filters) (int, error) {
	return r.engine.Count(ctx, participantsTable, filters)
}

package models

import "time"

// Participant links a user to a lobby, optionally assigned to a team.
type Participant struct {
	ID        string    `db:"id" json:"id"`
	LobbyID   string    `db:"lobby_id" json:"lobby_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	TeamID    *string   `db:"team_id" json:"team_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

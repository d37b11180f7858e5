package models

import "time"

// Team groups participants inside a lobby.
type Team struct {
	ID        string    `db:"id" json:"id"`
	LobbyID   string    `db:"lobby_id" json:"lobby_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

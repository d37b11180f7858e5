package models

import "time"

// LobbyStatus tracks the lifecycle of a lobby.
type LobbyStatus string

const (
	LobbyCreated  LobbyStatus = "created"
	LobbyActive   LobbyStatus = "active"
	LobbyArchived LobbyStatus = "archived"
)

// Lobby is a pick/ban session container hosted by a user and governed by an
// algorithm definition.
type Lobby struct {
	ID          string      `db:"id" json:"id"`
	HostID      string      `db:"host_id" json:"host_id"`
	AlgorithmID string      `db:"algorithm_id" json:"algorithm_id"`
	Name        string      `db:"name" json:"name"`
	Status      LobbyStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

package models

import "time"

// Algorithm describes a pick/ban sequence definition owned by a user. The
// script grammar itself is validated by an external collaborator.
type Algorithm struct {
	ID         string    `db:"id" json:"id"`
	OwnerID    string    `db:"owner_id" json:"owner_id"`
	Name       string    `db:"name" json:"name"`
	Script     string    `db:"script" json:"script"`
	TeamsCount int       `db:"teams_count" json:"teams_count"`
	MapsCount  int       `db:"maps_count" json:"maps_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

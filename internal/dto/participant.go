package dto

// JoinLobbyRequest registers the caller as a participant of a lobby.
type JoinLobbyRequest struct {
	LobbyID string `json:"lobby_id" validate:"required,uuid4"`
}

// AssignTeamRequest moves a participant onto a team; a nil team id clears
// the assignment.
type AssignTeamRequest struct {
	TeamID *string `json:"team_id" validate:"omitempty,uuid4"`
}

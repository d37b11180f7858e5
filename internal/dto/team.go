package dto

// CreateTeamRequest adds a team to a lobby.
type CreateTeamRequest struct {
	LobbyID string `json:"lobby_id" validate:"required,uuid4"`
	Name    string `json:"name" validate:"required,min=1,max=64"`
}

// UpdateTeamRequest renames a team.
type UpdateTeamRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=64"`
}

// Empty reports whether no field was provided.
func (r UpdateTeamRequest) Empty() bool {
	return r.Name == nil
}

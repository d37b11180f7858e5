package dto

// CreateLobbyRequest opens a new lobby governed by an algorithm.
type CreateLobbyRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=64"`
	AlgorithmID string `json:"algorithm_id" validate:"required,uuid4"`
}

// UpdateLobbyRequest carries optional lobby changes; at least one field must
// be present.
type UpdateLobbyRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=64"`
	AlgorithmID *string `json:"algorithm_id,omitempty" validate:"omitempty,uuid4"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=created active archived"`
}

// Empty reports whether no field was provided.
func (r UpdateLobbyRequest) Empty() bool {
	return r.Name == nil && r.AlgorithmID == nil && r.Status == nil
}

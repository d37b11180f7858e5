package dto

// CreateAlgorithmRequest registers a pick/ban sequence definition.
type CreateAlgorithmRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=64"`
	Script     string `json:"script" validate:"required"`
	TeamsCount int    `json:"teams_count" validate:"required,min=2"`
	MapsCount  int    `json:"maps_count" validate:"required,min=1"`
}

// UpdateAlgorithmRequest carries optional algorithm changes; at least one
// field must be present.
type UpdateAlgorithmRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=64"`
	Script     *string `json:"script,omitempty"`
	TeamsCount *int    `json:"teams_count,omitempty" validate:"omitempty,min=2"`
	MapsCount  *int    `json:"maps_count,omitempty" validate:"omitempty,min=1"`
}

// Empty reports whether no field was provided.
func (r UpdateAlgorithmRequest) Empty() bool {
	return r.Name == nil && r.Script == nil && r.TeamsCount == nil && r.MapsCount == nil
}

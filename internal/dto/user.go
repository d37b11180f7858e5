package dto

// UpdateUserRequest carries optional profile changes; at least one field must
// be present.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=32"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// Empty reports whether no field was provided.
func (r UpdateUserRequest) Empty() bool {
	return r.Username == nil && r.Email == nil && r.Password == nil
}

// ChangeRoleRequest promotes or demotes a user.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user moderator admin"`
}

package dto

import "chainbank-backend/internal/models"

// RegisterRequest is the public self-registration payload. Role is always
// "user" for this path regardless of input.
type RegisterRequest struct {
	Username      string `json:"username" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	FullName      string `json:"full_name"`
	Password      string `json:"password" binding:"required"`
	PublicAddress string `json:"public_address" binding:"required"`
}

// AdminCreateUserRequest is the admin user-creation payload; the caller
// supplies the role.
type AdminCreateUserRequest struct {
	Username      string      `json:"username" binding:"required"`
	Email         string      `json:"email" binding:"required,email"`
	FullName      string      `json:"full_name"`
	Password      string      `json:"password" binding:"required"`
	PublicAddress string      `json:"public_address"`
	Role          models.Role `json:"role"`
}

// UpdateProfileRequest carries the self-service partial update; only supplied
// fields are touched.
type UpdateProfileRequest struct {
	Username      *string `json:"username"`
	Email         *string `json:"email" binding:"omitempty,email"`
	FullName      *string `json:"full_name"`
	Password      *string `json:"password"`
	PublicAddress *string `json:"public_address"`
}

// TokenResponse is the OAuth2-style password login response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse is the user record shape returned by list endpoints.
type UserResponse struct {
	ID            uint        `json:"id"`
	Username      *string     `json:"username"`
	Email         string      `json:"email"`
	FullName      string      `json:"full_name,omitempty"`
	Role          models.Role `json:"role"`
	Disabled      bool        `json:"disabled"`
	PublicAddress string      `json:"public_address,omitempty"`
}

// NewUserResponse converts a persisted user into its API shape.
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		Role:          u.Role,
		Disabled:      u.Disabled,
		PublicAddress: u.PublicAddress,
	}
}

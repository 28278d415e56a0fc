package dto

import (
	"time"

	"github.com/SscSPs/chat_backend/internal/core/domain"
)

// UserResponse is the public projection of a user. Hashes, reset token fields and the
// external identity subject never leave the server.
type UserResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	ProfileImage string     `json:"profileImage"`
	IsAdmin      bool       `json:"isAdmin"`
	AuthProvider string     `json:"authProvider"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ToUserResponse projects a domain user to its public view.
func ToUserResponse(user *domain.User) UserResponse {
	provider := "local"
	if user.ExternalID != nil {
		provider = string(domain.ProviderGoogle)
	}
	return UserResponse{
		ID:           user.UserID,
		Name:         user.Name,
		Email:        user.Email,
		ProfileImage: user.AvatarURL,
		IsAdmin:      user.IsAdmin,
		AuthProvider: provider,
		LastLogin:    user.LastLoginAt,
		CreatedAt:    user.CreatedAt,
	}
}

// UpdateProfileRequest defines the data allowed for updating the caller's profile.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// ProfileResponse is returned by PUT /api/v1/user/profile.
type ProfileResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

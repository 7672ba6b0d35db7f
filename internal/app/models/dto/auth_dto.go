package dto

import (
	"github.com/yigit/campushub/internal/app/models"
)

// SignUpRequest creates an identity, its profile and the student role.
type SignUpRequest struct {
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=8,max=72"`
	Name       string  `json:"name" binding:"required,max=120"`
	StudentID  *string `json:"studentId,omitempty" binding:"omitempty,max=32"`
	Department *string `json:"department,omitempty" binding:"omitempty,max=80"`
	Year       *int32  `json:"year,omitempty" binding:"omitempty,min=1,max=6"`
}

// SignInRequest represents login credentials
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// SessionResponse is the resolved state of the caller's session.
type SessionResponse struct {
	UserID      int64           `json:"userId"`
	Email       string          `json:"email"`
	Profile     *models.Profile `json:"profile,omitempty"`
	Roles       []models.Role   `json:"roles"`
	PrimaryRole models.Role     `json:"primaryRole"`
	Landing     string          `json:"landing" example:"/dashboard"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token   TokenResponse    `json:"token"`
	Session *SessionResponse `json:"session,omitempty"`
}

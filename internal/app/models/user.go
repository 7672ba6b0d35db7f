package models

import (
	"time"
)

// User is the authentication identity ('users' table).
type User struct {
	ID           int64      `json:"id" db:"id" example:"1"`
	Email        string     `json:"email" db:"email" example:"student@campus.edu"`
	PasswordHash string     `json:"-" db:"password_hash"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// Profile is the application-level user record, 1:1 with User.
type Profile struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"userId" db:"user_id"`
	Name       string    `json:"name" db:"name" example:"Asha Rao"`
	Email      string    `json:"email" db:"email"`
	StudentID  *string   `json:"studentId,omitempty" db:"student_id"`
	Department *string   `json:"department,omitempty" db:"department" example:"CSE"`
	Year       *int32    `json:"year,omitempty" db:"year" example:"3"`
	Phone      *string   `json:"phone,omitempty" db:"phone"`
	CGPA       *float64  `json:"cgpa,omitempty" db:"cgpa" example:"8.4"`
	AvatarURL  *string   `json:"avatarUrl,omitempty" db:"avatar_url"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// RefreshToken is a stored opaque refresh token.
type RefreshToken struct {
	ID         int64     `db:"id"`
	Token      string    `db:"token"`
	UserID     int64     `db:"user_id"`
	ExpiryDate time.Time `db:"expiry_date"`
	IsRevoked  bool      `db:"is_revoked"`
	CreatedAt  time.Time `db:"created_at"`
}

// UserSummary is a user with profile basics and assigned role values, for the user table.
type UserSummary struct {
	UserID     int64     `db:"user_id"`
	Email      string    `db:"email"`
	Name       string    `db:"name"`
	StudentID  *string   `db:"student_id"`
	Department *string   `db:"department"`
	IsActive   bool      `db:"is_active"`
	Roles      []string  `db:"roles"`
	CreatedAt  time.Time `db:"created_at"`
}

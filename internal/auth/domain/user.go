package domain

import "time"

type User struct {
	ID           string
	FullName     string
	MobileNumber string
	PasswordHash string
	// RefreshToken is the only refresh token currently accepted for this
	// user. Empty means no active session.
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

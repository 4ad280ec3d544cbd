package domain

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/dishaagrawalcodes/eventmappr/internal/auth/domain UserRepository

import "context"

// UserRepository is the credential store. Lookups return (nil, nil) when no
// record matches.
type UserRepository interface {
	// FindByIdentity returns a user whose full name or mobile number matches.
	// Empty arguments are ignored.
	FindByIdentity(ctx context.Context, fullName, mobileNumber string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// Create returns errors.ErrUserAlreadyExists when the mobile number is taken.
	Create(ctx context.Context, user *User) error
	// UpdatePasswordHash is the only operation that writes the password hash.
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	// SetRefreshToken overwrites the stored refresh token; an empty token
	// clears it. Missing users are not an error.
	SetRefreshToken(ctx context.Context, id, token string) error
	// RotateRefreshToken replaces the stored token with next only if it still
	// equals expected. It reports whether the swap happened.
	RotateRefreshToken(ctx context.Context, id, expected, next string) (bool, error)
}

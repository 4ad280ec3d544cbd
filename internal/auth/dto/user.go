package dto

import (
	"time"

	"github.com/dishaagrawalcodes/eventmappr/internal/auth/domain"
)

// UserOutput is the client-safe projection of a user: no password hash and
// no refresh token.
type UserOutput struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	MobileNumber string    `json:"mobileNumber"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewUserOutput(u *domain.User) *UserOutput {
	if u == nil {
		return nil
	}
	return &UserOutput{
		ID:           u.ID,
		FullName:     u.FullName,
		MobileNumber: u.MobileNumber,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

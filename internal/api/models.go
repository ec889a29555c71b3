package api

import (
	"github.com/skydeals/skydeals-api/internal/domain"
	"github.com/skydeals/skydeals-api/internal/store"
)

// Request/response shapes for the JSON endpoints. Multipart listing
// creation is decoded field by field in the aircraft handler instead.

// SignupRequest defines the payload for the user signup endpoint.
type SignupRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Phone    string `json:"phone"    validate:"omitempty,min=7,max=20"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=seller admin"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// ForgotPasswordRequest asks for a reset email.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest carries the new password; the reset token travels
// in the URL.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdatePasswordRequest changes the password of a logged-in user.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,min=1"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
}

// UpdateMeRequest updates the caller's own profile. Empty fields are left
// unchanged.
type UpdateMeRequest struct {
	Name  string `json:"name"  validate:"omitempty,min=2,max=100"`
	Phone string `json:"phone" validate:"omitempty,min=7,max=20"`
	Email string `json:"email" validate:"omitempty,email"`
}

// SearchResponse is the wire shape for the listing search endpoint: a
// filtered page plus the total matching count (counted before pagination).
type SearchResponse struct {
	Status       string         `json:"status"`
	TotalResults int64          `json:"totalResults"`
	Length       int            `json:"length"`
	Data         []store.Record `json:"data"`
}

// SellerContact is the owner contact block on the listing detail view.
type SellerContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// ListingDetail is a listing enriched with its seller's contact details.
type ListingDetail struct {
	*domain.Aircraft
	Seller *SellerContact `json:"user,omitempty"`
}

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/skydeals/skydeals-api/internal/domain"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	// Create saves a new user. If the user carries a plaintext Password it
	// is hashed before storage. Returns ErrEmailExists if the email is
	// already taken, or domain validation errors if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByVerificationToken retrieves the user holding the given email
	// verification token. Returns ErrUserNotFound if no user matches.
	GetByVerificationToken(ctx context.Context, token string) (*domain.User, error)

	// GetByResetToken retrieves the user holding the given hashed
	// password-reset token. Expiry is the caller's concern.
	// Returns ErrUserNotFound if no user matches.
	GetByResetToken(ctx context.Context, hashedToken string) (*domain.User, error)

	// Update persists the user's current field values. If a new plaintext
	// Password is set it is hashed and PasswordChangedAt is advanced.
	// Returns ErrUserNotFound if the user does not exist and ErrEmailExists
	// when updating to a taken email.
	Update(ctx context.Context, user *domain.User) error

	// ListingIDs returns the IDs of all listings owned by the user. This is
	// the reference set consulted by the ownership guard.
	ListingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

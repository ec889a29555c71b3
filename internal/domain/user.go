package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
)

// Authentication methods.
const (
	AuthMethodSelf   = "self"
	AuthMethodGoogle = "google"
)

// passwordResetTTL is how long a password-reset token stays valid.
const passwordResetTTL = 10 * time.Minute

// Common user validation errors.
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrInvalidRole      = errors.New("invalid role")
)

// User represents a registered account. Sellers create listings; admins
// moderate them.
type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	Name           string    `json:"name" db:"name"`
	Phone          string    `json:"phone,omitempty" db:"phone"`
	Password       string    `json:"-" db:"-"` // plaintext, transient during registration/updates
	HashedPassword string    `json:"-" db:"hashed_password"`
	Role           string    `json:"role" db:"role"`
	AuthMethod     string    `json:"auth_method" db:"auth_method"`
	Active         bool      `json:"active" db:"active"`
	EmailVerified  bool      `json:"email_verified" db:"email_verified"`

	VerificationToken string `json:"-" db:"verification_token"`

	// PasswordResetToken holds the SHA-256 hex of the raw reset token; the
	// raw token only ever leaves the process inside the reset email.
	PasswordResetToken     string    `json:"-" db:"password_reset_token"`
	PasswordResetExpiresAt time.Time `json:"-" db:"password_reset_expires_at"`

	PasswordChangedAt time.Time `json:"-" db:"password_changed_at"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser creates a self-registered User with a fresh verification token.
// The plaintext password must be hashed by the store before persisting.
// Requests asking for the admin role are silently downgraded to seller.
func NewUser(email, name, phone, password, role string) (*User, error) {
	if role == "" || role == RoleAdmin {
		role = RoleSeller
	}

	now := time.Now().UTC()
	user := &User{
		ID:                uuid.New(),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Name:              name,
		Phone:             phone,
		Password:          password,
		Role:              role,
		AuthMethod:        AuthMethodSelf,
		Active:            true,
		EmailVerified:     false,
		VerificationToken: randomToken(20),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// NewGoogleUser creates an account from an OAuth consent callback. Google
// accounts carry no password and arrive verified and active.
func NewGoogleUser(email, name string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:            uuid.New(),
		Email:         strings.ToLower(strings.TrimSpace(email)),
		Name:          name,
		Role:          RoleSeller,
		AuthMethod:    AuthMethodGoogle,
		Active:        true,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks that the User holds consistent data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validEmail(u.Email) {
		return ErrInvalidEmail
	}
	if u.Name == "" {
		return ErrEmptyName
	}
	if u.Role != RoleAdmin && u.Role != RoleSeller {
		return ErrInvalidRole
	}

	if u.AuthMethod == AuthMethodSelf {
		if u.Password != "" {
			if len(u.Password) < 8 {
				return ErrPasswordTooShort
			}
			if len(u.Password) > 72 {
				return ErrPasswordTooLong
			}
		} else if u.HashedPassword == "" {
			return ErrEmptyPassword
		}
	}

	return nil
}

// PasswordChangedAfter reports whether the password was changed after the
// given token issue time. Tokens issued before a password change are stale.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	// Truncate to seconds; JWT iat has second precision.
	return u.PasswordChangedAt.Truncate(time.Second).After(issuedAt.Truncate(time.Second))
}

// NewResetToken generates a password-reset token, stores its SHA-256 hash
// plus expiry on the user, and returns the raw token for the reset email.
func (u *User) NewResetToken() string {
	raw := randomToken(32)
	u.PasswordResetToken = HashResetToken(raw)
	u.PasswordResetExpiresAt = time.Now().UTC().Add(passwordResetTTL)
	return raw
}

// ClearResetToken removes any pending password-reset token.
func (u *User) ClearResetToken() {
	u.PasswordResetToken = ""
	u.PasswordResetExpiresAt = time.Time{}
}

// ResetTokenValid reports whether a pending reset token exists and has not
// expired.
func (u *User) ResetTokenValid(now time.Time) bool {
	return u.PasswordResetToken != "" && now.Before(u.PasswordResetExpiresAt)
}

// HashResetToken returns the SHA-256 hex digest of a raw reset token, the
// form under which reset tokens are stored and looked up.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomToken returns n random bytes hex-encoded.
func randomToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process has bigger problems.
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return hex.EncodeToString(b)
}

// validEmail performs a minimal structural check: one @ with a dotted,
// non-trivial domain part.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

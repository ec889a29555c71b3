package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skydeals/skydeals-api/internal/domain"
	"github.com/skydeals/skydeals-api/internal/platform/logger"
	"github.com/skydeals/skydeals-api/internal/store"
)

// PasswordHasher hashes plaintext passwords for storage.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// UserStore implements store.UserStore backed by PostgreSQL.
type UserStore struct {
	db     *sqlx.DB
	hasher PasswordHasher
	logger *slog.Logger
}

// NewUserStore creates a PostgreSQL implementation of store.UserStore.
// The connection is initialized and managed by the caller.
func NewUserStore(db *sqlx.DB, hasher PasswordHasher, log *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &UserStore{
		db:     db,
		hasher: hasher,
		logger: log.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*UserStore)(nil)

const userColumns = `
	id, email, name, phone, hashed_password, role, auth_method,
	active, email_verified, verification_token,
	password_reset_token, password_reset_expires_at,
	password_changed_at, created_at, updated_at`

// userRow mirrors the users table for scanning; nullable timestamps are
// widened before converting to the domain type.
type userRow struct {
	ID                     uuid.UUID    `db:"id"`
	Email                  string       `db:"email"`
	Name                   string       `db:"name"`
	Phone                  string       `db:"phone"`
	HashedPassword         string       `db:"hashed_password"`
	Role                   string       `db:"role"`
	AuthMethod             string       `db:"auth_method"`
	Active                 bool         `db:"active"`
	EmailVerified          bool         `db:"email_verified"`
	VerificationToken      string       `db:"verification_token"`
	PasswordResetToken     string       `db:"password_reset_token"`
	PasswordResetExpiresAt sql.NullTime `db:"password_reset_expires_at"`
	PasswordChangedAt      sql.NullTime `db:"password_changed_at"`
	CreatedAt              time.Time    `db:"created_at"`
	UpdatedAt              time.Time    `db:"updated_at"`
}

func (r *userRow) toDomain() *domain.User {
	u := &domain.User{
		ID:                 r.ID,
		Email:              r.Email,
		Name:               r.Name,
		Phone:              r.Phone,
		HashedPassword:     r.HashedPassword,
		Role:               r.Role,
		AuthMethod:         r.AuthMethod,
		Active:             r.Active,
		EmailVerified:      r.EmailVerified,
		VerificationToken:  r.VerificationToken,
		PasswordResetToken: r.PasswordResetToken,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.PasswordResetExpiresAt.Valid {
		u.PasswordResetExpiresAt = r.PasswordResetExpiresAt.Time
	}
	if r.PasswordChangedAt.Valid {
		u.PasswordChangedAt = r.PasswordChangedAt.Time
	}
	return u
}

// Create implements store.UserStore.Create.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return err
	}

	if user.Password != "" {
		hashed, err := s.hasher.Hash(user.Password)
		if err != nil {
			return err
		}
		user.HashedPassword = hashed
		user.Password = ""
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.Phone, user.HashedPassword,
		user.Role, user.AuthMethod, user.Active, user.EmailVerified,
		user.VerificationToken, user.PasswordResetToken,
		nullTime(user.PasswordResetExpiresAt), nullTime(user.PasswordChangedAt),
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("duplicate email on user create", slog.String("email", user.Email))
			return MapError(err)
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	log.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("role", user.Role),
		slog.String("auth_method", user.AuthMethod))
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByVerificationToken implements store.UserStore.GetByVerificationToken.
func (s *UserStore) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, store.ErrUserNotFound
	}
	return s.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token)
}

// GetByResetToken implements store.UserStore.GetByResetToken.
func (s *UserStore) GetByResetToken(ctx context.Context, hashedToken string) (*domain.User, error) {
	if hashedToken == "" {
		return nil, store.ErrUserNotFound
	}
	return s.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE password_reset_token = $1`, hashedToken)
}

func (s *UserStore) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var row userRow
	if err := s.db.GetContext(ctx, &row, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	return row.toDomain(), nil
}

// Update implements store.UserStore.Update.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.Password != "" {
		hashed, err := s.hasher.Hash(user.Password)
		if err != nil {
			return err
		}
		user.HashedPassword = hashed
		user.Password = ""
		// Backdate slightly so a token issued in the same second as the
		// change is still considered stale.
		user.PasswordChangedAt = time.Now().UTC().Add(-time.Second)
	}
	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users SET
			email = $2, name = $3, phone = $4, hashed_password = $5,
			role = $6, auth_method = $7, active = $8, email_verified = $9,
			verification_token = $10, password_reset_token = $11,
			password_reset_expires_at = $12, password_changed_at = $13,
			updated_at = $14
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.Phone, user.HashedPassword,
		user.Role, user.AuthMethod, user.Active, user.EmailVerified,
		user.VerificationToken, user.PasswordResetToken,
		nullTime(user.PasswordResetExpiresAt), nullTime(user.PasswordChangedAt),
		user.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// ListingIDs implements store.UserStore.ListingIDs.
func (s *UserStore) ListingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids,
		`SELECT id FROM aircrafts WHERE user_id = $1`, userID)
	if err != nil {
		return nil, MapError(err)
	}
	return ids, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

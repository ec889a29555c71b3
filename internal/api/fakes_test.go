package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/skydeals/skydeals-api/internal/domain"
	"github.com/skydeals/skydeals-api/internal/platform/mail"
	"github.com/skydeals/skydeals-api/internal/platform/media"
	"github.com/skydeals/skydeals-api/internal/store"
)

// fakeUserStore is an in-memory UserStore mimicking the hashing and
// duplicate-detection behavior of the real one.
type fakeUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func fakeHash(password string) string { return "hashed:" + password }

func (s *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return fmt.Errorf("%w: Key (email)=(%s) already exists.", store.ErrEmailExists, user.Email)
		}
	}
	if user.Password != "" {
		user.HashedPassword = fakeHash(user.Password)
		user.Password = ""
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) GetByVerificationToken(_ context.Context, token string) (*domain.User, error) {
	for _, u := range s.users {
		if u.VerificationToken != "" && u.VerificationToken == token {
			clone := *u
			return &clone, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) GetByResetToken(_ context.Context, hashedToken string) (*domain.User, error) {
	for _, u := range s.users {
		if u.PasswordResetToken != "" && u.PasswordResetToken == hashedToken {
			clone := *u
			return &clone, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) Update(_ context.Context, user *domain.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	if user.Password != "" {
		user.HashedPassword = fakeHash(user.Password)
		user.Password = ""
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *fakeUserStore) ListingIDs(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

// fakeVerifier matches fakeUserStore's hashing.
type fakeVerifier struct{}

func (fakeVerifier) Compare(hashedPassword, password string) error {
	if hashedPassword != fakeHash(password) {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

// fakeAircraftStore is an in-memory AircraftStore for handler tests.
type fakeAircraftStore struct {
	aircrafts map[uuid.UUID]*domain.Aircraft
	searchErr error
}

func newFakeAircraftStore() *fakeAircraftStore {
	return &fakeAircraftStore{aircrafts: make(map[uuid.UUID]*domain.Aircraft)}
}

func (s *fakeAircraftStore) Create(_ context.Context, a *domain.Aircraft) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.aircrafts[a.ID] = a
	return nil
}

func (s *fakeAircraftStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Aircraft, error) {
	if a, ok := s.aircrafts[id]; ok {
		return a, nil
	}
	return nil, store.ErrAircraftNotFound
}

func (s *fakeAircraftStore) Delete(ctx context.Context, id uuid.UUID) (*domain.Aircraft, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	delete(s.aircrafts, id)
	return a, nil
}

func (s *fakeAircraftStore) SetApproved(ctx context.Context, id uuid.UUID, approved bool) (*domain.Aircraft, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.IsApproved = approved
	return a, nil
}

func (s *fakeAircraftStore) Search(_ context.Context, q store.SearchQuery) (*store.SearchResult, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	records := make([]store.Record, 0)
	for _, a := range s.aircrafts {
		if q.ApprovedOnly && !a.IsApproved {
			continue
		}
		records = append(records, store.Record{"id": a.ID.String(), "aircraft_name": a.Name})
	}
	return &store.SearchResult{TotalResults: int64(len(records)), Data: records}, nil
}

func (s *fakeAircraftStore) ListRecent(_ context.Context, limit int) ([]*domain.Aircraft, error) {
	out := make([]*domain.Aircraft, 0)
	for _, a := range s.aircrafts {
		if a.IsApproved && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAircraftStore) ListUnapproved(_ context.Context) ([]*domain.Aircraft, error) {
	out := make([]*domain.Aircraft, 0)
	for _, a := range s.aircrafts {
		if !a.IsApproved {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAircraftStore) ListRelated(_ context.Context, _ uuid.UUID, _ int) ([]*domain.Aircraft, error) {
	return nil, nil
}

func (s *fakeAircraftStore) ListByOwner(_ context.Context, userID uuid.UUID, _ bool) ([]*domain.Aircraft, error) {
	out := make([]*domain.Aircraft, 0)
	for _, a := range s.aircrafts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// stubMailer records sends and can fail on demand.
type stubMailer struct {
	sent []mail.Message
	err  error
}

func (m *stubMailer) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// stubNotifier records queued notifications.
type stubNotifier struct {
	messages []mail.Message
}

func (n *stubNotifier) Notify(_ context.Context, msg mail.Message) {
	n.messages = append(n.messages, msg)
}

// stubUploader returns deterministic URLs.
type stubUploader struct {
	uploads int
	err     error
}

func (u *stubUploader) Upload(_ context.Context, asset media.Asset) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.uploads++
	return fmt.Sprintf("https://media.example.com/%s/%d", asset.Folder, u.uploads), nil
}

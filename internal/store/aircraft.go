package store

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"github.com/skydeals/skydeals-api/internal/domain"
)

// Record is an opaque result row produced by a projected search. The query
// pipeline never inspects field semantics, so projected rows come back as
// generic key/value documents rather than typed entities.
type Record map[string]any

// SearchQuery describes a listing search: a fixed base filter chosen by the
// endpoint plus the caller-controlled query parameters fed through the
// filter/sort/paginate/projection pipeline.
type SearchQuery struct {
	// Params is the raw, attacker-controlled query-parameter mapping.
	// Reserved keys: page, sort, limit, fields.
	Params url.Values

	// NameContains applies a case-insensitive substring match on the
	// aircraft name before the pipeline runs.
	NameContains string

	// Category applies a case-insensitive category match before the
	// pipeline runs. The literal "all" means no category restriction.
	Category string

	// ApprovedOnly restricts results to admin-approved listings.
	ApprovedOnly bool
}

// SearchResult is a filtered, paginated page of listing records plus the
// total count of records matching the filter (counted before pagination).
type SearchResult struct {
	TotalResults int64    `json:"totalResults"`
	Data         []Record `json:"data"`
}

// AircraftStore defines the interface for listing persistence.
type AircraftStore interface {
	// Create saves a new listing.
	// Returns domain validation errors if data is invalid.
	Create(ctx context.Context, aircraft *domain.Aircraft) error

	// GetByID retrieves a listing by ID.
	// Returns ErrAircraftNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Aircraft, error)

	// Delete removes a listing and returns the deleted row.
	// Returns ErrAircraftNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) (*domain.Aircraft, error)

	// SetApproved flips the moderation flag and returns the updated row.
	// Returns ErrAircraftNotFound if it does not exist.
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) (*domain.Aircraft, error)

	// Search runs the query feature pipeline over the listings collection.
	// Returns ErrInvalidQuery for filter/sort specs that cannot be
	// translated (unknown field, wrong value type).
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)

	// ListRecent returns the newest approved listings, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.Aircraft, error)

	// ListUnapproved returns listings awaiting moderation, newest first.
	ListUnapproved(ctx context.Context) ([]*domain.Aircraft, error)

	// ListRelated returns approved listings sharing category, manufacturer
	// and model with the given listing, excluding the listing itself.
	ListRelated(ctx context.Context, id uuid.UUID, limit int) ([]*domain.Aircraft, error)

	// ListByOwner returns the listings owned by a user.
	ListByOwner(ctx context.Context, userID uuid.UUID, approvedOnly bool) ([]*domain.Aircraft, error)
}

package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AircraftCategories is the closed set of accepted listing categories.
var AircraftCategories = []string{
	"Single Engine Piston",
	"Multi Engine Piston",
	"Jets",
	"Helicopters",
	"Turbo Prop",
	"Warbirds",
	"Special Use",
	"Light Sport",
}

// Common aircraft validation errors.
var (
	ErrEmptyAircraftID    = errors.New("aircraft ID cannot be empty")
	ErrEmptyOwner         = errors.New("aircraft must belong to a user")
	ErrMissingField       = errors.New("required listing field missing")
	ErrInvalidCategory    = errors.New("invalid category selection")
	ErrInvalidPrice       = errors.New("price must be greater than zero")
	ErrNoImages           = errors.New("at least one image is required")
)

// Aircraft is a marketplace listing. New listings start unapproved and only
// become publicly visible once an admin approves them.
type Aircraft struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Name         string    `json:"aircraft_name" db:"aircraft_name"`
	SerialNumber string    `json:"serial_number" db:"serial_number"`
	Manufacturer string    `json:"manufacturer" db:"manufacturer"`
	Model        string    `json:"model" db:"model"`
	Category     string    `json:"category" db:"category"`
	Year         string    `json:"year" db:"year"`
	Description  string    `json:"description" db:"description"`
	Price        float64   `json:"price" db:"price"`

	Images []string `json:"images" db:"images"`
	Video  string   `json:"video,omitempty" db:"video"`

	Address    string `json:"address" db:"address"`
	Country    string `json:"country" db:"country"`
	City       string `json:"city" db:"city"`
	Province   string `json:"province,omitempty" db:"province"`
	PostalCode string `json:"postal_code,omitempty" db:"postal_code"`

	// SpecSheet carries the long tail of optional technical details
	// (airframe time, engine serials, avionics notes, ...) as free-form
	// key/value pairs persisted as JSONB.
	SpecSheet map[string]string `json:"spec_sheet,omitempty" db:"spec_sheet"`

	IsApproved bool      `json:"is_approved" db:"is_approved"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// NewAircraft creates an unapproved listing owned by the given user.
func NewAircraft(userID uuid.UUID) *Aircraft {
	now := time.Now().UTC()
	return &Aircraft{
		ID:         uuid.New(),
		UserID:     userID,
		IsApproved: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks required listing fields, category membership, and the
// at-least-one-image rule.
func (a *Aircraft) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyAircraftID
	}
	if a.UserID == uuid.Nil {
		return ErrEmptyOwner
	}
	for _, f := range []string{
		a.Name, a.SerialNumber, a.Manufacturer, a.Model,
		a.Year, a.Description, a.Address, a.Country, a.City,
	} {
		if f == "" {
			return ErrMissingField
		}
	}
	if !ValidCategory(a.Category) {
		return ErrInvalidCategory
	}
	if a.Price <= 0 {
		return ErrInvalidPrice
	}
	if len(a.Images) == 0 {
		return ErrNoImages
	}
	return nil
}

// ValidCategory reports whether the category is one of the accepted values.
func ValidCategory(category string) bool {
	for _, c := range AircraftCategories {
		if c == category {
			return true
		}
	}
	return false
}
